package app

import (
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"anypoint-export/internal/adapters"
	"anypoint-export/internal/core"
)

const defaultWorkers = 4

type Service struct {
	Clock func() time.Time
}

func NewService() Service {
	return Service{Clock: time.Now}
}

func validatePlatform(cfg PlatformConfig) error {
	required := []struct {
		value string
		name  string
	}{
		{cfg.ClientID, "client id"},
		{cfg.ClientSecret, "client secret"},
		{cfg.OrganizationID, "organization id"},
		{cfg.EnvironmentID, "environment id"},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(field.name + " is required")
		}
	}
	return nil
}

// platformAdapters wires the HTTP adapters for one run against the
// resolved control plane. Configuration is validated before any network
// call is attempted.
type platformAdapters struct {
	planes    core.PlaneEndpoints
	tokens    *adapters.TokenOAuthAdapter
	catalog   adapters.CatalogHTTPAdapter
	artifacts adapters.ArtifactHTTPAdapter
	downloads adapters.DownloadHTTPAdapter
	retry     core.RetryPolicy
}

func newPlatformAdapters(cfg PlatformConfig, timeoutSec int, retries int, retryDelayMs int, logEndpoints bool) (platformAdapters, error) {
	if err := validatePlatform(cfg); err != nil {
		return platformAdapters{}, err
	}
	planes, err := core.ResolveControlPlane(cfg.ControlPlane)
	if err != nil {
		return platformAdapters{}, err
	}
	client := adapters.NewHTTPClient(timeoutSec)
	retry := core.NewRetryPolicy(retries, retryDelayMs)
	tokens := adapters.NewTokenOAuthAdapter(cfg.ClientID, cfg.ClientSecret, planes.AuthURL, client, logEndpoints)
	return platformAdapters{
		planes:    planes,
		tokens:    tokens,
		catalog:   adapters.NewCatalogHTTPAdapter(planes.BaseURL, tokens, cfg.OrganizationID, cfg.EnvironmentID, client, retry, logEndpoints),
		artifacts: adapters.NewArtifactHTTPAdapter(planes.BaseURL, tokens, cfg.OrganizationID, cfg.EnvironmentID, client, retry, logEndpoints),
		downloads: adapters.NewDownloadHTTPAdapter(tokens, cfg.OrganizationID, cfg.EnvironmentID, client, retry, logEndpoints),
		retry:     retry,
	}, nil
}
