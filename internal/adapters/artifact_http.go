package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"anypoint-export/internal/core"
	"anypoint-export/internal/ports"
	"anypoint-export/internal/types"
)

// ArtifactHTTPAdapter resolves the deployable artifact of one application.
// The listing usually carries the artifact filename already; when it does
// not, a secondary call to the application info endpoint fills it in. An
// application without a filename has nothing deployed and resolves to nil.
type ArtifactHTTPAdapter struct {
	BaseURL      string
	Scope        apiScope
	Client       *http.Client
	Retry        core.RetryPolicy
	LogEndpoints bool
}

func NewArtifactHTTPAdapter(baseURL string, tokens ports.TokenPort, orgID string, envID string, client *http.Client, retry core.RetryPolicy, logEndpoints bool) ArtifactHTTPAdapter {
	return ArtifactHTTPAdapter{
		BaseURL:      baseURL,
		Scope:        apiScope{Tokens: tokens, OrgID: orgID, EnvID: envID},
		Client:       client,
		Retry:        retry,
		LogEndpoints: logEndpoints,
	}
}

type applicationInfo struct {
	Filename string `json:"filename"`
}

func (a ArtifactHTTPAdapter) Resolve(ctx context.Context, app types.Application) (*types.ArtifactLocation, error) {
	filename := strings.TrimSpace(app.Filename)
	if filename == "" {
		info, err := a.fetchInfo(ctx, app.Domain)
		if err != nil {
			if errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
				return nil, nil
			}
			return nil, err
		}
		filename = strings.TrimSpace(info.Filename)
	}
	if filename == "" {
		return nil, nil
	}
	downloadURL := fmt.Sprintf("%s/organizations/%s/environments/%s/applications/%s/download/%s",
		a.BaseURL,
		url.PathEscape(a.Scope.OrgID),
		url.PathEscape(a.Scope.EnvID),
		url.PathEscape(app.Domain),
		url.PathEscape(filename))
	return &types.ArtifactLocation{URL: downloadURL, Filename: filename}, nil
}

func (a ArtifactHTTPAdapter) fetchInfo(ctx context.Context, name string) (applicationInfo, error) {
	endpoint := fmt.Sprintf("%s/organizations/%s/environments/%s/applications/%s",
		a.BaseURL,
		url.PathEscape(a.Scope.OrgID),
		url.PathEscape(a.Scope.EnvID),
		url.PathEscape(name))
	if a.LogEndpoints {
		log.Info().Str("url", endpoint).Msg("calling application info endpoint")
	}
	var info applicationInfo
	err := a.Retry.Do(ctx, func() error {
		resp, err := a.Scope.get(ctx, a.Client, endpoint)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return classifyStatus(resp.StatusCode, endpoint, string(body), "failed to fetch application info")
		}
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("malformed application info response").
				WithCause(err)
		}
		return nil
	})
	return info, err
}
