package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"anypoint-export/internal/core"
	"anypoint-export/internal/ports"
	"anypoint-export/internal/shared"
	"anypoint-export/internal/types"
)

// CatalogHTTPAdapter lists the applications of one organization/environment
// through the paginated catalog endpoint. Pages are requested in API order;
// duplicates across pages are passed through untouched so downstream
// reporting shows exactly what the catalog returned.
type CatalogHTTPAdapter struct {
	BaseURL      string
	Scope        apiScope
	Client       *http.Client
	Retry        core.RetryPolicy
	LogEndpoints bool
}

func NewCatalogHTTPAdapter(baseURL string, tokens ports.TokenPort, orgID string, envID string, client *http.Client, retry core.RetryPolicy, logEndpoints bool) CatalogHTTPAdapter {
	return CatalogHTTPAdapter{
		BaseURL:      baseURL,
		Scope:        apiScope{Tokens: tokens, OrgID: orgID, EnvID: envID},
		Client:       client,
		Retry:        retry,
		LogEndpoints: logEndpoints,
	}
}

type applicationPage struct {
	Items     *[]types.Application `json:"items"`
	NextToken string               `json:"nextToken"`
}

func (a CatalogHTTPAdapter) ListApplications(ctx context.Context) ([]types.Application, error) {
	apps := []types.Application{}
	pageToken := ""
	for {
		page, err := a.fetchPage(ctx, pageToken)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *page.Items...)
		if page.NextToken == "" {
			return apps, nil
		}
		pageToken = page.NextToken
	}
}

func (a CatalogHTTPAdapter) fetchPage(ctx context.Context, pageToken string) (applicationPage, error) {
	endpoint := a.BaseURL + "/applications"
	if pageToken != "" {
		endpoint += "?pageToken=" + url.QueryEscape(pageToken)
	}
	if a.LogEndpoints {
		log.Info().Str("url", endpoint).Msg("calling applications list endpoint")
	}
	var page applicationPage
	err := a.Retry.Do(ctx, func() error {
		fetched, err := a.fetchPageOnce(ctx, endpoint)
		if err != nil {
			return err
		}
		page = fetched
		return nil
	})
	return page, err
}

func (a CatalogHTTPAdapter) fetchPageOnce(ctx context.Context, endpoint string) (applicationPage, error) {
	resp, err := a.Scope.get(ctx, a.Client, endpoint)
	if err != nil {
		return applicationPage{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return applicationPage{}, classifyStatus(resp.StatusCode, endpoint, string(body), "failed to list applications")
	}
	var page applicationPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return applicationPage{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("malformed applications page").
			WithCause(err)
	}
	if page.Items == nil {
		return applicationPage{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("applications page missing items array").
			WithCause(shared.HTTPStatusError(resp.StatusCode, endpoint))
	}
	return page, nil
}

// classifyStatus maps a non-2xx catalog response onto the error taxonomy:
// 5xx and 429 are transient, 403 is a permission failure, everything else
// is terminal.
func classifyStatus(status int, endpoint string, body string, msg string) error {
	cause := shared.HTTPStatusErrorWithBody(status, endpoint, body)
	switch {
	case status >= http.StatusInternalServerError || status == http.StatusTooManyRequests:
		return errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(msg).
			WithCause(cause)
	case status == http.StatusForbidden:
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg(msg).
			WithCause(cause)
	case status == http.StatusNotFound:
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(msg).
			WithCause(cause)
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(msg).
			WithCause(cause)
	}
}
