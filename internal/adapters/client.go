package adapters

import (
	"context"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"anypoint-export/internal/ports"
)

const defaultHTTPTimeout = 60 * time.Second

func NewHTTPClient(timeoutSec int) *http.Client {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// apiScope carries the request decoration shared by every CloudHub call:
// bearer auth plus the organization and environment scope headers.
type apiScope struct {
	Tokens ports.TokenPort
	OrgID  string
	EnvID  string
}

// get issues an authorized GET. A single 401 invalidates the cached token
// and retries with a fresh one; a second rejection is fatal for the run.
func (s apiScope) get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.Tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create request").
				WithCause(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-anypnt-org-id", s.OrgID)
		req.Header.Set("x-anypnt-env-id", s.EnvID)
		resp, err := client.Do(req)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeUnavailable).
				WithMsg("request to control plane failed").
				WithCause(err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			if attempt == 0 {
				s.Tokens.Invalidate()
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeUnauthenticated).
				WithMsg("token rejected after refresh")
		}
		return resp, nil
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeUnauthenticated).
		WithMsg("token rejected after refresh")
}
