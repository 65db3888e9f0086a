// Package testutil provides shared test helpers used across integration
// and unit test packages, most importantly an in-process fake of the
// Anypoint control plane.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FakeApplication is one deployed application served by the fake platform.
// Artifact is the byte payload exposed at the download endpoint; a nil
// Artifact together with an empty Filename models an application that has
// never had a deployment.
type FakeApplication struct {
	ID       string
	Domain   string
	Status   string
	Filename string
	Artifact []byte
}

// FakePlatform serves the token, catalog, info, and download endpoints of
// a control plane from a single httptest server. It records every request
// path so tests can assert on traffic.
type FakePlatform struct {
	Server *httptest.Server

	OrgID    string
	EnvID    string
	PageSize int

	mu         sync.Mutex
	apps       []FakeApplication
	tokenCalls int
	requests   []string
}

func NewFakePlatform(t *testing.T, orgID string, envID string, apps []FakeApplication) *FakePlatform {
	t.Helper()
	platform := &FakePlatform{
		OrgID:    orgID,
		EnvID:    envID,
		PageSize: 2,
		apps:     apps,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /accounts/api/v2/oauth2/token", platform.handleToken(t))
	mux.HandleFunc("GET /cloudhub/api/applications", platform.handleList(t))
	mux.HandleFunc("GET /cloudhub/api/organizations/{org}/environments/{env}/applications/{app}", platform.handleInfo(t))
	mux.HandleFunc("GET /cloudhub/api/organizations/{org}/environments/{env}/applications/{app}/download/{file}", platform.handleDownload(t))
	platform.Server = httptest.NewServer(mux)
	t.Cleanup(platform.Server.Close)
	return platform
}

func (p *FakePlatform) TokenURL() string {
	return p.Server.URL + "/accounts/api/v2/oauth2/token"
}

func (p *FakePlatform) BaseURL() string {
	return p.Server.URL + "/cloudhub/api"
}

func (p *FakePlatform) TokenCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenCalls
}

func (p *FakePlatform) Requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.requests...)
}

func (p *FakePlatform) record(r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, r.Method+" "+r.URL.Path)
}

func (p *FakePlatform) handleToken(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.NotEmpty(t, r.FormValue("client_id"))
		assert.NotEmpty(t, r.FormValue("client_secret"))

		p.mu.Lock()
		p.tokenCalls++
		calls := p.tokenCalls
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("fake-token-%d", calls),
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}
}

func (p *FakePlatform) checkScope(t *testing.T, r *http.Request) bool {
	t.Helper()
	if r.Header.Get("Authorization") == "" {
		return false
	}
	assert.Equal(t, p.OrgID, r.Header.Get("x-anypnt-org-id"))
	assert.Equal(t, p.EnvID, r.Header.Get("x-anypnt-env-id"))
	return true
}

func (p *FakePlatform) handleList(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		if !p.checkScope(t, r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		start := 0
		if token := r.URL.Query().Get("pageToken"); token != "" {
			parsed, err := strconv.Atoi(token)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			start = parsed
		}
		end := start + p.PageSize
		if end > len(p.apps) {
			end = len(p.apps)
		}
		items := make([]map[string]any, 0, end-start)
		for _, app := range p.apps[start:end] {
			items = append(items, map[string]any{
				"id":       app.ID,
				"domain":   app.Domain,
				"status":   app.Status,
				"filename": app.Filename,
			})
		}
		nextToken := ""
		if end < len(p.apps) {
			nextToken = strconv.Itoa(end)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items":     items,
			"nextToken": nextToken,
		})
	}
}

func (p *FakePlatform) handleInfo(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		if !p.checkScope(t, r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		app, ok := p.lookup(r.PathValue("app"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"domain":   app.Domain,
			"status":   app.Status,
			"filename": app.Filename,
		})
	}
}

func (p *FakePlatform) handleDownload(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.record(r)
		if !p.checkScope(t, r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		app, ok := p.lookup(r.PathValue("app"))
		if !ok || app.Artifact == nil || r.PathValue("file") != app.Filename {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(app.Artifact)))
		_, _ = w.Write(app.Artifact)
	}
}

func (p *FakePlatform) lookup(domain string) (FakeApplication, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, app := range p.apps {
		if app.Domain == domain {
			return app, true
		}
	}
	return FakeApplication{}, false
}
