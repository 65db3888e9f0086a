package adapters

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, calls *atomic.Int32, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "test-client", r.FormValue("client_id"))
		assert.Equal(t, "test-secret", r.FormValue("client_secret"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"bearer","expires_in":%d}`, n, expiresIn)
	}))
}

func TestTokenExchangeAndCache(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, 3600)
	defer srv.Close()

	adapter := NewTokenOAuthAdapter("test-client", "test-secret", srv.URL, srv.Client(), false)
	token, err := adapter.Token(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	token, err = adapter.Token(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, int32(1), calls.Load(), "cached token must not trigger a second exchange")
}

func TestTokenInvalidateForcesRefresh(t *testing.T) {
	var calls atomic.Int32
	srv := tokenServer(t, &calls, 3600)
	defer srv.Close()

	adapter := NewTokenOAuthAdapter("test-client", "test-secret", srv.URL, srv.Client(), false)
	_, err := adapter.Token(t.Context())
	require.NoError(t, err)

	adapter.Invalidate()
	token, err := adapter.Token(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenNearExpiryIsRefreshed(t *testing.T) {
	var calls atomic.Int32
	// Lifetime shorter than the refresh margin, so the cached token is
	// already inside the margin on the next call.
	srv := tokenServer(t, &calls, 30)
	defer srv.Close()

	adapter := NewTokenOAuthAdapter("test-client", "test-secret", srv.URL, srv.Client(), false)
	_, err := adapter.Token(t.Context())
	require.NoError(t, err)
	_, err = adapter.Token(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTokenRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer srv.Close()

	adapter := NewTokenOAuthAdapter("test-client", "bad-secret", srv.URL, srv.Client(), false)
	_, err := adapter.Token(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeUnauthenticated, errbuilder.CodeOf(err))
}

func TestTokenEndpointUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	adapter := NewTokenOAuthAdapter("test-client", "test-secret", srv.URL, srv.Client(), false)
	_, err := adapter.Token(t.Context())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}
