package adapters

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"anypoint-export/internal/shared"
)

const defaultExpiryMargin = 60 * time.Second

// TokenOAuthAdapter exchanges client credentials for a bearer token against
// the control plane's auth endpoint. The token is cached until it is within
// the expiry margin; refreshes are serialized so concurrent workers never
// trigger more than one exchange at a time.
type TokenOAuthAdapter struct {
	conf         clientcredentials.Config
	client       *http.Client
	margin       time.Duration
	logEndpoints bool

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewTokenOAuthAdapter(clientID string, clientSecret string, authURL string, client *http.Client, logEndpoints bool) *TokenOAuthAdapter {
	return &TokenOAuthAdapter{
		conf: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     authURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		client:       client,
		margin:       defaultExpiryMargin,
		logEndpoints: logEndpoints,
	}
}

func (a *TokenOAuthAdapter) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.token != "" && a.valid() {
		return a.token, nil
	}
	if a.logEndpoints {
		log.Info().Str("url", a.conf.TokenURL).Msg("calling authentication endpoint")
	}
	if a.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	}
	token, err := a.conf.Token(ctx)
	if err != nil {
		a.token = ""
		return "", classifyTokenError(err, a.conf.TokenURL)
	}
	a.token = token.AccessToken
	a.expiry = token.Expiry
	return a.token, nil
}

func (a *TokenOAuthAdapter) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
	a.expiry = time.Time{}
}

// valid reports whether the cached token is still usable. A token without
// a reported lifetime never expires; anything else expires margin seconds
// early so no call goes out with a token about to lapse.
func (a *TokenOAuthAdapter) valid() bool {
	if a.expiry.IsZero() {
		return true
	}
	return time.Now().Before(a.expiry.Add(-a.margin))
}

func classifyTokenError(err error, tokenURL string) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		status := retrieveErr.Response.StatusCode
		if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
			return errbuilder.New().
				WithCode(errbuilder.CodeUnauthenticated).
				WithMsg("authentication rejected by control plane").
				WithCause(shared.HTTPStatusErrorWithBody(status, tokenURL, string(retrieveErr.Body)))
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("authentication endpoint unavailable").
			WithCause(shared.HTTPStatusError(status, tokenURL))
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg("authentication request failed").
		WithCause(err)
}
