package ports

import "context"

// TokenPort supplies a bearer token for platform API calls. Implementations
// cache the token and refresh it before expiry; Invalidate discards the
// cached token so the next call performs a fresh exchange.
type TokenPort interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}
