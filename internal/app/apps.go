package app

import "context"

// Apps authenticates and returns the full application catalog without
// downloading anything.
func (s Service) Apps(ctx context.Context, req AppsRequest) (AppsResult, error) {
	wired, err := newPlatformAdapters(req.Platform, req.HTTPTimeoutSec, req.Retries, req.RetryDelayMs, req.EndpointLogging)
	if err != nil {
		return AppsResult{}, err
	}
	if err := wired.retry.Do(ctx, func() error {
		_, err := wired.tokens.Token(ctx)
		return err
	}); err != nil {
		return AppsResult{}, err
	}
	apps, err := wired.catalog.ListApplications(ctx)
	if err != nil {
		return AppsResult{}, err
	}
	return AppsResult{Applications: apps}, nil
}
