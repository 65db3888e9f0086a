package ports

import (
	"context"

	"anypoint-export/internal/types"
)

// CatalogPort lists every application deployed to the configured
// organization and environment, in the order the API returns them.
type CatalogPort interface {
	ListApplications(ctx context.Context) ([]types.Application, error)
}

// ArtifactPort resolves the downloadable artifact of one application.
// A nil location with a nil error means the application has no deployable
// artifact; that is not a failure.
type ArtifactPort interface {
	Resolve(ctx context.Context, app types.Application) (*types.ArtifactLocation, error)
}

// DownloadPort streams one artifact to a destination path and returns the
// byte count written. No partial file survives a failed attempt.
type DownloadPort interface {
	Fetch(ctx context.Context, location types.ArtifactLocation, dest string) (int64, error)
}
