package ports

import "anypoint-export/internal/types"

// ManifestPort owns the on-disk layout of one export run: the run
// directory, the catalog manifest, the run report, and one subdirectory
// per application.
type ManifestPort interface {
	RunDir() string
	WriteCatalog(apps []types.Application) (string, error)
	WriteReport(report types.RunReport) (string, error)
	ApplicationDir(name string) (string, error)
}
