package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"anypoint-export/internal/shared"
	"anypoint-export/internal/types"
)

const runDirPrefix = "downloads_"

// RunIDLayout is the timestamp format shared by the run identifier and
// the run directory name.
const RunIDLayout = "20060102_150405"

const CatalogFileName = "applications.json"
const ReportFileName = "report.json"

// ManifestFileAdapter owns the on-disk layout of one run: a timestamped
// run directory holding the catalog manifest, the run report, and one
// subdirectory per application.
type ManifestFileAdapter struct {
	runDir string
}

func NewManifestFileAdapter(baseDir string, startedAt time.Time) (ManifestFileAdapter, error) {
	if baseDir == "" {
		baseDir = "."
	}
	runDir := filepath.Join(baseDir, runDirPrefix+startedAt.Format(RunIDLayout))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return ManifestFileAdapter{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create run directory").
			WithCause(err)
	}
	return ManifestFileAdapter{runDir: runDir}, nil
}

func (a ManifestFileAdapter) RunDir() string {
	return a.runDir
}

// WriteCatalog captures the full application listing as returned by the
// catalog, independent of download outcomes.
func (a ManifestFileAdapter) WriteCatalog(apps []types.Application) (string, error) {
	if apps == nil {
		apps = []types.Application{}
	}
	return a.writeJSON(CatalogFileName, apps)
}

func (a ManifestFileAdapter) WriteReport(report types.RunReport) (string, error) {
	if report.Outcomes == nil {
		report.Outcomes = []types.DownloadOutcome{}
	}
	return a.writeJSON(ReportFileName, report)
}

func (a ManifestFileAdapter) ApplicationDir(name string) (string, error) {
	dir := filepath.Join(a.runDir, shared.SanitizeDirName(name))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create application directory").
			WithCause(err)
	}
	return dir, nil
}

func (a ManifestFileAdapter) writeJSON(name string, value any) (string, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode " + name).
			WithCause(err)
	}
	path := filepath.Join(a.runDir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write " + name).
			WithCause(err)
	}
	return path, nil
}
