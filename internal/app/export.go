package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"anypoint-export/internal/adapters"
	"anypoint-export/internal/core"
	"anypoint-export/internal/ports"
	"anypoint-export/internal/progress"
	"anypoint-export/internal/types"
)

// Export runs a full bulk export: authenticate, list the catalog, download
// every artifact into a timestamped run directory, and write the catalog
// manifest plus the run report. Per-application failures are recorded in
// the report and never abort the run.
func (s Service) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	wired, err := newPlatformAdapters(req.Platform, req.HTTPTimeoutSec, req.Retries, req.RetryDelayMs, req.EndpointLogging)
	if err != nil {
		return ExportResult{}, err
	}
	startedAt := s.Clock()
	manifest, err := adapters.NewManifestFileAdapter(req.OutputDir, startedAt)
	if err != nil {
		return ExportResult{}, err
	}

	exporter := Exporter{
		Tokens:       wired.tokens,
		Catalog:      wired.catalog,
		Artifacts:    wired.artifacts,
		Downloads:    wired.downloads,
		Manifest:     manifest,
		Retry:        wired.retry,
		Workers:      req.Workers,
		RunID:        startedAt.Format(adapters.RunIDLayout),
		ControlPlane: wired.planes.Plane,
	}
	report, err := exporter.Run(ctx)
	result := ExportResult{
		RunDir:     manifest.RunDir(),
		ReportPath: filepath.Join(manifest.RunDir(), adapters.ReportFileName),
		Report:     report,
	}
	if err != nil {
		return result, err
	}
	log.Info().
		Str("run_dir", result.RunDir).
		Int("total", report.TotalApplications).
		Int("succeeded", report.Succeeded).
		Int("failed", report.Failed).
		Msg("export completed")
	return result, nil
}

// Exporter drives one export run through its states: authenticate, list,
// download each application with a bounded worker pool, report.
type Exporter struct {
	Tokens       ports.TokenPort
	Catalog      ports.CatalogPort
	Artifacts    ports.ArtifactPort
	Downloads    ports.DownloadPort
	Manifest     ports.ManifestPort
	Retry        core.RetryPolicy
	Workers      int
	RunID        string
	ControlPlane types.ControlPlane
}

func (e Exporter) Run(ctx context.Context) (types.RunReport, error) {
	assert.NotEmpty(ctx, e.RunID, "run id must be set")
	assert.NotEmpty(ctx, string(e.ControlPlane), "control plane must be resolved")

	// Acquire the first token up front so credential problems abort the
	// run before any listing work.
	if err := e.Retry.Do(ctx, func() error {
		_, err := e.Tokens.Token(ctx)
		return err
	}); err != nil {
		return types.RunReport{}, err
	}

	apps, err := e.Catalog.ListApplications(ctx)
	if err != nil {
		return types.RunReport{}, err
	}
	if _, err := e.Manifest.WriteCatalog(apps); err != nil {
		return types.RunReport{}, err
	}

	tracker := progress.NewTracker(len(apps))
	outcomes := e.downloadAll(ctx, apps, tracker)

	report := types.RunReport{
		RunID:             e.RunID,
		ControlPlane:      e.ControlPlane,
		TotalApplications: len(apps),
		Outcomes:          outcomes,
	}
	for _, outcome := range outcomes {
		if outcome.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	if _, err := e.Manifest.WriteReport(report); err != nil {
		return report, err
	}
	// A canceled run still gets its partial report written above.
	if ctx.Err() != nil {
		return report, errbuilder.New().
			WithCode(errbuilder.CodeCanceled).
			WithMsg("run canceled before completion").
			WithCause(ctx.Err())
	}
	return report, nil
}

func (e Exporter) downloadAll(ctx context.Context, apps []types.Application, tracker *progress.Tracker) []types.DownloadOutcome {
	if len(apps) == 0 {
		return nil
	}
	workerCount := e.Workers
	if workerCount <= 0 {
		workerCount = defaultWorkers
	}
	if len(apps) < workerCount {
		workerCount = len(apps)
	}

	tasks := make(chan types.Application)
	results := make(chan types.DownloadOutcome, len(apps))
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for app := range tasks {
				results <- e.processApplication(ctx, app, tracker)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	for _, app := range apps {
		// Stop handing out work once the run is canceled; unstarted
		// applications still get an outcome so none is dropped.
		select {
		case tasks <- app:
		case <-ctx.Done():
			results <- canceledOutcome(app)
		}
	}
	close(tasks)

	outcomes := make([]types.DownloadOutcome, 0, len(apps))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (e Exporter) processApplication(ctx context.Context, app types.Application, tracker *progress.Tracker) types.DownloadOutcome {
	if ctx.Err() != nil {
		return canceledOutcome(app)
	}
	tracker.Started(app.Domain)
	outcome := types.DownloadOutcome{
		ApplicationID:   app.ID,
		ApplicationName: app.Domain,
	}

	location, err := e.Artifacts.Resolve(ctx, app)
	if err != nil {
		outcome.Error = failureReason(err)
		tracker.Failed(app.Domain, outcome.Error)
		return outcome
	}
	if location == nil {
		outcome.Skipped = true
		outcome.Error = "no deployable artifact"
		tracker.Skipped(app.Domain, outcome.Error)
		return outcome
	}

	dir, err := e.Manifest.ApplicationDir(app.Domain)
	if err != nil {
		outcome.Error = failureReason(err)
		tracker.Failed(app.Domain, outcome.Error)
		return outcome
	}
	dest := filepath.Join(dir, location.Filename)
	written, err := e.Downloads.Fetch(ctx, *location, dest)
	if err != nil {
		outcome.Error = failureReason(err)
		tracker.Failed(app.Domain, outcome.Error)
		return outcome
	}

	outcome.Success = true
	outcome.BytesWritten = written
	outcome.DestinationPath = dest
	tracker.Succeeded(app.Domain, written)
	return outcome
}

func canceledOutcome(app types.Application) types.DownloadOutcome {
	return types.DownloadOutcome{
		ApplicationID:   app.ID,
		ApplicationName: app.Domain,
		Error:           "run canceled",
	}
}

func failureReason(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
