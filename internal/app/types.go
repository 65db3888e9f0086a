package app

import "anypoint-export/internal/types"

// PlatformConfig is the immutable credential and endpoint configuration of
// one run, supplied once at startup by the CLI layer.
type PlatformConfig struct {
	ClientID       string
	ClientSecret   string
	OrganizationID string
	EnvironmentID  string
	ControlPlane   string
}

type ExportRequest struct {
	Platform        PlatformConfig
	OutputDir       string
	Workers         int
	HTTPTimeoutSec  int
	Retries         int
	RetryDelayMs    int
	EndpointLogging bool
}

type ExportResult struct {
	RunDir     string
	ReportPath string
	Report     types.RunReport
}

type AppsRequest struct {
	Platform        PlatformConfig
	HTTPTimeoutSec  int
	Retries         int
	RetryDelayMs    int
	EndpointLogging bool
}

type AppsResult struct {
	Applications []types.Application
}
