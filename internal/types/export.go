package types

// Application is a single entry from the CloudHub application catalog.
// The snapshot is immutable for the duration of a run.
type Application struct {
	ID       string `json:"id,omitempty"`
	Domain   string `json:"domain"`
	Status   string `json:"status,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// ArtifactLocation points at the downloadable artifact of one application.
type ArtifactLocation struct {
	URL      string
	Filename string
}

// DownloadOutcome records the result of processing one listed application.
// Exactly one outcome exists per listed application, success or not.
type DownloadOutcome struct {
	ApplicationID   string `json:"application_id,omitempty"`
	ApplicationName string `json:"application_name"`
	Success         bool   `json:"success"`
	Skipped         bool   `json:"skipped,omitempty"`
	BytesWritten    int64  `json:"bytes_written"`
	Error           string `json:"error,omitempty"`
	DestinationPath string `json:"destination_path,omitempty"`
}

// RunReport is the aggregated result of a full export run.
// Succeeded plus Failed always equals TotalApplications.
type RunReport struct {
	RunID             string            `json:"run_id"`
	ControlPlane      ControlPlane      `json:"control_plane"`
	TotalApplications int               `json:"total_applications"`
	Succeeded         int               `json:"succeeded"`
	Failed            int               `json:"failed"`
	Outcomes          []DownloadOutcome `json:"outcomes"`
}
