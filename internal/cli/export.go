package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"anypoint-export/internal/app"
)

type exportOptions struct {
	OutputDir       string
	ControlPlane    string
	Workers         int
	HTTPTimeoutSec  int
	Retries         int
	RetryDelayMs    int
	EndpointLogging bool
}

func newExportCommand() *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every deployed application artifact to a run directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", ".", "Directory to create the run directory in")
	cmd.Flags().StringVar(&opts.ControlPlane, "control-plane", "", "Control plane (us, eu1, or gov)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Concurrent download workers (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().IntVar(&opts.Retries, "retries", 3, "Retry attempts for transient failures (0 = default)")
	cmd.Flags().IntVar(&opts.RetryDelayMs, "retry-delay-ms", 1000, "Retry base delay in ms (0 = default)")
	cmd.Flags().BoolVar(&opts.EndpointLogging, "endpoint-logging", true, "Log each endpoint call")
	_ = viper.BindPFlag("output_dir", cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("anypoint_control_plane", cmd.Flags().Lookup("control-plane"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("retries", cmd.Flags().Lookup("retries"))
	_ = viper.BindPFlag("retry_delay_ms", cmd.Flags().Lookup("retry-delay-ms"))
	_ = viper.BindPFlag("enable_endpoint_logging", cmd.Flags().Lookup("endpoint-logging"))
	return cmd
}

func runExport(cmd *cobra.Command, opts exportOptions) error {
	service := newAppService()
	result, err := service.Export(cmd.Context(), app.ExportRequest{
		Platform:        platformFromConfig(cmd, opts.ControlPlane),
		OutputDir:       resolveString(cmd, opts.OutputDir, "output_dir", "output-dir"),
		Workers:         resolveInt(cmd, opts.Workers, "workers", "workers"),
		HTTPTimeoutSec:  resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout_sec", "http-timeout"),
		Retries:         resolveInt(cmd, opts.Retries, "retries", "retries"),
		RetryDelayMs:    resolveInt(cmd, opts.RetryDelayMs, "retry_delay_ms", "retry-delay-ms"),
		EndpointLogging: resolveBool(cmd, opts.EndpointLogging, "enable_endpoint_logging", "endpoint-logging"),
	})
	if err != nil {
		if result.RunDir != "" && result.Report.TotalApplications > 0 {
			log.Warn().Str("reason", errorMessage(err)).Msg("run did not complete")
			printSummary(result)
		}
		return err
	}
	printSummary(result)
	return nil
}

func printSummary(result app.ExportResult) {
	report := result.Report
	fmt.Printf("run directory: %s\n", result.RunDir)
	fmt.Printf("applications: %d (succeeded=%d failed=%d)\n",
		report.TotalApplications, report.Succeeded, report.Failed)
	for _, outcome := range report.Outcomes {
		if outcome.Success {
			continue
		}
		fmt.Printf("- %s: %s\n", outcome.ApplicationName, outcome.Error)
	}
}
