package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"anypoint-export/internal/app"
)

type appsOptions struct {
	ControlPlane    string
	HTTPTimeoutSec  int
	Retries         int
	RetryDelayMs    int
	EndpointLogging bool
}

func newAppsCommand() *cobra.Command {
	opts := appsOptions{}
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List deployed applications without downloading anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApps(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ControlPlane, "control-plane", "", "Control plane (us, eu1, or gov)")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().IntVar(&opts.Retries, "retries", 3, "Retry attempts for transient failures (0 = default)")
	cmd.Flags().IntVar(&opts.RetryDelayMs, "retry-delay-ms", 1000, "Retry base delay in ms (0 = default)")
	cmd.Flags().BoolVar(&opts.EndpointLogging, "endpoint-logging", true, "Log each endpoint call")
	_ = viper.BindPFlag("anypoint_control_plane", cmd.Flags().Lookup("control-plane"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("retries", cmd.Flags().Lookup("retries"))
	_ = viper.BindPFlag("retry_delay_ms", cmd.Flags().Lookup("retry-delay-ms"))
	_ = viper.BindPFlag("enable_endpoint_logging", cmd.Flags().Lookup("endpoint-logging"))
	return cmd
}

func runApps(cmd *cobra.Command, opts appsOptions) error {
	service := newAppService()
	result, err := service.Apps(cmd.Context(), app.AppsRequest{
		Platform:        platformFromConfig(cmd, opts.ControlPlane),
		HTTPTimeoutSec:  resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout_sec", "http-timeout"),
		Retries:         resolveInt(cmd, opts.Retries, "retries", "retries"),
		RetryDelayMs:    resolveInt(cmd, opts.RetryDelayMs, "retry_delay_ms", "retry-delay-ms"),
		EndpointLogging: resolveBool(cmd, opts.EndpointLogging, "enable_endpoint_logging", "endpoint-logging"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("applications: %d\n", len(result.Applications))
	for _, application := range result.Applications {
		fmt.Printf("- %s status=%s filename=%s\n",
			application.Domain, application.Status, application.Filename)
	}
	return nil
}
