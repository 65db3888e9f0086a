package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"anypoint-export/internal/app"
)

func newAppService() app.Service {
	return app.NewService()
}

// platformFromConfig assembles the platform credentials. Credentials come
// from the environment or a .env file only; the control plane may also be
// set by flag.
func platformFromConfig(cmd *cobra.Command, controlPlaneFlag string) app.PlatformConfig {
	return app.PlatformConfig{
		ClientID:       viper.GetString("anypoint_client_id"),
		ClientSecret:   viper.GetString("anypoint_client_secret"),
		OrganizationID: viper.GetString("anypoint_org_id"),
		EnvironmentID:  viper.GetString("anypoint_env_id"),
		ControlPlane:   resolveString(cmd, controlPlaneFlag, "anypoint_control_plane", "control-plane"),
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
