package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/Iron-Ham/stagehand/internal/cmd/config"
	"github.com/Iron-Ham/stagehand/internal/cmd/observability"
	"github.com/Iron-Ham/stagehand/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Event-driven scene and view orchestration",
	Long: `Stagehand drives scene transitions and screen lifecycles from events
published on a single bus. Services are installed in order at boot, the
main menu scene is loaded, and its screen is shown once loading completes.

Use 'stagehand run' for the interactive terminal UI or 'stagehand script'
to replay commands headlessly and print the resulting event trace.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/stagehand/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(eventsCmd)
	configcmd.Register(rootCmd)
	observability.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/stagehand")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// Replace dots with underscores for nested keys in env vars
	// e.g., STAGEHAND_SCENE_LOADER_LOAD_TIMEOUT_MS for scene_loader.load_timeout_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
