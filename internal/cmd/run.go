package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/stagehand/internal/app"
	"github.com/Iron-Ham/stagehand/internal/config"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive terminal UI",
	Long: `Boot the orchestration core and open the terminal UI.

The main menu scene is loaded first and the main menu screen appears once
it completes. Edits to the config file's trace patterns take effect
without a restart.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := createLogger(cfg)
	defer func() { _ = logger.Close() }()

	opts, err := appOptions(cfg, afero.NewOsFs(), logger)
	if err != nil {
		return err
	}
	a := app.New(opts)

	if cfg.Trace.Enabled {
		tracer, err := event.NewTracer(a.Bus(), logger, cfg.Trace.Patterns)
		if err != nil {
			return err
		}
		tracer.Start()
		defer tracer.Stop()

		if viper.ConfigFileUsed() != "" {
			config.Watch(logger, func(updated *config.Config) {
				if err := tracer.SetPatterns(updated.Trace.Patterns); err != nil {
					logger.Warn("keeping previous trace patterns", "error", err)
				}
			})
		}
	}

	a.Start()
	defer a.Shutdown()

	if err := tui.Run(a, a.Stage(), cfg.SceneLoader.TickInterval()); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
