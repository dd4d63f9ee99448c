package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/stagehand/internal/app"
	"github.com/Iron-Ham/stagehand/internal/config"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/screen"
)

// createLogger builds the debug logger described by cfg. A logger that cannot
// be opened is reported on stderr and replaced by a no-op logger.
func createLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}
	logger, err := logging.NewLogger(cfg.Logging.ResolveDir(), cfg.Logging.LogLevel())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}

// appOptions converts a validated configuration into app options.
func appOptions(cfg *config.Config, fs afero.Fs, logger *logging.Logger) (app.Options, error) {
	mainScreen, err := screen.Parse(cfg.Boot.MainMenuScreen)
	if err != nil {
		return app.Options{}, err
	}
	views, err := cfg.Descriptors()
	if err != nil {
		return app.Options{}, err
	}
	return app.Options{
		Boot: app.Boot{
			MainMenuScene:  cfg.Boot.MainMenuScene,
			MainMenuScreen: mainScreen,
			GameScene:      cfg.Boot.GameScene,
		},
		Scenes:      cfg.SceneSpecs(),
		Views:       views,
		LoadTimeout: cfg.SceneLoader.LoadTimeout(),
		PrefsFs:     fs,
		PrefsPath:   cfg.Prefs.ResolvePath(),
		Metrics:     cfg.Metrics.Enabled,
		Logger:      logger,
	}, nil
}
