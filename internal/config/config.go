package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/prefs"
	"github.com/Iron-Ham/stagehand/internal/scene"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/tui"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// EnvPrefix is the prefix of environment variables that override settings,
// e.g. STAGEHAND_LOGGING_LEVEL.
const EnvPrefix = "STAGEHAND"

// Config represents the complete stagehand configuration
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Boot        BootConfig        `mapstructure:"boot" yaml:"boot"`
	Scenes      []SceneConfig     `mapstructure:"scenes" yaml:"scenes"`
	Views       []ViewConfig      `mapstructure:"views" yaml:"views"`
	SceneLoader SceneLoaderConfig `mapstructure:"scene_loader" yaml:"scene_loader"`
	Prefs       PrefsConfig       `mapstructure:"prefs" yaml:"prefs"`
	Trace       TraceConfig       `mapstructure:"trace" yaml:"trace"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls the structured debug log
type LoggingConfig struct {
	// Enabled writes a log file; when false logs are discarded
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is one of debug, info, warn, error (default: info)
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory holding stagehand.log (default: the config directory)
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// BootConfig names what happens at startup
type BootConfig struct {
	// MainMenuScene is loaded first
	MainMenuScene string `mapstructure:"main_menu_scene" yaml:"main_menu_scene"`
	// MainMenuScreen is shown each time MainMenuScene finishes loading
	MainMenuScreen string `mapstructure:"main_menu_screen" yaml:"main_menu_screen"`
	// GameScene is loaded by the main menu's play action
	GameScene string `mapstructure:"game_scene" yaml:"game_scene"`
}

// SceneConfig describes a scene of the simulated host
type SceneConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	LoadSteps   int    `mapstructure:"load_steps" yaml:"load_steps"`
	UnloadSteps int    `mapstructure:"unload_steps" yaml:"unload_steps"`
}

// ViewConfig describes how a screen is built
type ViewConfig struct {
	Screen   string `mapstructure:"screen" yaml:"screen"`
	Layer    string `mapstructure:"layer" yaml:"layer"`
	Template string `mapstructure:"template" yaml:"template"`
}

// SceneLoaderConfig controls scene transitions and the loop rate
type SceneLoaderConfig struct {
	// LoadTimeoutMs cancels loads that take longer (0 = disabled)
	LoadTimeoutMs int `mapstructure:"load_timeout_ms" yaml:"load_timeout_ms"`
	// TickIntervalMs is the interactive loop period
	TickIntervalMs int `mapstructure:"tick_interval_ms" yaml:"tick_interval_ms"`
}

// PrefsConfig locates the persisted preferences
type PrefsConfig struct {
	// Path of the preferences file (default: <config dir>/prefs.yaml).
	// "memory" keeps preferences for the lifetime of the process only.
	Path string `mapstructure:"path" yaml:"path"`
}

// PrefsInMemory is the PrefsConfig.Path value that disables persistence.
const PrefsInMemory = "memory"

// TraceConfig controls the event tracer
type TraceConfig struct {
	// Enabled records matching events in the debug log
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Patterns are globs over event types, e.g. "scene.*" (empty = all)
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`
}

// MetricsConfig controls the Prometheus collector
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Enabled: false,
			Level:   "info",
		},
		Boot: BootConfig{
			MainMenuScene:  "MainMenu",
			MainMenuScreen: screen.MainMenu.String(),
			GameScene:      "Game",
		},
		Scenes: []SceneConfig{
			{Name: "MainMenu", LoadSteps: 2, UnloadSteps: 1},
			{Name: "Game", LoadSteps: 8, UnloadSteps: 2},
		},
		Views: []ViewConfig{
			{Screen: screen.MainMenu.String(), Layer: view.LayerScreen.String(), Template: tui.TemplateMenu},
			{Screen: screen.Settings.String(), Layer: view.LayerOverlay.String(), Template: tui.TemplateSettings},
		},
		SceneLoader: SceneLoaderConfig{
			LoadTimeoutMs:  0, // Disabled by default
			TickIntervalMs: 50,
		},
		Prefs: PrefsConfig{
			Path: "",
		},
		Trace: TraceConfig{
			Enabled:  false,
			Patterns: []string{"scene.*", "view.*"},
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// LoadTimeout returns the load timeout as a time.Duration (0 means disabled)
func (c *SceneLoaderConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutMs) * time.Millisecond
}

// TickInterval returns the loop period as a time.Duration
func (c *SceneLoaderConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// LogLevel returns the level in the logging package's spelling
func (c *LoggingConfig) LogLevel() string {
	return logging.ParseLevel(c.Level)
}

// ResolveDir returns the log directory, defaulting to the config directory
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir == "" {
		return ConfigDir()
	}
	return expandHome(c.Dir)
}

// ResolvePath returns the preferences file path, or "" when preferences are
// kept in memory.
func (p *PrefsConfig) ResolvePath() string {
	switch p.Path {
	case PrefsInMemory:
		return ""
	case "":
		return filepath.Join(ConfigDir(), prefs.FileName)
	}
	return expandHome(p.Path)
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// SceneSpecs converts the scene catalogue for the simulated host
func (c *Config) SceneSpecs() []scene.SceneSpec {
	specs := make([]scene.SceneSpec, len(c.Scenes))
	for i, s := range c.Scenes {
		specs[i] = scene.SceneSpec{Name: s.Name, LoadSteps: s.LoadSteps, UnloadSteps: s.UnloadSteps}
	}
	return specs
}

// SceneNames returns the catalogue's scene names in order
func (c *Config) SceneNames() []string {
	names := make([]string, len(c.Scenes))
	for i, s := range c.Scenes {
		names[i] = s.Name
	}
	return names
}

// Descriptors converts the view table. Call Validate first; invalid entries
// are returned as errors here too.
func (c *Config) Descriptors() ([]view.Descriptor, error) {
	out := make([]view.Descriptor, 0, len(c.Views))
	for _, v := range c.Views {
		id, err := screen.Parse(v.Screen)
		if err != nil {
			return nil, err
		}
		layer, err := view.ParseLayer(v.Layer)
		if err != nil {
			return nil, err
		}
		out = append(out, view.Descriptor{Screen: id, Layer: layer, Template: v.Template})
	}
	return out, nil
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Boot defaults
	viper.SetDefault("boot.main_menu_scene", defaults.Boot.MainMenuScene)
	viper.SetDefault("boot.main_menu_screen", defaults.Boot.MainMenuScreen)
	viper.SetDefault("boot.game_scene", defaults.Boot.GameScene)

	// Catalogue defaults
	viper.SetDefault("scenes", defaults.Scenes)
	viper.SetDefault("views", defaults.Views)

	// Scene loader defaults
	viper.SetDefault("scene_loader.load_timeout_ms", defaults.SceneLoader.LoadTimeoutMs)
	viper.SetDefault("scene_loader.tick_interval_ms", defaults.SceneLoader.TickIntervalMs)

	// Prefs defaults
	viper.SetDefault("prefs.path", defaults.Prefs.Path)

	// Trace defaults
	viper.SetDefault("trace.enabled", defaults.Trace.Enabled)
	viper.SetDefault("trace.patterns", defaults.Trace.Patterns)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// Watch reloads the configuration whenever the config file changes and
// passes every valid result to onChange. Invalid edits are logged and
// ignored.
func Watch(logger *logging.Logger, onChange func(*Config)) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithComponent("config")

	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Load()
		if err != nil {
			logger.Warn("ignoring invalid config change", "file", e.Name, "error", err)
			return
		}
		logger.Info("config reloaded", "file", e.Name, "op", e.Op.String())
		onChange(cfg)
	})
	viper.WatchConfig()
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "stagehand")
	}
	// Fall back to ~/.config/stagehand
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stagehand"
	}
	return filepath.Join(home, ".config", "stagehand")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
