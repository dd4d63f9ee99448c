package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/tui"
	"github.com/Iron-Ham/stagehand/internal/util"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "scene_loader.tick_interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateScenes()...)
	errors = append(errors, c.validateViews()...)
	errors = append(errors, c.validateBoot()...)
	errors = append(errors, c.validateSceneLoader()...)
	errors = append(errors, c.validateTrace()...)

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

// validateScenes validates the scene catalogue
func (c *Config) validateScenes() []ValidationError {
	var errors []ValidationError

	if len(c.Scenes) == 0 {
		errors = append(errors, ValidationError{
			Field:   "scenes",
			Value:   0,
			Message: "at least one scene is required",
		})
	}

	// Step counts are ticks; keep them small enough to finish interactively
	const maxSteps = 10000
	seen := make(map[string]bool, len(c.Scenes))
	for i, s := range c.Scenes {
		field := fmt.Sprintf("scenes[%d]", i)
		if strings.TrimSpace(s.Name) == "" {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   s.Name,
				Message: "cannot be empty",
			})
		} else if seen[s.Name] {
			errors = append(errors, ValidationError{
				Field:   field + ".name",
				Value:   s.Name,
				Message: "duplicate scene name",
			})
		}
		seen[s.Name] = true

		if s.LoadSteps < 0 || s.LoadSteps > maxSteps {
			errors = append(errors, ValidationError{
				Field:   field + ".load_steps",
				Value:   s.LoadSteps,
				Message: fmt.Sprintf("must be between 0 and %d", maxSteps),
			})
		}
		if s.UnloadSteps < 0 || s.UnloadSteps > maxSteps {
			errors = append(errors, ValidationError{
				Field:   field + ".unload_steps",
				Value:   s.UnloadSteps,
				Message: fmt.Sprintf("must be between 0 and %d", maxSteps),
			})
		}
	}

	return errors
}

// validateViews validates the view table
func (c *Config) validateViews() []ValidationError {
	var errors []ValidationError

	seen := make(map[screen.ID]bool, len(c.Views))
	for i, v := range c.Views {
		field := fmt.Sprintf("views[%d]", i)

		id, err := screen.Parse(v.Screen)
		if err != nil {
			errors = append(errors, ValidationError{
				Field:   field + ".screen",
				Value:   v.Screen,
				Message: fmt.Sprintf("must be one of: %s%s", strings.Join(screen.Names(), ", "), util.DidYouMean(v.Screen, screen.Names())),
			})
		} else if seen[id] {
			errors = append(errors, ValidationError{
				Field:   field + ".screen",
				Value:   v.Screen,
				Message: "screen is described more than once",
			})
		}
		seen[id] = true

		if _, err := view.ParseLayer(v.Layer); err != nil {
			errors = append(errors, ValidationError{
				Field:   field + ".layer",
				Value:   v.Layer,
				Message: err.Error(),
			})
		}

		if !tui.ValidTemplate(v.Template) {
			errors = append(errors, ValidationError{
				Field:   field + ".template",
				Value:   v.Template,
				Message: fmt.Sprintf("must be one of: %s%s", strings.Join(tui.Templates(), ", "), util.DidYouMean(v.Template, tui.Templates())),
			})
		}
	}

	return errors
}

// validateBoot checks that the boot flow references configured entries
func (c *Config) validateBoot() []ValidationError {
	var errors []ValidationError
	names := c.SceneNames()

	for _, f := range []struct {
		field string
		value string
	}{
		{"boot.main_menu_scene", c.Boot.MainMenuScene},
		{"boot.game_scene", c.Boot.GameScene},
	} {
		if !slices.Contains(names, f.value) {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Value:   f.value,
				Message: "must name a configured scene" + util.DidYouMean(f.value, names),
			})
		}
	}

	id, err := screen.Parse(c.Boot.MainMenuScreen)
	if err != nil {
		errors = append(errors, ValidationError{
			Field:   "boot.main_menu_screen",
			Value:   c.Boot.MainMenuScreen,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(screen.Names(), ", ")),
		})
		return errors
	}
	described := slices.ContainsFunc(c.Views, func(v ViewConfig) bool {
		parsed, err := screen.Parse(v.Screen)
		return err == nil && parsed == id
	})
	if !described {
		errors = append(errors, ValidationError{
			Field:   "boot.main_menu_screen",
			Value:   c.Boot.MainMenuScreen,
			Message: "has no entry in views",
		})
	}

	return errors
}

// validateSceneLoader validates the SceneLoaderConfig
func (c *Config) validateSceneLoader() []ValidationError {
	var errors []ValidationError

	// 0 means disabled, which is valid; negative is invalid
	if c.SceneLoader.LoadTimeoutMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "scene_loader.load_timeout_ms",
			Value:   c.SceneLoader.LoadTimeoutMs,
			Message: "must be non-negative (0 disables timeout)",
		})
	}

	const minTickMs = 1
	const maxTickMs = 1000
	if c.SceneLoader.TickIntervalMs < minTickMs || c.SceneLoader.TickIntervalMs > maxTickMs {
		errors = append(errors, ValidationError{
			Field:   "scene_loader.tick_interval_ms",
			Value:   c.SceneLoader.TickIntervalMs,
			Message: fmt.Sprintf("must be between %d and %d", minTickMs, maxTickMs),
		})
	}

	return errors
}

// validateTrace checks that every pattern compiles
func (c *Config) validateTrace() []ValidationError {
	var errors []ValidationError

	for i, p := range c.Trace.Patterns {
		if _, err := glob.Compile(p, '.'); err != nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("trace.patterns[%d]", i),
				Value:   p,
				Message: "invalid glob pattern",
			})
		}
	}

	return errors
}
