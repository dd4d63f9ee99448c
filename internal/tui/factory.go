package tui

import (
	"fmt"
	"slices"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/util"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// Templates understood by Factory.
const (
	TemplateMenu     = "menu"
	TemplateSettings = "settings"
)

// Templates returns the template names Factory can build.
func Templates() []string {
	return []string{TemplateMenu, TemplateSettings}
}

// Factory builds terminal widgets into stage panels.
type Factory struct {
	logger *logging.Logger
}

// NewFactory creates a widget factory.
func NewFactory(logger *logging.Logger) *Factory {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Factory{logger: logger.WithComponent("tui-factory")}
}

// Instantiate implements view.Factory. The parent must be a Panel.
func (f *Factory) Instantiate(desc view.Descriptor, parent view.Container) (view.Object, error) {
	panel, ok := parent.(*Panel)
	if !ok || panel == nil {
		return nil, fmt.Errorf("unsupported container %T", parent)
	}

	title := desc.Screen.String()
	var w Widget
	switch desc.Template {
	case TemplateMenu:
		w = newMenuView(panel, title)
	case TemplateSettings:
		w = newSettingsView(panel, title)
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown template %q%s", desc.Template, util.DidYouMean(desc.Template, Templates()))).
			WithField("template").
			WithValue(desc.Template)
	}

	panel.add(w)
	f.logger.Debug("widget created", "template", desc.Template, "screen", title, "panel", panel.Name())
	return w, nil
}

// ValidTemplate reports whether name is a known template.
func ValidTemplate(name string) bool {
	return slices.Contains(Templates(), name)
}
