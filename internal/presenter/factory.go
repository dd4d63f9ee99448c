// Package presenter contains the behavior controllers bound to views. Each
// screen.ID has exactly one presenter; NewFactory maps all of them.
package presenter

import (
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// DefaultGameScene is the scene the main menu's play action loads.
const DefaultGameScene = "Game"

// Options configures the presenters built by NewFactory.
type Options struct {
	GameScene string
	Logger    *logging.Logger
}

// NewFactory returns a presenter factory that covers every screen.ID.
func NewFactory(opts Options) *view.PresenterFactory {
	if opts.GameScene == "" {
		opts.GameScene = DefaultGameScene
	}
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	logger := opts.Logger.WithComponent("presenter")

	return view.NewPresenterFactory(map[screen.ID]view.PresenterConstructor{
		screen.MainMenu: func(v view.View, services *registry.Registry) view.Presenter {
			return NewMainMenu(v, services, opts.GameScene, logger.WithScreen(screen.MainMenu.String()))
		},
		screen.Settings: func(v view.View, services *registry.Registry) view.Presenter {
			return NewSettings(v, services, logger.WithScreen(screen.Settings.String()))
		},
	})
}

// base holds what every presenter shares: the bus it publishes on.
type base struct {
	bus    *event.Bus
	logger *logging.Logger
}

func newBase(services *registry.Registry, logger *logging.Logger) base {
	bus, err := registry.Get[*event.Bus](services)
	if err != nil {
		logger.Error("event bus unavailable, presenter will not publish", "error", err)
	}
	return base{bus: bus, logger: logger}
}

func (b base) publish(e event.Event) {
	if b.bus == nil {
		b.logger.Warn("dropped event, no bus", "event_type", e.EventType())
		return
	}
	b.bus.Publish(e)
}
