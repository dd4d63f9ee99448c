package presenter

import (
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// MainMenuView is the view contract of the main menu screen. Passing nil
// removes a callback.
type MainMenuView interface {
	view.View
	OnPlay(fn func())
	OnSettings(fn func())
}

// MainMenu opens the settings screen and starts the game scene.
type MainMenu struct {
	base
	view      MainMenuView
	gameScene string
	bound     bool
}

// NewMainMenu binds a main menu presenter to v. A view without the main menu
// callbacks leaves the presenter inert.
func NewMainMenu(v view.View, services *registry.Registry, gameScene string, logger *logging.Logger) *MainMenu {
	if logger == nil {
		logger = logging.NopLogger()
	}
	p := &MainMenu{base: newBase(services, logger), gameScene: gameScene}
	mv, ok := v.(MainMenuView)
	if !ok {
		logger.Error("view does not support the main menu contract")
		return p
	}
	p.view = mv
	return p
}

func (p *MainMenu) Initialize() {
	p.logger.Debug("main menu presenter initialized", "game_scene", p.gameScene)
}

func (p *MainMenu) SubscribeEvents() {
	if p.view == nil || p.bound {
		return
	}
	p.view.OnPlay(p.play)
	p.view.OnSettings(p.openSettings)
	p.bound = true
}

func (p *MainMenu) UnsubscribeEvents() {
	if p.view == nil || !p.bound {
		return
	}
	p.view.OnPlay(nil)
	p.view.OnSettings(nil)
	p.bound = false
}

func (p *MainMenu) Dispose() {
	p.UnsubscribeEvents()
}

func (p *MainMenu) play() {
	p.publish(event.NewLoadSceneRequest(p.gameScene))
}

func (p *MainMenu) openSettings() {
	p.publish(event.ShowView{Screen: screen.Settings.String()})
}
