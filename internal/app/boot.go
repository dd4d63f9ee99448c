package app

import (
	"github.com/Iron-Ham/stagehand/internal/event"
)

// Start installs every service in declared order and runs the boot flow:
// the main menu scene is requested, and each time it finishes loading the
// main menu screen is shown. Calling Start twice is a no-op.
func (a *App) Start() {
	if a.started {
		return
	}
	a.started = true

	n := a.installers.InstallAll(a.services)
	a.logger.Info("services installed", "installed", n, "services", a.services.Len())

	boot := a.opts.Boot
	a.bootSub = event.On(a.bus, func(e event.SceneLoadCompleted) {
		if e.Scene != boot.MainMenuScene {
			return
		}
		a.bus.Publish(event.ShowView{Screen: boot.MainMenuScreen.String()})
	})
	a.bus.Publish(event.NewLoadSceneRequest(boot.MainMenuScene))
}

// Shutdown stops the boot flow and uninstalls every service in declared
// order. Pending transitions are canceled without events.
func (a *App) Shutdown() {
	if !a.started {
		return
	}
	a.started = false

	a.bus.Unsubscribe(a.bootSub)
	a.bootSub = ""
	a.installers.UninstallAll(a.services)
	a.sched.CancelAll()
	a.logger.Info("shutdown complete")
}
