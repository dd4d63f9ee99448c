package app

import (
	"github.com/Iron-Ham/stagehand/internal/audio"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/localization"
	"github.com/Iron-Ham/stagehand/internal/metrics"
	"github.com/Iron-Ham/stagehand/internal/prefs"
	"github.com/Iron-Ham/stagehand/internal/presenter"
	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/scene"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// Installer names, in declared order.
const (
	InstallerEventBus     = "event-bus"
	InstallerPrefs        = "preferences"
	InstallerAudio        = "audio"
	InstallerLocalization = "localization"
	InstallerMetrics      = "metrics"
	InstallerScenes       = "scene-loader"
	InstallerViews        = "ui-manager"
)

func (a *App) installerList() []registry.Installer {
	list := []registry.Installer{
		registry.Func{
			InstallerName: InstallerEventBus,
			InstallFunc: func(r *registry.Registry) error {
				registry.Register(r, a.bus)
				return nil
			},
			UninstallFunc: func(r *registry.Registry) { registry.Unregister[*event.Bus](r) },
		},
		registry.Func{
			InstallerName: InstallerPrefs,
			InstallFunc:   a.installPrefs,
			UninstallFunc: func(r *registry.Registry) { registry.Unregister[*prefs.Store](r) },
		},
		registry.Func{
			InstallerName: InstallerAudio,
			InstallFunc: func(r *registry.Registry) error {
				bus, err := registry.Get[*event.Bus](r)
				if err != nil {
					return err
				}
				registry.Register[audio.Manager](r, audio.NewService(bus, a.optionalPrefs(r), a.opts.Logger))
				return nil
			},
			UninstallFunc: func(r *registry.Registry) { registry.Unregister[audio.Manager](r) },
		},
		registry.Func{
			InstallerName: InstallerLocalization,
			InstallFunc: func(r *registry.Registry) error {
				bus, err := registry.Get[*event.Bus](r)
				if err != nil {
					return err
				}
				registry.Register[localization.Switcher](r, localization.NewService(bus, a.optionalPrefs(r), a.opts.Logger))
				return nil
			},
			UninstallFunc: func(r *registry.Registry) { registry.Unregister[localization.Switcher](r) },
		},
	}

	if a.opts.Metrics {
		list = append(list, registry.Func{
			InstallerName: InstallerMetrics,
			InstallFunc:   a.installMetrics,
			UninstallFunc: func(r *registry.Registry) {
				if a.metrics != nil {
					a.metrics.Stop()
				}
				registry.Unregister[*metrics.Collector](r)
			},
		})
	}

	return append(list,
		registry.Func{
			InstallerName: InstallerScenes,
			InstallFunc:   a.installScenes,
			UninstallFunc: func(r *registry.Registry) {
				if a.scenes != nil {
					a.scenes.Stop()
				}
				registry.Unregister[*scene.Orchestrator](r)
			},
		},
		registry.Func{
			InstallerName: InstallerViews,
			InstallFunc:   a.installViews,
			UninstallFunc: func(r *registry.Registry) {
				if a.views != nil {
					a.views.Stop()
				}
				registry.Unregister[*view.Orchestrator](r)
			},
		},
	)
}

func (a *App) installPrefs(r *registry.Registry) error {
	if a.opts.PrefsPath == "" {
		registry.Register(r, prefs.Memory(a.opts.Logger))
		return nil
	}
	store, err := prefs.Open(a.opts.PrefsFs, a.opts.PrefsPath, a.opts.Logger)
	if err != nil {
		return err
	}
	registry.Register(r, store)
	return nil
}

// optionalPrefs returns the installed store or nil, which keeps the
// collaborators in memory.
func (a *App) optionalPrefs(r *registry.Registry) *prefs.Store {
	if !registry.Has[*prefs.Store](r) {
		return nil
	}
	store, _ := registry.Get[*prefs.Store](r)
	return store
}

func (a *App) installMetrics(r *registry.Registry) error {
	bus, err := registry.Get[*event.Bus](r)
	if err != nil {
		return err
	}
	a.metrics = metrics.NewCollector(bus, a.opts.Logger)
	a.metrics.Start()
	registry.Register(r, a.metrics)
	return nil
}

func (a *App) installScenes(r *registry.Registry) error {
	bus, err := registry.Get[*event.Bus](r)
	if err != nil {
		return err
	}
	a.scenes = scene.New(bus, a.host, a.sched, scene.Config{LoadTimeout: a.opts.LoadTimeout}, a.opts.Logger)
	a.scenes.Start()
	registry.Register(r, a.scenes)
	return nil
}

func (a *App) installViews(r *registry.Registry) error {
	bus, err := registry.Get[*event.Bus](r)
	if err != nil {
		return err
	}
	presenters := presenter.NewFactory(presenter.Options{
		GameScene: a.opts.Boot.GameScene,
		Logger:    a.opts.Logger,
	})
	views, err := view.New(view.Config{
		Descriptors: a.opts.Views,
		Root:        a.stage.Root(),
	}, bus, r, a.opts.Factory, presenters, a.opts.Logger)
	if err != nil {
		return err
	}
	views.SetAnchors(a.stage)
	views.Start()
	a.views = views
	registry.Register(r, views)
	return nil
}
