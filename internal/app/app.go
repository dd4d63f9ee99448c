// Package app assembles the orchestration core: it installs the services in
// declared order, runs the boot flow and drives the per-tick work.
package app

import (
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/metrics"
	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/scene"
	"github.com/Iron-Ham/stagehand/internal/scheduler"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/tui"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// Boot names what the boot flow loads and shows.
type Boot struct {
	MainMenuScene  string
	MainMenuScreen screen.ID
	GameScene      string
}

// DefaultBoot returns the stock boot flow.
func DefaultBoot() Boot {
	return Boot{
		MainMenuScene:  "MainMenu",
		MainMenuScreen: screen.MainMenu,
		GameScene:      "Game",
	}
}

// DefaultScenes returns the stock scene catalogue.
func DefaultScenes() []scene.SceneSpec {
	return []scene.SceneSpec{
		{Name: "MainMenu", LoadSteps: 2, UnloadSteps: 1},
		{Name: "Game", LoadSteps: 8, UnloadSteps: 2},
	}
}

// DefaultViews returns the stock view descriptors.
func DefaultViews() []view.Descriptor {
	return []view.Descriptor{
		{Screen: screen.MainMenu, Layer: view.LayerScreen, Template: tui.TemplateMenu},
		{Screen: screen.Settings, Layer: view.LayerOverlay, Template: tui.TemplateSettings},
	}
}

// Options configures an App. Zero values select the defaults.
type Options struct {
	Boot        Boot
	Scenes      []scene.SceneSpec
	Views       []view.Descriptor
	LoadTimeout time.Duration

	// PrefsFs and PrefsPath locate the preferences file. An empty path keeps
	// preferences in memory.
	PrefsFs   afero.Fs
	PrefsPath string

	Metrics bool

	// Factory builds views; it defaults to the terminal widget factory.
	Factory view.Factory
	Stage   *tui.Stage

	Logger *logging.Logger
}

// App owns the services and the loop state shared by every host.
type App struct {
	opts   Options
	logger *logging.Logger

	bus      *event.Bus
	services *registry.Registry
	host     *scene.SimulatedHost
	sched    *scheduler.Scheduler
	stage    *tui.Stage

	installers *registry.Installers
	scenes     *scene.Orchestrator
	views      *view.Orchestrator
	metrics    *metrics.Collector

	bootSub string
	started bool
}

// New creates an App. Nothing is installed until Start.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	if opts.Boot == (Boot{}) {
		opts.Boot = DefaultBoot()
	}
	if len(opts.Scenes) == 0 {
		opts.Scenes = DefaultScenes()
	}
	if len(opts.Views) == 0 {
		opts.Views = DefaultViews()
	}
	if opts.PrefsFs == nil {
		opts.PrefsFs = afero.NewOsFs()
	}
	if opts.Stage == nil {
		opts.Stage = tui.NewStage()
	}
	if opts.Factory == nil {
		opts.Factory = tui.NewFactory(opts.Logger)
	}

	a := &App{
		opts:     opts,
		logger:   opts.Logger.WithComponent("app"),
		bus:      event.NewBus(opts.Logger),
		services: registry.New(opts.Logger),
		host:     scene.NewSimulatedHost(opts.Scenes...),
		sched:    scheduler.New(opts.Logger),
		stage:    opts.Stage,
	}
	a.installers = registry.NewInstallers(opts.Logger, a.installerList()...)
	return a
}

// Bus returns the event bus.
func (a *App) Bus() *event.Bus { return a.bus }

// Services returns the service registry.
func (a *App) Services() *registry.Registry { return a.services }

// Host returns the simulated scene host.
func (a *App) Host() *scene.SimulatedHost { return a.host }

// Stage returns the terminal stage views are parented into.
func (a *App) Stage() *tui.Stage { return a.stage }

// Scenes returns the scene orchestrator, or nil before Start.
func (a *App) Scenes() *scene.Orchestrator { return a.scenes }

// Views returns the view orchestrator, or nil before Start.
func (a *App) Views() *view.Orchestrator { return a.views }

// Metrics returns the metrics collector, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Collector { return a.metrics }

// Installed returns the installers that succeeded, in declared order.
func (a *App) Installed() []string { return a.installers.Installed() }

// Transition returns the current scene transition, if any.
func (a *App) Transition() (scene.Transition, bool) {
	if a.scenes == nil {
		return scene.Transition{}, false
	}
	return a.scenes.Current()
}

// Tick advances the host's pending operations and then steps the
// scheduler once.
func (a *App) Tick() {
	a.host.Advance()
	a.sched.Tick()
}

// Idle reports whether no transition or host operation is pending.
func (a *App) Idle() bool {
	return a.sched.Len() == 0 && a.host.Pending() == 0
}

// RunUntilIdle ticks until Idle or until maxTicks ticks have run. It returns
// the number of ticks and scheduler.ErrNotIdle when the limit was hit.
func (a *App) RunUntilIdle(maxTicks int) (int, error) {
	for n := 0; n < maxTicks; n++ {
		if a.Idle() {
			return n, nil
		}
		a.Tick()
	}
	if a.Idle() {
		return maxTicks, nil
	}
	return maxTicks, scheduler.ErrNotIdle
}
