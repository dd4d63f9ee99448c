// Package scene drives asynchronous, cancellable scene transitions.
//
// The Orchestrator consumes scene request events from the bus, asks a Host to
// begin the work, and polls the resulting operation from a cooperative
// scheduler task, republishing lifecycle events:
//
//	LoadSceneRequest -> SceneLoadStarted -> SceneLoadProgress* -> SceneLoadCompleted
//	                                     \-> SceneLoadCanceled (superseded or timed out)
//	UnloadSceneRequest -> SceneUnloadCompleted
//
// Each load moves through Idle -> Loading -> {Completed, Canceled, Failed};
// a terminal state leaves the orchestrator ready for the next request.
//
// A load that supersedes one still in flight cancels it and publishes
// SceneLoadCanceled for the old scene strictly before SceneLoadStarted for
// the new one. The cancelled task notices at its next suspend point and exits
// without publishing anything further. Loads that do not ask to cancel their
// predecessor run concurrently with it.
package scene

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/scheduler"
)

// State is the state of a transition.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateCompleted
	StateCanceled
	StateFailed
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateCompleted:
		return "completed"
	case StateCanceled:
		return "canceled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind distinguishes loads from unloads.
type Kind int

const (
	KindLoad Kind = iota
	KindUnload
)

// String returns the kind's name.
func (k Kind) String() string {
	if k == KindUnload {
		return "unload"
	}
	return "load"
}

// Transition is a snapshot of one scene transition.
type Transition struct {
	ID             string
	Scene          string
	Kind           Kind
	Additive       bool
	ActivateOnLoad bool
	State          State
	Progress       float64
	StartedAt      time.Time
}

// Config holds orchestrator settings.
type Config struct {
	// LoadTimeout cancels a load that has not completed within this duration.
	// Zero disables the timeout.
	LoadTimeout time.Duration
}

// transition is the orchestrator's live record of a Transition.
type transition struct {
	Transition
	ctx        context.Context
	cancel     context.CancelFunc
	op         Operation
	superseded bool
	logger     *logging.Logger
}

// Orchestrator runs scene transitions in response to bus events.
type Orchestrator struct {
	bus    *event.Bus
	host   Host
	sched  *scheduler.Scheduler
	cfg    Config
	logger *logging.Logger

	mu      sync.Mutex
	base    context.Context
	stop    context.CancelFunc
	current *transition
	live    []*transition
	subIDs  []string
}

// New creates an orchestrator. It does not react to bus events until Start.
func New(bus *event.Bus, host Host, sched *scheduler.Scheduler, cfg Config, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	base, stop := context.WithCancel(context.Background())
	return &Orchestrator{
		bus:    bus,
		host:   host,
		sched:  sched,
		cfg:    cfg,
		logger: logger.WithComponent("scene"),
		base:   base,
		stop:   stop,
	}
}

// Start subscribes to the scene request events. Calling Start twice is a no-op.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.subIDs) > 0 {
		return
	}
	if o.base.Err() != nil {
		o.base, o.stop = context.WithCancel(context.Background())
	}

	o.subIDs = []string{
		event.On(o.bus, func(e event.LoadSceneRequest) {
			if err := o.Load(e); err != nil {
				o.logger.Error("scene load failed", "scene", e.Scene, "error", err)
			}
		}),
		event.On(o.bus, func(e event.UnloadSceneRequest) {
			if err := o.Unload(e.Scene); err != nil {
				o.logger.Error("scene unload failed", "scene", e.Scene, "error", err)
			}
		}),
		event.On(o.bus, func(event.ReloadActiveRequest) {
			if err := o.ReloadActive(); err != nil {
				o.logger.Error("scene reload failed", "error", err)
			}
		}),
		event.On(o.bus, func(e event.ActivateSceneRequest) {
			if err := o.Activate(e.Scene); err != nil {
				o.logger.Warn("scene activation ignored", "scene", e.Scene, "error", err)
			}
		}),
	}
	o.logger.Info("scene orchestrator started")
}

// Stop unsubscribes from the bus and cancels every live transition without
// publishing further events.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	ids := o.subIDs
	o.subIDs = nil
	live := slices.Clone(o.live)
	for _, tr := range live {
		tr.superseded = true
		if tr.State == StateLoading {
			tr.State = StateCanceled
		}
	}
	o.mu.Unlock()

	for _, id := range ids {
		o.bus.Unsubscribe(id)
	}
	for _, tr := range live {
		o.abort(tr)
	}
	o.stop()
	o.logger.Info("scene orchestrator stopped", "canceled", len(live))
}

// Load begins a scene load.
//
// When the current load is still in flight and req.CancelPrevious is set, the
// current load is cancelled and SceneLoadCanceled is published for it before
// SceneLoadStarted is published for req. If the host cannot begin the load the
// transition fails: the error is returned and neither SceneLoadCompleted nor
// SceneLoadCanceled is published.
func (o *Orchestrator) Load(req event.LoadSceneRequest) error {
	tr := o.newTransition(req.Scene, KindLoad, o.cfg.LoadTimeout)
	tr.Additive = req.Additive
	tr.ActivateOnLoad = req.ActivateOnLoad

	o.mu.Lock()
	var prev *transition
	if cur := o.current; cur != nil && cur.Kind == KindLoad && cur.State == StateLoading && req.CancelPrevious {
		cur.superseded = true
		cur.State = StateCanceled
		prev = cur
	}
	o.current = tr
	o.live = append(o.live, tr)
	o.mu.Unlock()

	if prev != nil {
		o.abort(prev)
		prev.logger.Info("scene load superseded", "by", req.Scene)
		o.bus.Publish(event.SceneLoadCanceled{Scene: prev.Scene})
	}

	tr.logger.Info("scene load started", "additive", req.Additive, "activate_on_load", req.ActivateOnLoad)
	o.bus.Publish(event.SceneLoadStarted{Scene: req.Scene, Additive: req.Additive})

	op, err := o.host.BeginLoad(req.Scene, req.Additive)
	if err != nil {
		o.finish(tr, StateFailed)
		return errors.NewSceneError("begin load", err).WithScene(req.Scene).WithTransition(tr.ID)
	}
	op.SetAllowActivation(req.ActivateOnLoad)

	o.mu.Lock()
	tr.op = op
	superseded := tr.superseded
	o.mu.Unlock()

	// A SceneLoadStarted handler may have superseded this load before the
	// host operation existed.
	if superseded {
		o.abort(tr)
		o.finish(tr, StateCanceled)
		tr.logger.Debug("load superseded before it began")
		return nil
	}

	o.sched.Go(tr.ctx, "load "+req.Scene, o.loadStep(tr, op), o.loadDone(tr))
	return nil
}

// loadStep publishes progress until the operation is done. Progress is
// clamped to [0,1] and never decreases.
func (o *Orchestrator) loadStep(tr *transition, op LoadOperation) scheduler.StepFunc {
	return func(ctx context.Context) (bool, error) {
		if op.Done() {
			o.mu.Lock()
			tr.Progress = 1
			o.mu.Unlock()
			return true, nil
		}

		o.mu.Lock()
		tr.Progress = max(tr.Progress, clamp(op.Progress()))
		progress := tr.Progress
		o.mu.Unlock()

		o.bus.Publish(event.SceneLoadProgress{Scene: tr.Scene, Progress: progress})
		return false, nil
	}
}

func (o *Orchestrator) loadDone(tr *transition) scheduler.DoneFunc {
	return func(err error) {
		o.mu.Lock()
		superseded := tr.superseded
		o.mu.Unlock()

		switch {
		case err == nil:
			o.finish(tr, StateCompleted)
			tr.logger.Info("scene load completed")
			o.bus.Publish(event.SceneLoadCompleted{Scene: tr.Scene, Additive: tr.Additive})

		case superseded:
			o.finish(tr, StateCanceled)
			tr.logger.Debug("superseded load exited")

		case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, errors.ErrTimeout):
			o.finish(tr, StateCanceled)
			o.abort(tr)
			tr.logger.Warn("scene load timed out", "timeout", o.cfg.LoadTimeout.String())
			o.bus.Publish(event.SceneLoadCanceled{Scene: tr.Scene})

		case errors.IsCancellation(err):
			o.finish(tr, StateCanceled)
			o.abort(tr)
			tr.logger.Debug("scene load abandoned", "reason", err.Error())

		default:
			o.finish(tr, StateFailed)
			tr.logger.Error("scene load failed", "error", err)
		}
	}
}

// Unload begins unloading scene. SceneUnloadCompleted is published once the
// host finishes.
func (o *Orchestrator) Unload(scene string) error {
	tr := o.newTransition(scene, KindUnload, 0)

	op, err := o.host.BeginUnload(scene)
	if err != nil {
		tr.cancel()
		return errors.NewSceneError("begin unload", err).WithScene(scene).WithTransition(tr.ID)
	}

	o.mu.Lock()
	tr.op = op
	o.live = append(o.live, tr)
	o.mu.Unlock()

	tr.logger.Info("scene unload started")
	o.sched.Go(tr.ctx, "unload "+scene, func(ctx context.Context) (bool, error) {
		return op.Done(), nil
	}, func(err error) {
		if err != nil {
			o.finish(tr, StateCanceled)
			tr.logger.Debug("scene unload abandoned", "reason", err.Error())
			return
		}
		o.finish(tr, StateCompleted)
		tr.logger.Info("scene unload completed")
		o.bus.Publish(event.SceneUnloadCompleted{Scene: scene})
	})
	return nil
}

// ReloadActive reloads the host's active scene exclusively, superseding any
// load in flight.
func (o *Orchestrator) ReloadActive() error {
	active := o.host.ActiveScene()
	if active == "" {
		return errors.NewSceneError("reload", errors.ErrNoActiveScene)
	}
	return o.Load(event.LoadSceneRequest{
		Scene:          active,
		Additive:       false,
		ActivateOnLoad: true,
		CancelPrevious: true,
	})
}

// Activate allows the most recent in-flight load of scene to activate.
func (o *Orchestrator) Activate(scene string) error {
	o.mu.Lock()
	var target *transition
	for i := len(o.live) - 1; i >= 0; i-- {
		tr := o.live[i]
		if tr.Kind == KindLoad && tr.Scene == scene && tr.State == StateLoading && tr.op != nil {
			target = tr
			break
		}
	}
	if target != nil {
		target.ActivateOnLoad = true
	}
	o.mu.Unlock()

	if target == nil {
		return errors.NewNotFoundError("loading scene", scene)
	}
	target.op.(LoadOperation).SetAllowActivation(true)
	target.logger.Info("scene activation allowed")
	return nil
}

// Current returns the most recent load transition, if any.
func (o *Orchestrator) Current() (Transition, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return Transition{}, false
	}
	return o.current.Transition, true
}

// State returns StateLoading while the most recent load is in flight and
// StateIdle otherwise.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil && o.current.State == StateLoading {
		return StateLoading
	}
	return StateIdle
}

// Live returns snapshots of every transition still in flight, oldest first.
func (o *Orchestrator) Live() []Transition {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Transition, 0, len(o.live))
	for _, tr := range o.live {
		out = append(out, tr.Transition)
	}
	return out
}

func (o *Orchestrator) newTransition(scene string, kind Kind, timeout time.Duration) *transition {
	o.mu.Lock()
	base := o.base
	o.mu.Unlock()

	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(base, timeout)
	} else {
		ctx, cancel = context.WithCancel(base)
	}

	id := uuid.NewString()
	return &transition{
		Transition: Transition{
			ID:        id,
			Scene:     scene,
			Kind:      kind,
			State:     StateLoading,
			StartedAt: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
		logger: o.logger.WithScene(scene).WithTransition(id).With("kind", kind.String()),
	}
}

// finish records a terminal state and drops tr from the live set.
func (o *Orchestrator) finish(tr *transition, state State) {
	o.mu.Lock()
	if tr.State == StateLoading || state == StateCanceled {
		tr.State = state
	}
	o.live = slices.DeleteFunc(o.live, func(t *transition) bool { return t == tr })
	o.mu.Unlock()
	tr.cancel()
}

// abort cancels tr's context and abandons its host operation when supported.
func (o *Orchestrator) abort(tr *transition) {
	tr.cancel()
	o.mu.Lock()
	op := tr.op
	o.mu.Unlock()
	if a, ok := op.(Aborter); ok {
		a.Abort()
	}
}

func clamp(p float64) float64 {
	switch {
	case p < 0 || math.IsNaN(p):
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// String renders a transition for status lines.
func (t Transition) String() string {
	return fmt.Sprintf("%s %s (%s, %.0f%%)", t.Kind, t.Scene, t.State, t.Progress*100)
}
