package scene

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	stherrors "github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/scheduler"
)

// harness wires an orchestrator to a simulated host and records every event.
type harness struct {
	t      *testing.T
	bus    *event.Bus
	host   *SimulatedHost
	sched  *scheduler.Scheduler
	orch   *Orchestrator
	logs   *bytes.Buffer
	events []event.Event
}

func newHarness(t *testing.T, cfg Config, specs ...SceneSpec) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := logging.NewWriterLogger(logs, logging.LevelDebug)

	h := &harness{
		t:     t,
		bus:   event.NewBus(logger),
		host:  NewSimulatedHost(specs...),
		sched: scheduler.New(logger),
		logs:  logs,
	}
	h.orch = New(h.bus, h.host, h.sched, cfg, logger)
	h.bus.SubscribeAll(func(e event.Event) {
		h.events = append(h.events, e)
	})
	h.orch.Start()
	t.Cleanup(h.orch.Stop)
	return h
}

// tick advances the host and the scheduler n times.
func (h *harness) tick(n int) {
	for range n {
		h.host.Advance()
		h.sched.Tick()
	}
}

// drain ticks until no task is live.
func (h *harness) drain() {
	h.t.Helper()
	for i := 0; h.sched.Len() > 0; i++ {
		if i > 100 {
			h.t.Fatalf("scheduler did not go idle; live transitions: %v", h.orch.Live())
		}
		h.tick(1)
	}
}

// results returns the traced result events, skipping requests.
func (h *harness) results() []string {
	var out []string
	for _, e := range h.events {
		if strings.HasSuffix(e.EventType(), "_requested") {
			continue
		}
		out = append(out, event.Format(e))
	}
	return out
}

// kinds returns the result event types with progress collapsed to one entry.
func (h *harness) kinds() []string {
	var out []string
	for _, e := range h.events {
		typ := e.EventType()
		if strings.HasSuffix(typ, "_requested") {
			continue
		}
		if typ == event.TypeSceneLoadProgress && len(out) > 0 && out[len(out)-1] == typ {
			continue
		}
		out = append(out, typ)
	}
	return out
}

func (h *harness) progress(scene string) []float64 {
	var out []float64
	for _, e := range h.events {
		if p, ok := e.(event.SceneLoadProgress); ok && p.Scene == scene {
			out = append(out, p.Progress)
		}
	}
	return out
}

func TestLoad_GameEndToEnd(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game", LoadSteps: 4})

	h.bus.Publish(event.LoadSceneRequest{Scene: "Game", Additive: false, ActivateOnLoad: true, CancelPrevious: true})
	h.drain()

	events := h.results()
	if len(events) < 2 {
		t.Fatalf("expected at least Started and Completed, got %v", events)
	}
	if events[0] != "scene.load_started scene=Game additive=false" {
		t.Errorf("first event = %q", events[0])
	}
	if last := events[len(events)-1]; last != "scene.load_completed scene=Game additive=false" {
		t.Errorf("last event = %q", last)
	}
	for _, e := range events[1 : len(events)-1] {
		if !strings.HasPrefix(e, event.TypeSceneLoadProgress) {
			t.Errorf("unexpected event between Started and Completed: %q", e)
		}
	}

	prev := 0.0
	for _, p := range h.progress("Game") {
		if p < 0 || p > 1 {
			t.Errorf("progress %v out of [0,1]", p)
		}
		if p < prev {
			t.Errorf("progress decreased from %v to %v", prev, p)
		}
		prev = p
	}

	if h.host.ActiveScene() != "Game" {
		t.Errorf("ActiveScene() = %q, want Game", h.host.ActiveScene())
	}
	cur, ok := h.orch.Current()
	if !ok || cur.State != StateCompleted || cur.Progress != 1 {
		t.Errorf("Current() = %+v, %v", cur, ok)
	}
	if h.orch.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.orch.State())
	}
}

func TestLoad_CancellationOrdering(t *testing.T) {
	h := newHarness(t, Config{},
		SceneSpec{Name: "A", LoadSteps: 5},
		SceneSpec{Name: "B", LoadSteps: 2},
	)

	h.bus.Publish(event.NewLoadSceneRequest("A"))
	h.tick(1)
	h.bus.Publish(event.NewLoadSceneRequest("B"))
	h.drain()

	want := []string{
		event.TypeSceneLoadStarted,
		event.TypeSceneLoadProgress,
		event.TypeSceneLoadCanceled,
		event.TypeSceneLoadStarted,
		event.TypeSceneLoadProgress,
		event.TypeSceneLoadCompleted,
	}
	if got := h.kinds(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("event kinds = %v\nwant          %v", got, want)
	}

	results := h.results()
	var canceled, startedB int
	for i, e := range results {
		switch e {
		case "scene.load_canceled scene=A":
			canceled = i
		case "scene.load_started scene=B additive=false":
			startedB = i
		}
	}
	if canceled >= startedB {
		t.Errorf("Canceled(A) at %d must precede Started(B) at %d: %v", canceled, startedB, results)
	}
	for _, e := range results[canceled+1:] {
		if strings.Contains(e, "scene=A") {
			t.Errorf("superseded load published %q after cancellation", e)
		}
	}
	if got := h.host.Loaded(); len(got) != 1 || got[0] != "B" {
		t.Errorf("Loaded() = %v, want [B]", got)
	}
}

func TestLoad_SupersededBeforeFirstTick(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "A", LoadSteps: 3}, SceneSpec{Name: "B", LoadSteps: 1})

	h.bus.Publish(event.NewLoadSceneRequest("A"))
	h.bus.Publish(event.NewLoadSceneRequest("B"))
	h.drain()

	want := "scene.load_started scene=A additive=false," +
		"scene.load_canceled scene=A," +
		"scene.load_started scene=B additive=false," +
		"scene.load_completed scene=B additive=false"
	if got := strings.Join(h.results(), ","); got != want {
		t.Errorf("events = %s\nwant     %s", got, want)
	}
}

func TestLoad_SupersededFromStartedHandler(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "A", LoadSteps: 6}, SceneSpec{Name: "B", LoadSteps: 1})
	event.On(h.bus, func(e event.SceneLoadStarted) {
		if e.Scene == "A" {
			h.bus.Publish(event.NewLoadSceneRequest("B"))
		}
	})

	h.bus.Publish(event.NewLoadSceneRequest("A"))
	h.tick(20)

	if got := h.host.ActiveScene(); got != "B" {
		t.Errorf("ActiveScene() = %q, want B", got)
	}
	if got := h.host.Loaded(); len(got) != 1 || got[0] != "B" {
		t.Errorf("Loaded() = %v, want [B]", got)
	}
	if h.host.Pending() != 0 {
		t.Errorf("superseded host operation still pending: %d", h.host.Pending())
	}
	for _, e := range h.results() {
		if e == "scene.load_completed scene=A additive=false" {
			t.Errorf("superseded load completed: %v", h.results())
		}
	}
	if len(h.orch.Live()) != 0 {
		t.Errorf("Live() = %v, want none", h.orch.Live())
	}
}

func TestLoad_CompletedLoadIsNotCanceled(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "A", LoadSteps: 1}, SceneSpec{Name: "B", LoadSteps: 1})

	h.bus.Publish(event.NewLoadSceneRequest("A"))
	h.drain()
	h.bus.Publish(event.NewLoadSceneRequest("B"))
	h.drain()

	for _, e := range h.results() {
		if strings.HasPrefix(e, event.TypeSceneLoadCanceled) {
			t.Errorf("a finished load must not be canceled: %v", h.results())
		}
	}
}

func TestLoad_ConcurrentWithoutCancel(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Base", LoadSteps: 3}, SceneSpec{Name: "HUD", LoadSteps: 2})

	h.bus.Publish(event.NewLoadSceneRequest("Base"))
	h.bus.Publish(event.LoadSceneRequest{Scene: "HUD", Additive: true, ActivateOnLoad: true})

	if n := len(h.orch.Live()); n != 2 {
		t.Fatalf("expected 2 live transitions, got %d", n)
	}
	h.drain()

	var completed []string
	for _, e := range h.events {
		if c, ok := e.(event.SceneLoadCompleted); ok {
			completed = append(completed, c.Scene)
		}
	}
	if strings.Join(completed, ",") != "HUD,Base" {
		t.Errorf("completed = %v, want HUD then Base", completed)
	}
	if got := h.host.Loaded(); strings.Join(got, ",") != "Base" {
		// Base is exclusive and finishes last, replacing HUD.
		t.Errorf("Loaded() = %v, want [Base]", got)
	}
}

func TestLoad_UnknownSceneFails(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game", LoadSteps: 1})

	h.bus.Publish(event.NewLoadSceneRequest("Gmae"))
	h.drain()

	if got := strings.Join(h.results(), ","); got != "scene.load_started scene=Gmae additive=false" {
		t.Errorf("events = %s, want only Started", got)
	}
	cur, _ := h.orch.Current()
	if cur.State != StateFailed {
		t.Errorf("Current().State = %v, want failed", cur.State)
	}
	if h.orch.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.orch.State())
	}
	if !strings.Contains(h.logs.String(), "scene not found") {
		t.Errorf("expected the failure to be logged, got %s", h.logs.String())
	}

	err := h.orch.Load(event.NewLoadSceneRequest("Gmae"))
	if !errors.Is(err, stherrors.ErrSceneNotFound) {
		t.Errorf("Load() error = %v, want ErrSceneNotFound", err)
	}
	var sceneErr *stherrors.SceneError
	if !errors.As(err, &sceneErr) || sceneErr.Scene != "Gmae" || sceneErr.TransitionID == "" {
		t.Errorf("expected a SceneError with context, got %v", err)
	}

	// The orchestrator accepts the next request.
	h.events = nil
	h.bus.Publish(event.NewLoadSceneRequest("Game"))
	h.drain()
	if last := h.results()[len(h.results())-1]; last != "scene.load_completed scene=Game additive=false" {
		t.Errorf("last event = %q", last)
	}
}

func TestLoad_Timeout(t *testing.T) {
	h := newHarness(t, Config{LoadTimeout: time.Millisecond}, SceneSpec{Name: "Slow", LoadSteps: 50})

	h.bus.Publish(event.NewLoadSceneRequest("Slow"))
	time.Sleep(10 * time.Millisecond)
	h.drain()

	want := "scene.load_started scene=Slow additive=false,scene.load_canceled scene=Slow"
	if got := strings.Join(h.results(), ","); got != want {
		t.Errorf("events = %s\nwant     %s", got, want)
	}
	if !strings.Contains(h.logs.String(), "scene load timed out") {
		t.Error("expected a timeout warning")
	}
	cur, _ := h.orch.Current()
	if cur.State != StateCanceled {
		t.Errorf("Current().State = %v, want canceled", cur.State)
	}
	if h.host.Pending() != 0 {
		t.Errorf("timed-out host operation should be aborted, %d pending", h.host.Pending())
	}
}

func TestLoad_SchedulerCancelIsNotTimeout(t *testing.T) {
	h := newHarness(t, Config{LoadTimeout: time.Hour}, SceneSpec{Name: "Game", LoadSteps: 5})

	h.bus.Publish(event.NewLoadSceneRequest("Game"))
	h.tick(1)
	h.sched.CancelAll()
	h.drain()

	for _, e := range h.results() {
		if strings.HasPrefix(e, event.TypeSceneLoadCanceled) {
			t.Errorf("scheduler shutdown should not publish %q", e)
		}
	}
	if strings.Contains(h.logs.String(), "scene load timed out") {
		t.Error("scheduler shutdown was reported as a timeout")
	}
	if !strings.Contains(h.logs.String(), "scene load abandoned") {
		t.Error("expected the abandoned load to be logged")
	}
	cur, _ := h.orch.Current()
	if cur.State != StateCanceled {
		t.Errorf("Current().State = %v, want canceled", cur.State)
	}
	if h.host.Pending() != 0 {
		t.Errorf("abandoned host operation should be aborted, %d pending", h.host.Pending())
	}
}

func TestLoad_ActivationHold(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game", LoadSteps: 2})

	h.bus.Publish(event.LoadSceneRequest{Scene: "Game", ActivateOnLoad: false, CancelPrevious: true})
	h.tick(6)

	for _, e := range h.results() {
		if strings.HasPrefix(e, event.TypeSceneLoadCompleted) {
			t.Fatal("held load must not complete before activation")
		}
	}
	if p := h.progress("Game"); len(p) == 0 || p[len(p)-1] != activationHold {
		t.Errorf("progress = %v, want to stall at %v", p, activationHold)
	}
	if h.orch.State() != StateLoading {
		t.Errorf("State() = %v, want loading", h.orch.State())
	}

	h.bus.Publish(event.ActivateSceneRequest{Scene: "Game"})
	h.drain()

	if last := h.results()[len(h.results())-1]; last != "scene.load_completed scene=Game additive=false" {
		t.Errorf("last event = %q", last)
	}
}

func TestActivate_NothingLoading(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game"})

	err := h.orch.Activate("Game")
	var nf *stherrors.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Activate() error = %v, want NotFoundError", err)
	}
}

func TestReloadActive(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game", LoadSteps: 1}, SceneSpec{Name: "HUD", LoadSteps: 1})

	h.bus.Publish(event.NewLoadSceneRequest("Game"))
	h.bus.Publish(event.LoadSceneRequest{Scene: "HUD", Additive: true, ActivateOnLoad: true})
	h.drain()
	if got := h.host.Loaded(); len(got) != 2 {
		t.Fatalf("Loaded() = %v, want Game and HUD", got)
	}

	h.events = nil
	h.bus.Publish(event.ReloadActiveRequest{})
	h.drain()

	want := "scene.load_started scene=Game additive=false,scene.load_completed scene=Game additive=false"
	if got := strings.Join(h.results(), ","); got != want {
		t.Errorf("events = %s\nwant     %s", got, want)
	}
	if got := h.host.Loaded(); len(got) != 1 || got[0] != "Game" {
		t.Errorf("reload must be exclusive, Loaded() = %v", got)
	}
}

func TestReloadActive_NoActiveScene(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game"})

	h.bus.Publish(event.ReloadActiveRequest{})
	h.drain()

	if len(h.results()) != 0 {
		t.Errorf("expected no events, got %v", h.results())
	}
	if !strings.Contains(h.logs.String(), "no active scene") {
		t.Errorf("expected a logged error, got %s", h.logs.String())
	}
	if err := h.orch.ReloadActive(); !errors.Is(err, stherrors.ErrNoActiveScene) {
		t.Errorf("ReloadActive() error = %v, want ErrNoActiveScene", err)
	}
}

func TestUnload(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game", LoadSteps: 1, UnloadSteps: 3})

	h.bus.Publish(event.NewLoadSceneRequest("Game"))
	h.drain()

	h.events = nil
	h.bus.Publish(event.UnloadSceneRequest{Scene: "Game"})
	h.drain()

	if got := strings.Join(h.results(), ","); got != "scene.unload_completed scene=Game" {
		t.Errorf("events = %s", got)
	}
	if h.host.ActiveScene() != "" || len(h.host.Loaded()) != 0 {
		t.Errorf("host still has %v active=%q", h.host.Loaded(), h.host.ActiveScene())
	}
}

func TestUnload_NotLoaded(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game"})

	h.bus.Publish(event.UnloadSceneRequest{Scene: "Game"})
	h.drain()

	if len(h.results()) != 0 {
		t.Errorf("expected no events, got %v", h.results())
	}
	if !strings.Contains(h.logs.String(), "scene unload failed") {
		t.Errorf("expected a logged error, got %s", h.logs.String())
	}
	if err := h.orch.Unload("Game"); !errors.Is(err, stherrors.ErrSceneNotLoaded) {
		t.Errorf("Unload() error = %v, want ErrSceneNotLoaded", err)
	}
}

func TestStop(t *testing.T) {
	h := newHarness(t, Config{}, SceneSpec{Name: "Game", LoadSteps: 5})

	h.bus.Publish(event.NewLoadSceneRequest("Game"))
	h.tick(1)
	h.orch.Stop()
	h.events = nil
	h.drain()

	if len(h.results()) != 0 {
		t.Errorf("stopped orchestrator published %v", h.results())
	}
	if len(h.orch.Live()) != 0 {
		t.Errorf("Live() = %v after Stop", h.orch.Live())
	}

	h.bus.Publish(event.NewLoadSceneRequest("Game"))
	if len(h.events) != 1 {
		t.Errorf("requests after Stop should be ignored, got %d events", len(h.events))
	}

	h.orch.Start()
	h.bus.Publish(event.NewLoadSceneRequest("Game"))
	h.drain()
	if last := h.results()[len(h.results())-1]; last != "scene.load_completed scene=Game additive=false" {
		t.Errorf("restarted orchestrator should load, last event = %q", last)
	}
}

// scriptedOp reports a fixed sequence of progress values.
type scriptedOp struct {
	values []float64
	i      int
}

func (o *scriptedOp) Done() bool { return o.i >= len(o.values) }

func (o *scriptedOp) Progress() float64 {
	v := o.values[o.i]
	o.i++
	return v
}

func (o *scriptedOp) SetAllowActivation(bool) {}

type scriptedHost struct{ op *scriptedOp }

func (h scriptedHost) BeginLoad(string, bool) (LoadOperation, error) { return h.op, nil }
func (h scriptedHost) BeginUnload(string) (Operation, error)         { return h.op, nil }
func (h scriptedHost) ActiveScene() string                           { return "" }

func TestLoad_ProgressClampedAndMonotonic(t *testing.T) {
	bus := event.NewBus(nil)
	sched := scheduler.New(nil)
	host := scriptedHost{op: &scriptedOp{values: []float64{-0.5, 0.4, 0.2, 1.7, 0.9}}}
	orch := New(bus, host, sched, Config{}, nil)

	var got []float64
	event.On(bus, func(e event.SceneLoadProgress) { got = append(got, e.Progress) })

	if err := orch.Load(event.NewLoadSceneRequest("Game")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := sched.RunUntilIdle(20); err != nil {
		t.Fatalf("RunUntilIdle() error = %v", err)
	}

	want := []float64{0, 0.4, 0.4, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("progress = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateLoading, "loading"},
		{StateCompleted, "completed"},
		{StateCanceled, "canceled"},
		{StateFailed, "failed"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
