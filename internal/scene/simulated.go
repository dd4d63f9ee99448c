package scene

import (
	"slices"
	"sync"

	"github.com/Iron-Ham/stagehand/internal/errors"
)

// activationHold is the progress a load reports while it waits for
// permission to activate.
const activationHold = 0.9

// SceneSpec describes a scene known to the SimulatedHost.
type SceneSpec struct {
	Name        string
	LoadSteps   int
	UnloadSteps int
}

// SimulatedHost is a Host backed by a fixed catalogue of scenes. Operations
// advance one step per call to Advance, which the embedding loop calls once
// per tick before stepping the scheduler.
type SimulatedHost struct {
	mu        sync.Mutex
	catalogue map[string]SceneSpec
	names     []string
	loaded    []string
	active    string
	ops       []*simOp
}

// NewSimulatedHost creates a host that knows the given scenes.
func NewSimulatedHost(specs ...SceneSpec) *SimulatedHost {
	h := &SimulatedHost{catalogue: make(map[string]SceneSpec, len(specs))}
	for _, s := range specs {
		if _, dup := h.catalogue[s.Name]; !dup {
			h.names = append(h.names, s.Name)
		}
		h.catalogue[s.Name] = s
	}
	return h
}

// BeginLoad implements Host.
func (h *SimulatedHost) BeginLoad(scene string, additive bool) (LoadOperation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	spec, ok := h.catalogue[scene]
	if !ok {
		return nil, errors.NewNotFoundError("scene", scene).WithCause(errors.ErrSceneNotFound)
	}
	op := &simOp{
		host:     h,
		load:     true,
		scene:    scene,
		additive: additive,
		total:    max(1, spec.LoadSteps),
		allow:    true,
	}
	h.ops = append(h.ops, op)
	return op, nil
}

// BeginUnload implements Host.
func (h *SimulatedHost) BeginUnload(scene string) (Operation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	spec, ok := h.catalogue[scene]
	if !ok {
		return nil, errors.NewNotFoundError("scene", scene).WithCause(errors.ErrSceneNotFound)
	}
	if !slices.Contains(h.loaded, scene) {
		return nil, errors.NewSceneError("begin unload", errors.ErrSceneNotLoaded).WithScene(scene)
	}
	op := &simOp{
		host:  h,
		scene: scene,
		total: max(1, spec.UnloadSteps),
	}
	h.ops = append(h.ops, op)
	return op, nil
}

// ActiveScene implements Host.
func (h *SimulatedHost) ActiveScene() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// Loaded returns the loaded scenes in load order.
func (h *SimulatedHost) Loaded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.loaded)
}

// Scenes returns the catalogue's scene names in declaration order.
func (h *SimulatedHost) Scenes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.names)
}

// Pending returns the number of operations that have not finished.
func (h *SimulatedHost) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, op := range h.ops {
		if !op.aborted {
			n++
		}
	}
	return n
}

// Advance moves every pending operation forward by one step and applies the
// operations that finish.
func (h *SimulatedHost) Advance() {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := h.ops[:0]
	for _, op := range h.ops {
		if op.aborted {
			continue
		}
		if op.step < op.total {
			op.step++
		}
		if op.step >= op.total && (!op.load || op.allow) {
			op.done = true
			h.applyLocked(op)
			continue
		}
		remaining = append(remaining, op)
	}
	clear(h.ops[len(remaining):])
	h.ops = remaining
}

func (h *SimulatedHost) applyLocked(op *simOp) {
	if !op.load {
		h.loaded = slices.DeleteFunc(h.loaded, func(s string) bool { return s == op.scene })
		if h.active == op.scene {
			h.active = ""
			if len(h.loaded) > 0 {
				h.active = h.loaded[0]
			}
		}
		return
	}

	if !op.additive {
		h.loaded = []string{op.scene}
		h.active = op.scene
		return
	}
	if !slices.Contains(h.loaded, op.scene) {
		h.loaded = append(h.loaded, op.scene)
	}
	if h.active == "" {
		h.active = op.scene
	}
}

// simOp is a SimulatedHost operation. Its fields are guarded by the host's mutex.
type simOp struct {
	host     *SimulatedHost
	load     bool
	scene    string
	additive bool
	step     int
	total    int
	allow    bool
	done     bool
	aborted  bool
}

func (o *simOp) Done() bool {
	o.host.mu.Lock()
	defer o.host.mu.Unlock()
	return o.done
}

func (o *simOp) Progress() float64 {
	o.host.mu.Lock()
	defer o.host.mu.Unlock()
	if o.done {
		return 1
	}
	fraction := float64(o.step) / float64(o.total)
	if o.load {
		return fraction * activationHold
	}
	return fraction
}

func (o *simOp) SetAllowActivation(allow bool) {
	o.host.mu.Lock()
	defer o.host.mu.Unlock()
	o.allow = allow
}

func (o *simOp) Abort() {
	o.host.mu.Lock()
	defer o.host.mu.Unlock()
	if !o.done {
		o.aborted = true
	}
}
