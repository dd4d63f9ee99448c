package view

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/screen"
)

// Config holds the orchestrator's static configuration.
type Config struct {
	// Descriptors lists the screens that can be shown. Each screen may be
	// described once.
	Descriptors []Descriptor

	// Root is the container used when no anchor resolves a layer.
	Root Container
}

// record is the active state of one shown screen.
type record struct {
	desc      Descriptor
	object    Object
	view      View
	presenter Presenter
}

// Orchestrator shows and hides screens in response to bus events.
type Orchestrator struct {
	bus        *event.Bus
	services   *registry.Registry
	factory    Factory
	presenters *PresenterFactory
	root       Container
	logger     *logging.Logger

	descriptors map[screen.ID]Descriptor

	mu      sync.Mutex
	anchors AnchorProvider
	active  map[screen.ID]*record
	order   []screen.ID
	subIDs  []string
}

// New creates an orchestrator. Describing a screen twice is an error.
func New(cfg Config, bus *event.Bus, services *registry.Registry, factory Factory, presenters *PresenterFactory, logger *logging.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	o := &Orchestrator{
		bus:         bus,
		services:    services,
		factory:     factory,
		presenters:  presenters,
		root:        cfg.Root,
		logger:      logger.WithComponent("view"),
		descriptors: make(map[screen.ID]Descriptor, len(cfg.Descriptors)),
		active:      make(map[screen.ID]*record),
	}

	ids := make([]screen.ID, 0, len(cfg.Descriptors))
	for _, d := range cfg.Descriptors {
		if _, dup := o.descriptors[d.Screen]; dup {
			return nil, errors.NewViewError("register descriptor", errors.ErrDuplicateDescriptor).WithScreen(d.Screen.String())
		}
		o.descriptors[d.Screen] = d
		ids = append(ids, d.Screen)
	}

	if presenters != nil {
		if missing := presenters.Covers(ids); len(missing) > 0 {
			o.logger.Warn("descriptors without presenter mapping", "screens", fmt.Sprint(missing))
		}
	}
	return o, nil
}

// SetAnchors installs the provider used to resolve parents by layer.
func (o *Orchestrator) SetAnchors(anchors AnchorProvider) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.anchors = anchors
}

// Start subscribes to the view request events. Calling Start twice is a no-op.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.subIDs) > 0 {
		return
	}
	o.subIDs = []string{
		event.On(o.bus, func(e event.ShowView) {
			if err := o.Show(screen.ID(e.Screen)); err != nil {
				o.logger.Error("show view failed", "screen", e.Screen, "error", err)
			}
		}),
		event.On(o.bus, func(e event.HideView) {
			o.Hide(screen.ID(e.Screen))
		}),
		event.On(o.bus, func(e event.ToggleView) {
			if err := o.Toggle(screen.ID(e.Screen)); err != nil {
				o.logger.Error("toggle view failed", "screen", e.Screen, "error", err)
			}
		}),
	}
	o.logger.Info("view orchestrator started", "descriptors", len(o.descriptors))
}

// Stop unsubscribes from the bus and tears down every active screen the same
// way Hide does.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	ids := o.subIDs
	o.subIDs = nil
	shown := slices.Clone(o.order)
	o.mu.Unlock()

	for _, id := range ids {
		o.bus.Unsubscribe(id)
	}
	for i := len(shown) - 1; i >= 0; i-- {
		o.Hide(shown[i])
	}
	o.logger.Info("view orchestrator stopped", "hidden", len(shown))
}

// Show makes id visible. An already active screen is only reactivated.
// Otherwise the descriptor's view is instantiated under its resolved parent,
// initialized and activated, and a fresh presenter is bound to it.
//
// Missing configuration returns an error and leaves no record behind. An
// unmapped presenter panics after the half-built view has been torn down.
func (o *Orchestrator) Show(id screen.ID) error {
	o.mu.Lock()
	rec, ok := o.active[id]
	anchors := o.anchors
	o.mu.Unlock()

	if ok {
		rec.view.SetActive(true)
		o.logger.Debug("view reactivated", "screen", id.String())
		return nil
	}

	desc, ok := o.descriptors[id]
	if !ok {
		return errors.NewViewError("show", errors.ErrDescriptorNotFound).WithScreen(id.String())
	}

	parent := o.resolveParent(desc, anchors)
	if parent == nil {
		return errors.NewViewError("resolve parent", errors.ErrNoAnchors).
			WithScreen(id.String()).
			WithLayer(desc.Layer.String())
	}

	obj, err := o.factory.Instantiate(desc, parent)
	if err != nil {
		if obj != nil {
			obj.Destroy()
		}
		return errors.NewViewError("instantiate", fmt.Errorf("%w: %w", errors.ErrInstantiateFailed, err)).WithScreen(id.String())
	}
	if obj == nil {
		return errors.NewViewError("instantiate", errors.ErrInstantiateFailed).WithScreen(id.String())
	}

	v, ok := obj.(View)
	if !ok {
		obj.Destroy()
		return errors.NewViewError("instantiate", errors.ErrNotAView).WithScreen(id.String())
	}

	v.Initialize()
	v.SetActive(true)

	p := o.createPresenter(id, v, obj)
	p.Initialize()
	p.SubscribeEvents()

	o.mu.Lock()
	o.active[id] = &record{desc: desc, object: obj, view: v, presenter: p}
	o.order = append(o.order, id)
	o.mu.Unlock()

	o.logger.Info("view shown", "screen", id.String(), "layer", desc.Layer.String(), "parent", parent.Name())
	o.bus.Publish(event.ViewShown{Screen: id.String()})
	return nil
}

// createPresenter builds the presenter, tearing the view down before
// re-panicking when the factory has no mapping for id.
func (o *Orchestrator) createPresenter(id screen.ID, v View, obj Object) Presenter {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("presenter construction failed", "screen", id.String(), "panic", fmt.Sprint(r))
			v.SetActive(false)
			v.Teardown()
			obj.Destroy()
			panic(r)
		}
	}()
	return o.presenters.Create(id, v, o.services)
}

func (o *Orchestrator) resolveParent(desc Descriptor, anchors AnchorProvider) Container {
	if desc.Parent != nil {
		return desc.Parent
	}
	if anchors != nil {
		if c := anchors.ParentFor(desc.Layer); c != nil {
			return c
		}
	}
	return o.root
}

// Hide tears down id's presenter and view. It is a no-op when id is not active.
func (o *Orchestrator) Hide(id screen.ID) {
	o.mu.Lock()
	rec, ok := o.active[id]
	if ok {
		delete(o.active, id)
		o.order = slices.DeleteFunc(o.order, func(s screen.ID) bool { return s == id })
	}
	o.mu.Unlock()

	if !ok {
		o.logger.Debug("hide ignored, view not active", "screen", id.String())
		return
	}

	rec.presenter.UnsubscribeEvents()
	rec.presenter.Dispose()
	rec.view.SetActive(false)
	rec.view.Teardown()
	rec.object.Destroy()

	o.logger.Info("view hidden", "screen", id.String())
	o.bus.Publish(event.ViewHidden{Screen: id.String()})
}

// Toggle hides id when it is active and shows it otherwise.
func (o *Orchestrator) Toggle(id screen.ID) error {
	if o.IsActive(id) {
		o.Hide(id)
		return nil
	}
	return o.Show(id)
}

// IsActive reports whether id has an active record.
func (o *Orchestrator) IsActive(id screen.ID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.active[id]
	return ok
}

// Active returns the active screens in the order they were shown.
func (o *Orchestrator) Active() []screen.ID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.order)
}

// Descriptor returns the descriptor configured for id.
func (o *Orchestrator) Descriptor(id screen.ID) (Descriptor, bool) {
	d, ok := o.descriptors[id]
	return d, ok
}

// ViewFor returns the active view for id.
func (o *Orchestrator) ViewFor(id screen.ID) (View, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec, ok := o.active[id]
	if !ok {
		return nil, false
	}
	return rec.view, true
}
