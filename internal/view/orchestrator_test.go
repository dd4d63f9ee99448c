package view

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	stherrors "github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/screen"
)

type fakeContainer string

func (c fakeContainer) Name() string { return string(c) }

type fakeAnchors map[Layer]Container

func (a fakeAnchors) ParentFor(l Layer) Container { return a[l] }

// fakeView records its lifecycle calls.
type fakeView struct {
	serial      int
	parent      Container
	initialized int
	torndown    int
	destroyed   int
	active      bool
	activations int
}

func (v *fakeView) Initialize() { v.initialized++ }
func (v *fakeView) Teardown()   { v.torndown++ }
func (v *fakeView) Destroy()    { v.destroyed++ }
func (v *fakeView) SetActive(active bool) {
	v.active = active
	if active {
		v.activations++
	}
}

// plainObject is an Object without the View capability.
type plainObject struct{ destroyed int }

func (o *plainObject) Destroy() { o.destroyed++ }

type fakeFactory struct {
	views   []*fakeView
	plain   []*plainObject
	notView bool
	partial bool
	err     error
}

func (f *fakeFactory) Instantiate(desc Descriptor, parent Container) (Object, error) {
	if f.err != nil {
		if f.partial {
			o := &plainObject{}
			f.plain = append(f.plain, o)
			return o, f.err
		}
		return nil, f.err
	}
	if f.notView {
		o := &plainObject{}
		f.plain = append(f.plain, o)
		return o, nil
	}
	v := &fakeView{serial: len(f.views) + 1, parent: parent}
	f.views = append(f.views, v)
	return v, nil
}

// fakePresenter records its lifecycle calls into a shared journal.
type fakePresenter struct {
	view    View
	journal *[]string
	name    string
}

func (p *fakePresenter) Initialize()        { *p.journal = append(*p.journal, p.name+":init") }
func (p *fakePresenter) SubscribeEvents()   { *p.journal = append(*p.journal, p.name+":subscribe") }
func (p *fakePresenter) UnsubscribeEvents() { *p.journal = append(*p.journal, p.name+":unsubscribe") }
func (p *fakePresenter) Dispose()           { *p.journal = append(*p.journal, p.name+":dispose") }

type fixture struct {
	bus        *event.Bus
	factory    *fakeFactory
	orch       *Orchestrator
	logs       *bytes.Buffer
	journal    []string
	presenters []*fakePresenter
	events     []string
}

func newFixture(t *testing.T, descs ...Descriptor) *fixture {
	t.Helper()
	f := &fixture{logs: &bytes.Buffer{}, factory: &fakeFactory{}}
	logger := logging.NewWriterLogger(f.logs, logging.LevelDebug)
	f.bus = event.NewBus(logger)

	ctor := func(name string) PresenterConstructor {
		return func(v View, services *registry.Registry) Presenter {
			p := &fakePresenter{view: v, journal: &f.journal, name: name}
			f.presenters = append(f.presenters, p)
			return p
		}
	}
	presenters := NewPresenterFactory(map[screen.ID]PresenterConstructor{
		screen.MainMenu: ctor("menu"),
		screen.Settings: ctor("settings"),
	})

	orch, err := New(Config{Descriptors: descs}, f.bus, registry.New(logger), f.factory, presenters, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	orch.SetAnchors(fakeAnchors{
		LayerScreen:  fakeContainer("screen"),
		LayerOverlay: fakeContainer("overlay"),
		LayerPopup:   fakeContainer("popup"),
	})
	orch.Start()
	t.Cleanup(orch.Stop)
	f.orch = orch

	f.bus.SubscribeAll(func(e event.Event) {
		if e.EventType() == event.TypeViewShown || e.EventType() == event.TypeViewHidden {
			f.events = append(f.events, event.Format(e))
		}
	})
	return f
}

var (
	menuDesc     = Descriptor{Screen: screen.MainMenu, Layer: LayerScreen, Template: "menu"}
	settingsDesc = Descriptor{Screen: screen.Settings, Layer: LayerOverlay, Template: "settings"}
)

func TestShow_CreatesViewAndPresenter(t *testing.T) {
	f := newFixture(t, menuDesc, settingsDesc)

	f.bus.Publish(event.ShowView{Screen: "settings"})

	if len(f.factory.views) != 1 {
		t.Fatalf("expected 1 instantiated view, got %d", len(f.factory.views))
	}
	v := f.factory.views[0]
	if v.parent.Name() != "overlay" {
		t.Errorf("view parented into %q, want overlay", v.parent.Name())
	}
	if v.initialized != 1 || !v.active {
		t.Errorf("view should be initialized and active: %+v", v)
	}
	if got := strings.Join(f.journal, ","); got != "settings:init,settings:subscribe" {
		t.Errorf("presenter journal = %s", got)
	}
	if f.presenters[0].view != v {
		t.Error("presenter should be bound to the instantiated view")
	}
	if !f.orch.IsActive(screen.Settings) {
		t.Error("settings should be active")
	}
	if got := strings.Join(f.events, ","); got != "view.shown screen=settings" {
		t.Errorf("events = %s", got)
	}
}

func TestShow_Idempotent(t *testing.T) {
	f := newFixture(t, menuDesc)

	f.bus.Publish(event.ShowView{Screen: "main_menu"})
	f.bus.Publish(event.ShowView{Screen: "main_menu"})

	if len(f.factory.views) != 1 {
		t.Errorf("expected exactly one instantiated view, got %d", len(f.factory.views))
	}
	if len(f.presenters) != 1 {
		t.Errorf("expected exactly one presenter, got %d", len(f.presenters))
	}
	if f.factory.views[0].activations != 2 {
		t.Errorf("second show should reactivate, activations = %d", f.factory.views[0].activations)
	}
	if len(f.events) != 1 {
		t.Errorf("reactivation should not publish ViewShown again, events = %v", f.events)
	}
}

func TestHideThenShow_FreshPair(t *testing.T) {
	f := newFixture(t, menuDesc)

	f.bus.Publish(event.ShowView{Screen: "main_menu"})
	f.bus.Publish(event.HideView{Screen: "main_menu"})

	first := f.factory.views[0]
	if first.active || first.torndown != 1 || first.destroyed != 1 {
		t.Errorf("hidden view should be deactivated, torn down and destroyed: %+v", first)
	}
	want := "menu:init,menu:subscribe,menu:unsubscribe,menu:dispose"
	if got := strings.Join(f.journal, ","); got != want {
		t.Errorf("journal = %s\nwant      %s", got, want)
	}

	f.bus.Publish(event.ShowView{Screen: "main_menu"})

	if len(f.factory.views) != 2 || len(f.presenters) != 2 {
		t.Fatalf("expected a fresh view and presenter, got %d views %d presenters", len(f.factory.views), len(f.presenters))
	}
	if f.presenters[1] == f.presenters[0] || f.presenters[1].view == View(first) {
		t.Error("Show after Hide must not reuse the torn-down pair")
	}
	if got := strings.Join(f.events, ","); got != "view.shown screen=main_menu,view.hidden screen=main_menu,view.shown screen=main_menu" {
		t.Errorf("events = %s", got)
	}
}

func TestHide_NotActive(t *testing.T) {
	f := newFixture(t, menuDesc)

	f.bus.Publish(event.HideView{Screen: "main_menu"})

	if len(f.events) != 0 || len(f.journal) != 0 {
		t.Errorf("hide of an inactive screen should be a no-op: events=%v journal=%v", f.events, f.journal)
	}
}

func TestToggle_Symmetry(t *testing.T) {
	f := newFixture(t, menuDesc, settingsDesc)

	before := f.orch.Active()
	f.bus.Publish(event.ToggleView{Screen: "settings"})
	if !f.orch.IsActive(screen.Settings) {
		t.Fatal("first toggle should show")
	}
	f.bus.Publish(event.ToggleView{Screen: "settings"})
	if f.orch.IsActive(screen.Settings) {
		t.Fatal("second toggle should hide")
	}
	if len(f.orch.Active()) != len(before) {
		t.Errorf("net state should equal the initial state, active = %v", f.orch.Active())
	}
}

func TestShow_DescriptorNotFound(t *testing.T) {
	f := newFixture(t, menuDesc)

	f.bus.Publish(event.ShowView{Screen: "settings"})

	if f.orch.IsActive(screen.Settings) {
		t.Error("no record should be created")
	}
	if len(f.factory.views) != 0 {
		t.Error("nothing should be instantiated")
	}
	if n := strings.Count(f.logs.String(), "descriptor not found"); n != 1 {
		t.Errorf("expected exactly one logged descriptor-not-found, got %d:\n%s", n, f.logs.String())
	}

	err := f.orch.Show(screen.Settings)
	if !errors.Is(err, stherrors.ErrDescriptorNotFound) {
		t.Errorf("Show() error = %v, want ErrDescriptorNotFound", err)
	}
}

func TestShow_NoAnchors(t *testing.T) {
	f := newFixture(t, menuDesc)
	f.orch.SetAnchors(nil)

	err := f.orch.Show(screen.MainMenu)
	if !errors.Is(err, stherrors.ErrNoAnchors) {
		t.Errorf("Show() error = %v, want ErrNoAnchors", err)
	}
	if f.orch.IsActive(screen.MainMenu) || len(f.factory.views) != 0 {
		t.Error("nothing should be instantiated without a parent")
	}
}

func TestShow_ParentResolution(t *testing.T) {
	logger := logging.NopLogger()
	factory := &fakeFactory{}
	presenters := NewPresenterFactory(map[screen.ID]PresenterConstructor{
		screen.MainMenu: func(View, *registry.Registry) Presenter { return &fakePresenter{journal: new([]string)} },
		screen.Settings: func(View, *registry.Registry) Presenter { return &fakePresenter{journal: new([]string)} },
	})
	override := Descriptor{Screen: screen.Settings, Layer: LayerPopup, Parent: fakeContainer("custom")}

	orch, err := New(Config{Descriptors: []Descriptor{menuDesc, override}, Root: fakeContainer("root")},
		event.NewBus(nil), registry.New(nil), factory, presenters, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	orch.SetAnchors(fakeAnchors{LayerOverlay: fakeContainer("overlay")})

	if err := orch.Show(screen.MainMenu); err != nil {
		t.Fatalf("Show(main_menu) error = %v", err)
	}
	if err := orch.Show(screen.Settings); err != nil {
		t.Fatalf("Show(settings) error = %v", err)
	}

	if got := factory.views[0].parent.Name(); got != "root" {
		t.Errorf("unanchored layer should fall back to root, got %q", got)
	}
	if got := factory.views[1].parent.Name(); got != "custom" {
		t.Errorf("descriptor parent should override anchors, got %q", got)
	}
}

func TestShow_NotAView(t *testing.T) {
	f := newFixture(t, menuDesc)
	f.factory.notView = true

	err := f.orch.Show(screen.MainMenu)
	if !errors.Is(err, stherrors.ErrNotAView) {
		t.Errorf("Show() error = %v, want ErrNotAView", err)
	}
	if len(f.factory.plain) != 1 || f.factory.plain[0].destroyed != 1 {
		t.Error("the half-built object should be destroyed")
	}
	if len(f.presenters) != 0 || f.orch.IsActive(screen.MainMenu) {
		t.Error("no presenter or record should be created")
	}
}

func TestShow_InstantiateError(t *testing.T) {
	f := newFixture(t, menuDesc)
	f.factory.err = errors.New("template missing")

	err := f.orch.Show(screen.MainMenu)
	if !errors.Is(err, stherrors.ErrInstantiateFailed) {
		t.Errorf("Show() error = %v, want ErrInstantiateFailed", err)
	}
	if !strings.Contains(err.Error(), "template missing") {
		t.Errorf("error should carry the factory's cause: %v", err)
	}
}

func TestShow_InstantiateErrorDestroysPartialObject(t *testing.T) {
	f := newFixture(t, menuDesc)
	f.factory.err = errors.New("widget build failed")
	f.factory.partial = true

	if err := f.orch.Show(screen.MainMenu); !errors.Is(err, stherrors.ErrInstantiateFailed) {
		t.Errorf("Show() error = %v, want ErrInstantiateFailed", err)
	}
	if len(f.factory.plain) != 1 || f.factory.plain[0].destroyed != 1 {
		t.Error("the half-built object should be destroyed")
	}
	if len(f.presenters) != 0 || f.orch.IsActive(screen.MainMenu) {
		t.Error("no presenter or record should be created")
	}
}

func TestShow_UnmappedPresenterPanics(t *testing.T) {
	factory := &fakeFactory{}
	orch, err := New(Config{Descriptors: []Descriptor{menuDesc}, Root: fakeContainer("root")},
		event.NewBus(nil), registry.New(nil), factory, NewPresenterFactory(nil), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic for an unmapped presenter")
		}
		v := factory.views[0]
		if v.active || v.torndown != 1 || v.destroyed != 1 {
			t.Errorf("half-built view should be torn down before the panic: %+v", v)
		}
		if orch.IsActive(screen.MainMenu) {
			t.Error("no record should remain")
		}
	}()
	_ = orch.Show(screen.MainMenu)
}

func TestNew_DuplicateDescriptor(t *testing.T) {
	_, err := New(Config{Descriptors: []Descriptor{menuDesc, menuDesc}},
		event.NewBus(nil), registry.New(nil), &fakeFactory{}, NewPresenterFactory(nil), nil)
	if !errors.Is(err, stherrors.ErrDuplicateDescriptor) {
		t.Errorf("New() error = %v, want ErrDuplicateDescriptor", err)
	}
}

func TestStop_TearsDownEverything(t *testing.T) {
	f := newFixture(t, menuDesc, settingsDesc)

	f.bus.Publish(event.ShowView{Screen: "main_menu"})
	f.bus.Publish(event.ShowView{Screen: "settings"})
	f.orch.Stop()

	if len(f.orch.Active()) != 0 {
		t.Errorf("Active() after Stop = %v", f.orch.Active())
	}
	for _, v := range f.factory.views {
		if v.destroyed != 1 || v.torndown != 1 {
			t.Errorf("view %d not torn down: %+v", v.serial, v)
		}
	}
	if n := strings.Count(strings.Join(f.journal, ","), ":dispose"); n != 2 {
		t.Errorf("expected 2 presenters disposed, got %d", n)
	}

	f.bus.Publish(event.ShowView{Screen: "main_menu"})
	if f.orch.IsActive(screen.MainMenu) {
		t.Error("stopped orchestrator should ignore requests")
	}
}

func TestParseLayer(t *testing.T) {
	tests := []struct {
		input   string
		want    Layer
		wantErr bool
	}{
		{"screen", LayerScreen, false},
		{"", LayerScreen, false},
		{"Overlay", LayerOverlay, false},
		{"popup", LayerPopup, false},
		{"modal", LayerScreen, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLayer(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLayer(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLayer(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	_, err := ParseLayer("popop")
	if err == nil || !strings.Contains(err.Error(), `did you mean "popup"`) {
		t.Errorf("expected a suggestion, got %v", err)
	}
}

func TestPresenterFactory_Covers(t *testing.T) {
	f := NewPresenterFactory(map[screen.ID]PresenterConstructor{
		screen.MainMenu: func(View, *registry.Registry) Presenter { return nil },
	})

	missing := f.Covers(screen.All())
	if len(missing) != 1 || missing[0] != screen.Settings {
		t.Errorf("Covers() = %v, want [settings]", missing)
	}
}
