package tui

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/view"
)

func TestStage_ParentFor(t *testing.T) {
	s := NewStage()
	for _, l := range view.Layers() {
		c := s.ParentFor(l)
		if c == nil {
			t.Fatalf("ParentFor(%s) = nil", l)
		}
		if want := "stage/" + l.String(); c.Name() != want {
			t.Errorf("ParentFor(%s).Name() = %q, want %q", l, c.Name(), want)
		}
	}
	if c := s.ParentFor(view.Layer(42)); c != nil {
		t.Errorf("ParentFor(unknown) = %v, want nil", c)
	}
	if s.Root() != s.ParentFor(view.LayerScreen) {
		t.Error("Root() should be the screen panel")
	}
}

func TestFactory_Instantiate(t *testing.T) {
	s := NewStage()
	f := NewFactory(nil)

	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{"menu", TemplateMenu, false},
		{"settings", TemplateSettings, false},
		{"unknown", "setings", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := view.Descriptor{Screen: screen.Settings, Template: tt.template}
			obj, err := f.Instantiate(desc, s.Root())
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Fatalf("Instantiate() error = %v, want invalid input", err)
				}
				if !strings.Contains(err.Error(), `did you mean "settings"`) {
					t.Errorf("error %q lacks suggestion", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Instantiate() error = %v", err)
			}
			if _, ok := obj.(view.View); !ok {
				t.Errorf("%T does not implement view.View", obj)
			}
		})
	}
}

func TestFactory_RejectsForeignContainer(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.Instantiate(view.Descriptor{Template: TemplateMenu}, foreign{})
	if err == nil {
		t.Fatal("expected error for non-panel container")
	}
}

type foreign struct{}

func (foreign) Name() string { return "foreign" }

func TestStage_TopAndRender(t *testing.T) {
	s := NewStage()
	f := NewFactory(nil)

	if s.Top() != nil {
		t.Fatal("empty stage should have no top widget")
	}

	menu, _ := f.Instantiate(view.Descriptor{Screen: screen.MainMenu, Template: TemplateMenu}, s.ParentFor(view.LayerScreen))
	settings, _ := f.Instantiate(view.Descriptor{Screen: screen.Settings, Template: TemplateSettings}, s.ParentFor(view.LayerOverlay))

	menu.(view.View).SetActive(true)
	if s.Top() != menu {
		t.Error("menu should be on top while settings is inactive")
	}
	settings.(view.View).SetActive(true)
	if s.Top() != settings {
		t.Error("overlay widget should be on top")
	}

	out := s.Render()
	if !strings.Contains(out, "main_menu") || !strings.Contains(out, "settings") {
		t.Errorf("Render() missing widgets:\n%s", out)
	}
	if got := s.Describe(); got != "screen: main_menu\noverlay: settings\npopup: \n" {
		t.Errorf("Describe() = %q", got)
	}

	settings.Destroy()
	if len(s.Panel(view.LayerOverlay).Widgets()) != 0 {
		t.Error("Destroy should remove the widget from its panel")
	}
	if s.Top() != menu {
		t.Error("menu should be on top after settings is destroyed")
	}
}
