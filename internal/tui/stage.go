package tui

import (
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/stagehand/internal/view"
)

// Widget is a terminal view. Widgets are created by Factory and live in a
// Panel while they exist.
type Widget interface {
	view.Object
	view.View

	// Active reports whether the widget is currently shown.
	Active() bool
	// Render draws the widget.
	Render() string
	// HandleKey processes a key name as reported by tea.KeyMsg.String and
	// reports whether the widget consumed it.
	HandleKey(key string) bool
}

// Panel is the container for one layer of the stage.
type Panel struct {
	name  string
	layer view.Layer

	mu      sync.Mutex
	widgets []Widget
}

// Name implements view.Container.
func (p *Panel) Name() string { return p.name }

// Layer returns the layer the panel renders.
func (p *Panel) Layer() view.Layer { return p.layer }

// Widgets returns the panel's widgets in creation order.
func (p *Panel) Widgets() []Widget {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.widgets)
}

func (p *Panel) add(w Widget) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.widgets = append(p.widgets, w)
}

func (p *Panel) remove(w Widget) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.widgets = slices.DeleteFunc(p.widgets, func(x Widget) bool { return x == w })
}

// Stage is the terminal's anchor provider: one panel per layer, rendered
// screen first and popup last.
type Stage struct {
	panels map[view.Layer]*Panel
}

// NewStage creates a stage with a panel for every layer.
func NewStage() *Stage {
	s := &Stage{panels: make(map[view.Layer]*Panel)}
	for _, l := range view.Layers() {
		s.panels[l] = &Panel{name: "stage/" + l.String(), layer: l}
	}
	return s
}

// ParentFor implements view.AnchorProvider.
func (s *Stage) ParentFor(layer view.Layer) view.Container {
	p, ok := s.panels[layer]
	if !ok {
		return nil
	}
	return p
}

// Root returns the screen layer panel.
func (s *Stage) Root() view.Container {
	return s.panels[view.LayerScreen]
}

// Panel returns the panel for layer, or nil.
func (s *Stage) Panel(layer view.Layer) *Panel {
	return s.panels[layer]
}

// Top returns the most recently created active widget of the highest
// occupied layer.
func (s *Stage) Top() Widget {
	layers := view.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		widgets := s.panels[layers[i]].Widgets()
		for j := len(widgets) - 1; j >= 0; j-- {
			if widgets[j].Active() {
				return widgets[j]
			}
		}
	}
	return nil
}

// Render draws every active widget, layer by layer.
func (s *Stage) Render() string {
	var blocks []string
	for _, l := range view.Layers() {
		for _, w := range s.panels[l].Widgets() {
			if !w.Active() {
				continue
			}
			blocks = append(blocks, frameFor(l).Render(w.Render()))
		}
	}
	if len(blocks) == 0 {
		return Muted.Render("(nothing on stage)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func frameFor(l view.Layer) lipgloss.Style {
	switch l {
	case view.LayerOverlay:
		return OverlayFrame
	case view.LayerPopup:
		return PopupFrame
	default:
		return ScreenFrame
	}
}

// Describe lists the stage contents as "layer: widget, widget" lines, for
// headless traces.
func (s *Stage) Describe() string {
	var sb strings.Builder
	for _, l := range view.Layers() {
		var names []string
		for _, w := range s.panels[l].Widgets() {
			if named, ok := w.(interface{ Title() string }); ok && w.Active() {
				names = append(names, named.Title())
			}
		}
		sb.WriteString(l.String())
		sb.WriteString(": ")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}
