// Package view manages the lifecycle of on-screen views and their presenters.
//
// The Orchestrator reacts to ShowView, HideView and ToggleView events. For
// each screen it keeps at most one active record holding the instantiated
// object, the view it exposes and the presenter bound to it. Showing an
// active screen only reactivates it; hiding tears everything down so the
// next show builds a fresh pair.
//
// Concrete views come from an external Factory and are parented into
// containers resolved through an AnchorProvider. Presenters come from an
// exhaustive PresenterFactory keyed by screen identifier.
package view

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/util"
)

// Layer is the presentation layer a view is parented into.
type Layer int

const (
	LayerScreen Layer = iota
	LayerOverlay
	LayerPopup
)

// Layers returns every layer from bottom-most to top-most.
func Layers() []Layer {
	return []Layer{LayerScreen, LayerOverlay, LayerPopup}
}

// String returns the layer's configuration name.
func (l Layer) String() string {
	switch l {
	case LayerScreen:
		return "screen"
	case LayerOverlay:
		return "overlay"
	case LayerPopup:
		return "popup"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// ParseLayer converts a configuration name into a Layer. An empty name
// selects LayerScreen.
func ParseLayer(s string) (Layer, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return LayerScreen, nil
	}
	names := make([]string, 0, 3)
	for _, l := range Layers() {
		if l.String() == name {
			return l, nil
		}
		names = append(names, l.String())
	}
	return LayerScreen, errors.NewValidationError(fmt.Sprintf("unknown layer %q%s", s, util.DidYouMean(s, names))).
		WithField("layer").
		WithValue(s)
}

// Container is a parent that views are placed into.
type Container interface {
	Name() string
}

// AnchorProvider resolves the container for a layer. It may return nil when
// it has no container for the layer.
type AnchorProvider interface {
	ParentFor(layer Layer) Container
}

// Object is the handle returned by a Factory.
type Object interface {
	Destroy()
}

// View is the capability an instantiated Object must expose to be shown.
type View interface {
	Initialize()
	Teardown()
	SetActive(active bool)
}

// Factory instantiates the concrete view for a descriptor under a parent.
type Factory interface {
	Instantiate(desc Descriptor, parent Container) (Object, error)
}

// Presenter is the behavior controller bound to a view.
type Presenter interface {
	Initialize()
	SubscribeEvents()
	UnsubscribeEvents()
	Dispose()
}

// Descriptor describes how to build the view for a screen.
type Descriptor struct {
	Screen   screen.ID
	Layer    Layer
	Template string    // factory-specific template name
	Parent   Container // optional override of the layer's anchor
}
