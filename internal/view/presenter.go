package view

import (
	"fmt"

	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/screen"
)

// PresenterConstructor builds the presenter for a view. Presenters discover
// the services they need, including the event bus, through services.
type PresenterConstructor func(v View, services *registry.Registry) Presenter

// PresenterFactory maps every screen identifier to its presenter constructor.
type PresenterFactory struct {
	ctors map[screen.ID]PresenterConstructor
}

// NewPresenterFactory creates a factory from an explicit mapping.
func NewPresenterFactory(ctors map[screen.ID]PresenterConstructor) *PresenterFactory {
	m := make(map[screen.ID]PresenterConstructor, len(ctors))
	for id, c := range ctors {
		m[id] = c
	}
	return &PresenterFactory{ctors: m}
}

// Create builds the presenter for id. An unmapped identifier is a programming
// error and panics.
func (f *PresenterFactory) Create(id screen.ID, v View, services *registry.Registry) Presenter {
	ctor, ok := f.ctors[id]
	if !ok || ctor == nil {
		panic(fmt.Sprintf("view: no presenter mapped for screen %q", id))
	}
	return ctor(v, services)
}

// Covers returns the identifiers in ids that have no presenter mapping.
func (f *PresenterFactory) Covers(ids []screen.ID) []screen.ID {
	var missing []screen.ID
	for _, id := range ids {
		if f.ctors[id] == nil {
			missing = append(missing, id)
		}
	}
	return missing
}
