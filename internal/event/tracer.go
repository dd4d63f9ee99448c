package event

import (
	"fmt"
	"io"
	"sync"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/stagehand/internal/logging"
)

// Tracer observes every event on a bus and records the ones whose type
// matches one of its glob patterns. Patterns use "." as the separator, so
// "scene.*" matches "scene.load_started" and "**" matches everything.
// With no patterns, every event matches.
type Tracer struct {
	bus    *Bus
	logger *logging.Logger

	mu       sync.RWMutex
	patterns []string
	globs    []glob.Glob
	out      io.Writer
	subID    string
}

// NewTracer creates a tracer for bus. It does not observe anything until Start.
func NewTracer(bus *Bus, logger *logging.Logger, patterns []string) (*Tracer, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	t := &Tracer{
		bus:    bus,
		logger: logger.WithComponent("tracer"),
	}
	if err := t.SetPatterns(patterns); err != nil {
		return nil, err
	}
	return t, nil
}

// SetPatterns replaces the active patterns. On error the previous patterns
// stay in effect.
func (t *Tracer) SetPatterns(patterns []string) error {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '.')
		if err != nil {
			return fmt.Errorf("invalid trace pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	t.mu.Lock()
	t.patterns = append([]string(nil), patterns...)
	t.globs = globs
	t.mu.Unlock()
	return nil
}

// Patterns returns a copy of the active patterns.
func (t *Tracer) Patterns() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.patterns...)
}

// SetOutput directs matching events to w, one line per event, in addition to
// the debug log. A nil writer disables line output.
func (t *Tracer) SetOutput(w io.Writer) {
	t.mu.Lock()
	t.out = w
	t.mu.Unlock()
}

// Start subscribes the tracer to every event. Calling Start twice is a no-op.
func (t *Tracer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.subID != "" {
		return
	}
	t.subID = t.bus.SubscribeAll(t.handle)
}

// Stop unsubscribes the tracer.
func (t *Tracer) Stop() {
	t.mu.Lock()
	id := t.subID
	t.subID = ""
	t.mu.Unlock()
	if id != "" {
		t.bus.Unsubscribe(id)
	}
}

// Matches reports whether eventType is selected by the active patterns.
func (t *Tracer) Matches(eventType string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.matchLocked(eventType)
}

func (t *Tracer) matchLocked(eventType string) bool {
	if len(t.globs) == 0 {
		return true
	}
	for _, g := range t.globs {
		if g.Match(eventType) {
			return true
		}
	}
	return false
}

func (t *Tracer) handle(e Event) {
	t.mu.RLock()
	matched := t.matchLocked(e.EventType())
	out := t.out
	t.mu.RUnlock()

	if !matched {
		return
	}
	t.logger.Debug("event", "event_type", e.EventType(), "payload", fmt.Sprintf("%+v", e))
	if out != nil {
		_, _ = fmt.Fprintln(out, Format(e))
	}
}

// Format renders an event as "<type> <payload>" for traces.
func Format(e Event) string {
	switch ev := e.(type) {
	case LoadSceneRequest:
		return fmt.Sprintf("%s scene=%s additive=%t activate=%t cancel_previous=%t",
			ev.EventType(), ev.Scene, ev.Additive, ev.ActivateOnLoad, ev.CancelPrevious)
	case UnloadSceneRequest:
		return fmt.Sprintf("%s scene=%s", ev.EventType(), ev.Scene)
	case ActivateSceneRequest:
		return fmt.Sprintf("%s scene=%s", ev.EventType(), ev.Scene)
	case SceneLoadStarted:
		return fmt.Sprintf("%s scene=%s additive=%t", ev.EventType(), ev.Scene, ev.Additive)
	case SceneLoadProgress:
		return fmt.Sprintf("%s scene=%s progress=%.2f", ev.EventType(), ev.Scene, ev.Progress)
	case SceneLoadCompleted:
		return fmt.Sprintf("%s scene=%s additive=%t", ev.EventType(), ev.Scene, ev.Additive)
	case SceneUnloadCompleted:
		return fmt.Sprintf("%s scene=%s", ev.EventType(), ev.Scene)
	case SceneLoadCanceled:
		return fmt.Sprintf("%s scene=%s", ev.EventType(), ev.Scene)
	case ShowView:
		return fmt.Sprintf("%s screen=%s", ev.EventType(), ev.Screen)
	case HideView:
		return fmt.Sprintf("%s screen=%s", ev.EventType(), ev.Screen)
	case ToggleView:
		return fmt.Sprintf("%s screen=%s", ev.EventType(), ev.Screen)
	case ViewShown:
		return fmt.Sprintf("%s screen=%s", ev.EventType(), ev.Screen)
	case ViewHidden:
		return fmt.Sprintf("%s screen=%s", ev.EventType(), ev.Screen)
	case MusicVolumeChanged:
		return fmt.Sprintf("%s value=%.2f", ev.EventType(), ev.Value)
	case SfxVolumeChanged:
		return fmt.Sprintf("%s value=%.2f", ev.EventType(), ev.Value)
	case LanguageChanged:
		return fmt.Sprintf("%s code=%s label=%s", ev.EventType(), ev.Code, ev.Label)
	default:
		return e.EventType()
	}
}
