// Package localization tracks the selected UI language. Translation tables
// and key lookup belong to the embedding application; this service only
// resolves language codes against the supported set, persists the choice and
// announces it on the bus.
package localization

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/prefs"
)

// KeyLanguageCode is the preference key for the selected language.
const KeyLanguageCode = "localization.language_code"

// supported lists the available languages; the first is the default.
var supported = []language.Tag{
	language.English,
	language.Spanish,
	language.Italian,
	language.French,
	language.Russian,
}

var matcher = language.NewMatcher(supported)

// Language is a selectable language.
type Language struct {
	Code  string // BCP 47 tag, e.g. "es"
	Label string // Name of the language in itself, e.g. "español"
}

// Languages returns the supported languages, default first.
func Languages() []Language {
	out := make([]Language, len(supported))
	for i, tag := range supported {
		out[i] = Language{Code: tag.String(), Label: label(tag)}
	}
	return out
}

// Switcher is the language interface presenters depend on.
type Switcher interface {
	Current() Language
	Languages() []Language
	SetLanguageCode(code string)
}

// Service implements Switcher on top of a preferences store.
type Service struct {
	bus    *event.Bus
	store  *prefs.Store
	logger *logging.Logger

	mu      sync.RWMutex
	current language.Tag
}

// NewService restores the stored language, falling back to English.
func NewService(bus *event.Bus, store *prefs.Store, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Service{
		bus:     bus,
		store:   store,
		logger:  logger.WithComponent("localization"),
		current: supported[0],
	}
	if store != nil {
		s.current = s.resolve(store.String(KeyLanguageCode, supported[0].String()))
	}
	s.logger.Debug("language restored", "code", s.current.String())
	return s
}

// Current returns the selected language.
func (s *Service) Current() Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Language{Code: s.current.String(), Label: label(s.current)}
}

// Languages implements Switcher.
func (s *Service) Languages() []Language { return Languages() }

// SetLanguageCode selects the supported language closest to code. Unknown
// codes select the default. Selecting the current language is a no-op;
// otherwise the choice is persisted and LanguageChanged is published.
func (s *Service) SetLanguageCode(code string) {
	tag := s.resolve(code)

	s.mu.Lock()
	if tag == s.current {
		s.mu.Unlock()
		return
	}
	s.current = tag
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Set(KeyLanguageCode, tag.String()); err != nil {
			s.logger.Warn("failed to persist language", "error", err)
		}
	}
	s.logger.Info("language changed", "code", tag.String())
	s.bus.Publish(event.LanguageChanged{Code: tag.String(), Label: label(tag)})
}

// resolve maps code onto a supported tag.
func (s *Service) resolve(code string) language.Tag {
	requested, err := language.Parse(code)
	if err != nil {
		s.logger.Warn("invalid language code, using default", "code", code, "default", supported[0].String())
		return supported[0]
	}
	_, index, confidence := matcher.Match(requested)
	if confidence == language.No {
		s.logger.Warn("unsupported language, using default", "code", code, "default", supported[0].String())
		return supported[0]
	}
	return supported[index]
}

func label(tag language.Tag) string {
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return tag.String()
}
