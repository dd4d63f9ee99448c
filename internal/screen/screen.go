// Package screen defines the closed set of screen identifiers a view can be
// shown under.
package screen

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/util"
)

// ID identifies a logical UI context backed by a view/presenter pair.
type ID string

const (
	// MainMenu is the title screen shown once the main menu scene has loaded.
	MainMenu ID = "main_menu"
	// Settings is the audio and language settings screen.
	Settings ID = "settings"
)

// All returns every screen identifier in declaration order.
func All() []ID {
	return []ID{MainMenu, Settings}
}

// String returns the identifier's text.
func (id ID) String() string { return string(id) }

// Valid reports whether id is one of the known screens.
func (id ID) Valid() bool {
	for _, known := range All() {
		if id == known {
			return true
		}
	}
	return false
}

// Names returns the text of every identifier.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, id := range all {
		names[i] = string(id)
	}
	return names
}

// Parse converts text into a known screen identifier. Dashes are accepted in
// place of underscores. Unknown input yields a ValidationError that suggests
// the closest known screen.
func Parse(s string) (ID, error) {
	id := ID(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if id.Valid() {
		return id, nil
	}
	return "", errors.NewValidationError(fmt.Sprintf("unknown screen %q%s", s, util.DidYouMean(s, Names()))).
		WithField("screen").
		WithValue(s).
		WithCause(errors.ErrUnknownScreen)
}
