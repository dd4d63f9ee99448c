package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Iron-Ham/stagehand/internal/localization"
)

// volumeStep is how much one left/right press changes a volume slider.
const volumeStep = 0.1

// widget holds the state shared by every terminal view.
type widget struct {
	panel  *Panel
	title  string
	active bool
}

func (w *widget) Title() string         { return w.title }
func (w *widget) Active() bool          { return w.active }
func (w *widget) SetActive(active bool) { w.active = active }

// MenuView is a vertical list of actions. It satisfies presenter.MainMenuView.
type MenuView struct {
	widget
	cursor     int
	onPlay     func()
	onSettings func()
}

func newMenuView(panel *Panel, title string) *MenuView {
	return &MenuView{widget: widget{panel: panel, title: title}}
}

var menuItems = []string{"Play", "Settings"}

func (v *MenuView) Initialize()          { v.cursor = 0 }
func (v *MenuView) OnPlay(fn func())     { v.onPlay = fn }
func (v *MenuView) OnSettings(fn func()) { v.onSettings = fn }

// Teardown drops the callbacks.
func (v *MenuView) Teardown() {
	v.onPlay = nil
	v.onSettings = nil
}

// Destroy removes the view from its panel.
func (v *MenuView) Destroy() { v.panel.remove(v) }

// Cursor returns the selected item index.
func (v *MenuView) Cursor() int { return v.cursor }

func (v *MenuView) HandleKey(key string) bool {
	switch key {
	case "up", "k":
		v.cursor = (v.cursor + len(menuItems) - 1) % len(menuItems)
	case "down", "j", "tab":
		v.cursor = (v.cursor + 1) % len(menuItems)
	case "enter", " ":
		v.activate(v.cursor)
	case "p":
		v.activate(0)
	case "s":
		v.activate(1)
	default:
		return false
	}
	return true
}

func (v *MenuView) activate(item int) {
	var fn func()
	switch item {
	case 0:
		fn = v.onPlay
	case 1:
		fn = v.onSettings
	}
	if fn != nil {
		fn()
	}
}

func (v *MenuView) Render() string {
	var sb strings.Builder
	sb.WriteString(Title.Render(v.title))
	sb.WriteString("\n")
	for i, item := range menuItems {
		if i == v.cursor {
			sb.WriteString(Selected.Render("> " + item))
		} else {
			sb.WriteString(Item.Render("  " + item))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Settings rows.
const (
	rowMusic = iota
	rowSfx
	rowLanguage
	rowClose
	rowCount
)

// SettingsView edits volumes and the language. It satisfies
// presenter.SettingsView.
type SettingsView struct {
	widget
	row int

	music, sfx   float64
	audioEnabled bool

	langs       []localization.Language
	langIndex   int
	langEnabled bool

	onClose    func()
	onMusic    func(float64)
	onSfx      func(float64)
	onLanguage func(string)
}

func newSettingsView(panel *Panel, title string) *SettingsView {
	return &SettingsView{widget: widget{panel: panel, title: title}}
}

func (v *SettingsView) Initialize()                     { v.row = rowMusic }
func (v *SettingsView) OnClose(fn func())               { v.onClose = fn }
func (v *SettingsView) OnMusicVolume(fn func(float64))  { v.onMusic = fn }
func (v *SettingsView) OnSfxVolume(fn func(float64))    { v.onSfx = fn }
func (v *SettingsView) OnLanguage(fn func(code string)) { v.onLanguage = fn }
func (v *SettingsView) SetAudioEnabled(enabled bool)    { v.audioEnabled = enabled }
func (v *SettingsView) SetLanguageEnabled(enabled bool) { v.langEnabled = enabled }

// SetVolumes updates the sliders without notifying the callbacks.
func (v *SettingsView) SetVolumes(music, sfx float64) {
	v.music, v.sfx = music, sfx
}

// SetLanguages fills the picker and selects current without notifying the
// callbacks. An unknown current selects the first entry.
func (v *SettingsView) SetLanguages(langs []localization.Language, current string) {
	v.langs = langs
	v.langIndex = 0
	for i, l := range langs {
		if l.Code == current {
			v.langIndex = i
			break
		}
	}
}

// Teardown drops the callbacks.
func (v *SettingsView) Teardown() {
	v.onClose = nil
	v.onMusic = nil
	v.onSfx = nil
	v.onLanguage = nil
}

// Destroy removes the view from its panel.
func (v *SettingsView) Destroy() { v.panel.remove(v) }

// Volumes returns the slider values.
func (v *SettingsView) Volumes() (music, sfx float64) { return v.music, v.sfx }

func (v *SettingsView) HandleKey(key string) bool {
	switch key {
	case "up", "k":
		v.row = (v.row + rowCount - 1) % rowCount
	case "down", "j", "tab":
		v.row = (v.row + 1) % rowCount
	case "left", "h":
		v.adjust(-1)
	case "right", "l":
		v.adjust(1)
	case "enter", " ":
		if v.row == rowClose {
			v.close()
		}
	case "esc":
		v.close()
	default:
		return false
	}
	return true
}

func (v *SettingsView) close() {
	if v.onClose != nil {
		v.onClose()
	}
}

func (v *SettingsView) adjust(dir int) {
	switch v.row {
	case rowMusic:
		if v.audioEnabled && v.onMusic != nil {
			v.onMusic(stepVolume(v.music, dir))
		}
	case rowSfx:
		if v.audioEnabled && v.onSfx != nil {
			v.onSfx(stepVolume(v.sfx, dir))
		}
	case rowLanguage:
		if v.langEnabled && v.onLanguage != nil && len(v.langs) > 0 {
			i := (v.langIndex + dir + len(v.langs)) % len(v.langs)
			v.onLanguage(v.langs[i].Code)
		}
	}
}

func stepVolume(v float64, dir int) float64 {
	next := math.Round((v+float64(dir)*volumeStep)*100) / 100
	return min(1, max(0, next))
}

func (v *SettingsView) Render() string {
	var sb strings.Builder
	sb.WriteString(Title.Render(v.title))
	sb.WriteString("\n")

	rows := []struct {
		label   string
		value   string
		enabled bool
	}{
		{"Music", slider(v.music), v.audioEnabled},
		{"Effects", slider(v.sfx), v.audioEnabled},
		{"Language", v.languageLabel(), v.langEnabled},
		{"Close", "", true},
	}
	for i, r := range rows {
		line := fmt.Sprintf("%-9s %s", r.label, r.value)
		switch {
		case !r.enabled:
			sb.WriteString(Disabled.Render(strings.TrimSpace(line)))
		case i == v.row:
			sb.WriteString(Selected.Render(line))
		default:
			sb.WriteString(Item.Render(line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (v *SettingsView) languageLabel() string {
	if len(v.langs) == 0 {
		return "-"
	}
	return "< " + v.langs[v.langIndex].Label + " >"
}

func slider(level float64) string {
	filled := int(math.Round(level * 10))
	return fmt.Sprintf("[%s%s] %3.0f%%", strings.Repeat("#", filled), strings.Repeat("-", 10-filled), level*100)
}
