package presenter

import (
	"github.com/Iron-Ham/stagehand/internal/audio"
	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/localization"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/registry"
	"github.com/Iron-Ham/stagehand/internal/screen"
	"github.com/Iron-Ham/stagehand/internal/view"
)

// SettingsView is the view contract of the settings screen. Passing nil
// removes a callback.
type SettingsView interface {
	view.View
	OnClose(fn func())
	OnMusicVolume(fn func(float64))
	OnSfxVolume(fn func(float64))
	OnLanguage(fn func(code string))

	SetVolumes(music, sfx float64)
	SetAudioEnabled(enabled bool)
	SetLanguages(langs []localization.Language, current string)
	SetLanguageEnabled(enabled bool)
}

// Settings edits volume levels and the UI language.
type Settings struct {
	base
	view  SettingsView
	audio audio.Manager
	lang  localization.Switcher

	bound  bool
	subIDs []string
}

// NewSettings binds a settings presenter to v. Missing services disable the
// controls that need them.
func NewSettings(v view.View, services *registry.Registry, logger *logging.Logger) *Settings {
	if logger == nil {
		logger = logging.NopLogger()
	}
	p := &Settings{base: newBase(services, logger)}

	if m, err := registry.Get[audio.Manager](services); err != nil {
		logger.Warn("audio manager unavailable, volume controls disabled", "error", err)
	} else {
		p.audio = m
	}
	if s, err := registry.Get[localization.Switcher](services); err != nil {
		logger.Warn("localization unavailable, language picker disabled", "error", err)
	} else {
		p.lang = s
	}

	sv, ok := v.(SettingsView)
	if !ok {
		logger.Error("view does not support the settings contract")
		return p
	}
	p.view = sv
	return p
}

// Initialize pushes the current levels and languages into the view.
func (p *Settings) Initialize() {
	if p.view == nil {
		return
	}
	p.view.SetAudioEnabled(p.audio != nil)
	p.refreshVolumes()
	p.view.SetLanguageEnabled(p.lang != nil)
	p.refreshLanguages()
}

// SubscribeEvents binds the view callbacks and follows service changes on
// the bus. It is idempotent.
func (p *Settings) SubscribeEvents() {
	if p.view == nil || p.bound {
		return
	}
	p.bound = true

	p.view.OnClose(p.close)
	if p.audio != nil {
		p.view.OnMusicVolume(p.audio.SetMusicVolume)
		p.view.OnSfxVolume(p.audio.SetSfxVolume)
	}
	if p.lang != nil {
		p.view.OnLanguage(p.lang.SetLanguageCode)
	}

	if p.bus == nil {
		return
	}
	p.subIDs = append(p.subIDs,
		event.On(p.bus, func(event.MusicVolumeChanged) { p.refreshVolumes() }),
		event.On(p.bus, func(event.SfxVolumeChanged) { p.refreshVolumes() }),
		event.On(p.bus, func(event.LanguageChanged) { p.refreshLanguages() }),
	)
}

// UnsubscribeEvents undoes SubscribeEvents.
func (p *Settings) UnsubscribeEvents() {
	if p.view == nil || !p.bound {
		return
	}
	p.bound = false

	p.view.OnClose(nil)
	p.view.OnMusicVolume(nil)
	p.view.OnSfxVolume(nil)
	p.view.OnLanguage(nil)

	for _, id := range p.subIDs {
		p.bus.Unsubscribe(id)
	}
	p.subIDs = nil
}

func (p *Settings) Dispose() {
	p.UnsubscribeEvents()
}

func (p *Settings) close() {
	p.publish(event.HideView{Screen: screen.Settings.String()})
}

func (p *Settings) refreshVolumes() {
	if p.audio == nil {
		return
	}
	p.view.SetVolumes(p.audio.MusicVolume(), p.audio.SfxVolume())
}

func (p *Settings) refreshLanguages() {
	if p.lang == nil {
		return
	}
	p.view.SetLanguages(p.lang.Languages(), p.lang.Current().Code)
}
