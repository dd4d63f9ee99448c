// Package audio holds the music and sound effects volume levels. Mixing and
// playback belong to the embedding application; this service only keeps the
// levels, persists them and announces changes on the bus.
package audio

import (
	"math"
	"sync"

	"github.com/Iron-Ham/stagehand/internal/event"
	"github.com/Iron-Ham/stagehand/internal/logging"
	"github.com/Iron-Ham/stagehand/internal/prefs"
)

// Preference keys.
const (
	KeyMusicVolume = "audio.music_volume"
	KeySfxVolume   = "audio.sfx_volume"
)

// DefaultVolume is used when no level has been stored.
const DefaultVolume = 1.0

// Manager is the volume interface presenters depend on.
type Manager interface {
	MusicVolume() float64
	SfxVolume() float64
	SetMusicVolume(v float64)
	SetSfxVolume(v float64)
}

// Service implements Manager on top of a preferences store.
type Service struct {
	bus    *event.Bus
	store  *prefs.Store
	logger *logging.Logger

	mu    sync.RWMutex
	music float64
	sfx   float64
}

// NewService restores the stored levels. A nil store keeps levels in memory.
func NewService(bus *event.Bus, store *prefs.Store, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Service{
		bus:    bus,
		store:  store,
		logger: logger.WithComponent("audio"),
		music:  DefaultVolume,
		sfx:    DefaultVolume,
	}
	if store != nil {
		s.music = clamp01(store.Float64(KeyMusicVolume, DefaultVolume))
		s.sfx = clamp01(store.Float64(KeySfxVolume, DefaultVolume))
	}
	return s
}

// MusicVolume returns the music level in [0,1].
func (s *Service) MusicVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.music
}

// SfxVolume returns the sound effects level in [0,1].
func (s *Service) SfxVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sfx
}

// SetMusicVolume clamps v to [0,1], persists it and publishes MusicVolumeChanged.
func (s *Service) SetMusicVolume(v float64) {
	v = clamp01(v)
	s.mu.Lock()
	s.music = v
	s.mu.Unlock()

	s.persist(KeyMusicVolume, v)
	s.bus.Publish(event.MusicVolumeChanged{Value: v})
}

// SetSfxVolume clamps v to [0,1], persists it and publishes SfxVolumeChanged.
func (s *Service) SetSfxVolume(v float64) {
	v = clamp01(v)
	s.mu.Lock()
	s.sfx = v
	s.mu.Unlock()

	s.persist(KeySfxVolume, v)
	s.bus.Publish(event.SfxVolumeChanged{Value: v})
}

func (s *Service) persist(key string, v float64) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(key, v); err != nil {
		s.logger.Warn("failed to persist volume", "key", key, "error", err)
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
