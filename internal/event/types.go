package event

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns the constant tag for this event type.
	// Convention: "category.action" (e.g., "scene.load_started", "view.shown").
	EventType() string
}

// Event type tags.
const (
	TypeLoadSceneRequest     = "scene.load_requested"
	TypeUnloadSceneRequest   = "scene.unload_requested"
	TypeReloadActiveRequest  = "scene.reload_requested"
	TypeActivateSceneRequest = "scene.activate_requested"
	TypeSceneLoadStarted     = "scene.load_started"
	TypeSceneLoadProgress    = "scene.load_progress"
	TypeSceneLoadCompleted   = "scene.load_completed"
	TypeSceneUnloadCompleted = "scene.unload_completed"
	TypeSceneLoadCanceled    = "scene.load_canceled"

	TypeShowView   = "view.show_requested"
	TypeHideView   = "view.hide_requested"
	TypeToggleView = "view.toggle_requested"
	TypeViewShown  = "view.shown"
	TypeViewHidden = "view.hidden"

	TypeMusicVolumeChanged = "audio.music_volume_changed"
	TypeSfxVolumeChanged   = "audio.sfx_volume_changed"
	TypeLanguageChanged    = "language.changed"
)

// -----------------------------------------------------------------------------
// Scene Requests
// -----------------------------------------------------------------------------

// LoadSceneRequest asks the scene orchestrator to load a scene.
type LoadSceneRequest struct {
	Scene          string // Scene to load
	Additive       bool   // Keep already loaded scenes
	ActivateOnLoad bool   // Activate as soon as loading finishes
	CancelPrevious bool   // Cancel a load that is still in flight
}

// NewLoadSceneRequest creates an exclusive, immediately activated load that
// supersedes any load in flight.
func NewLoadSceneRequest(scene string) LoadSceneRequest {
	return LoadSceneRequest{
		Scene:          scene,
		Additive:       false,
		ActivateOnLoad: true,
		CancelPrevious: true,
	}
}

func (LoadSceneRequest) EventType() string { return TypeLoadSceneRequest }

// UnloadSceneRequest asks the scene orchestrator to unload a scene.
type UnloadSceneRequest struct {
	Scene string
}

func (UnloadSceneRequest) EventType() string { return TypeUnloadSceneRequest }

// ReloadActiveRequest asks the scene orchestrator to reload the active scene.
type ReloadActiveRequest struct{}

func (ReloadActiveRequest) EventType() string { return TypeReloadActiveRequest }

// ActivateSceneRequest allows a scene loaded with ActivateOnLoad=false to activate.
type ActivateSceneRequest struct {
	Scene string
}

func (ActivateSceneRequest) EventType() string { return TypeActivateSceneRequest }

// -----------------------------------------------------------------------------
// Scene Results
// -----------------------------------------------------------------------------

// SceneLoadStarted is emitted when a load transition begins.
type SceneLoadStarted struct {
	Scene    string
	Additive bool
}

func (SceneLoadStarted) EventType() string { return TypeSceneLoadStarted }

// SceneLoadProgress reports the completion fraction of a load, in [0,1].
type SceneLoadProgress struct {
	Scene    string
	Progress float64
}

func (SceneLoadProgress) EventType() string { return TypeSceneLoadProgress }

// SceneLoadCompleted is emitted when a load finishes.
type SceneLoadCompleted struct {
	Scene    string
	Additive bool
}

func (SceneLoadCompleted) EventType() string { return TypeSceneLoadCompleted }

// SceneUnloadCompleted is emitted when an unload finishes.
type SceneUnloadCompleted struct {
	Scene string
}

func (SceneUnloadCompleted) EventType() string { return TypeSceneUnloadCompleted }

// SceneLoadCanceled is emitted when a load is superseded or times out.
type SceneLoadCanceled struct {
	Scene string
}

func (SceneLoadCanceled) EventType() string { return TypeSceneLoadCanceled }

// -----------------------------------------------------------------------------
// View Requests and Results
// -----------------------------------------------------------------------------

// ShowView asks the view orchestrator to show a screen.
type ShowView struct {
	Screen string
}

func (ShowView) EventType() string { return TypeShowView }

// HideView asks the view orchestrator to hide a screen.
type HideView struct {
	Screen string
}

func (HideView) EventType() string { return TypeHideView }

// ToggleView asks the view orchestrator to flip a screen's visibility.
type ToggleView struct {
	Screen string
}

func (ToggleView) EventType() string { return TypeToggleView }

// ViewShown is emitted after a screen's view and presenter are live.
type ViewShown struct {
	Screen string
}

func (ViewShown) EventType() string { return TypeViewShown }

// ViewHidden is emitted after a screen has been torn down.
type ViewHidden struct {
	Screen string
}

func (ViewHidden) EventType() string { return TypeViewHidden }

// -----------------------------------------------------------------------------
// Collaborator Events
// -----------------------------------------------------------------------------

// MusicVolumeChanged is emitted when the music volume changes.
type MusicVolumeChanged struct {
	Value float64
}

func (MusicVolumeChanged) EventType() string { return TypeMusicVolumeChanged }

// SfxVolumeChanged is emitted when the sound effects volume changes.
type SfxVolumeChanged struct {
	Value float64
}

func (SfxVolumeChanged) EventType() string { return TypeSfxVolumeChanged }

// LanguageChanged is emitted when the selected language changes.
type LanguageChanged struct {
	Code  string // BCP 47 tag, e.g. "en"
	Label string // Display name in the language itself
}

func (LanguageChanged) EventType() string { return TypeLanguageChanged }

// Descriptor documents one event type for listings.
type Descriptor struct {
	Type    string
	Name    string
	Fields  string
	Summary string
}

// Catalog lists every event type in the taxonomy.
func Catalog() []Descriptor {
	return []Descriptor{
		{TypeLoadSceneRequest, "LoadSceneRequest", "scene, additive, activate_on_load, cancel_previous", "request a scene load"},
		{TypeUnloadSceneRequest, "UnloadSceneRequest", "scene", "request a scene unload"},
		{TypeReloadActiveRequest, "ReloadActiveRequest", "", "reload the active scene exclusively"},
		{TypeActivateSceneRequest, "ActivateSceneRequest", "scene", "allow a held load to activate"},
		{TypeSceneLoadStarted, "SceneLoadStarted", "scene, additive", "a load began"},
		{TypeSceneLoadProgress, "SceneLoadProgress", "scene, progress", "load completion fraction"},
		{TypeSceneLoadCompleted, "SceneLoadCompleted", "scene, additive", "a load finished"},
		{TypeSceneUnloadCompleted, "SceneUnloadCompleted", "scene", "an unload finished"},
		{TypeSceneLoadCanceled, "SceneLoadCanceled", "scene", "a load was superseded or timed out"},
		{TypeShowView, "ShowView", "screen", "request a screen be shown"},
		{TypeHideView, "HideView", "screen", "request a screen be hidden"},
		{TypeToggleView, "ToggleView", "screen", "flip a screen's visibility"},
		{TypeViewShown, "ViewShown", "screen", "a screen became visible"},
		{TypeViewHidden, "ViewHidden", "screen", "a screen was torn down"},
		{TypeMusicVolumeChanged, "MusicVolumeChanged", "value", "music volume changed"},
		{TypeSfxVolumeChanged, "SfxVolumeChanged", "value", "sound effects volume changed"},
		{TypeLanguageChanged, "LanguageChanged", "code, label", "selected language changed"},
	}
}
