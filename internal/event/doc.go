// Package event provides the synchronous pub-sub event bus that connects the
// stagehand orchestrators to each other and to their collaborators.
//
// Components never call each other directly. Callers publish request events
// (load a scene, show a screen); the scene and view orchestrators are the only
// subscribers that act on them, and they publish result events (load started,
// view shown) that other components react to.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType()
//   - [Bus]: Synchronous dispatcher keyed by the event type tag
//   - [Handler]: Function type for event handlers (func(Event))
//   - [Tracer]: Wildcard subscriber that records events matching glob patterns
//
// # Dispatch Rules
//
// Dispatch is by exact tag, never by any notion of subtype. Handlers run on the
// publisher's goroutine, in subscription order, over a snapshot of the handler
// list taken when Publish starts. Subscribing the same function twice yields
// two subscriptions. A handler that panics is logged with its stack and the
// remaining handlers still run.
//
// # Event Categories
//
// Scene requests:
//   - [LoadSceneRequest], [UnloadSceneRequest], [ReloadActiveRequest], [ActivateSceneRequest]
//
// Scene results:
//   - [SceneLoadStarted], [SceneLoadProgress], [SceneLoadCompleted]
//   - [SceneUnloadCompleted], [SceneLoadCanceled]
//
// View requests and results:
//   - [ShowView], [HideView], [ToggleView], [ViewShown], [ViewHidden]
//
// Collaborators:
//   - [MusicVolumeChanged], [SfxVolumeChanged], [LanguageChanged]
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//
//	// Typed subscription
//	id := event.On(bus, func(e event.SceneLoadCompleted) {
//	    fmt.Println("loaded", e.Scene)
//	})
//
//	// Subscribe to all events (tracing, metrics)
//	bus.SubscribeAll(func(e event.Event) { fmt.Println(e.EventType()) })
//
//	bus.Publish(event.NewLoadSceneRequest("Game"))
//
//	// Unsubscribe by the returned ID
//	bus.Unsubscribe(id)
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - scene.load_requested, scene.load_started, scene.load_canceled
//   - view.show_requested, view.shown
//   - audio.music_volume_changed, language.changed
package event
