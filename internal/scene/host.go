package scene

// Operation is an in-flight host operation observed by polling.
type Operation interface {
	// Done reports whether the operation has finished.
	Done() bool

	// Progress returns the completion fraction. Hosts may report values
	// outside [0,1]; the orchestrator clamps them.
	Progress() float64
}

// LoadOperation is an in-flight scene load.
type LoadOperation interface {
	Operation

	// SetAllowActivation controls whether the host may activate the scene
	// once it has loaded. A load whose activation is held never reports Done.
	SetAllowActivation(allow bool)
}

// Aborter is implemented by operations the host can abandon when the
// orchestrator cancels the transition that owns them.
type Aborter interface {
	Abort()
}

// Host performs the actual scene loading and unloading.
type Host interface {
	// BeginLoad starts loading scene. An error means the scene cannot be
	// resolved and no operation was started.
	BeginLoad(scene string, additive bool) (LoadOperation, error)

	// BeginUnload starts unloading scene.
	BeginUnload(scene string) (Operation, error)

	// ActiveScene returns the active scene, or "" when there is none.
	ActiveScene() string
}
