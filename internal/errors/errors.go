// Package errors provides centralized error definitions and error handling
// utilities for stagehand. It defines sentinel errors for the orchestration
// core, domain error types for scene transitions and views, semantic errors,
// and classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from a specific subsystem:
//   - SceneError: errors raised while loading, unloading or activating scenes
//   - ViewError: errors raised while showing or hiding a screen
//
// Semantic errors represent common error conditions:
//   - NotFoundError: a service, scene, descriptor or screen was not found
//   - ValidationError: invalid input or configuration
//
// # Policy
//
// Missing dependencies and missing configuration are logged and turn the
// requested operation into a no-op. Cancellation is never reported through
// this package to callers of the bus; [IsCancellation] exists so that
// asynchronous work can tell a superseded transition from a real failure.
//
// # Usage
//
//	err := errors.NewSceneError("begin load", errors.ErrSceneNotFound).WithScene("Game")
//	if errors.Is(err, errors.ErrSceneNotFound) { ... }
//
//	var viewErr *errors.ViewError
//	if errors.As(err, &viewErr) { ... }
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Aliases of the standard library helpers, so callers need one import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity ranks how loudly an error should be logged.
type Severity int

const (
	// SeverityDebug marks superseded work, such as a canceled transition.
	SeverityDebug Severity = iota
	// SeverityInfo marks expected conditions, such as a missing optional service.
	SeverityInfo
	// SeverityWarning marks a request that was dropped, such as an unknown screen.
	SeverityWarning
	// SeverityError marks a failed transition or view.
	SeverityError
	// SeverityCritical marks wiring mistakes, such as an unmapped presenter.
	SeverityCritical
)

var severityNames = [...]string{"debug", "info", "warning", "error", "critical"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// Registry sentinel errors
var (
	// ErrServiceNotFound indicates that no service is registered for a type.
	ErrServiceNotFound = New("service not found")
)

// Scene sentinel errors
var (
	// ErrSceneNotFound indicates that the scene host cannot resolve a scene name.
	ErrSceneNotFound = New("scene not found")
	// ErrSceneNotLoaded indicates an unload for a scene that is not loaded.
	ErrSceneNotLoaded = New("scene not loaded")
	// ErrNoActiveScene indicates that a reload was requested with no active scene.
	ErrNoActiveScene = New("no active scene")
)

// View sentinel errors
var (
	// ErrDescriptorNotFound indicates that no view descriptor is configured for a screen.
	ErrDescriptorNotFound = New("descriptor not found")
	// ErrDuplicateDescriptor indicates that a screen was described twice.
	ErrDuplicateDescriptor = New("duplicate descriptor")
	// ErrNoAnchors indicates that no anchor provider is available to parent a view.
	ErrNoAnchors = New("no anchors available")
	// ErrInstantiateFailed indicates that the view factory produced no object.
	ErrInstantiateFailed = New("view instantiation failed")
	// ErrNotAView indicates that an instantiated object does not expose the view capability.
	ErrNotAView = New("object is not a view")
	// ErrUnknownScreen indicates a screen identifier outside the known set.
	ErrUnknownScreen = New("unknown screen")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// StagehandError is implemented by every error type in this package.
type StagehandError interface {
	error
	Unwrap() error
	Severity() Severity
}

// baseError carries the fields shared by the domain error types.
type baseError struct {
	message  string
	cause    error
	severity Severity
}

func (e *baseError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return e.message + ": " + e.cause.Error()
}

func (e *baseError) Unwrap() error      { return e.cause }
func (e *baseError) Severity() Severity { return e.severity }

// Is matches target against the wrapped cause.
func (e *baseError) Is(target error) bool {
	return e.cause != nil && errors.Is(e.cause, target)
}

func formatWithContext(kind string, parts []string, message string, cause error) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
	}
	return fmt.Sprintf("%s: %s", prefix, message)
}

// SceneError represents a failed scene transition.
//
// Example:
//
//	err := errors.NewSceneError("begin load", errors.ErrSceneNotFound).WithScene("Game")
//	fmt.Println(err) // "scene error [scene=Game]: begin load: scene not found"
type SceneError struct {
	baseError
	Scene        string
	TransitionID string
}

// NewSceneError creates a new SceneError.
func NewSceneError(message string, cause error) *SceneError {
	return &SceneError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithScene adds a scene name to the error context.
func (e *SceneError) WithScene(scene string) *SceneError {
	e.Scene = scene
	return e
}

// WithTransition adds a transition ID to the error context.
func (e *SceneError) WithTransition(id string) *SceneError {
	e.TransitionID = id
	return e
}

// WithSeverity sets the error severity.
func (e *SceneError) WithSeverity(s Severity) *SceneError {
	e.severity = s
	return e
}

func (e *SceneError) Error() string {
	var parts []string
	if e.Scene != "" {
		parts = append(parts, fmt.Sprintf("scene=%s", e.Scene))
	}
	if e.TransitionID != "" {
		parts = append(parts, fmt.Sprintf("transition=%s", e.TransitionID))
	}
	return formatWithContext("scene error", parts, e.message, e.cause)
}

// Is matches any *SceneError target as well as the wrapped cause.
func (e *SceneError) Is(target error) bool {
	if _, ok := target.(*SceneError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ViewError represents a failed view lifecycle operation.
//
// Example:
//
//	err := errors.NewViewError("show", errors.ErrDescriptorNotFound).WithScreen("settings")
//	fmt.Println(err) // "view error [screen=settings]: show: descriptor not found"
type ViewError struct {
	baseError
	Screen string
	Layer  string
}

// NewViewError creates a new ViewError.
func NewViewError(message string, cause error) *ViewError {
	return &ViewError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityError,
		},
	}
}

// WithScreen adds a screen identifier to the error context.
func (e *ViewError) WithScreen(screen string) *ViewError {
	e.Screen = screen
	return e
}

// WithLayer adds a presentation layer to the error context.
func (e *ViewError) WithLayer(layer string) *ViewError {
	e.Layer = layer
	return e
}

// WithSeverity sets the error severity.
func (e *ViewError) WithSeverity(s Severity) *ViewError {
	e.severity = s
	return e
}

func (e *ViewError) Error() string {
	var parts []string
	if e.Screen != "" {
		parts = append(parts, fmt.Sprintf("screen=%s", e.Screen))
	}
	if e.Layer != "" {
		parts = append(parts, fmt.Sprintf("layer=%s", e.Layer))
	}
	return formatWithContext("view error", parts, e.message, e.cause)
}

func (e *ViewError) Is(target error) bool {
	if _, ok := target.(*ViewError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("service", "*audio.Service")
//	fmt.Println(err) // "service '*audio.Service' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:  fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity: SeverityWarning,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or configuration.
//
// Example:
//
//	err := errors.NewValidationError("unknown layer").WithField("layer").WithValue("modal")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityWarning,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return formatWithContext("validation error", parts, e.message, e.cause)
}

func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok || target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// IsCancellation reports whether err means that work was superseded or timed
// out rather than failed: context cancellation, context deadline, ErrCanceled
// or ErrTimeout.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	return Is(err, context.Canceled) || Is(err, context.DeadlineExceeded) ||
		Is(err, ErrCanceled) || Is(err, ErrTimeout)
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement StagehandError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var shErr StagehandError
	if As(err, &shErr) {
		return shErr.Severity()
	}

	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
