package registry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	stherrors "github.com/Iron-Ham/stagehand/internal/errors"
	"github.com/Iron-Ham/stagehand/internal/logging"
)

type greeter interface {
	Greet() string
}

type english struct{ name string }

func (e *english) Greet() string { return "hello " + e.name }

func TestRegisterAndGet(t *testing.T) {
	r := New(nil)

	svc := &english{name: "world"}
	Register[greeter](r, svc)

	got, err := Get[greeter](r)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != svc {
		t.Errorf("Get() = %v, want %v", got, svc)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegister_Overwrite(t *testing.T) {
	r := New(nil)

	first := &english{name: "first"}
	second := &english{name: "second"}
	Register[greeter](r, first)
	Register[greeter](r, second)

	got, err := Get[greeter](r)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != second {
		t.Errorf("expected last registration to win, got %v", got.Greet())
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestGet_AfterUnregister(t *testing.T) {
	var buf bytes.Buffer
	r := New(logging.NewWriterLogger(&buf, logging.LevelDebug))

	Register[greeter](r, &english{})
	Unregister[greeter](r)

	got, err := Get[greeter](r)
	if err == nil {
		t.Fatal("expected an error after Unregister")
	}
	if got != nil {
		t.Errorf("expected zero value, got %v", got)
	}
	if !errors.Is(err, stherrors.ErrServiceNotFound) {
		t.Errorf("expected ErrServiceNotFound, got %v", err)
	}
	var nf *stherrors.NotFoundError
	if !errors.As(err, &nf) || nf.ResourceType != "service" {
		t.Errorf("expected a service NotFoundError, got %T", err)
	}
	if !strings.Contains(buf.String(), "service not found") {
		t.Errorf("expected the miss to be logged, got %q", buf.String())
	}
}

func TestKeysAreStaticTypes(t *testing.T) {
	r := New(nil)

	svc := &english{name: "x"}
	Register(r, svc)

	if Has[greeter](r) {
		t.Error("a service registered as *english should not be found as greeter")
	}
	if !Has[*english](r) {
		t.Error("expected *english to be registered")
	}

	Register[greeter](r, svc)
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestUnregister_Absent(t *testing.T) {
	r := New(nil)
	Unregister[greeter](r)
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestClear(t *testing.T) {
	r := New(nil)
	Register(r, &english{})
	Register(r, 42)
	Register(r, "name")

	if got := r.Types(); len(got) != 3 {
		t.Fatalf("Types() = %v, want 3 entries", got)
	}

	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", r.Len())
	}
	if Has[int](r) {
		t.Error("Clear should drop every entry")
	}
}

func TestGet_NilInterface(t *testing.T) {
	r := New(nil)
	Register[greeter](r, nil)

	got, err := Get[greeter](r)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("expected nil greeter, got %v", got)
	}
}
