package event

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/stagehand/internal/logging"
)

// testEvent is an event with a caller-chosen tag.
type testEvent struct {
	typ string
}

func (e testEvent) EventType() string { return e.typ }

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var received Event
	bus.Subscribe(TypeSceneLoadStarted, func(e Event) {
		received = e
	})

	bus.Publish(SceneLoadStarted{Scene: "Game"})

	if received == nil {
		t.Fatal("Handler should have received the event")
	}
	started, ok := received.(SceneLoadStarted)
	if !ok {
		t.Fatalf("Expected SceneLoadStarted, got %T", received)
	}
	if started.Scene != "Game" {
		t.Errorf("Expected scene 'Game', got %q", started.Scene)
	}
}

func TestBus_DispatchOrder(t *testing.T) {
	bus := NewBus(nil)

	const n = 8
	var order []int
	for i := range n {
		bus.Subscribe("test.event", func(e Event) {
			order = append(order, i)
		})
	}

	bus.Publish(testEvent{"test.event"})

	if len(order) != n {
		t.Fatalf("Expected %d calls, got %d", n, len(order))
	}
	for i, got := range order {
		if got != i {
			t.Errorf("call %d went to handler %d, want subscription order", i, got)
		}
	}
}

func TestBus_SameHandlerTwice(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	handler := func(e Event) { calls++ }
	id1 := bus.Subscribe("test.event", handler)
	id2 := bus.Subscribe("test.event", handler)

	if id1 == id2 {
		t.Error("Subscribing twice should yield two distinct IDs")
	}

	bus.Publish(testEvent{"test.event"})
	if calls != 2 {
		t.Errorf("Expected 2 invocations, got %d", calls)
	}

	bus.Unsubscribe(id1)
	bus.Publish(testEvent{"test.event"})
	if calls != 3 {
		t.Errorf("Expected one remaining invocation, total calls %d", calls)
	}
}

func TestBus_ExactTypeDispatch(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe(TypeSceneLoadCompleted, func(e Event) {
		t.Error("Handler should not be called for a different event type")
	})

	bus.Publish(SceneUnloadCompleted{Scene: "Game"})
	bus.Publish(testEvent{"scene.load"})
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(nil)

	var events []string
	bus.SubscribeAll(func(e Event) {
		events = append(events, e.EventType())
	})

	bus.Publish(testEvent{"event.one"})
	bus.Publish(testEvent{"event.two"})
	bus.Publish(testEvent{"event.three"})

	expected := []string{"event.one", "event.two", "event.three"}
	if len(events) != len(expected) {
		t.Fatalf("Expected %d events, got %d", len(expected), len(events))
	}
	for i, e := range expected {
		if events[i] != e {
			t.Errorf("Expected event %d to be %q, got %q", i, e, events[i])
		}
	}
}

func TestBus_WildcardRunsAfterSpecific(t *testing.T) {
	bus := NewBus(nil)

	var events []string
	bus.SubscribeAll(func(e Event) {
		events = append(events, "wildcard")
	})
	bus.Subscribe("specific.event", func(e Event) {
		events = append(events, "specific")
	})

	bus.Publish(testEvent{"specific.event"})

	if strings.Join(events, ",") != "specific,wildcard" {
		t.Errorf("Expected specific then wildcard, got %v", events)
	}
}

func TestOn(t *testing.T) {
	bus := NewBus(nil)

	var got []SceneLoadProgress
	id := On(bus, func(e SceneLoadProgress) {
		got = append(got, e)
	})

	if bus.HandlerCount(TypeSceneLoadProgress) != 1 {
		t.Fatalf("On should subscribe under the event's tag")
	}

	bus.Publish(SceneLoadProgress{Scene: "Game", Progress: 0.5})
	bus.Publish(SceneLoadStarted{Scene: "Game"})

	if len(got) != 1 || got[0].Progress != 0.5 {
		t.Errorf("Expected one typed progress event, got %+v", got)
	}

	if !bus.Unsubscribe(id) {
		t.Error("ID returned by On should unsubscribe")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return true when subscription exists")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after unsubscribe, got %d", bus.SubscriptionCount())
	}

	bus.Publish(testEvent{"test.event"})

	if called {
		t.Error("Handler should not be called after unsubscribing")
	}
}

func TestBus_UnsubscribeIdempotent(t *testing.T) {
	bus := NewBus(nil)

	if bus.Unsubscribe("non-existent-id") {
		t.Error("Unsubscribe should return false for non-existent ID")
	}

	id := bus.Subscribe("test.event", func(e Event) {})
	bus.Unsubscribe(id)
	if bus.Unsubscribe(id) {
		t.Error("Second Unsubscribe of the same ID should return false")
	}
}

func TestBus_UnsubscribeOne(t *testing.T) {
	bus := NewBus(nil)

	calls := make(map[string]int)
	id1 := bus.Subscribe("test.event", func(e Event) {
		calls["handler1"]++
	})
	bus.Subscribe("test.event", func(e Event) {
		calls["handler2"]++
	})

	bus.Unsubscribe(id1)
	bus.Publish(testEvent{"test.event"})

	if calls["handler1"] != 0 {
		t.Error("handler1 should not be called after unsubscribing")
	}
	if calls["handler2"] != 1 {
		t.Error("handler2 should still be called")
	}
}

func TestBus_SnapshotIsolation(t *testing.T) {
	bus := NewBus(nil)

	var calls []string
	var selfID string
	selfID = bus.Subscribe("test.event", func(e Event) {
		calls = append(calls, "self")
		bus.Unsubscribe(selfID)
		bus.Subscribe("test.event", func(e Event) {
			calls = append(calls, "late")
		})
	})
	bus.Subscribe("test.event", func(e Event) {
		calls = append(calls, "second")
	})

	bus.Publish(testEvent{"test.event"})

	if strings.Join(calls, ",") != "self,second" {
		t.Errorf("First publish should use the snapshot, got %v", calls)
	}

	calls = nil
	bus.Publish(testEvent{"test.event"})

	if strings.Join(calls, ",") != "second,late" {
		t.Errorf("Second publish should see the changes, got %v", calls)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus(nil)

	bus.Subscribe("event.one", func(e Event) {})
	bus.Subscribe("event.two", func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 3 {
		t.Errorf("Expected 3 subscriptions before clear, got %d", bus.SubscriptionCount())
	}

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after clear, got %d", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, logging.LevelDebug))

	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe("test.event", func(e Event) {
		calls++
	})

	bus.Publish(testEvent{"test.event"})

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
	if !strings.Contains(buf.String(), "event handler panicked") {
		t.Errorf("Expected the panic to be logged, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "handler panic") {
		t.Errorf("Expected the panic value in the log, got %q", buf.String())
	}
}

func TestBus_PublishNil(t *testing.T) {
	bus := NewBus(nil)
	bus.SubscribeAll(func(e Event) {
		t.Error("nil events should not be dispatched")
	})
	bus.Publish(nil)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil)

	var mu sync.Mutex
	calls := 0
	bus.Subscribe("test.event", func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(testEvent{"test.event"})
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("Expected 100 calls, got %d", calls)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus(nil)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			id := bus.Subscribe("test.event", func(e Event) {})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after concurrent add/remove, got %d", bus.SubscriptionCount())
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)

	ids := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe("test.event", func(e Event) {})
		if ids[id] {
			t.Errorf("Duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}

func TestNewLoadSceneRequest(t *testing.T) {
	req := NewLoadSceneRequest("Game")

	if req.Scene != "Game" || req.Additive || !req.ActivateOnLoad || !req.CancelPrevious {
		t.Errorf("unexpected defaults: %+v", req)
	}
	if req.EventType() != TypeLoadSceneRequest {
		t.Errorf("EventType() = %q, want %q", req.EventType(), TypeLoadSceneRequest)
	}
}

func TestCatalog(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range Catalog() {
		if seen[d.Type] {
			t.Errorf("duplicate catalog entry %q", d.Type)
		}
		seen[d.Type] = true
		if d.Name == "" || d.Summary == "" {
			t.Errorf("catalog entry %q is incomplete", d.Type)
		}
	}
	if len(seen) != 17 {
		t.Errorf("expected 17 event types, got %d", len(seen))
	}
}
