package events

import (
	"errors"
	"testing"
	"time"
)

func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("expected non-nil bus")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	if bus.bufferSize != defaultBufferSize {
		t.Errorf("expected buffer size %d, got %d", defaultBufferSize, bus.bufferSize)
	}
	if NewBusWithBuffer(-1).bufferSize != defaultBufferSize {
		t.Error("expected non-positive buffer size to fall back to default")
	}
}

func TestBusSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	if bus.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", bus.SubscriberCount())
	}

	bus.Unsubscribe(ch1)
	if bus.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", bus.SubscriberCount())
	}

	if _, ok := <-ch1; ok {
		t.Error("expected unsubscribed channel to be closed")
	}
	_ = ch2
}

func TestBusPublish(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	delivered := bus.Publish(NewRunStartedEvent("run-1", "queue", 4, 100))
	if delivered != 1 {
		t.Errorf("expected 1 delivery, got %d", delivered)
	}

	select {
	case received := <-ch:
		if received.Type != EventRunStarted {
			t.Errorf("expected type %s, got %s", EventRunStarted, received.Type)
		}
		if received.RunID != "run-1" {
			t.Errorf("expected run-1, got %s", received.RunID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestBusPublishMultipleSubscribers(t *testing.T) {
	bus := NewBus()

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()

	bus.Publish(NewQueueExhaustedEvent("run-1"))

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Type != EventQueueExhausted {
				t.Errorf("subscriber %d: expected type %s, got %s", i, EventQueueExhausted, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestBusPublishNonBlocking(t *testing.T) {
	bus := NewBusWithBuffer(1)
	ch := bus.Subscribe()

	// Only the first event fits; the rest are dropped without blocking
	for id := range 3 {
		bus.Publish(NewWorkerFinishedEvent("run-1", id, 0, 0))
	}

	if bus.Dropped() != 2 {
		t.Errorf("expected 2 dropped events, got %d", bus.Dropped())
	}

	select {
	case e := <-ch:
		if e.WorkerID != 0 {
			t.Errorf("expected first event to survive, got worker %d", e.WorkerID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for first event")
	}
}

func TestBusClose(t *testing.T) {
	bus := NewBus()

	ch := bus.Subscribe()
	bus.Close()

	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", bus.SubscriberCount())
	}

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestEventCreation(t *testing.T) {
	t.Run("RunStartedEvent", func(t *testing.T) {
		event := NewRunStartedEvent("run-1", "range", 8, 1000)
		if event.Data.Strategy != "range" || event.Data.Workers != 8 || event.Data.MaxNumber != 1000 {
			t.Errorf("unexpected data: %+v", event.Data)
		}
	})

	t.Run("WorkerFinishedEvent", func(t *testing.T) {
		event := NewWorkerFinishedEvent("run-1", 3, 250, 40)
		if event.Type != EventWorkerFinished {
			t.Errorf("expected %s, got %s", EventWorkerFinished, event.Type)
		}
		if event.WorkerID != 3 || event.Data.Claimed != 250 || event.Data.Found != 40 {
			t.Errorf("unexpected event: %+v", event)
		}
	})

	t.Run("RunCompletedEvent", func(t *testing.T) {
		event := NewRunCompletedEvent("run-1", 168, 1500*time.Millisecond)
		if event.Data.Duration != "1.5s" {
			t.Errorf("expected 1.5s, got %s", event.Data.Duration)
		}
	})

	t.Run("RunFailedEvent", func(t *testing.T) {
		event := NewRunFailedEvent("run-1", errors.New("sink closed"))
		if event.Data.Error != "sink closed" {
			t.Errorf("expected error message, got %q", event.Data.Error)
		}
		if NewRunFailedEvent("run-1", nil).Data.Error != "" {
			t.Error("expected empty error for nil")
		}
	})
}
