package events

import (
	"context"
	"testing"
	"time"
)

type busTestEvent struct{ BaseEvent }

func (busTestEvent) EventName() string { return "bus.test" }

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	got := make(chan string, 2)

	bus.Subscribe("bus.test", HandlerFunc(func(ctx context.Context, e Event) error {
		got <- "first"
		return nil
	}))
	bus.Subscribe("bus.test", HandlerFunc(func(ctx context.Context, e Event) error {
		got <- "second"
		return nil
	}))

	bus.Publish(context.Background(), busTestEvent{BaseEvent: NewBaseEvent()})

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(time.Second):
			t.Fatal("handler was not invoked")
		}
	}
}

func TestPublishSkipsUnrelatedEventNames(t *testing.T) {
	bus := NewInMemoryBus(nil)
	got := make(chan struct{}, 1)

	bus.Subscribe("other.event", HandlerFunc(func(ctx context.Context, e Event) error {
		got <- struct{}{}
		return nil
	}))

	bus.Publish(context.Background(), busTestEvent{BaseEvent: NewBaseEvent()})

	select {
	case <-got:
		t.Fatal("handler for a different event name must not fire")
	case <-time.After(50 * time.Millisecond):
	}
}
