package helpers

import (
	"testing"
	"time"

	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// EventFilter selects telemetry events
	EventFilter func(*api.Event) bool

	// EventWaiter waits for telemetry events. Create it before triggering
	// the action
	EventWaiter struct {
		consumer topic.Consumer[*api.Event]
		filter   EventFilter
	}
)

// DefaultWaitTimeout bounds every wait in tests
const DefaultWaitTimeout = 5 * time.Second

// NewEventWaiter subscribes to the hub for matching events
func NewEventWaiter(hub *telemetry.Hub, filter EventFilter) *EventWaiter {
	return &EventWaiter{
		consumer: hub.NewConsumer(),
		filter:   filter,
	}
}

// Wait blocks until count matching events arrive and returns them
func (w *EventWaiter) Wait(t *testing.T, count int) []*api.Event {
	t.Helper()
	defer w.consumer.Close()

	deadline := time.NewTimer(DefaultWaitTimeout)
	defer deadline.Stop()

	var res []*api.Event
	for len(res) < count {
		select {
		case ev, ok := <-w.consumer.Receive():
			if !ok {
				t.Fatalf("event consumer closed after %d events", len(res))
			}
			if ev != nil && w.filter(ev) {
				res = append(res, ev)
			}
		case <-deadline.C:
			t.Fatalf("timeout waiting for %d events", count)
		}
	}
	return res
}

// EventOfType filters events by type
func EventOfType(types ...api.EventType) EventFilter {
	return func(ev *api.Event) bool {
		for _, typ := range types {
			if ev.Type == typ {
				return true
			}
		}
		return false
	}
}
