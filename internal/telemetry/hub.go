package telemetry

import (
	"sync"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/paybutton/pkg/api"
)

// Hub fans telemetry events out to any number of observers, such as the
// websocket stream of the development server
type Hub struct {
	topic     topic.Topic[*api.Event]
	prod      topic.Producer[*api.Event]
	closeOnce sync.Once
}

// NewHub creates an empty telemetry hub
func NewHub() *Hub {
	t := caravan.NewTopic[*api.Event]()
	return &Hub{
		topic: t,
		prod:  t.NewProducer(),
	}
}

// Publish sends an event to every current observer
func (h *Hub) Publish(ev *api.Event) {
	if h == nil || ev == nil {
		return
	}
	message.Send(h.prod, ev)
}

// NewConsumer registers a new observer of published events
func (h *Hub) NewConsumer() topic.Consumer[*api.Event] {
	return h.topic.NewConsumer()
}

// Close stops accepting new events
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.prod.Close()
	})
}
