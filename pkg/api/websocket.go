package api

type (
	// WebSocketEvent is a telemetry event sent to WebSocket clients
	WebSocketEvent struct {
		Type      EventType `json:"type"`
		Data      Metadata  `json:"data,omitempty"`
		Code      string    `json:"code,omitempty"`
		Level     string    `json:"level,omitempty"`
		Timestamp int64     `json:"timestamp"`
		Sequence  int64     `json:"sequence"`
	}

	// SubscribeRequest is sent by clients to subscribe to events
	SubscribeRequest struct {
		Type string             `json:"type"`
		Data ClientSubscription `json:"data"`
	}

	// ClientSubscription configures which events a WebSocket client receives
	ClientSubscription struct {
		EventTypes []EventType `json:"event_types,omitempty"`
		PaymentID  PaymentID   `json:"payment_id,omitempty"`
	}

	// SubscribedResult acknowledges a subscription
	SubscribedResult struct {
		Type     string `json:"type"`
		Sequence int64  `json:"sequence"`
	}
)

// Matches returns whether the event passes the subscription's filters
func (s *ClientSubscription) Matches(ev *Event) bool {
	if len(s.EventTypes) > 0 {
		found := false
		for _, typ := range s.EventTypes {
			if typ == ev.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.PaymentID == "" {
		return true
	}
	id, ok := GetMetaString[PaymentID](ev.Data, MetaPaymentID)
	return ok && id == s.PaymentID
}
