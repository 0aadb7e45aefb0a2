package api

import "time"

type (
	// EventType identifies a telemetry event published by the engine
	EventType string

	// Outcome is how a payment attempt finished
	Outcome string

	// Event is a telemetry event envelope streamed to observers
	Event struct {
		Timestamp time.Time `json:"timestamp"`
		Data      Metadata  `json:"data,omitempty"`
		Type      EventType `json:"type"`
		Code      string    `json:"code,omitempty"`
		Level     string    `json:"level,omitempty"`
	}

	// AttemptRecord is the journal entry of a finished payment attempt
	AttemptRecord struct {
		StartedAt       time.Time       `json:"started_at"`
		FinishedAt      time.Time       `json:"finished_at"`
		PaymentID       PaymentID       `json:"payment_id"`
		ButtonSessionID ButtonSessionID `json:"button_session_id"`
		Flow            string          `json:"flow"`
		FundingSource   FundingSource   `json:"funding_source"`
		BuyerIntent     BuyerIntent     `json:"buyer_intent"`
		Outcome         Outcome         `json:"outcome"`
		OrderID         OrderID         `json:"order_id,omitempty"`
		Error           string          `json:"error,omitempty"`
		Fallback        bool            `json:"fallback"`
	}
)

const (
	EventTypeLog             EventType = "log"
	EventTypeTrack           EventType = "track"
	EventTypeAttemptStarted  EventType = "attempt_started"
	EventTypeAttemptFinished EventType = "attempt_finished"
	EventTypeFlowSelected    EventType = "flow_selected"
	EventTypeFallback        EventType = "fallback"
)

const (
	OutcomeApproved  Outcome = "approved"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
	OutcomeFallback  Outcome = "fallback"
	OutcomeStarted   Outcome = "started"
	OutcomeAborted   Outcome = "aborted"
)

// Duration returns how long the attempt ran
func (r *AttemptRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
