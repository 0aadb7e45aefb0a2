package flow

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/robbyt/go-fsm"

	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// State is the lifecycle state of a flow instance
	State string

	// Lifecycle tracks one flow instance from creation until it is closed.
	// Closing is idempotent and may race with the instance's own outcome;
	// whichever lands first wins
	Lifecycle struct {
		machine *fsm.Machine
		flow    string
		closed  atomic.Bool
	}
)

const (
	StateCreated   State = "created"
	StateStarted   State = "started"
	StateApproved  State = "approved"
	StateCancelled State = "cancelled"
	StateFallback  State = "fallback"
	StateFailed    State = "failed"
	StateClosed    State = "closed"
)

var ErrInvalidTransition = errors.New("invalid flow instance transition")

// NewLifecycle creates the lifecycle of an instance of the named flow
func NewLifecycle(h slog.Handler, flow string) (*Lifecycle, error) {
	if h == nil {
		h = slog.Default().Handler()
	}
	m, err := fsm.New(h, string(StateCreated), instanceTransitions.Table())
	if err != nil {
		return nil, err
	}
	return &Lifecycle{
		machine: m,
		flow:    flow,
	}, nil
}

// Flow returns the name of the flow this lifecycle belongs to
func (l *Lifecycle) Flow() string {
	return l.flow
}

// State returns the current state
func (l *Lifecycle) State() State {
	return State(l.machine.GetState())
}

// Transition moves the instance to the next state
func (l *Lifecycle) Transition(to State) error {
	from := l.State()
	if !instanceTransitions.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if err := l.machine.Transition(string(to)); err != nil {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Settle records the outcome of a started instance. It reports false when
// the instance was already closed, in which case no callback should fire
func (l *Lifecycle) Settle(to State) bool {
	if l.closed.Load() {
		return false
	}
	return l.Transition(to) == nil
}

// Close moves the instance to its terminal state. Only the first call
// reports true
func (l *Lifecycle) Close() bool {
	if !l.closed.CompareAndSwap(false, true) {
		return false
	}
	_ = l.Transition(StateClosed)
	return true
}

// IsClosed returns whether the instance was closed
func (l *Lifecycle) IsClosed() bool {
	return l.closed.Load()
}

// IsTerminal returns whether the instance reached a state with no exits
func (l *Lifecycle) IsTerminal() bool {
	return instanceTransitions.IsTerminal(l.State())
}

// OutcomeOf derives the outcome of a finished Start call
func OutcomeOf(inst Instance, err error) api.Outcome {
	if err != nil {
		return api.OutcomeFailed
	}
	o, ok := inst.(Observable)
	if !ok || o.Lifecycle() == nil {
		return api.OutcomeStarted
	}
	switch o.Lifecycle().State() {
	case StateApproved:
		return api.OutcomeApproved
	case StateCancelled:
		return api.OutcomeCancelled
	case StateFallback:
		return api.OutcomeFallback
	case StateFailed:
		return api.OutcomeFailed
	case StateClosed:
		return api.OutcomeAborted
	default:
		return api.OutcomeStarted
	}
}
