package flow

import (
	"slices"

	"github.com/kode4food/paybutton/pkg/util"
)

// StateTransitions maps states to their set of valid next states
type StateTransitions[T ~string] map[T]util.Set[T]

var instanceTransitions = StateTransitions[State]{
	StateCreated: util.SetOf(
		StateStarted,
		StateFailed,
		StateClosed,
	),
	StateStarted: util.SetOf(
		StateApproved,
		StateCancelled,
		StateFallback,
		StateFailed,
		StateClosed,
	),
	StateApproved:  util.SetOf(StateClosed),
	StateCancelled: util.SetOf(StateClosed),
	StateFallback:  util.SetOf(StateClosed),
	StateFailed:    util.SetOf(StateClosed),
	StateClosed:    {},
}

// CanTransition returns whether transition from one state to another is valid
func (t StateTransitions[T]) CanTransition(from, to T) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	return allowed.Contains(to)
}

// IsTerminal returns true if the state has no valid transitions
func (t StateTransitions[T]) IsTerminal(state T) bool {
	allowed, ok := t[state]
	return ok && allowed.IsEmpty()
}

// Table renders the transitions in the string form consumed by the state
// machine
func (t StateTransitions[T]) Table() map[string][]string {
	res := make(map[string][]string, len(t))
	for from, allowed := range t {
		next := make([]string, 0, allowed.Len())
		for _, to := range allowed.Items() {
			next = append(next, string(to))
		}
		slices.Sort(next)
		res[string(from)] = next
	}
	return res
}
