package display

import "time"

type (
	// Timer represents a stoppable spinner timer
	Timer interface {
		Channel() <-chan time.Time
		Stop() bool
	}

	// TimerConstructor builds a spinner timer with the given delay
	TimerConstructor func(delay time.Duration) Timer

	systemTimer struct {
		*time.Timer
	}
)

// NewTimer builds the default system-backed spinner timer
func NewTimer(delay time.Duration) Timer {
	return &systemTimer{
		Timer: time.NewTimer(delay),
	}
}

func (t *systemTimer) Channel() <-chan time.Time {
	return t.C
}
