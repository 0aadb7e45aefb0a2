package helpers

import (
	"slices"
	"sync"

	"github.com/kode4food/paybutton/internal/telemetry"
	"github.com/kode4food/paybutton/pkg/api"
)

type (
	// LogEntry is one entry captured by RecordingLogger
	LogEntry struct {
		Data  api.Metadata
		Level string
		Code  string
	}

	// RecordingLogger captures everything logged or tracked through it
	RecordingLogger struct {
		entries []LogEntry
		tracked []api.Metadata
		flushes int
		mu      sync.Mutex
	}
)

var _ telemetry.Logger = (*RecordingLogger)(nil)

// NewRecordingLogger creates an empty RecordingLogger
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) Info(
	code string, data api.Metadata,
) telemetry.Logger {
	return l.log("info", code, data)
}

func (l *RecordingLogger) Warn(
	code string, data api.Metadata,
) telemetry.Logger {
	return l.log("warn", code, data)
}

func (l *RecordingLogger) Error(
	code string, data api.Metadata,
) telemetry.Logger {
	return l.log("error", code, data)
}

func (l *RecordingLogger) Track(fields api.Metadata) telemetry.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracked = append(l.tracked, fields)
	return l
}

func (l *RecordingLogger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushes++
}

// Entries returns the logged entries in order
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

// Codes returns the codes of the logged entries in order
func (l *RecordingLogger) Codes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]string, len(l.entries))
	for i, e := range l.entries {
		res[i] = e.Code
	}
	return res
}

// HasCode returns whether an entry was logged with the code
func (l *RecordingLogger) HasCode(code string) bool {
	return slices.Contains(l.Codes(), code)
}

// CountCode returns how many entries were logged with the code
func (l *RecordingLogger) CountCode(code string) int {
	n := 0
	for _, c := range l.Codes() {
		if c == code {
			n++
		}
	}
	return n
}

// Entry returns the first entry logged with the code
func (l *RecordingLogger) Entry(code string) (LogEntry, bool) {
	for _, e := range l.Entries() {
		if e.Code == code {
			return e, true
		}
	}
	return LogEntry{}, false
}

// Tracked returns every tracked payload
func (l *RecordingLogger) Tracked() []api.Metadata {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.tracked)
}

// Flushes returns how many times Flush was called
func (l *RecordingLogger) Flushes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flushes
}

func (l *RecordingLogger) log(
	level, code string, data api.Metadata,
) telemetry.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{
		Level: level,
		Code:  code,
		Data:  data,
	})
	return l
}
