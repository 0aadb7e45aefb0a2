package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kode4food/paybutton/pkg/api"
	"github.com/kode4food/paybutton/pkg/log"
)

type (
	// Logger is the logging and telemetry collaborator of the engine. Calls
	// chain, and nothing leaves the process until Flush is called
	Logger interface {
		Info(code string, data api.Metadata) Logger
		Warn(code string, data api.Metadata) Logger
		Error(code string, data api.Metadata) Logger
		Track(fields api.Metadata) Logger
		Flush()
	}

	// BufferedLogger buffers entries and writes them through slog and the
	// telemetry hub on Flush
	BufferedLogger struct {
		base    *slog.Logger
		hub     *Hub
		common  api.Metadata
		now     func() time.Time
		entries []*api.Event
		mu      sync.Mutex
	}
)

const (
	levelInfo  = "info"
	levelWarn  = "warn"
	levelError = "error"
)

var _ Logger = (*BufferedLogger)(nil)

// NewLogger creates a buffered logger writing to base and publishing to
// hub. Either may be nil
func NewLogger(base *slog.Logger, hub *Hub) *BufferedLogger {
	if base == nil {
		base = slog.Default()
	}
	return &BufferedLogger{
		base:   base,
		hub:    hub,
		common: api.Metadata{},
		now:    time.Now,
	}
}

// With returns a logger sharing this logger's sinks whose tracked events
// always carry the given fields
func (l *BufferedLogger) With(common api.Metadata) *BufferedLogger {
	return &BufferedLogger{
		base:   l.base,
		hub:    l.hub,
		common: l.common.Apply(common),
		now:    l.now,
	}
}

func (l *BufferedLogger) Info(code string, data api.Metadata) Logger {
	return l.log(levelInfo, code, data)
}

func (l *BufferedLogger) Warn(code string, data api.Metadata) Logger {
	return l.log(levelWarn, code, data)
}

func (l *BufferedLogger) Error(code string, data api.Metadata) Logger {
	return l.log(levelError, code, data)
}

// Track records a telemetry payload merged with the common fields
func (l *BufferedLogger) Track(fields api.Metadata) Logger {
	l.append(&api.Event{
		Type: api.EventTypeTrack,
		Data: l.common.Apply(fields),
	})
	return l
}

// Flush writes and publishes every buffered entry, then clears the buffer
func (l *BufferedLogger) Flush() {
	l.mu.Lock()
	entries := l.entries
	l.entries = nil
	l.mu.Unlock()

	for _, ev := range entries {
		l.write(ev)
		l.hub.Publish(ev)
	}
}

// Pending returns the number of entries waiting for Flush
func (l *BufferedLogger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *BufferedLogger) log(level, code string, data api.Metadata) Logger {
	l.append(&api.Event{
		Type:  api.EventTypeLog,
		Level: level,
		Code:  code,
		Data:  data,
	})
	return l
}

func (l *BufferedLogger) append(ev *api.Event) {
	ev.Timestamp = l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, ev)
}

func (l *BufferedLogger) write(ev *api.Event) {
	attrs := make([]slog.Attr, 0, len(ev.Data)+1)
	if ev.Code != "" {
		attrs = append(attrs, log.Code(ev.Code))
	}
	for k, v := range ev.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	msg := ev.Code
	if ev.Type == api.EventTypeTrack {
		msg = "Telemetry tracked"
	}
	l.base.LogAttrs(context.Background(), slogLevel(ev.Level), msg, attrs...)
}

func slogLevel(level string) slog.Level {
	switch level {
	case levelWarn:
		return slog.LevelWarn
	case levelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Publish emits an engine event immediately, bypassing the buffer
func (l *BufferedLogger) Publish(typ api.EventType, data api.Metadata) {
	l.hub.Publish(&api.Event{
		Type:      typ,
		Timestamp: l.now(),
		Data:      l.common.Apply(data),
	})
}
