package api

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single backend request.
type CallEvent struct {
	Method    string
	Path      string
	Status    int
	LatencyMs int64
	RequestID string
	Success   bool
	ErrorCode string
}

// Observer receives events about backend calls for logging.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events through slog.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"method", event.Method,
		"path", event.Path,
		"status", event.Status,
		"latency_ms", event.LatencyMs,
		"request_id", event.RequestID,
	}
	if !event.Success {
		attrs = append(attrs, "error_code", event.ErrorCode)
		o.logger.Warn("api_call", attrs...)
		return
	}
	o.logger.Info("api_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
