// Package observability provides the runtime's structured logging, metrics,
// and tracing wrappers (spec SPEC_FULL.md Ambient Stack).
package observability

import (
	"context"
	"log/slog"
	"os"
	"regexp"
)

// redactPatterns matches values that look like API keys/tokens/bearer
// headers so log lines never leak credentials (spec §6: provider
// credentials, BYOK overrides).
var redactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(sk-[a-zA-Z0-9]{10,})`),
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._\-]{10,})`),
	regexp.MustCompile(`(?i)(api[_-]?key["']?\s*[:=]\s*["']?)([a-zA-Z0-9._\-]{8,})`),
}

const redacted = "[REDACTED]"

// redactingHandler wraps an slog.Handler, scrubbing known secret shapes out
// of the message and string-valued attributes before they reach the
// underlying handler.
type redactingHandler struct {
	slog.Handler
}

func (h redactingHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Message = redact(r.Message)
	newRecord := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		if a.Value.Kind() == slog.KindString {
			a.Value = slog.StringValue(redact(a.Value.String()))
		}
		newRecord.AddAttrs(a)
		return true
	})
	return h.Handler.Handle(ctx, newRecord)
}

// WithAttrs and WithGroup keep derived loggers (logger.With, WithRun)
// behind the redacting wrapper.
func (h redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	for i, a := range attrs {
		if a.Value.Kind() == slog.KindString {
			attrs[i].Value = slog.StringValue(redact(a.Value.String()))
		}
	}
	return redactingHandler{h.Handler.WithAttrs(attrs)}
}

func (h redactingHandler) WithGroup(name string) slog.Handler {
	return redactingHandler{h.Handler.WithGroup(name)}
}

func redact(s string) string {
	for _, p := range redactPatterns {
		s = p.ReplaceAllString(s, redacted)
	}
	return s
}

// NewLogger builds a JSON-output slog.Logger in production (json=true) or a
// text handler for local development, with redaction applied to every
// record.
func NewLogger(json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if json {
		base = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		base = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(redactingHandler{base})
}

// WithRun returns a logger with run/session correlation fields attached, so
// every log line emitted during one Driver.Run call can be grouped.
func WithRun(logger *slog.Logger, sessionID, runID string) *slog.Logger {
	return logger.With("session_id", sessionID, "run_id", runID)
}
