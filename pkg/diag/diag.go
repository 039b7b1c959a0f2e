// Package diag is the query engine's diagnostic stream: recoverable
// per-stack errors (no matching overload, division by zero,
// incomparable constants) are logged here and iteration continues,
// while fatal errors travel up the call stack as ordinary Go errors.
// The logger fans out to a colorized stderr handler and an in-memory
// ring, so --no-messages can silence the terminal without losing the
// count of suppressed diagnostics, and tests can assert on messages
// without scraping stderr.
package diag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	slogmulti "github.com/samber/slog-multi"

	"github.com/go-zwerg/zwerg/pkg/utils"
)

// Diag bundles the fanned-out logger with the ring it feeds.
type Diag struct {
	logger *slog.Logger
	ring   *RingHandler
}

// Options configures a Diag.
type Options struct {
	// Out receives rendered diagnostics (normally os.Stderr).
	Out io.Writer
	// Colorize enables severity coloring on Out.
	Colorize bool
	// Quiet drops the Out handler entirely (-s/--no-messages); the
	// ring still records everything.
	Quiet bool
	// RingSize caps the in-memory record buffer. Zero means 128.
	RingSize int
}

// New builds a Diag fanning out to a stream handler and the ring.
func New(opts Options) *Diag {
	if opts.RingSize == 0 {
		opts.RingSize = 128
	}
	ring := NewRingHandler(opts.RingSize)

	handlers := []slog.Handler{ring}
	if !opts.Quiet && opts.Out != nil {
		handlers = append(handlers, &streamHandler{out: opts.Out, colorize: opts.Colorize})
	}

	return &Diag{
		logger: slog.New(slogmulti.Fanout(handlers...)),
		ring:   ring,
	}
}

// Logger exposes the underlying slog.Logger for components that want
// structured attributes.
func (d *Diag) Logger() *slog.Logger { return d.logger }

// Ring exposes the in-memory record buffer.
func (d *Diag) Ring() *RingHandler { return d.ring }

// Recoverable logs a per-stack error; the caller drops the offending
// stack and continues.
func (d *Diag) Recoverable(err error) {
	d.logger.Warn(err.Error())
}

// Warnf logs a formatted warning.
func (d *Diag) Warnf(format string, args ...any) {
	d.logger.Warn(fmt.Sprintf(format, args...))
}

// streamHandler renders records one per line, with the severity
// colored when the destination is a terminal.
type streamHandler struct {
	out      io.Writer
	colorize bool
	attrs    []slog.Attr
}

func (h *streamHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *streamHandler) Handle(_ context.Context, r slog.Record) error {
	severity := "info"
	switch {
	case r.Level >= slog.LevelError:
		severity = "error"
	case r.Level >= slog.LevelWarn:
		severity = "warning"
	}
	if h.colorize {
		severity = utils.ColorizeSeverity(severity)
	}
	_, err := fmt.Fprintf(h.out, "%s: %s\n", severity, r.Message)
	return err
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

func (h *streamHandler) WithGroup(string) slog.Handler { return h }

// RingHandler keeps the most recent records in memory.
type RingHandler struct {
	mu   sync.Mutex
	max  int
	msgs []string
}

// NewRingHandler builds a ring capped at max records.
func NewRingHandler(max int) *RingHandler {
	return &RingHandler{max: max}
}

func (h *RingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *RingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, r.Message)
	if len(h.msgs) > h.max {
		h.msgs = h.msgs[len(h.msgs)-h.max:]
	}
	return nil
}

func (h *RingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *RingHandler) WithGroup(string) slog.Handler      { return h }

// Messages returns a copy of the retained record messages.
func (h *RingHandler) Messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Len reports how many records the ring currently retains.
func (h *RingHandler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}
