package logging

import (
	"context"
	"errors"
	"log/slog"
)

// ContextProvider returns attributes evaluated at the time of each record.
type ContextProvider func() []slog.Attr

// BatchContext tags records with the id of the running batch. Nothing is
// added between batches.
func BatchContext(batchID func() string) ContextProvider {
	return func() []slog.Attr {
		if id := batchID(); id != "" {
			return []slog.Attr{slog.String("batch", id)}
		}
		return nil
	}
}

// tee hands every record to each of its sinks.
type tee []slog.Handler

func newTee(sinks ...slog.Handler) tee {
	t := make(tee, 0, len(sinks))
	for _, h := range sinks {
		if h != nil {
			t = append(t, h)
		}
	}
	return t
}

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle keeps going past a failing sink and reports all failures.
func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t tee) WithGroup(name string) slog.Handler {
	if name == "" {
		return t
	}
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t tee) each(fn func(slog.Handler) slog.Handler) tee {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}

// tagged appends the provider's attributes to each record.
type tagged struct {
	next     slog.Handler
	provider ContextProvider
}

func (h tagged) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h tagged) Handle(ctx context.Context, r slog.Record) error {
	if attrs := h.provider(); len(attrs) > 0 {
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h tagged) WithAttrs(attrs []slog.Attr) slog.Handler {
	return tagged{next: h.next.WithAttrs(attrs), provider: h.provider}
}

func (h tagged) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return tagged{next: h.next.WithGroup(name), provider: h.provider}
}
