package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failing rejects every record.
type failing struct{ slog.Handler }

func (failing) Enabled(context.Context, slog.Level) bool { return true }

func (failing) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func textSink(buf *bytes.Buffer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
}

func TestTee_SendsToEverySink(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(newTee(textSink(&a, slog.LevelInfo), nil, textSink(&b, slog.LevelInfo)))

	log.Info("final whistle")
	assert.Contains(t, a.String(), "final whistle")
	assert.Contains(t, b.String(), "final whistle")
}

func TestTee_Enabled(t *testing.T) {
	ctx := context.Background()
	info := textSink(&bytes.Buffer{}, slog.LevelInfo)
	debug := textSink(&bytes.Buffer{}, slog.LevelDebug)

	assert.False(t, newTee().Enabled(ctx, slog.LevelError))
	assert.False(t, newTee(info).Enabled(ctx, slog.LevelDebug))
	assert.True(t, newTee(info, debug).Enabled(ctx, slog.LevelDebug))
}

func TestTee_FailingSink(t *testing.T) {
	var buf bytes.Buffer
	h := newTee(failing{}, textSink(&buf, slog.LevelInfo), failing{})

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "kept", 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink down")
	assert.Contains(t, buf.String(), "kept")
}

func TestTee_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := newTee(textSink(&buf, slog.LevelInfo))

	slog.New(h.WithAttrs([]slog.Attr{slog.String("team", "LAK")})).Info("scored")
	assert.Contains(t, buf.String(), "team=LAK")

	slog.New(h.WithGroup("drive")).Info("ended", "result", "punt")
	assert.Contains(t, buf.String(), "drive.result=punt")

	assert.Equal(t, h, h.WithGroup(""))
}

func TestTagged_KeepsProviderThroughWith(t *testing.T) {
	var buf bytes.Buffer
	h := tagged{next: textSink(&buf, slog.LevelInfo), provider: BatchContext(func() string { return "b-9" })}

	slog.New(h.WithAttrs([]slog.Attr{slog.Int("game", 4)}).WithGroup("g")).Info("stored", "ok", true)
	assert.Contains(t, buf.String(), "game=4")
	assert.Contains(t, buf.String(), "g.ok=true")
	assert.Contains(t, buf.String(), "g.batch=b-9")
}

func TestBatchContext(t *testing.T) {
	assert.Nil(t, BatchContext(func() string { return "" })())
	assert.Equal(t, []slog.Attr{slog.String("batch", "b-1")}, BatchContext(func() string { return "b-1" })())
}
