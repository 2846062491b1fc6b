package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// InstrumentationName names the OTel logger of the simulator.
const InstrumentationName = "viperball-sim"

// ErrNotSetUp is returned when a sink is added before Setup.
var ErrNotSetUp = errors.New("logging not set up")

// SlogManager owns the process logger: a text sink, plus optional OTel and
// GELF sinks, all tagged with the running batch.
type SlogManager struct {
	logger  *slog.Logger
	sinks   []slog.Handler
	opts    *slog.HandlerOptions
	context ContextProvider
	stdout  io.Writer

	logProvider *sdklog.LoggerProvider
}

// NewSlogManager creates a manager that logs nowhere until Setup.
func NewSlogManager() *SlogManager {
	return &SlogManager{stdout: os.Stdout}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// SetContext registers attributes added to every record. Call it before Setup.
func (m *SlogManager) SetContext(provider ContextProvider) {
	m.context = provider
}

// Setup replaces all sinks. Records go to w, or stdout when w is nil, and to
// provider when it is non-nil.
func (m *SlogManager) Setup(w io.Writer, level string, provider *sdklog.LoggerProvider) {
	m.logProvider = provider
	m.opts = &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if t, ok := a.Value.Any().(time.Time); ok && a.Key == slog.TimeKey {
				a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	if w == nil {
		w = m.stdout
	}
	m.sinks = []slog.Handler{slog.NewTextHandler(w, m.opts)}
	if provider != nil {
		m.sinks = append(m.sinks, otelslog.NewHandler(InstrumentationName, otelslog.WithLoggerProvider(provider)))
	}

	m.build()
	m.logger.Info("Logging initialized", "level", level)
}

// AddGELF also sends every record to a Graylog server over UDP.
func (m *SlogManager) AddGELF(addr string) error {
	if m.opts == nil {
		return ErrNotSetUp
	}
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return fmt.Errorf("failed to create GELF writer: %w", err)
	}
	w.Facility = InstrumentationName

	m.sinks = append(m.sinks, slog.NewJSONHandler(w, m.opts))
	m.build()
	m.logger.Info("GELF logging enabled", "address", addr)
	return nil
}

func (m *SlogManager) build() {
	var h slog.Handler = newTee(m.sinks...)
	if m.context != nil {
		h = tagged{next: h, provider: m.context}
	}
	m.logger = slog.New(h)
}

// Logger returns the process logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Component returns the process logger tagged with a component name.
func (m *SlogManager) Component(name string) *slog.Logger {
	return m.Logger().With("component", name)
}

// Flush forces buffered OTel records out.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
