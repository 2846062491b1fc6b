package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"

	"github.com/viperball/matchsim/internal/config"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, p.Meter("test"))
}

func TestNew_NoExporter(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "viperball-sim"})
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_FileExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(Config{Enabled: true, ServiceName: "viperball-sim", BatchTimeout: time.Second, LogWriter: &buf})
	require.NoError(t, err)
	require.NotNil(t, p.LoggerProvider())

	var rec otellog.Record
	rec.SetBody(otellog.StringValue("batch finished"))
	p.LoggerProvider().Logger("test").Emit(context.Background(), rec)

	require.NoError(t, p.Flush(context.Background()))
	assert.Contains(t, buf.String(), "batch finished")
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestConfigFrom(t *testing.T) {
	var buf bytes.Buffer
	c := ConfigFrom(config.OTelConfig{
		Enabled:      true,
		ServiceName:  "svc",
		BatchTimeout: 2 * time.Second,
		Endpoint:     "localhost:4318",
		Insecure:     true,
	}, "1.2.3", &buf)

	assert.True(t, c.Enabled)
	assert.Equal(t, "svc", c.ServiceName)
	assert.Equal(t, "1.2.3", c.ServiceVersion)
	assert.Equal(t, 2*time.Second, c.BatchTimeout)
	assert.Equal(t, "localhost:4318", c.Endpoint)
	assert.True(t, c.Insecure)
	assert.Same(t, &buf, c.LogWriter)
}
