package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/viperball/matchsim/internal/dispatcher"

// instruments are the dispatcher's OTel metrics, no-ops unless a meter
// provider is installed.
type instruments struct {
	processed metric.Int64Counter
	failed    metric.Int64Counter
	dropped   metric.Int64Counter
}

func commandAttr(command string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", command))
}

// newInstruments registers the counters and a queue depth gauge fed by
// depths.
func newInstruments(depths func(observe func(command string, n int))) (instruments, error) {
	m := otel.Meter(instrumentationName)
	var in instruments

	gauge, err := m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Events waiting in a buffered lane"))
	if err != nil {
		return in, fmt.Errorf("creating queue size gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		depths(func(command string, n int) {
			o.ObserveInt64(gauge, int64(n), metric.WithAttributes(attribute.String("command", command)))
		})
		return nil
	}, gauge)
	if err != nil {
		return in, fmt.Errorf("registering queue callback: %w", err)
	}

	if in.processed, err = m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Events handled")); err != nil {
		return in, fmt.Errorf("creating processed counter: %w", err)
	}
	if in.failed, err = m.Int64Counter("dispatcher.events.failed",
		metric.WithDescription("Events whose handler returned an error")); err != nil {
		return in, fmt.Errorf("creating failed counter: %w", err)
	}
	if in.dropped, err = m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Events rejected by a full lane")); err != nil {
		return in, fmt.Errorf("creating dropped counter: %w", err)
	}
	return in, nil
}
