package sim

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("hashgrid.sim")

var (
	stepDuration  metric.Float64Histogram
	contactsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		stepDuration, err = meter.Float64Histogram(
			"sim_step_duration_seconds",
			metric.WithDescription("Wall time of one simulation step"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		contactsTotal, err = meter.Int64Counter(
			"sim_contacts_total",
			metric.WithDescription("Contacts found by the narrow phase"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordStep(ctx context.Context, d time.Duration, contacts int) {
	if err := initMetrics(); err != nil {
		return
	}
	stepDuration.Record(ctx, d.Seconds())
	contactsTotal.Add(ctx, int64(contacts))
}
