package broadphase

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("hashgrid.broadphase")

// Metrics for sweeps run through CollideAll.
var (
	sweepTotal      metric.Int64Counter
	candidatesTotal metric.Int64Counter
	dispatchedTotal metric.Int64Counter
	sharedBuckets   metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		sweepTotal, err = meter.Int64Counter(
			"broadphase_sweeps_total",
			metric.WithDescription("Number of grid sweeps"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		candidatesTotal, err = meter.Int64Counter(
			"broadphase_candidates_total",
			metric.WithDescription("Proxy pairs considered by sweeps"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		dispatchedTotal, err = meter.Int64Counter(
			"broadphase_pairs_dispatched_total",
			metric.WithDescription("Pairs handed to the narrow phase"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sharedBuckets, err = meter.Int64Histogram(
			"broadphase_shared_buckets",
			metric.WithDescription("Buckets examined per sweep"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordSweepMetrics(ctx context.Context, res SweepResult, self bool) {
	if err := initMetrics(); err != nil {
		return
	}

	kind := "cross"
	if self {
		kind = "self"
	}
	attrs := metric.WithAttributes(attribute.String("kind", kind))

	sweepTotal.Add(ctx, 1, attrs)
	candidatesTotal.Add(ctx, int64(res.Candidates), attrs)
	dispatchedTotal.Add(ctx, int64(res.Dispatched), attrs)
	sharedBuckets.Record(ctx, int64(res.Buckets), attrs)
}
