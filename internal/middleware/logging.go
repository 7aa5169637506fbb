// Package middleware wraps session operations with logging and metrics.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/tally/internal/metrics"
)

// Outcome labels an expected error kind. Expected errors are logged at warn
// level; anything else is logged as an error.
type Outcome struct {
	Err   error
	Label string
}

// Observer logs every operation with its duration and records it in metrics.
type Observer struct {
	metrics  *metrics.Metrics
	outcomes []Outcome
}

// NewObserver returns an Observer. m may be nil.
func NewObserver(m *metrics.Metrics, outcomes ...Outcome) *Observer {
	return &Observer{metrics: m, outcomes: outcomes}
}

// Observe runs fn as operation op.
// It logs the operation name, duration, and any error kind/message.
func (o *Observer) Observe(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		expected := false
		for _, oc := range o.outcomes {
			if errors.Is(err, oc.Err) {
				outcome = oc.Label
				expected = true
				break
			}
		}
		if expected {
			slog.Warn("Operation failed",
				"operation", op,
				"outcome", outcome,
				"error", err,
				"duration_ms", duration.Milliseconds(),
			)
		} else {
			slog.Error("Operation failed",
				"operation", op,
				"error", err,
				"duration_ms", duration.Milliseconds(),
			)
		}
	} else {
		slog.Debug("Operation ok",
			"operation", op,
			"duration_ms", duration.Milliseconds(),
		)
	}

	if o.metrics != nil {
		o.metrics.RecordOperation(op, outcome, duration)
	}
	return err
}
