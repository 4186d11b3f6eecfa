package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/BaSui01/fluentwait/types"
	"github.com/BaSui01/fluentwait/wait"
)

// WaitInstruments records wait events as OTel metrics. It implements
// wait.Observer.
type WaitInstruments struct {
	polls        metric.Int64Counter
	waits        metric.Int64Counter
	waitDuration metric.Float64Histogram
}

var _ wait.Observer = (*WaitInstruments)(nil)

// NewWaitInstruments creates the wait instruments on meter.
func NewWaitInstruments(meter metric.Meter) (*WaitInstruments, error) {
	polls, err := meter.Int64Counter("fluentwait.polls",
		metric.WithDescription("Condition evaluations"),
		metric.WithUnit("{poll}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64Counter("fluentwait.waits",
		metric.WithDescription("Finished waits"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}
	waitDuration, err := meter.Float64Histogram("fluentwait.wait.duration",
		metric.WithDescription("Wait duration"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &WaitInstruments{polls: polls, waits: waits, waitDuration: waitDuration}, nil
}

// ObservePoll implements wait.Observer.
func (w *WaitInstruments) ObservePoll(_ string, _ time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = string(types.GetErrorCode(err))
		if result == "" {
			result = "unknown"
		}
	}
	w.polls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
}

// ObserveWait implements wait.Observer.
func (w *WaitInstruments) ObserveWait(_ string, outcome wait.Outcome, elapsed time.Duration, _ int) {
	attrs := metric.WithAttributes(attribute.String("outcome", string(outcome)))
	w.waits.Add(context.Background(), 1, attrs)
	w.waitDuration.Record(context.Background(), elapsed.Seconds(), attrs)
}
