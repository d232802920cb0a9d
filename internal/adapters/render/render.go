// Package render applies cycle commands to presentation surfaces other than
// the browser page: structured logs, Prometheus metrics and a terminal view.
package render

import (
	"context"
	"errors"

	"github.com/okian/fraudboard/internal/domain/cycle"
	"github.com/okian/fraudboard/internal/domain/risk"
	"github.com/okian/fraudboard/pkg/logger"
	"github.com/okian/fraudboard/pkg/metrics"
)

// Outcome labels used by logs and metrics.
const (
	OutcomeOK         = "ok"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Sink receives every command produced by a cycle.
type Sink interface {
	Render(ctx context.Context, cmd cycle.Command) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, cmd cycle.Command) error

// Render calls f.
func (f SinkFunc) Render(ctx context.Context, cmd cycle.Command) error { return f(ctx, cmd) }

// Outcome classifies cmd.
func Outcome(cmd cycle.Command) string {
	switch {
	case cmd.Superseded:
		return OutcomeSuperseded
	case cmd.OK:
		return OutcomeOK
	default:
		return OutcomeFailed
	}
}

// Fanout renders to every sink and joins their errors.
type Fanout []Sink

// Render implements Sink.
func (f Fanout) Render(ctx context.Context, cmd cycle.Command) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Render(ctx, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes one structured line per command.
type Log struct {
	Logger logger.Logger
}

// Render implements Sink.
func (l Log) Render(ctx context.Context, cmd cycle.Command) error {
	lg := l.Logger
	if lg == nil {
		lg = logger.Get()
	}
	fields := []logger.Field{
		logger.String("cycle_id", cmd.CycleID),
		logger.Uint64("seq", cmd.Seq),
		logger.String("outcome", Outcome(cmd)),
		logger.Int("latencyMs", int(cmd.LatencyMS)),
	}
	switch {
	case cmd.Superseded:
		lg.Debug(ctx, "stale prediction discarded", fields...)
	case cmd.OK:
		fields = append(fields,
			logger.String("risk", cmd.RiskScore.Fixed()),
			logger.String("status", cmd.StatusText),
			logger.Bool("alert", cmd.PlayAlert),
		)
		if cmd.PlayAlert {
			lg.Warn(ctx, "high risk transaction", fields...)
			return nil
		}
		lg.Info(ctx, "prediction rendered", fields...)
	default:
		fields = append(fields,
			logger.String("kind", string(cmd.FailureKind)),
			logger.String("status", cmd.StatusText),
		)
		lg.Error(ctx, "prediction failed", fields...)
	}
	return nil
}

// Metrics records each command in the global metrics manager.
type Metrics struct{}

// Render implements Sink.
func (Metrics) Render(_ context.Context, cmd cycle.Command) error {
	outcome := Outcome(cmd)
	metrics.RecordCycle(outcome)
	switch outcome {
	case OutcomeSuperseded:
		metrics.RecordSuperseded()
	case OutcomeFailed:
		metrics.RecordCycleFailure(string(cmd.FailureKind))
	case OutcomeOK:
		metrics.RecordRiskScore(float64(cmd.RiskScore))
		metrics.RecordVerdict(cmd.Verdict.Label())
		if cmd.Background == risk.ModeAlert {
			metrics.RecordAlert()
		}
		if cmd.Trend != nil {
			metrics.UpdateTrendPoints(len(cmd.Trend.Values))
		}
		metrics.UpdateHistoryRows(len(cmd.History))
	}
	return nil
}
