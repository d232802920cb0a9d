// Package service provides the dashboard session: it runs prediction cycles
// against the scoring service, owns the visual state between cycles and
// discards outcomes that resolve after a newer cycle has been applied.
package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fraudboard/internal/adapters/render"
	"github.com/okian/fraudboard/internal/domain/cycle"
	"github.com/okian/fraudboard/internal/domain/feature"
	"github.com/okian/fraudboard/internal/domain/history"
	"github.com/okian/fraudboard/internal/domain/risk"
	"github.com/okian/fraudboard/internal/domain/trend"
	"github.com/okian/fraudboard/pkg/logger"
	"github.com/okian/fraudboard/pkg/metrics"
)

// Snapshot is the session state served to a freshly loaded page. Last is
// the most recently applied command and may be a failure; LastOK is the
// most recent success, which still owns the gauge, bar and background.
type Snapshot struct {
	Seq     uint64         `json:"seq"`
	Last    *cycle.Command `json:"last,omitempty"`
	LastOK  *cycle.Command `json:"last_ok,omitempty"`
	Trend   trend.Snapshot `json:"trend"`
	History []history.Row  `json:"history"`
}

// Service runs prediction cycles for one dashboard session.
type Service struct {
	mu sync.RWMutex

	// Core components
	scorer cycle.Scorer
	cycle  *cycle.Cycle
	sink   render.Sink

	// Configuration
	trendCapacity int
	alertLevel    float64
	policy        cycle.InputPolicy
	clock         func() time.Time

	// Session state, guarded by mu
	state       cycle.State
	last        *cycle.Command
	lastOK      *cycle.Command
	lastApplied uint64

	// Counters
	seq        atomic.Uint64
	inFlight   atomic.Int64
	ok         atomic.Uint64
	failed     atomic.Uint64
	superseded atomic.Uint64
	abandoned  atomic.Uint64
	alerts     atomic.Uint64

	// Lifecycle
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithScorer sets the scoring service client.
func WithScorer(sc cycle.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithSink sets where commands are rendered besides the HTTP response.
func WithSink(sink render.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithTrendCapacity sets the trend window size.
func WithTrendCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trendCapacity = n
		}
	}
}

// WithAlertLevel sets the risk score above which alert mode activates.
func WithAlertLevel(level float64) Option {
	return func(s *Service) {
		s.alertLevel = level
	}
}

// WithInputPolicy sets how non-numeric form fields are handled.
func WithInputPolicy(p cycle.InputPolicy) Option {
	return func(s *Service) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithClock sets the time source for labels.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		trendCapacity: trend.DefaultCapacity,
		alertLevel:    risk.DefaultAlertLevel,
		policy:        cycle.PolicyReject,
		clock:         time.Now,
		sink:          render.Fanout{render.Log{}, render.Metrics{}},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.cycle = cycle.New(s.scorer,
		cycle.WithClock(s.clock),
		cycle.WithAlertLevel(s.alertLevel),
		cycle.WithInputPolicy(s.policy),
	)
	s.state = cycle.NewState(s.trendCapacity)
	return s
}

// Start marks the session as serving.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.started = true
	s.startedAt = s.clock()
	s.logger.Info(ctx, "dashboard session started",
		logger.Int("trendCapacity", s.trendCapacity),
		logger.Float64("alertThreshold", s.alertLevel),
		logger.String("inputPolicy", string(s.policy)),
	)
	return nil
}

// Stop ends the session. Cycles still in flight finish but are not counted
// as started work.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "dashboard session stopped",
		logger.Uint64("cycles", s.seq.Load()),
	)
}

// Predict runs one cycle for in. Each call takes the next sequence number;
// when it resolves after a higher-numbered cycle was applied, the outcome is
// discarded and a superseded command is returned instead. A cycle whose
// caller cancelled ctx before the exchange resolved returns its failure but
// is not applied, so it cannot supersede cycles still in flight.
func (s *Service) Predict(ctx context.Context, in feature.Input) cycle.Command {
	seq := s.seq.Add(1)
	id := uuid.NewString()
	start := time.Now()

	metrics.UpdateCyclesInFlight(int(s.inFlight.Add(1)))
	vec, pred, err := s.cycle.Exchange(ctx, in)
	metrics.UpdateCyclesInFlight(int(s.inFlight.Add(-1)))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		cmd := cycle.Failed(err)
		cmd.CycleID = id
		cmd.Seq = seq
		cmd.LatencyMS = time.Since(start).Milliseconds()
		s.abandoned.Add(1)
		s.log().Debug(ctx, "cycle abandoned by caller",
			logger.String("cycle_id", id),
			logger.Uint64("seq", seq),
		)
		return cmd
	}

	var cmd cycle.Command
	switch {
	case seq <= s.lastApplied:
		cmd = cycle.Superseded(id, seq)
		s.superseded.Add(1)
	case err != nil:
		cmd = cycle.Failed(err)
		s.failed.Add(1)
	default:
		var next cycle.State
		cmd, next = s.cycle.Apply(s.state, vec, pred, s.cycle.Now())
		s.state = next
		s.ok.Add(1)
		if cmd.PlayAlert {
			s.alerts.Add(1)
		}
	}
	cmd.CycleID = id
	cmd.Seq = seq
	cmd.LatencyMS = time.Since(start).Milliseconds()

	if !cmd.Superseded {
		s.lastApplied = seq
		applied := cmd
		s.last = &applied
		if cmd.OK {
			s.lastOK = &applied
		}
	}

	// Rendered under the lock so sinks observe commands in applied order.
	if s.sink != nil {
		if rerr := s.sink.Render(ctx, cmd); rerr != nil {
			s.log().Warn(ctx, "render sink failed",
				logger.String("cycle_id", id),
				logger.Error(rerr),
			)
		}
	}
	return cmd
}

// Snapshot returns the current session state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Seq:     s.lastApplied,
		Trend:   s.state.Trend.Snapshot(),
		History: s.state.History.Rows(),
	}
	if s.last != nil {
		last := *s.last
		snap.Last = &last
	}
	if s.lastOK != nil {
		ok := *s.lastOK
		snap.LastOK = &ok
	}
	return snap
}

// Reset clears the trend and history, as a page reload does.
func (s *Service) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = cycle.NewState(s.trendCapacity)
	s.last = nil
	s.lastOK = nil
	// Outcomes of cycles issued before the reset must not repaint it.
	s.lastApplied = s.seq.Load()
	metrics.UpdateTrendPoints(0)
	metrics.UpdateHistoryRows(0)
	s.log().Info(ctx, "dashboard session reset")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"cycles":         s.seq.Load(),
		"ok":             s.ok.Load(),
		"failed":         s.failed.Load(),
		"superseded":     s.superseded.Load(),
		"abandoned":      s.abandoned.Load(),
		"alerts":         s.alerts.Load(),
		"inFlight":       s.inFlight.Load(),
		"lastApplied":    s.lastApplied,
		"trendPoints":    s.state.Trend.Len(),
		"trendCapacity":  s.trendCapacity,
		"historyRows":    s.state.History.Len(),
		"alertThreshold": s.alertLevel,
		"inputPolicy":    string(s.policy),
	}
	if s.started {
		stats["uptimeSeconds"] = s.clock().Sub(s.startedAt).Seconds()
	}
	return stats
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get()
}
