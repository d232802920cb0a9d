// Package cycle implements one prediction request/render cycle: gather the
// feature input, run one exchange with the scoring service, and derive the
// complete presentation state from the response.
package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fraudboard/internal/domain/feature"
	"github.com/okian/fraudboard/internal/domain/history"
	"github.com/okian/fraudboard/internal/domain/risk"
	"github.com/okian/fraudboard/internal/domain/trend"
)

// Prediction is the part of the scoring response the cycle consumes.
type Prediction struct {
	FraudProbability float64
	Prediction       int
}

// Scorer performs the single exchange with the scoring service. It blocks
// until the exchange resolves or ctx is done.
type Scorer interface {
	Score(ctx context.Context, v feature.Vector) (Prediction, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, v feature.Vector) (Prediction, error)

// Score calls f.
func (f ScorerFunc) Score(ctx context.Context, v feature.Vector) (Prediction, error) {
	return f(ctx, v)
}

// InputPolicy selects how non-numeric form fields are handled.
type InputPolicy string

// Input policies.
const (
	// PolicyReject fails the cycle before any request is sent.
	PolicyReject InputPolicy = "reject"
	// PolicyPassthrough forwards non-numeric fields as null.
	PolicyPassthrough InputPolicy = "passthrough"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (InputPolicy, error) {
	switch InputPolicy(s) {
	case PolicyReject, PolicyPassthrough:
		return InputPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown input policy %q", s)
	}
}

// State is the visual state carried from one cycle to the next. The caller
// owns it; the cycle only returns the next value.
type State struct {
	Trend   trend.Series
	History history.Log
}

// NewState returns an empty state whose trend window holds capacity points.
func NewState(capacity int) State {
	return State{Trend: trend.New(capacity)}
}

// Option applies a configuration option to the Cycle.
type Option func(*Cycle)

// WithClock sets the time source for row and chart labels.
func WithClock(now func() time.Time) Option {
	return func(c *Cycle) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAlertLevel sets the score above which alert mode activates.
func WithAlertLevel(level float64) Option {
	return func(c *Cycle) {
		c.alertLevel = level
	}
}

// WithInputPolicy sets the non-numeric input policy.
func WithInputPolicy(p InputPolicy) Option {
	return func(c *Cycle) {
		if p != "" {
			c.policy = p
		}
	}
}

// Cycle runs prediction cycles against one Scorer.
type Cycle struct {
	scorer     Scorer
	now        func() time.Time
	alertLevel float64
	policy     InputPolicy
}

// New creates a Cycle with default configuration.
func New(scorer Scorer, opts ...Option) *Cycle {
	c := &Cycle{
		scorer:     scorer,
		now:        time.Now,
		alertLevel: risk.DefaultAlertLevel,
		policy:     PolicyReject,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AlertLevel returns the configured alert threshold.
func (c *Cycle) AlertLevel() float64 { return c.alertLevel }

// Policy returns the configured input policy.
func (c *Cycle) Policy() InputPolicy { return c.policy }

// Now returns the cycle clock reading.
func (c *Cycle) Now() time.Time { return c.now() }

// Run performs one complete cycle. On failure the returned State is st.
func (c *Cycle) Run(ctx context.Context, in feature.Input, st State) (Command, State) {
	id := uuid.NewString()
	vec, pred, err := c.Exchange(ctx, in)
	if err != nil {
		cmd := Failed(err)
		cmd.CycleID = id
		return cmd, st
	}
	cmd, next := c.Apply(st, vec, pred, c.now())
	cmd.CycleID = id
	return cmd, next
}

// Exchange parses the input and performs the scoring request.
func (c *Cycle) Exchange(ctx context.Context, in feature.Input) (feature.Vector, Prediction, error) {
	vec := feature.Parse(in)
	if c.policy == PolicyReject {
		if err := vec.Validate(); err != nil {
			return vec, Prediction{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if c.scorer == nil {
		return vec, Prediction{}, fmt.Errorf("%w: no scorer configured", ErrTransport)
	}
	pred, err := c.scorer.Score(ctx, vec)
	if err != nil {
		return vec, Prediction{}, err
	}
	return vec, pred, nil
}

// Apply derives the presentation state from a resolved exchange and returns
// it with the next State. It performs no I/O.
func (c *Cycle) Apply(st State, vec feature.Vector, pred Prediction, at time.Time) (Command, State) {
	score := risk.FromProbability(pred.FraudProbability)
	verdict := risk.VerdictOf(pred.Prediction)
	mode := score.ModeFor(c.alertLevel)
	label := at.Format(history.TimeLayout)

	next := State{
		Trend:   st.Trend.Append(label, float64(score)),
		History: st.History.Prepend(history.NewRow(at, vec.Amount, score, verdict)),
	}
	snap := next.Trend.Snapshot()

	return Command{
		OK:              true,
		StatusText:      verdict.Status(),
		RiskScore:       score,
		RiskText:        score.Text(),
		Verdict:         verdict,
		NeedleAngle:     score.NeedleAngle(),
		BarWidth:        float64(score),
		Background:      mode,
		BackgroundColor: mode.Color(),
		PlayAlert:       mode == risk.ModeAlert,
		Trend:           &snap,
		History:         next.History.Rows(),
	}, next
}
