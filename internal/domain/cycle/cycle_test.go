package cycle_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/okian/fraudboard/internal/domain/cycle"
	"github.com/okian/fraudboard/internal/domain/feature"
	"github.com/okian/fraudboard/internal/domain/history"
	"github.com/okian/fraudboard/internal/domain/risk"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeScorer records calls and returns canned results.
type fakeScorer struct {
	calls int
	last  feature.Vector
	pred  cycle.Prediction
	err   error
}

func (f *fakeScorer) Score(_ context.Context, v feature.Vector) (cycle.Prediction, error) {
	f.calls++
	f.last = v
	return f.pred, f.err
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 10, 14, 12, 30, 45, 0, time.UTC)
	return func() time.Time { return at }
}

func sampleInput() feature.Input {
	in := feature.DefaultInput()
	in.Time = "10000"
	in.Amount = "250.00"
	return in
}

func TestCycle_EndToEnd(t *testing.T) {
	Convey("Given a scoring service that flags fraud at 0.93", t, func() {
		scorer := &fakeScorer{pred: cycle.Prediction{FraudProbability: 0.93, Prediction: 1}}
		c := cycle.New(scorer, cycle.WithClock(fixedClock()))
		st := cycle.NewState(0)

		Convey("When a cycle runs for amount 250 at time 10000", func() {
			cmd, next := c.Run(context.Background(), sampleInput(), st)

			Convey("Then exactly one exchange carried the parsed vector", func() {
				So(scorer.calls, ShouldEqual, 1)
				So(scorer.last.Time, ShouldEqual, 10000.0)
				So(scorer.last.Amount, ShouldEqual, 250.0)
			})

			Convey("Then the command renders the fraud state", func() {
				So(cmd.OK, ShouldBeTrue)
				So(cmd.CycleID, ShouldNotBeEmpty)
				So(cmd.RiskScore.Fixed(), ShouldEqual, "93.00")
				So(cmd.RiskText, ShouldEqual, "Risk Score: 93.00%")
				So(cmd.StatusText, ShouldEqual, "FRAUD DETECTED")
				So(cmd.Background, ShouldEqual, risk.ModeAlert)
				So(cmd.PlayAlert, ShouldBeTrue)
				So(cmd.NeedleAngle, ShouldAlmostEqual, 77.4, 1e-9)
				So(cmd.BarWidth, ShouldEqual, 93.0)
			})

			Convey("Then one trend point and one history row are added", func() {
				So(next.Trend.Len(), ShouldEqual, 1)
				So(next.Trend.Values(), ShouldResemble, []float64{93})
				So(cmd.Trend.Values, ShouldResemble, []float64{93})
				So(cmd.History, ShouldResemble, []history.Row{{
					Time: "12:30:45", Amount: "$250", Risk: "93%", Verdict: "FRAUD",
				}})
			})

			Convey("Then the caller's state is unchanged", func() {
				So(st.Trend.Len(), ShouldEqual, 0)
				So(st.History.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestCycle_VerdictAndAlert(t *testing.T) {
	Convey("Given a scorer with configurable responses", t, func() {
		scorer := &fakeScorer{}
		c := cycle.New(scorer, cycle.WithClock(fixedClock()))
		st := cycle.NewState(0)

		Convey("When prediction is 1 with a tiny probability", func() {
			scorer.pred = cycle.Prediction{FraudProbability: 0.01, Prediction: 1}
			cmd, _ := c.Run(context.Background(), sampleInput(), st)

			Convey("Then it still renders as fraud without alerting", func() {
				So(cmd.StatusText, ShouldEqual, risk.StatusFraud)
				So(cmd.PlayAlert, ShouldBeFalse)
				So(cmd.Background, ShouldEqual, risk.ModeNormal)
			})
		})

		Convey("When the score is exactly 80.00", func() {
			scorer.pred = cycle.Prediction{FraudProbability: 0.80, Prediction: 0}
			cmd, _ := c.Run(context.Background(), sampleInput(), st)

			Convey("Then alert mode stays off", func() {
				So(cmd.PlayAlert, ShouldBeFalse)
				So(cmd.StatusText, ShouldEqual, risk.StatusLegitimate)
			})
		})

		Convey("When the score is 80.01 with a legitimate prediction", func() {
			scorer.pred = cycle.Prediction{FraudProbability: 0.8001, Prediction: 0}
			cmd, _ := c.Run(context.Background(), sampleInput(), st)

			Convey("Then alert mode activates regardless of the prediction", func() {
				So(cmd.PlayAlert, ShouldBeTrue)
				So(cmd.BackgroundColor, ShouldEqual, "#1a0000")
				So(cmd.StatusText, ShouldEqual, risk.StatusLegitimate)
			})
		})

		Convey("When the alert level is lowered", func() {
			c = cycle.New(scorer, cycle.WithAlertLevel(50))
			scorer.pred = cycle.Prediction{FraudProbability: 0.6}
			cmd, _ := c.Run(context.Background(), sampleInput(), st)

			Convey("Then the configured level is used", func() {
				So(c.AlertLevel(), ShouldEqual, 50.0)
				So(cmd.PlayAlert, ShouldBeTrue)
			})
		})
	})
}

func TestCycle_TrendAndHistory(t *testing.T) {
	Convey("Given eleven successful cycles", t, func() {
		tick := 0
		clock := func() time.Time {
			return time.Date(2026, 1, 1, 0, 0, tick, 0, time.UTC)
		}
		scorer := &fakeScorer{}
		c := cycle.New(scorer, cycle.WithClock(clock))
		st := cycle.NewState(10)

		for i := 1; i <= 11; i++ {
			tick = i
			scorer.pred = cycle.Prediction{FraudProbability: float64(i) / 100}
			_, st = c.Run(context.Background(), sampleInput(), st)
		}

		Convey("Then the trend keeps cycles 2 to 11 in order", func() {
			So(st.Trend.Len(), ShouldEqual, 10)
			So(st.Trend.Values()[0], ShouldEqual, 2.0)
			So(st.Trend.Values()[9], ShouldEqual, 11.0)
			So(st.Trend.Labels()[0], ShouldEqual, "00:00:02")
		})

		Convey("Then history keeps every row, newest first", func() {
			rows := st.History.Rows()
			So(len(rows), ShouldEqual, 11)
			So(rows[0].Time, ShouldEqual, "00:00:11")
			So(rows[10].Time, ShouldEqual, "00:00:01")
		})
	})
}

func TestCycle_Failure(t *testing.T) {
	Convey("Given a state with one prior cycle", t, func() {
		scorer := &fakeScorer{pred: cycle.Prediction{FraudProbability: 0.5}}
		c := cycle.New(scorer, cycle.WithClock(fixedClock()))
		_, st := c.Run(context.Background(), sampleInput(), cycle.NewState(0))

		Convey("When the network exchange fails", func() {
			scorer.err = fmt.Errorf("%w: connection refused", cycle.ErrTransport)
			cmd, next := c.Run(context.Background(), sampleInput(), st)

			Convey("Then only the failure status is rendered", func() {
				So(cmd.OK, ShouldBeFalse)
				So(cmd.StatusText, ShouldEqual, "backend connection failed")
				So(cmd.FailureKind, ShouldEqual, cycle.KindTransport)
				So(cmd.Trend, ShouldBeNil)
				So(cmd.History, ShouldBeNil)
				So(cmd.PlayAlert, ShouldBeFalse)
			})

			Convey("Then no trend point or history row is added", func() {
				So(next.Trend.Len(), ShouldEqual, 1)
				So(next.History.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the service answers with an error status", func() {
			scorer.err = fmt.Errorf("%w: status 500", cycle.ErrStatus)
			cmd, _ := c.Run(context.Background(), sampleInput(), st)

			Convey("Then the kind differs but the message is the same", func() {
				So(cmd.FailureKind, ShouldEqual, cycle.KindStatus)
				So(cmd.StatusText, ShouldEqual, cycle.MessageBackendFailed)
			})
		})

		Convey("When the response cannot be decoded", func() {
			scorer.err = fmt.Errorf("%w: unexpected EOF", cycle.ErrDecode)
			cmd, _ := c.Run(context.Background(), sampleInput(), st)

			Convey("Then it is a decode failure", func() {
				So(cmd.FailureKind, ShouldEqual, cycle.KindDecode)
				So(cmd.StatusText, ShouldEqual, cycle.MessageBackendFailed)
			})
		})

		Convey("When the scorer returns an unclassified error", func() {
			scorer.err = errors.New("boom")
			cmd, _ := c.Run(context.Background(), sampleInput(), st)

			Convey("Then it is still a backend failure", func() {
				So(cmd.FailureKind, ShouldEqual, cycle.KindUnknown)
				So(cmd.StatusText, ShouldEqual, cycle.MessageBackendFailed)
			})
		})
	})
}

func TestCycle_InputPolicy(t *testing.T) {
	Convey("Given a form with a non-numeric component", t, func() {
		in := sampleInput()
		So(in.Set("V3", "oops"), ShouldBeNil)
		scorer := &fakeScorer{pred: cycle.Prediction{FraudProbability: 0.2}}

		Convey("When the reject policy is active", func() {
			c := cycle.New(scorer)
			cmd, next := c.Run(context.Background(), in, cycle.NewState(0))

			Convey("Then the cycle fails fast without a request", func() {
				So(c.Policy(), ShouldEqual, cycle.PolicyReject)
				So(scorer.calls, ShouldEqual, 0)
				So(cmd.FailureKind, ShouldEqual, cycle.KindInvalidInput)
				So(cmd.StatusText, ShouldEqual, cycle.MessageInvalidInput)
				So(next.Trend.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the passthrough policy is active", func() {
			c := cycle.New(scorer, cycle.WithInputPolicy(cycle.PolicyPassthrough))
			cmd, _ := c.Run(context.Background(), in, cycle.NewState(0))

			Convey("Then NaN is forwarded and the cycle succeeds", func() {
				So(scorer.calls, ShouldEqual, 1)
				So(math.IsNaN(scorer.last.V[2]), ShouldBeTrue)
				So(cmd.OK, ShouldBeTrue)
			})
		})
	})

	Convey("Given policy names", t, func() {
		p, err := cycle.ParsePolicy("passthrough")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, cycle.PolicyPassthrough)
		_, err = cycle.ParsePolicy("lenient")
		So(err, ShouldNotBeNil)
	})
}

func TestKindOf(t *testing.T) {
	Convey("Given wrapped errors", t, func() {
		So(cycle.KindOf(nil), ShouldEqual, cycle.KindNone)
		So(cycle.KindOf(fmt.Errorf("x: %w", cycle.ErrDecode)), ShouldEqual, cycle.KindDecode)
		So(cycle.KindOf(fmt.Errorf("%w: %w", cycle.ErrInvalidInput, feature.ErrNotNumeric)), ShouldEqual, cycle.KindInvalidInput)
		So(cycle.Failed(nil).FailureKind, ShouldEqual, cycle.KindUnknown)
	})

	Convey("Given a superseded outcome", t, func() {
		cmd := cycle.Superseded("id", 7)
		So(cmd.Superseded, ShouldBeTrue)
		So(cmd.OK, ShouldBeFalse)
		So(cmd.Seq, ShouldEqual, uint64(7))
	})
}
