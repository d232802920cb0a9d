package render_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/fraudboard/internal/adapters/render"
	"github.com/okian/fraudboard/internal/domain/cycle"
	"github.com/okian/fraudboard/internal/domain/feature"
	"github.com/okian/fraudboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func successCommand(p float64, prediction int) cycle.Command {
	c := cycle.New(nil)
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	cmd, _ := c.Apply(cycle.NewState(0), feature.Vector{Amount: 250}, cycle.Prediction{FraudProbability: p, Prediction: prediction}, at)
	return cmd
}

func TestOutcome(t *testing.T) {
	Convey("Given commands of each kind", t, func() {
		So(render.Outcome(successCommand(0.1, 0)), ShouldEqual, render.OutcomeOK)
		So(render.Outcome(cycle.Failed(cycle.ErrDecode)), ShouldEqual, render.OutcomeFailed)
		So(render.Outcome(cycle.Superseded("x", 2)), ShouldEqual, render.OutcomeSuperseded)
	})
}

func TestFanout(t *testing.T) {
	Convey("Given a fanout with a failing and a working sink", t, func() {
		var seen []string
		boom := errors.New("boom")
		f := render.Fanout{
			render.SinkFunc(func(_ context.Context, cmd cycle.Command) error {
				seen = append(seen, "a")
				return boom
			}),
			nil,
			render.SinkFunc(func(_ context.Context, cmd cycle.Command) error {
				seen = append(seen, "b")
				return nil
			}),
		}

		Convey("When a command is rendered", func() {
			err := f.Render(context.Background(), successCommand(0.5, 0))

			Convey("Then every sink runs and the error is kept", func() {
				So(seen, ShouldResemble, []string{"a", "b"})
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})
	})
}

func TestLogAndMetrics(t *testing.T) {
	Convey("Given the log and metrics sinks", t, func() {
		sinks := render.Fanout{render.Log{}, render.Metrics{}}
		ctx := context.Background()

		Convey("Then every outcome renders without error", func() {
			So(sinks.Render(ctx, successCommand(0.93, 1)), ShouldBeNil)
			So(sinks.Render(ctx, successCommand(0.05, 0)), ShouldBeNil)
			So(sinks.Render(ctx, cycle.Failed(cycle.ErrTransport)), ShouldBeNil)
			So(sinks.Render(ctx, cycle.Superseded("x", 3)), ShouldBeNil)
		})
	})
}

func TestTerminal(t *testing.T) {
	Convey("Given a terminal sink", t, func() {
		var buf bytes.Buffer
		term := render.Terminal{W: &buf}

		Convey("When an alerting fraud command is painted", func() {
			So(term.Render(context.Background(), successCommand(0.93, 1)), ShouldBeNil)
			out := buf.String()

			Convey("Then status, score, bar, trend and history are shown", func() {
				So(out, ShouldContainSubstring, "ALERT")
				So(out, ShouldContainSubstring, "FRAUD DETECTED")
				So(out, ShouldContainSubstring, "Risk Score: 93.00%")
				So(out, ShouldContainSubstring, "+77.4°")
				So(out, ShouldContainSubstring, "$250")
				So(out, ShouldContainSubstring, "93%")
				So(out, ShouldContainSubstring, "trend █")
			})
		})

		Convey("When a failure is painted", func() {
			So(term.Render(context.Background(), cycle.Failed(cycle.ErrStatus)), ShouldBeNil)

			Convey("Then only the failure status is shown", func() {
				So(buf.String(), ShouldEqual, "✖ backend connection failed (status)\n")
			})
		})
	})
}

func TestBarAndSparkline(t *testing.T) {
	Convey("Given bar and sparkline helpers", t, func() {
		So(render.Bar(50, 10), ShouldEqual, "#####.....")
		So(render.Bar(150, 4), ShouldEqual, "####")
		So(render.Bar(-3, 4), ShouldEqual, "....")
		So(render.Bar(10, 0), ShouldEqual, "")
		So(render.Sparkline([]float64{0, 100}), ShouldEqual, "▁█")
		So(strings.Count(render.Sparkline(make([]float64, 10)), "▁"), ShouldEqual, 10)
	})
}
