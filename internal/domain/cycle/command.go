package cycle

import (
	"github.com/okian/fraudboard/internal/domain/history"
	"github.com/okian/fraudboard/internal/domain/risk"
	"github.com/okian/fraudboard/internal/domain/trend"
)

// Command is the presentation state a render sink paints. A failed command only
// carries the status text and the failure kind; sinks leave every other
// element at its prior state.
type Command struct {
	CycleID    string `json:"cycle_id,omitempty"`
	Seq        uint64 `json:"seq,omitempty"`
	OK         bool   `json:"ok"`
	Superseded bool   `json:"superseded,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`

	StatusText  string `json:"status_text,omitempty"`
	FailureKind Kind   `json:"failure_kind,omitempty"`

	RiskScore       risk.Score      `json:"risk_score"`
	RiskText        string          `json:"risk_text,omitempty"`
	Verdict         risk.Verdict    `json:"verdict"`
	NeedleAngle     float64         `json:"needle_angle"`
	BarWidth        float64         `json:"bar_width"`
	Background      risk.Mode       `json:"background,omitempty"`
	BackgroundColor string          `json:"background_color,omitempty"`
	PlayAlert       bool            `json:"play_alert"`
	Trend           *trend.Snapshot `json:"trend,omitempty"`
	History         []history.Row   `json:"history,omitempty"`
}

// Failed builds the failure command for err.
func Failed(err error) Command {
	kind := KindOf(err)
	if kind == KindNone {
		kind = KindUnknown
	}
	return Command{
		OK:          false,
		StatusText:  kind.Message(),
		FailureKind: kind,
	}
}

// Superseded builds the command returned to a caller whose outcome was
// discarded because a newer cycle was already applied.
func Superseded(id string, seq uint64) Command {
	return Command{CycleID: id, Seq: seq, Superseded: true}
}
