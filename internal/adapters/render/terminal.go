package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/okian/fraudboard/internal/domain/cycle"
)

// Terminal layout constants.
const (
	barCells     = 40
	sparkCells   = 8
	historyLimit = 5
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█") //nolint:gochecknoglobals // constant glyph table

// Terminal paints a command as plain text.
type Terminal struct {
	W io.Writer
	// HistoryRows caps the table; 0 uses 5.
	HistoryRows int
}

// Render implements Sink.
func (t Terminal) Render(_ context.Context, cmd cycle.Command) error {
	var b strings.Builder
	switch {
	case cmd.Superseded:
		fmt.Fprintf(&b, "cycle %d superseded\n", cmd.Seq)
	case !cmd.OK:
		fmt.Fprintf(&b, "✖ %s (%s)\n", cmd.StatusText, cmd.FailureKind)
	default:
		t.paint(&b, cmd)
	}
	_, err := io.WriteString(t.W, b.String())
	return err
}

func (t Terminal) paint(b *strings.Builder, cmd cycle.Command) {
	if cmd.PlayAlert {
		b.WriteString("\a!!! ALERT !!!\n")
	}
	fmt.Fprintf(b, "%s\n%s\n", cmd.StatusText, cmd.RiskText)
	fmt.Fprintf(b, "[%s] needle %+.1f°\n", Bar(cmd.BarWidth, barCells), cmd.NeedleAngle)
	if cmd.Trend != nil && len(cmd.Trend.Values) > 0 {
		fmt.Fprintf(b, "trend %s\n", Sparkline(cmd.Trend.Values))
	}
	limit := t.HistoryRows
	if limit <= 0 {
		limit = historyLimit
	}
	for i, row := range cmd.History {
		if i == limit {
			break
		}
		fmt.Fprintf(b, "  %s  %-12s %-8s %s\n", row.Time, row.Amount, row.Risk, row.Verdict)
	}
}

// Bar renders a width percentage over cells characters. Values outside
// [0, 100] are clamped for display only.
func Bar(width float64, cells int) string {
	if cells <= 0 {
		return ""
	}
	frac := math.Max(0, math.Min(100, width)) / 100
	if math.IsNaN(frac) {
		frac = 0
	}
	filled := int(math.Round(frac * float64(cells)))
	return strings.Repeat("#", filled) + strings.Repeat(".", cells-filled)
}

// Sparkline maps values on a 0..100 axis to block glyphs.
func Sparkline(values []float64) string {
	out := make([]rune, len(values))
	top := float64(sparkCells - 1)
	for i, v := range values {
		if math.IsNaN(v) {
			v = 0
		}
		idx := int(math.Round(math.Max(0, math.Min(100, v)) / 100 * top))
		out[i] = sparkRunes[idx]
	}
	return string(out)
}
