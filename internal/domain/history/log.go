// Package history holds the most-recent-first log of past predictions shown
// in the history table.
package history

import (
	"strconv"
	"time"

	"github.com/okian/fraudboard/internal/domain/risk"
)

// TimeLayout formats row and chart timestamps.
const TimeLayout = "15:04:05"

// Row is one rendered table row.
type Row struct {
	Time    string `json:"time"`
	Amount  string `json:"amount"`
	Risk    string `json:"risk"`
	Verdict string `json:"verdict"`
}

// NewRow formats a row the way the table displays it, e.g.
// ("10:00:00", "$250", "93%", "FRAUD").
func NewRow(at time.Time, amount float64, score risk.Score, verdict risk.Verdict) Row {
	return Row{
		Time:    at.Format(TimeLayout),
		Amount:  "$" + strconv.FormatFloat(amount, 'f', -1, 64),
		Risk:    score.Compact() + "%",
		Verdict: verdict.Label(),
	}
}

// Log is an unbounded list of rows, newest first. Like trend.Series it is a
// value and Prepend returns the next Log.
type Log struct {
	rows []Row
}

// Prepend puts r above every existing row.
func (l Log) Prepend(r Row) Log {
	next := make([]Row, 0, len(l.rows)+1)
	next = append(next, r)
	next = append(next, l.rows...)
	return Log{rows: next}
}

// Len returns the number of rows.
func (l Log) Len() int { return len(l.rows) }

// Rows returns a copy of the rows, newest first.
func (l Log) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}
