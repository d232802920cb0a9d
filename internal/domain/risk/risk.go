// Package risk derives the displayed risk score and the visual state keyed
// off it. Every function here is pure.
package risk

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Scale and gauge constants.
const (
	percentScale      = 100
	percentShift      = 2
	scorePlaces       = 2
	needleSweep       = 180
	needleOffset      = 90
	DefaultAlertLevel = 80
)

// Verdict is the binary classification returned by the scoring service.
type Verdict int

// Verdict values. Anything other than 1 is legitimate.
const (
	Legitimate Verdict = 0
	Fraud      Verdict = 1
)

// Status and table labels per verdict.
const (
	StatusFraud      = "FRAUD DETECTED"
	StatusLegitimate = "LEGITIMATE"
	LabelFraud       = "FRAUD"
	LabelSafe        = "SAFE"
)

// Mode is the dashboard background state.
type Mode string

// Background modes.
const (
	ModeNormal Mode = "normal"
	ModeAlert  Mode = "alert"
)

// Background colours.
const (
	colorNormal = "#0b0f1a"
	colorAlert  = "#1a0000"
)

// Score is the percentage-scaled fraud probability, rounded to 2 decimals.
type Score float64

// VerdictOf maps the integer prediction field. Only an exact 1 is fraud.
func VerdictOf(prediction int) Verdict {
	if prediction == int(Fraud) {
		return Fraud
	}
	return Legitimate
}

// Status returns the status line text.
func (v Verdict) Status() string {
	if v == Fraud {
		return StatusFraud
	}
	return StatusLegitimate
}

// Label returns the short history table label.
func (v Verdict) Label() string {
	if v == Fraud {
		return LabelFraud
	}
	return LabelSafe
}

// Round2 rounds half away from zero at the second decimal. The tie is
// judged on the shortest decimal form of x, so 2.675 rounds to 2.68.
func Round2(x float64) float64 {
	if !finite(x) {
		return x
	}
	return decimal.NewFromFloat(x).Round(scorePlaces).InexactFloat64()
}

// FromProbability converts a probability in [0,1] to a Score. The range is
// not clamped.
func FromProbability(p float64) Score {
	if !finite(p) {
		return Score(p * percentScale)
	}
	return Score(decimal.NewFromFloat(p).Shift(percentShift).Round(scorePlaces).InexactFloat64())
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// IsAlert reports whether s is strictly above threshold.
func (s Score) IsAlert(threshold float64) bool {
	return float64(s) > threshold
}

// ModeFor returns the background mode for s.
func (s Score) ModeFor(threshold float64) Mode {
	if s.IsAlert(threshold) {
		return ModeAlert
	}
	return ModeNormal
}

// NeedleAngle maps 0 to -90 degrees and 100 to +90 degrees, linearly.
func (s Score) NeedleAngle() float64 {
	return float64(s)/percentScale*needleSweep - needleOffset
}

// Fixed formats with exactly two decimals, e.g. "93.00".
func (s Score) Fixed() string {
	return strconv.FormatFloat(float64(s), 'f', 2, 64)
}

// Compact formats with the fewest digits, e.g. "93" or "80.01".
func (s Score) Compact() string {
	return strconv.FormatFloat(float64(s), 'f', -1, 64)
}

// Text is the risk line, e.g. "Risk Score: 93.00%".
func (s Score) Text() string {
	return "Risk Score: " + s.Fixed() + "%"
}

// Color returns the background colour for a mode.
func (m Mode) Color() string {
	if m == ModeAlert {
		return colorAlert
	}
	return colorNormal
}
