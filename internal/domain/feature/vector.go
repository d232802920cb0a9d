// Package feature models the transaction feature vector sent for scoring.
package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Components is the number of anonymized PCA components (V1..V28).
const Components = 28

// Sentinel errors for feature handling.
var (
	ErrNotNumeric   = errors.New("feature value is not numeric")
	ErrUnknownField = errors.New("unknown feature field")
)

// Vector is the ordered 30-value payload. Values are positionally significant
// and carry no bounds; a field that failed to parse holds NaN.
type Vector struct {
	Time   float64
	Amount float64
	V      [Components]float64
}

// FieldName returns the form name of the i-th PCA component (0-based), e.g. "V1".
func FieldName(i int) string {
	return "V" + strconv.Itoa(i+1)
}

// Validate reports the first field holding a non-finite value.
func (v Vector) Validate() error {
	if !finite(v.Time) {
		return fmt.Errorf("%w: time", ErrNotNumeric)
	}
	if !finite(v.Amount) {
		return fmt.Errorf("%w: amount", ErrNotNumeric)
	}
	for i, x := range v.V {
		if !finite(x) {
			return fmt.Errorf("%w: %s", ErrNotNumeric, FieldName(i))
		}
	}
	return nil
}

// wireVector is the JSON body the scoring service accepts.
type wireVector struct {
	Time      *float64   `json:"time"`
	Amount    *float64   `json:"amount"`
	VFeatures []*float64 `json:"V_features"`
}

// MarshalJSON encodes the vector in the scoring wire form. Non-finite values
// are encoded as null.
func (v Vector) MarshalJSON() ([]byte, error) {
	w := wireVector{
		Time:      nullable(v.Time),
		Amount:    nullable(v.Amount),
		VFeatures: make([]*float64, Components),
	}
	for i, x := range v.V {
		w.VFeatures[i] = nullable(x)
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the scoring wire form. A null becomes NaN.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var w wireVector
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.VFeatures) != Components {
		return fmt.Errorf("V_features must contain exactly %d values, got %d", Components, len(w.VFeatures))
	}
	v.Time = deref(w.Time)
	v.Amount = deref(w.Amount)
	for i, p := range w.VFeatures {
		v.V[i] = deref(p)
	}
	return nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func nullable(x float64) *float64 {
	if !finite(x) {
		return nil
	}
	return &x
}

func deref(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// componentIndex maps "V7" (any case) to 6.
func componentIndex(name string) (int, bool) {
	n := strings.TrimSpace(name)
	if len(n) < 2 || (n[0] != 'V' && n[0] != 'v') {
		return 0, false
	}
	i, err := strconv.Atoi(n[1:])
	if err != nil || i < 1 || i > Components {
		return 0, false
	}
	return i - 1, true
}
