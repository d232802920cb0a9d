package feature

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a raw form value as typed by the user.
// It decodes from a JSON string, a JSON number, or null.
type Value string

// UnmarshalJSON accepts "1.5", 1.5 and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("feature value must be a string or number: %w", err)
		}
		*v = Value(n.String())
		return nil
	}
}

// Float parses the value. Anything that does not parse yields NaN; an
// out-of-range literal yields the signed infinity strconv reports.
func (v Value) Float() float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// Input holds the 30 form fields before parsing.
type Input struct {
	Time   Value
	Amount Value
	V      [Components]Value
}

// DefaultInput returns a form with every field set to "0", the page default.
func DefaultInput() Input {
	in := Input{Time: "0", Amount: "0"}
	for i := range in.V {
		in.V[i] = "0"
	}
	return in
}

// Set assigns a field by its form name: time, amount, V1..V28.
func (in *Input) Set(name string, value Value) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "time":
		in.Time = value
		return nil
	case "amount":
		in.Amount = value
		return nil
	}
	i, ok := componentIndex(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	in.V[i] = value
	return nil
}

// Parse reads every field as float64. No field is rejected here.
func Parse(in Input) Vector {
	v := Vector{
		Time:   in.Time.Float(),
		Amount: in.Amount.Float(),
	}
	for i, raw := range in.V {
		v.V[i] = raw.Float()
	}
	return v
}
