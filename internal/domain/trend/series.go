// Package trend holds the bounded sliding window of recent risk scores
// plotted on the trend chart.
package trend

// DefaultCapacity is the number of points the chart keeps.
const DefaultCapacity = 10

// Point is one chart sample.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is a FIFO window of points. It is a value: Append never mutates the
// receiver's visible points, it returns the next Series.
type Series struct {
	capacity int
	points   []Point
}

// New returns an empty series. A non-positive capacity uses DefaultCapacity.
func New(capacity int) Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return Series{capacity: capacity}
}

// Capacity returns the window size.
func (s Series) Capacity() int {
	if s.capacity <= 0 {
		return DefaultCapacity
	}
	return s.capacity
}

// Append adds a point at the end and drops the oldest once the window is
// over capacity.
func (s Series) Append(label string, value float64) Series {
	limit := s.Capacity()
	next := make([]Point, 0, min(len(s.points)+1, limit))
	next = append(next, s.points...)
	next = append(next, Point{Label: label, Value: value})
	if over := len(next) - limit; over > 0 {
		next = next[over:]
	}
	return Series{capacity: limit, points: next}
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.points) }

// Points returns a copy of the points, oldest first.
func (s Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Labels returns the x-axis labels, oldest first.
func (s Series) Labels() []string {
	out := make([]string, len(s.points))
	for i, p := range s.points {
		out[i] = p.Label
	}
	return out
}

// Values returns the y-axis values, oldest first.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Snapshot is the chart payload.
type Snapshot struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Snapshot returns the chart payload for rendering.
func (s Series) Snapshot() Snapshot {
	return Snapshot{Labels: s.Labels(), Values: s.Values()}
}
