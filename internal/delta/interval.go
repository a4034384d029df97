package delta

import "fmt"

// Interval is a half-open byte range [Start, End).
type Interval struct {
	Start int
	End   int
}

// NewInterval creates an Interval, swapping the bounds if needed.
func NewInterval(start, end int) Interval {
	if start > end {
		start, end = end, start
	}
	return Interval{Start: start, End: end}
}

// Len returns the number of bytes covered.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// IsEmpty returns true if the interval covers no bytes.
func (iv Interval) IsEmpty() bool {
	return iv.Start >= iv.End
}

// Contains returns true if offset lies within the interval.
func (iv Interval) Contains(offset int) bool {
	return offset >= iv.Start && offset < iv.End
}

// String returns a human-readable representation.
func (iv Interval) String() string {
	return fmt.Sprintf("[%d, %d)", iv.Start, iv.End)
}
