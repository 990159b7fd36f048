package lut

import (
	"fmt"

	"github.com/samber/lo"
)

// Size is the number of representable 8-bit intensities.
const Size = 256

// Table maps every source intensity to a destination intensity.
type Table [Size]uint8

// Histogram holds the number of samples at each intensity.
type Histogram [Size]int

// Identity returns the table that maps every intensity to itself.
func Identity() Table {
	var t Table
	for i := range t {
		t[i] = uint8(i)
	}
	return t
}

// NewTable builds a Table from dynamically sized data, as produced by
// parsers or other tools.
func NewTable(values []int) (Table, error) {
	var t Table
	if len(values) != Size {
		return t, fmt.Errorf("%w: Invalid LUT Length %d, want %d", ErrInvalidArgument, len(values), Size)
	}
	for i, v := range values {
		if v < 0 || v > 255 {
			return t, fmt.Errorf("%w: LUT entry %d = %d is not an 8-bit value", ErrTypeMismatch, i, v)
		}
		t[i] = uint8(v)
	}
	return t, nil
}

// Values returns the table as a slice of ints.
func (t Table) Values() []int {
	out := make([]int, Size)
	for i, v := range t {
		out[i] = int(v)
	}
	return out
}

// Compose returns the table equivalent to applying t and then next.
func (t Table) Compose(next Table) Table {
	var out Table
	for i, v := range t {
		out[i] = next[v]
	}
	return out
}

// IsMonotonic reports whether t[i] <= t[j] for all i < j.
func (t Table) IsMonotonic() bool {
	for i := 1; i < Size; i++ {
		if t[i] < t[i-1] {
			return false
		}
	}
	return true
}

// NewHistogram builds a Histogram from dynamically sized counts.
func NewHistogram(counts []int) (Histogram, error) {
	var h Histogram
	if len(counts) != Size {
		return h, fmt.Errorf("%w: histogram has %d bins, want %d", ErrInvalidArgument, len(counts), Size)
	}
	copy(h[:], counts)
	if err := h.Validate(); err != nil {
		return Histogram{}, err
	}
	return h, nil
}

// Validate checks that no bin is negative.
func (h Histogram) Validate() error {
	for i, c := range h {
		if c < 0 {
			return fmt.Errorf("%w: histogram bin %d has negative count %d", ErrInvalidArgument, i, c)
		}
	}
	return nil
}

// Total returns the number of samples counted by h.
func (h Histogram) Total() int {
	return lo.Sum(h[:])
}

// Mean returns the mean intensity of h, truncated toward zero.
func (h Histogram) Mean() (int, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	total := h.Total()
	if total == 0 {
		return 0, fmt.Errorf("%w: histogram is empty", ErrInvalidArgument)
	}
	weighted := 0
	for i, c := range h {
		weighted += i * c
	}
	return weighted / total, nil
}
