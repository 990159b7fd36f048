package lut

import (
	"fmt"
	"math"
)

// logScale is chosen so that 255 lands just above saturation.
const logScale = 106.0

// clampToUint8 clamps v to [0,255] and truncates toward zero. NaN maps
// to 0.
func clampToUint8(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Brightness shifts every intensity by offset, saturating at 0 and 255.
func Brightness(offset int) Table {
	// anything past +-255 saturates the whole table anyway
	offset = clampInt(offset, -255, 255)
	var t Table
	for i := range t {
		t[i] = uint8(clampInt(i+offset, 0, 255))
	}
	return t
}

// Contrast scales intensities around the mean brightness of h. A scale of
// 1 is the identity, below 1 pulls values toward the mean and above 1
// pushes them away from it.
func Contrast(scale float64, h Histogram) (Table, error) {
	if scale < 0 || !finite(scale) {
		return Table{}, fmt.Errorf("%w: contrast scale %v must be finite and not negative", ErrInvalidArgument, scale)
	}
	mean, err := h.Mean()
	if err != nil {
		return Table{}, fmt.Errorf("contrast: %w", err)
	}
	b := float64(mean)
	var t Table
	for i := range t {
		t[i] = clampToUint8(scale*float64(i) + (1-scale)*b)
	}
	return t, nil
}

// Exposure applies the power law (i/255)^gamma. Gamma below 1 brightens
// midtones, above 1 darkens them.
func Exposure(gamma float64) (Table, error) {
	if gamma < 0 || !finite(gamma) {
		return Table{}, fmt.Errorf("%w: gamma %v must be finite and not negative", ErrInvalidArgument, gamma)
	}
	var t Table
	for i := range t {
		t[i] = clampToUint8(math.Pow(float64(i)/255.0, gamma) * 255.0)
	}
	return t, nil
}

// LogTransform compresses the intensity range with 106*log10(i+1).
func LogTransform() Table {
	var t Table
	for i := range t {
		t[i] = clampToUint8(logScale * math.Log10(float64(i+1)))
	}
	return t
}

// Equalization maps every intensity through the cumulative distribution
// of h scaled to [0,255]. The result is monotonically non-decreasing.
func Equalization(h Histogram) (Table, error) {
	if err := h.Validate(); err != nil {
		return Table{}, fmt.Errorf("equalization: %w", err)
	}
	total := h.Total()
	if total == 0 {
		return Table{}, fmt.Errorf("equalization: %w: histogram is empty", ErrInvalidArgument)
	}
	var t Table
	cdf := 0
	for i, c := range h {
		cdf += c
		t[i] = clampToUint8(float64(cdf) / float64(total) * 255.0)
	}
	return t, nil
}

// Negate inverts every intensity.
func Negate() Table {
	var t Table
	for i := range t {
		t[i] = uint8(255 - i)
	}
	return t
}

// Threshold maps intensities at or above thresh to 255 and the rest to 0.
func Threshold(thresh int) Table {
	thresh = clampInt(thresh, 0, Size)
	var t Table
	for i := thresh; i < Size; i++ {
		t[i] = 255
	}
	return t
}

// Posterize reduces the table to the given number of evenly spaced levels.
func Posterize(levels int) (Table, error) {
	if levels < 2 {
		return Table{}, fmt.Errorf("%w: posterize needs at least 2 levels, got %d", ErrInvalidArgument, levels)
	}
	step := 255.0 / float64(levels-1)
	var t Table
	for i := range t {
		t[i] = clampToUint8(math.Round(float64(i)/step) * step)
	}
	return t, nil
}

// Level stretches [black, white] to the full range and applies the
// midtone correction normalized^(1/gamma).
func Level(black, gamma, white float64) (Table, error) {
	if !finite(black) || !finite(white) || white <= black {
		return Table{}, fmt.Errorf("%w: white point %v must be above black point %v", ErrInvalidArgument, white, black)
	}
	if gamma <= 0 || !finite(gamma) {
		return Table{}, fmt.Errorf("%w: level gamma %v must be finite and positive", ErrInvalidArgument, gamma)
	}
	inv := 1.0 / gamma
	var t Table
	for i := range t {
		n := math.Min(math.Max((float64(i)-black)/(white-black), 0.0), 1.0)
		t[i] = clampToUint8(math.Pow(n, inv) * 255.0)
	}
	return t, nil
}

// Normalize stretches the occupied range of h to [0,255]. A histogram with
// a single occupied bin gives the identity table.
func Normalize(h Histogram) (Table, error) {
	if err := h.Validate(); err != nil {
		return Table{}, fmt.Errorf("normalize: %w", err)
	}
	if h.Total() == 0 {
		return Table{}, fmt.Errorf("normalize: %w: histogram is empty", ErrInvalidArgument)
	}
	lo, hi := 0, Size-1
	for h[lo] == 0 {
		lo++
	}
	for h[hi] == 0 {
		hi--
	}
	if hi <= lo {
		return Identity(), nil
	}
	span := float64(hi - lo)
	var t Table
	for i := range t {
		t[i] = clampToUint8(float64(i-lo) / span * 255.0)
	}
	return t, nil
}

// AutoGamma picks the exposure gamma that moves the mean intensity of h to
// the middle of the range. The gamma is limited to [0.1, 10]; a mean at
// either end gives the identity table.
func AutoGamma(h Histogram) (Table, error) {
	if err := h.Validate(); err != nil {
		return Table{}, fmt.Errorf("autogamma: %w", err)
	}
	total := h.Total()
	if total == 0 {
		return Table{}, fmt.Errorf("autogamma: %w: histogram is empty", ErrInvalidArgument)
	}
	sum := 0.0
	for i, c := range h {
		sum += float64(i) * float64(c)
	}
	mean := sum / float64(total) / 255.0
	if mean <= 0 || mean >= 1 {
		return Identity(), nil
	}
	gamma := math.Log(0.5) / math.Log(mean)
	gamma = math.Min(math.Max(gamma, 0.1), 10)
	return Exposure(gamma)
}
