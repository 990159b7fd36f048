// Package lut builds 256-entry intensity lookup tables and applies them to
// 8-bit images. Everything in this package is pure: inputs are never
// mutated and every call allocates its own result.
package lut

import "errors"

var (
	// ErrInvalidArgument is wrapped by errors caused by out-of-range
	// parameters, malformed tables or histograms and malformed images.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTypeMismatch is wrapped by errors caused by image or table data
	// that is not 8 bits per sample.
	ErrTypeMismatch = errors.New("type mismatch")
)
