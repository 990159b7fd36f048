// Package pipeline chains histogram-driven table construction with table
// application. It performs no I/O and keeps no state between calls.
package pipeline

import (
	"fmt"

	"github.com/Fepozopo/lutimg/pkg/lut"
)

// HistogramFunc counts the samples of an image per intensity.
type HistogramFunc func(*lut.Image) lut.Histogram

// Builder derives a table from the histogram of the image it will be
// applied to.
type Builder func(lut.Histogram) (lut.Table, error)

// Result is what a pipeline run hands back to the caller.
type Result struct {
	Image *lut.Image
	Table lut.Table
	// Histogram of Image; only set when the pipeline has a HistogramFunc.
	Histogram    lut.Histogram
	HasHistogram bool
}

// Pipeline runs a single linear pass: build a table from the supplied
// histogram, then apply it. Histogram, when set, is used to describe the
// output image.
type Pipeline struct {
	Histogram HistogramFunc
}

// Transform builds a table from h with build and applies it to img.
// Errors from build are returned unchanged.
func (p Pipeline) Transform(img *lut.Image, h lut.Histogram, build Builder) (*Result, error) {
	if build == nil {
		return nil, fmt.Errorf("%w: nil table builder", lut.ErrInvalidArgument)
	}
	// check the image first so that nothing is built for unusable input
	if err := img.Validate(); err != nil {
		return nil, err
	}
	t, err := build(h)
	if err != nil {
		return nil, err
	}
	out, err := lut.Apply(img, t)
	if err != nil {
		return nil, err
	}
	res := &Result{Image: out, Table: t}
	if p.Histogram != nil {
		res.Histogram = p.Histogram(out)
		res.HasHistogram = true
	}
	return res, nil
}

// Run equalizes img using h, the histogram of img.
func (p Pipeline) Run(img *lut.Image, h lut.Histogram) (*Result, error) {
	return p.Transform(img, h, lut.Equalization)
}

// Equalize is Run without an output histogram.
func Equalize(img *lut.Image, h lut.Histogram) (*lut.Image, error) {
	res, err := Pipeline{}.Run(img, h)
	if err != nil {
		return nil, err
	}
	return res.Image, nil
}

// ContrastBuilder returns a Builder for lut.Contrast with a fixed scale.
func ContrastBuilder(scale float64) Builder {
	return func(h lut.Histogram) (lut.Table, error) {
		return lut.Contrast(scale, h)
	}
}
