package stdimg

import (
	"fmt"
	"strconv"

	"github.com/Fepozopo/lutimg/pkg/lut"
	"github.com/Fepozopo/lutimg/pkg/pipeline"
)

// BuildTable builds the lookup table for the named transform. h is only
// consulted by transforms with NeedsHistogram set.
func BuildTable(name string, args []string, h lut.Histogram) (lut.Table, error) {
	args, err := NormalizeArgs(name, args)
	if err != nil {
		return lut.Table{}, err
	}
	// NormalizeArgs has already type-checked every argument
	atoi := func(i int) int {
		v, _ := strconv.Atoi(args[i])
		return v
	}
	atof := func(i int) float64 {
		v, _ := strconv.ParseFloat(args[i], 64)
		return v
	}

	switch name {
	case "brightness":
		return lut.Brightness(atoi(0)), nil
	case "contrast":
		return lut.Contrast(atof(0), h)
	case "exposure":
		return lut.Exposure(atof(0))
	case "log":
		return lut.LogTransform(), nil
	case "equalize":
		return lut.Equalization(h)
	case "negate":
		return lut.Negate(), nil
	case "threshold":
		return lut.Threshold(atoi(0)), nil
	case "posterize":
		return lut.Posterize(atoi(0))
	case "normalize":
		return lut.Normalize(h)
	case "autogamma":
		return lut.AutoGamma(h)
	case "level":
		return lut.Level(atof(0), atof(1), atof(2))
	}
	return lut.Table{}, fmt.Errorf("%w: unknown command: %s", lut.ErrInvalidArgument, name)
}

// ApplyCommand applies the named transform to img and returns a new image.
// Histogram-driven transforms use the histogram of img itself.
func ApplyCommand(img *lut.Image, name string, args []string) (*pipeline.Result, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: source image is nil", lut.ErrInvalidArgument)
	}
	p := pipeline.Pipeline{Histogram: ComputeHistogram}
	build := func(h lut.Histogram) (lut.Table, error) {
		return BuildTable(name, args, h)
	}
	res, err := p.Transform(img, ComputeHistogram(img), build)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}
