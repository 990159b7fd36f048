package lut

import (
	"image"
	"runtime"
	"sync"
)

// parallelSamples is the image size from which Apply splits work across
// goroutines.
const parallelSamples = 1 << 20

// Apply returns a new image in which every sample v of img is replaced by
// t[v]. All channels use the same table.
func Apply(img *Image, t Table) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	out := &Image{
		Pix:      make([]uint8, len(img.Pix)),
		Height:   img.Height,
		Width:    img.Width,
		Channels: img.Channels,
	}
	if len(img.Pix) < parallelSamples || img.Height < 2 {
		mapSamples(out.Pix, img.Pix, &t)
		return out, nil
	}

	// Each output sample depends only on its input sample, so row bands
	// can be processed independently.
	row := img.Width * img.Channels
	bands := runtime.NumCPU()
	if bands > img.Height {
		bands = img.Height
	}
	rowsPerBand := (img.Height + bands - 1) / bands
	var wg sync.WaitGroup
	for y0 := 0; y0 < img.Height; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, img.Height)
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			mapSamples(out.Pix[lo:hi], img.Pix[lo:hi], &t)
		}(y0*row, y1*row)
	}
	wg.Wait()
	return out, nil
}

func mapSamples(dst, src []uint8, t *Table) {
	for i, v := range src {
		dst[i] = t[v]
	}
}

// ApplyValues applies a dynamically sized table. The table is validated
// before the image is looked at.
func ApplyValues(img *Image, values []int) (*Image, error) {
	t, err := NewTable(values)
	if err != nil {
		return nil, err
	}
	return Apply(img, t)
}

// ApplyStd applies t to a decoded standard library image.
func ApplyStd(src image.Image, t Table) (image.Image, error) {
	img, err := FromStd(src)
	if err != nil {
		return nil, err
	}
	out, err := Apply(img, t)
	if err != nil {
		return nil, err
	}
	return out.Std()
}
