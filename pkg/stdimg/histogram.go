package stdimg

import (
	"fmt"
	"image"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/samber/lo"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/stat"

	"github.com/Fepozopo/lutimg/pkg/lut"
)

// titleHeight is the band reserved above the plot for the title.
const titleHeight = 16

// ComputeHistogram counts every sample of img, across all channels.
func ComputeHistogram(img *lut.Image) lut.Histogram {
	var h lut.Histogram
	if img == nil {
		return h
	}
	for _, v := range img.Pix {
		h[v]++
	}
	return h
}

// ChannelHistograms returns one histogram per channel of img.
func ChannelHistograms(img *lut.Image) []lut.Histogram {
	if img == nil || img.Channels < 1 {
		return nil
	}
	hs := make([]lut.Histogram, img.Channels)
	for i, v := range img.Pix {
		hs[i%img.Channels][v]++
	}
	return hs
}

// HistogramStats summarizes the intensity distribution described by h.
type HistogramStats struct {
	Samples  int
	Mean     float64
	StdDev   float64
	Min, Max int // occupied range; both -1 for an empty histogram
}

// Stats computes the weighted mean and standard deviation of h.
func Stats(h lut.Histogram) HistogramStats {
	st := HistogramStats{Samples: h.Total(), Min: -1, Max: -1}
	if st.Samples == 0 {
		return st
	}
	xs := make([]float64, lut.Size)
	ws := make([]float64, lut.Size)
	for i, c := range h {
		xs[i] = float64(i)
		ws[i] = float64(c)
		if c > 0 {
			if st.Min < 0 {
				st.Min = i
			}
			st.Max = i
		}
	}
	if st.Samples == 1 {
		st.Mean = float64(st.Min)
		return st
	}
	st.Mean, st.StdDev = stat.MeanStdDev(xs, ws)
	return st
}

func (s HistogramStats) String() string {
	if s.Samples == 0 {
		return "empty histogram"
	}
	return fmt.Sprintf("samples %d, range %d..%d, mean %.2f, stddev %.2f", s.Samples, s.Min, s.Max, s.Mean, s.StdDev)
}

// seriesColor picks a distinct colour for series k of n. A single series
// is drawn in steel blue.
func seriesColor(k, n int) color.NRGBA {
	c := colorful.Hsv(207, 0.61, 0.71)
	if n > 1 {
		c = colorful.Hsv(math.Mod(float64(k)*360.0/float64(n), 360), 0.85, 0.9)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// RenderHistogramImage plots one or more histograms as overlaid bar charts
// under a title line. width/height choose the output image size.
func RenderHistogramImage(title string, hists []lut.Histogram, width, height int) *image.NRGBA {
	if width <= 0 {
		width = 512
	}
	if height <= 0 {
		height = 160
	}
	if height <= titleHeight+1 {
		height = titleHeight + 2
	}
	// white background
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(out.Pix); i++ {
		out.Pix[i] = 255
	}

	maxv := 1
	for _, h := range hists {
		maxv = max(maxv, lo.Max(h[:]))
	}

	plotH := height - titleHeight
	for k, h := range hists {
		col := seriesColor(k, len(hists))
		for x := 0; x < width; x++ {
			bin := int(math.Floor(float64(x) * float64(lut.Size) / float64(width)))
			bin = min(max(bin, 0), lut.Size-1)
			bh := int(math.Round(float64(h[bin]) / float64(maxv) * float64(plotH-1)))
			// draw from bottom up, blending with what earlier series left
			for y := 0; y < bh; y++ {
				i := out.PixOffset(x, height-1-y)
				if out.Pix[i] == 255 && out.Pix[i+1] == 255 && out.Pix[i+2] == 255 {
					out.Pix[i+0], out.Pix[i+1], out.Pix[i+2] = col.R, col.G, col.B
					continue
				}
				out.Pix[i+0] = uint8((int(out.Pix[i+0]) + int(col.R)) / 2)
				out.Pix[i+1] = uint8((int(out.Pix[i+1]) + int(col.G)) / 2)
				out.Pix[i+2] = uint8((int(out.Pix[i+2]) + int(col.B)) / 2)
			}
		}
	}

	if title != "" {
		d := &font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
			Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(12)},
		}
		d.DrawString(title)
	}
	return out
}
