package pipeline

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Fepozopo/lutimg/pkg/lut"
)

func countSamples(img *lut.Image) lut.Histogram {
	var h lut.Histogram
	for _, v := range img.Pix {
		h[v]++
	}
	return h
}

func TestEqualizeConcentratedHistogram(t *testing.T) {
	img, _ := lut.NewImage(10, 10, 1)
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	out, err := Equalize(img, countSamples(img))
	if err != nil {
		t.Fatalf("Equalize error: %v", err)
	}
	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("sample %d = %d; want 255", i, v)
		}
	}
	if img.Pix[0] != 128 {
		t.Fatalf("input was mutated")
	}
}

func TestRunReportsTableAndHistogram(t *testing.T) {
	img, _ := lut.FromPix(2, 2, 1, []uint8{0, 0, 100, 200})
	p := Pipeline{Histogram: countSamples}
	res, err := p.Run(img, countSamples(img))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	// cdf: 0 -> 0.5, 100 -> 0.75, 200 -> 1.0
	want := []uint8{127, 127, 191, 255}
	if diff := cmp.Diff(want, res.Image.Pix); diff != "" {
		t.Fatalf("equalized samples mismatch (-want +got):\n%s", diff)
	}
	if res.Table[0] != 127 || res.Table[99] != 127 || res.Table[100] != 191 {
		t.Fatalf("unexpected table entries %d %d %d", res.Table[0], res.Table[99], res.Table[100])
	}
	if !res.HasHistogram || res.Histogram[127] != 2 || res.Histogram[255] != 1 {
		t.Fatalf("unexpected output histogram")
	}
}

func TestRunPropagatesBuilderErrors(t *testing.T) {
	img, _ := lut.NewImage(0, 0, 1)
	_, err := Equalize(img, lut.Histogram{})
	if !errors.Is(err, lut.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	sentinel := errors.New("boom")
	_, err = Pipeline{}.Transform(img, lut.Histogram{}, func(lut.Histogram) (lut.Table, error) {
		return lut.Table{}, sentinel
	})
	if err != sentinel {
		t.Fatalf("builder error should be returned unchanged, got %v", err)
	}
}

func TestRunRejectsMalformedImage(t *testing.T) {
	bad := &lut.Image{Pix: []uint8{1}, Height: 3, Width: 3, Channels: 1}
	if _, err := Equalize(bad, lut.Histogram{1: 1}); !errors.Is(err, lut.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestContrastBuilder(t *testing.T) {
	img, _ := lut.FromPix(1, 4, 1, []uint8{100, 100, 200, 200})
	res, err := Pipeline{}.Transform(img, countSamples(img), ContrastBuilder(0))
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	for i, v := range res.Image.Pix {
		if v != 150 {
			t.Fatalf("sample %d = %d; want 150", i, v)
		}
	}
	if _, err := (Pipeline{}).Transform(img, countSamples(img), ContrastBuilder(-1)); !errors.Is(err, lut.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
