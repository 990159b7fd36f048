package stdimg

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Fepozopo/lutimg/pkg/lut"
)

// Load decodes the image at path, honouring EXIF orientation. With gray
// set, colour images are reduced to a single Rec.601 luma channel.
// Images with more than 8 bits per sample are rejected.
func Load(path string, gray bool) (*lut.Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	img, err := lut.FromStd(src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if !gray || img.Channels == 1 {
		return img, nil
	}
	return ToGray(src)
}

// ToGray converts src to a single-channel image.
func ToGray(src image.Image) (*lut.Image, error) {
	g := imaging.Grayscale(src)
	b := g.Bounds()
	out, err := lut.NewImage(b.Dy(), b.Dx(), 1)
	if err != nil {
		return nil, err
	}
	// imaging.Grayscale leaves R == G == B
	for i := range out.Pix {
		out.Pix[i] = g.Pix[i*4]
	}
	return out, nil
}

// Save encodes img to path, picking the format from the file extension.
// Unknown extensions are written as PNG.
func Save(path string, img *lut.Image) error {
	std, err := img.Std()
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return SaveStd(path, std)
}

// SaveStd is Save for an already converted image.
func SaveStd(path string, img image.Image) error {
	if _, err := imaging.FormatFromFilename(path); err == nil {
		if err := imaging.Save(img, path, imaging.JPEGQuality(92)); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

// Describe returns a short info string for img.
func Describe(img *lut.Image) string {
	if img == nil {
		return "no image"
	}
	return fmt.Sprintf("Width: %d, Height: %d, Channels: %d", img.Width, img.Height, img.Channels)
}
