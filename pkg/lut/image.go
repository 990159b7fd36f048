package lut

import (
	"fmt"
	"image"
	"image/color"
)

// Image is a Height x Width grid of 8-bit samples with Channels samples per
// pixel, stored row-major and channel-interleaved in Pix. A single-channel
// image is the H x W case. Transforms never modify an Image; they return a
// new one of the same shape.
type Image struct {
	Pix      []uint8
	Height   int
	Width    int
	Channels int
}

// NewImage returns a zeroed image of the given shape.
func NewImage(height, width, channels int) (*Image, error) {
	if err := checkShape(height, width, channels); err != nil {
		return nil, err
	}
	return &Image{
		Pix:      make([]uint8, height*width*channels),
		Height:   height,
		Width:    width,
		Channels: channels,
	}, nil
}

// FromPix returns an image of the given shape holding a copy of pix.
func FromPix(height, width, channels int, pix []uint8) (*Image, error) {
	img, err := NewImage(height, width, channels)
	if err != nil {
		return nil, err
	}
	if len(pix) != len(img.Pix) {
		return nil, fmt.Errorf("%w: %d samples for a %dx%dx%d image", ErrInvalidArgument, len(pix), height, width, channels)
	}
	copy(img.Pix, pix)
	return img, nil
}

func checkShape(height, width, channels int) error {
	if height < 0 || width < 0 || channels < 1 {
		return fmt.Errorf("%w: bad image shape %dx%dx%d", ErrInvalidArgument, height, width, channels)
	}
	return nil
}

// Validate checks that the sample buffer matches the shape.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	if err := checkShape(m.Height, m.Width, m.Channels); err != nil {
		return err
	}
	if len(m.Pix) != m.Height*m.Width*m.Channels {
		return fmt.Errorf("%w: %d samples for a %dx%dx%d image", ErrInvalidArgument, len(m.Pix), m.Height, m.Width, m.Channels)
	}
	return nil
}

// SameShape reports whether m and o have identical dimensions.
func (m *Image) SameShape(o *Image) bool {
	return m.Height == o.Height && m.Width == o.Width && m.Channels == o.Channels
}

// At returns sample c of the pixel at row y, column x.
func (m *Image) At(y, x, c int) uint8 {
	return m.Pix[(y*m.Width+x)*m.Channels+c]
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	out := *m
	out.Pix = make([]uint8, len(m.Pix))
	copy(out.Pix, m.Pix)
	return &out
}

func errBitDepth(src image.Image) error {
	return fmt.Errorf("%w: unsupported bit depth (%T)", ErrTypeMismatch, src)
}

// FromStd converts a decoded image. Gray and Alpha images become single
// channel; colour images become RGB, or RGBA when any pixel is not fully
// opaque. CMYK is converted to RGB. 16-bit images are rejected.
func FromStd(src image.Image) (*Image, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	switch s := src.(type) {
	case *image.Gray16, *image.Alpha16, *image.RGBA64, *image.NRGBA64:
		return nil, errBitDepth(src)
	case *image.Gray:
		out, _ := NewImage(h, w, 1)
		for y := 0; y < h; y++ {
			i := s.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*w:(y+1)*w], s.Pix[i:i+w])
		}
		return out, nil
	case *image.Alpha:
		out, _ := NewImage(h, w, 1)
		for y := 0; y < h; y++ {
			i := s.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*w:(y+1)*w], s.Pix[i:i+w])
		}
		return out, nil
	}

	// Everything else goes through non-premultiplied RGBA.
	channels := 3
	if !opaque(src) {
		channels = 4
	}
	out, _ := NewImage(h, w, channels)
	j := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			out.Pix[j+0] = c.R
			out.Pix[j+1] = c.G
			out.Pix[j+2] = c.B
			if channels == 4 {
				out.Pix[j+3] = c.A
			}
			j += channels
		}
	}
	return out, nil
}

func opaque(src image.Image) bool {
	if o, ok := src.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := src.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// Std converts m to a standard library image: *image.Gray for one channel
// and *image.NRGBA for three (opaque) or four channels.
func (m *Image) Std() (image.Image, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, m.Width, m.Height)
	switch m.Channels {
	case 1:
		out := image.NewGray(rect)
		copy(out.Pix, m.Pix)
		return out, nil
	case 3:
		out := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
			out.Pix[j+0] = m.Pix[i+0]
			out.Pix[j+1] = m.Pix[i+1]
			out.Pix[j+2] = m.Pix[i+2]
			out.Pix[j+3] = 255
		}
		return out, nil
	case 4:
		out := image.NewNRGBA(rect)
		copy(out.Pix, m.Pix)
		return out, nil
	}
	return nil, fmt.Errorf("%w: cannot represent %d channels as a standard image", ErrInvalidArgument, m.Channels)
}
