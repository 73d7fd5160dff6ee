package image

import (
	"errors"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ErrComponentRange is returned when a component index is outside the raster.
var ErrComponentRange = errors.New("image: component index out of range")

// Raster is an 8-bit interleaved image with 1 (gray) or 3 (RGB) components.
//
// Rows are stored bottom to top: row 0 is the bottom row of the picture,
// the same order a BMP file carries them in.
type Raster struct {
	Width      int
	Height     int
	Components int
	Pix        []byte
}

// NewRaster allocates a zeroed raster.
func NewRaster(width, height, components int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if components != 1 && components != 3 {
		return nil, ErrComponentRange
	}
	return &Raster{
		Width:      width,
		Height:     height,
		Components: components,
		Pix:        make([]byte, width*height*components),
	}, nil
}

// Line returns the interleaved samples of row r (0 is the bottom row).
func (r *Raster) Line(row int) []byte {
	n := r.Width * r.Components
	return r.Pix[row*n : (row+1)*n]
}

// Plane copies component n into a new plane with the given border.
// The border is not extended.
func (r *Raster) Plane(n, border int) (*Plane, error) {
	if n < 0 || n >= r.Components {
		return nil, ErrComponentRange
	}
	p, err := NewPlane(r.Height, r.Width, border)
	if err != nil {
		return nil, err
	}
	for row := 0; row < r.Height; row++ {
		src := r.Line(row)[n:]
		dst := p.Row(row)
		for c := range dst {
			dst[c] = float32(src[c*r.Components])
		}
	}
	return p, nil
}

// SetPlane writes the interior of p into component n, saturating samples
// to [0, 255] and rounding to nearest.
func (r *Raster) SetPlane(n int, p *Plane) error {
	if n < 0 || n >= r.Components {
		return ErrComponentRange
	}
	if p.Width() != r.Width || p.Height() != r.Height {
		return ErrInvalidDimensions
	}
	for row := 0; row < r.Height; row++ {
		src := p.Row(row)
		dst := r.Line(row)[n:]
		for c, v := range src {
			dst[c*r.Components] = clampByte(v)
		}
	}
	return nil
}

// FromStdImage converts a decoded image into a raster.
//
// Gray images, and paletted images whose palette is entirely gray (8-bit
// BMP), become single-component rasters. Everything else becomes RGB;
// alpha is discarded.
func FromStdImage(img image.Image) *Raster {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if isGray(img) {
		gray, ok := img.(*image.Gray)
		if !ok {
			gray = image.NewGray(image.Rect(0, 0, width, height))
			xdraw.Draw(gray, gray.Bounds(), img, bounds.Min, xdraw.Src)
		}
		r, _ := NewRaster(width, height, 1)
		for y := range height {
			src := gray.Pix[gray.PixOffset(gray.Rect.Min.X, gray.Rect.Min.Y+y):]
			copy(r.Line(height-1-y), src[:width])
		}
		return r
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)
	}

	r, _ := NewRaster(width, height, 3)
	for y := range height {
		src := nrgba.Pix[nrgba.PixOffset(nrgba.Rect.Min.X, nrgba.Rect.Min.Y+y):]
		dst := r.Line(height - 1 - y)
		for x := range width {
			dst[x*3] = src[x*4]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return r
}

// ToStdImage converts the raster back to top-to-bottom order.
// Returns *image.Gray for one component and an opaque *image.NRGBA otherwise.
func (r *Raster) ToStdImage() image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)

	if r.Components == 1 {
		gray := image.NewGray(rect)
		for y := range r.Height {
			copy(gray.Pix[y*gray.Stride:], r.Line(r.Height-1-y))
		}
		return gray
	}

	nrgba := image.NewNRGBA(rect)
	for y := range r.Height {
		src := r.Line(r.Height - 1 - y)
		dst := nrgba.Pix[y*nrgba.Stride:]
		for x := range r.Width {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 255
		}
	}
	return nrgba
}

// isGray reports whether img carries only luminance.
func isGray(img image.Image) bool {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	case *image.Paletted:
		for _, c := range m.Palette {
			r, g, b, _ := c.RGBA()
			if r != g || g != b {
				return false
			}
		}
		return len(m.Palette) > 0
	}
	return img.ColorModel() == color.GrayModel || img.ColorModel() == color.Gray16Model
}

// clampByte saturates v to [0, 255], rounding to nearest.
func clampByte(v float32) byte {
	if !(v > 0) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(math.Round(float64(v)))
}
