// Package image provides the sample buffers and raster I/O used by logfilter.
//
// A Plane holds one color component as float32 samples surrounded by a
// border of configurable width. The border is filled by symmetric extension
// so that convolution kernels can read up to Border() samples past any edge
// without bounds checks in the inner loop.
package image

import "errors"

// Common errors for plane operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive
	// or the border is negative.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidStride is returned when stride cannot hold a bordered row.
	ErrInvalidStride = errors.New("image: stride too small for width and border")
)

// Plane is a single-component sample grid with a symmetric-extension border.
//
// Samples live in one contiguous slice. Logical pixel (r, c) is stored at
// origin + r*stride + c, so any r in [-border, height+border) and c in
// [-border, width+border) addresses valid storage.
//
// The border is only meaningful after Extend has run following the last
// write to the interior.
type Plane struct {
	data   []float32
	width  int
	height int
	border int
	stride int
	origin int
}

// NewPlane allocates a plane with the minimum stride for its border.
// Interior and border samples start at zero.
func NewPlane(height, width, border int) (*Plane, error) {
	return NewPlaneWithStride(height, width, border, width+2*border)
}

// NewPlaneWithStride allocates a plane with a custom row pitch.
// Stride must be at least width + 2*border.
func NewPlaneWithStride(height, width, border, stride int) (*Plane, error) {
	if width <= 0 || height <= 0 || border < 0 {
		return nil, ErrInvalidDimensions
	}
	if stride < width+2*border {
		return nil, ErrInvalidStride
	}

	rows := height + 2*border
	return &Plane{
		data:   make([]float32, rows*stride),
		width:  width,
		height: height,
		border: border,
		stride: stride,
		origin: border*stride + border,
	}, nil
}

// Width returns the interior width in samples.
func (p *Plane) Width() int {
	return p.width
}

// Height returns the interior height in rows.
func (p *Plane) Height() int {
	return p.height
}

// Border returns the extension width on every side.
func (p *Plane) Border() int {
	return p.border
}

// Stride returns the distance in samples between vertically adjacent pixels.
func (p *Plane) Stride() int {
	return p.stride
}

// Data returns the backing store, border included.
// Use Offset to locate a logical pixel inside it.
func (p *Plane) Data() []float32 {
	return p.data
}

// Offset returns the index of logical pixel (r, c) in Data.
func (p *Plane) Offset(r, c int) int {
	return p.origin + r*p.stride + c
}

// At returns the sample at row r, column c.
func (p *Plane) At(r, c int) float32 {
	return p.data[p.origin+r*p.stride+c]
}

// Set stores v at row r, column c.
func (p *Plane) Set(r, c int, v float32) {
	p.data[p.origin+r*p.stride+c] = v
}

// Row returns the interior samples of row r.
// The slice aliases the plane storage.
func (p *Plane) Row(r int) []float32 {
	start := p.origin + r*p.stride
	return p.data[start : start+p.width]
}

// Fill sets every interior sample to v. The border is left stale.
func (p *Plane) Fill(v float32) {
	for r := 0; r < p.height; r++ {
		row := p.Row(r)
		for c := range row {
			row[c] = v
		}
	}
}

// Clone returns a deep copy, border included.
func (p *Plane) Clone() *Plane {
	data := make([]float32, len(p.data))
	copy(data, p.data)

	clone := *p
	clone.data = data
	return &clone
}

// Extend refreshes the border by whole-sample symmetric extension.
//
// Rows are extended first over the interior columns, then every row of the
// extended range is extended left and right, so the corner regions are
// mirrored from rows that are already extended. Only the border is written.
func (p *Plane) Extend() {
	if p.border == 0 {
		return
	}

	b, s := p.border, p.stride

	// Top and bottom.
	for k := 1; k <= b; k++ {
		top := p.origin - k*s
		src := p.origin + mirror(-k, p.height)*s
		copy(p.data[top:top+p.width], p.data[src:src+p.width])

		bottom := p.origin + (p.height-1+k)*s
		src = p.origin + mirror(p.height-1+k, p.height)*s
		copy(p.data[bottom:bottom+p.width], p.data[src:src+p.width])
	}

	// Left and right, corners included.
	for r := -b; r < p.height+b; r++ {
		row := p.origin + r*s
		for k := 1; k <= b; k++ {
			p.data[row-k] = p.data[row+mirror(-k, p.width)]
			p.data[row+p.width-1+k] = p.data[row+mirror(p.width-1+k, p.width)]
		}
	}
}

// mirror folds index i into [0, n) by whole-sample symmetric reflection:
// -1 maps to 1 and n maps to n-2. Indices further out keep reflecting,
// so borders wider than the interior stay defined.
func mirror(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}
