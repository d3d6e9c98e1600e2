// Package posterize repaints images with a palette by splitting pixels into
// brightness bands of equal population.
//
// Band boundaries come from the sorted brightness of the image itself, so
// every palette color covers roughly the same number of pixels no matter how
// the brightness of the image is distributed.
package posterize

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidInput is wrapped by every error caused by bad arguments.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyRaster  = fmt.Errorf("%w: raster has no pixels", ErrInvalidInput)
	ErrEmptyPalette = fmt.Errorf("%w: palette has no colors", ErrInvalidInput)
)

// TieBreak decides which band gets a pixel whose brightness is exactly
// equal to the boundary shared by two bands.
type TieBreak int

const (
	// TieUpper gives the pixel to the brighter band. Every band is the closed
	// range [B[i], B[i+1]] and later bands overwrite earlier ones.
	TieUpper TieBreak = iota

	// TieLower gives the pixel to the darker band, which is the band its rank
	// places it in. Bands are (B[i], B[i+1]], with band 0 closed at 0.
	TieLower
)

func (t TieBreak) String() string {
	if t == TieLower {
		return "lower"
	}
	return "upper"
}

// Quantizer maps images onto palettes. The zero value is ready to use and
// matches Transform.
type Quantizer struct {
	TieBreak TieBreak

	// Fill is used for pixels that fall in no band. That can't happen for
	// boundaries computed by Boundaries, but the output is never left unset.
	Fill Color
}

// Transform repaints r with p using the default Quantizer.
func Transform(r *Raster, p Palette) (*Raster, error) {
	return Quantizer{}.Transform(r, p)
}

// Transform returns a new raster of the same size as r, where every pixel
// has been replaced by the palette color of its brightness band. r is not
// modified.
func (q Quantizer) Transform(r *Raster, p Palette) (*Raster, error) {
	bands, _, err := q.Assign(r, p)
	if err != nil {
		return nil, err
	}

	out := NewRaster(r.Width, r.Height)
	for i, band := range bands {
		c := q.Fill
		if band >= 0 {
			c = p[band]
		}
		out.Pix[i*3] = c.R
		out.Pix[i*3+1] = c.G
		out.Pix[i*3+2] = c.B
	}
	return out, nil
}

// Assign returns the band index of every pixel of r in row-major order, and
// the band boundaries used. Pixels outside every band get -1.
func (q Quantizer) Assign(r *Raster, p Palette) ([]int, []float64, error) {
	if err := validate(r, p); err != nil {
		return nil, nil, err
	}

	brightness := Brightnesses(r)
	sorted := make([]float64, len(brightness))
	copy(sorted, brightness)
	sort.Float64s(sorted)
	bounds := Boundaries(sorted, len(p))

	// Boundaries are only out of order when there are fewer pixels than
	// colors, and then scanning every band is cheap anyway.
	find := q.search
	if !sort.Float64sAreSorted(bounds) {
		find = q.scan
	}

	bands := make([]int, len(brightness))
	for i, b := range brightness {
		bands[i] = find(bounds, b)
	}
	return bands, bounds, nil
}

// search finds the band for brightness b by binary search. bounds must be
// non-decreasing.
func (q Quantizer) search(bounds []float64, b float64) int {
	n := len(bounds) - 1

	if q.TieBreak == TieLower {
		// First band whose upper bound reaches b
		i := sort.Search(n, func(i int) bool { return b <= bounds[i+1] })
		if i == n || b < bounds[0] {
			return -1
		}
		return i
	}

	// Last band whose lower bound is at or below b. Upper bounds of earlier
	// bands can't be greater than this one's, so it's the only candidate.
	i := sort.Search(n, func(i int) bool { return bounds[i] > b }) - 1
	if i < 0 || b > bounds[i+1] {
		return -1
	}
	return i
}

// scan finds the band for brightness b by checking every band in turn.
func (q Quantizer) scan(bounds []float64, b float64) int {
	n := len(bounds) - 1

	if q.TieBreak == TieLower {
		for i := 0; i < n; i++ {
			if (b > bounds[i] || (i == 0 && b == bounds[0])) && b <= bounds[i+1] {
				return i
			}
		}
		return -1
	}

	for i := n - 1; i >= 0; i-- {
		if bounds[i] <= b && b <= bounds[i+1] {
			return i
		}
	}
	return -1
}

// Brightness returns the mean of the three channels of c.
func Brightness(c Color) float64 {
	return float64(int(c.R)+int(c.G)+int(c.B)) / 3
}

// Brightnesses returns the brightness of every pixel of r in row-major order.
func Brightnesses(r *Raster) []float64 {
	out := make([]float64, r.Len())
	for i := range out {
		out[i] = float64(int(r.Pix[i*3])+int(r.Pix[i*3+1])+int(r.Pix[i*3+2])) / 3
	}
	return out
}

// Boundaries computes the n+1 band boundaries for the ascending brightness
// values in sorted. The first boundary is always 0, and boundary i+1 is the
// last value of the i-th of n equally sized rank slices.
//
// With fewer values than bands the leading slices are empty, and their
// boundary wraps around to the brightest value. The result is then not
// ordered.
//
// sorted must not be empty and n must be positive.
func Boundaries(sorted []float64, n int) []float64 {
	total := len(sorted)
	bounds := make([]float64, n+1)
	for i := 0; i < n; i++ {
		idx := min((i+1)*total/n-1, total-1)
		if idx < 0 {
			idx = total - 1
		}
		bounds[i+1] = sorted[idx]
	}
	return bounds
}

func validate(r *Raster, p Palette) error {
	if r.Len() <= 0 || len(r.Pix) < r.Len()*3 {
		return ErrEmptyRaster
	}
	if len(p) == 0 {
		return ErrEmptyPalette
	}
	return nil
}
