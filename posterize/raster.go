package posterize

import (
	"image"
	"image/color"
)

// Color is an opaque 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color. Colors are always fully opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Palette is an ordered list of colors. Entry i is used for the i-th
// brightness band, counting from the darkest.
type Palette []Color

// ColorPalette converts p to a color.Palette, for use with the image packages.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// Raster is a rectangular grid of RGB pixels with its origin at (0, 0).
type Raster struct {
	Width  int
	Height int
	// Pix holds interleaved R, G, B values. The pixel at (x, y) starts at
	// Pix[(y*Width+x)*3].
	Pix []uint8
}

// NewRaster returns a black raster of the given size.
func NewRaster(width, height int) *Raster {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// FromImage copies img into a new Raster. The alpha channel is discarded,
// so images should be opaque.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())

	// Fast paths for what the standard decoders produce
	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < r.Height; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < r.Width; x++ {
				i := (y*r.Width + x) * 3
				r.Pix[i] = row[x*4]
				r.Pix[i+1] = row[x*4+1]
				r.Pix[i+2] = row[x*4+2]
			}
		}
		return r
	case *image.NRGBA:
		for y := 0; y < r.Height; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < r.Width; x++ {
				i := (y*r.Width + x) * 3
				r.Pix[i] = row[x*4]
				r.Pix[i+1] = row[x*4+1]
				r.Pix[i+2] = row[x*4+2]
			}
		}
		return r
	}

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := (y*r.Width + x) * 3
			r.Pix[i] = c.R
			r.Pix[i+1] = c.G
			r.Pix[i+2] = c.B
		}
	}
	return r
}

// Len returns the number of pixels.
func (r *Raster) Len() int {
	if r == nil {
		return 0
	}
	return r.Width * r.Height
}

// RGBAt returns the color of the pixel at (x, y).
func (r *Raster) RGBAt(x, y int) Color {
	if !(image.Point{x, y}.In(r.Bounds())) {
		return Color{}
	}
	i := (y*r.Width + x) * 3
	return Color{r.Pix[i], r.Pix[i+1], r.Pix[i+2]}
}

// SetRGB sets the pixel at (x, y). Points outside the raster are ignored.
func (r *Raster) SetRGB(x, y int, c Color) {
	if !(image.Point{x, y}.In(r.Bounds())) {
		return
	}
	i := (y*r.Width + x) * 3
	r.Pix[i] = c.R
	r.Pix[i+1] = c.G
	r.Pix[i+2] = c.B
}

func (r *Raster) ColorModel() color.Model {
	return color.RGBAModel
}

func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

func (r *Raster) At(x, y int) color.Color {
	c := r.RGBAt(x, y)
	return color.RGBA{c.R, c.G, c.B, 0xff}
}

// Clone returns a deep copy of r.
func (r *Raster) Clone() *Raster {
	dst := &Raster{Width: r.Width, Height: r.Height, Pix: make([]uint8, len(r.Pix))}
	copy(dst.Pix, r.Pix)
	return dst
}
