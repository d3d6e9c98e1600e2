package palette

import (
	"image"

	"github.com/image-remixer/remixer/posterize"
	"golang.org/x/image/draw"
)

// Swatch draws p as a row of square tiles, one per color, tile pixels wide.
func Swatch(p posterize.Palette, tile int) *image.RGBA {
	if tile <= 0 {
		tile = 64
	}
	img := image.NewRGBA(image.Rect(0, 0, tile*len(p), tile))
	for i, c := range p {
		r := image.Rect(i*tile, 0, (i+1)*tile, tile)
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	}
	return img
}
