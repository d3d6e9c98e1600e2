package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	"github.com/image-remixer/remixer/posterize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mccutchen/palettor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Method is a way of sampling a palette out of an image.
type Method int

const (
	// Palettor clusters colors with github.com/mccutchen/palettor.
	Palettor Method = iota
	// KMeans clusters colors with github.com/muesli/kmeans.
	KMeans
	// Dominant uses github.com/cenkalti/dominantcolor.
	Dominant
)

var methodNames = []string{"palettor", "kmeans", "dominant"}

func (m Method) String() string {
	if int(m) < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// ParseMethod returns the Method with the given name.
func ParseMethod(s string) (Method, error) {
	i := slices.Index(methodNames, strings.ToLower(s))
	if i < 0 {
		return 0, fmt.Errorf("unknown palette method '%s', use one of: %s", s, strings.Join(methodNames, ", "))
	}
	return Method(i), nil
}

// Size of the thumbnail colors are sampled from, to keep clustering fast.
const thumbSize = 200

// Extract samples a palette of at most k colors from img. The result is
// sorted from darkest to brightest, so the colors land on the bands closest
// to where they came from.
func Extract(img image.Image, k int, m Method) (posterize.Palette, error) {
	if k < 1 || k > MaxColors {
		return nil, fmt.Errorf("%w: palette size must be in the range 1-%d, got %d", posterize.ErrInvalidInput, MaxColors, k)
	}
	if img.Bounds().Empty() {
		return nil, posterize.ErrEmptyRaster
	}

	// Resize: see the palettor CLI source:
	// https://github.com/mccutchen/palettor/blob/3eaed180/cmd/palettor/palettor.go#L57
	thumbnail := imaging.Resize(img, thumbSize, thumbSize, imaging.NearestNeighbor)

	var (
		p   posterize.Palette
		err error
	)
	switch m {
	case Palettor:
		p, err = extractPalettor(thumbnail, k)
	case KMeans:
		p, err = extractKMeans(thumbnail, k)
	case Dominant:
		p = extractDominant(thumbnail, k)
	default:
		return nil, fmt.Errorf("unknown palette method %v", m)
	}
	if err != nil {
		return nil, fmt.Errorf("error extracting palette with %v: %w", m, err)
	}

	p = dedupe(p)
	if len(p) == 0 {
		return nil, ErrNoColors
	}
	SortByBrightness(p)
	return p, nil
}

func extractPalettor(img image.Image, k int) (posterize.Palette, error) {
	pal, err := palettor.Extract(k, 500, img)
	if err != nil {
		return nil, err
	}
	colors := pal.Colors()
	p := make(posterize.Palette, len(colors))
	for i, c := range colors {
		p[i] = toColor(c)
	}
	return p, nil
}

func extractKMeans(img *image.NRGBA, k int) (posterize.Palette, error) {
	b := img.Bounds()
	dataset := make(clusters.Observations, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			dataset = append(dataset, clusters.Coordinates{
				float64(img.Pix[i]) / 255,
				float64(img.Pix[i+1]) / 255,
				float64(img.Pix[i+2]) / 255,
			})
		}
	}
	if k > len(dataset) {
		k = len(dataset)
	}

	cc, err := kmeans.New().Partition(dataset, k)
	if err != nil {
		return nil, err
	}

	// Most populated clusters first
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	p := make(posterize.Palette, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 || len(c.Center) < 3 {
			continue
		}
		cf := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, b := cf.RGB255()
		p = append(p, posterize.Color{R: r, G: g, B: b})
	}
	if len(p) == 0 {
		return nil, errors.New("no clusters found")
	}
	return p, nil
}

func extractDominant(img image.Image, k int) posterize.Palette {
	found := dominantcolor.FindWeight(img, k)
	p := make(posterize.Palette, len(found))
	for i, c := range found {
		p[i] = posterize.Color{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B}
	}
	return p
}

func toColor(c color.Color) posterize.Color {
	cf, _ := colorful.MakeColor(c)
	r, g, b := cf.Clamped().RGB255()
	return posterize.Color{R: r, G: g, B: b}
}

func dedupe(p posterize.Palette) posterize.Palette {
	seen := make(map[posterize.Color]bool, len(p))
	out := p[:0]
	for _, c := range p {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// SortByBrightness orders p from darkest to brightest, keeping the relative
// order of colors with the same brightness.
func SortByBrightness(p posterize.Palette) {
	slices.SortStableFunc(p, func(a, b posterize.Color) int {
		ba, bb := posterize.Brightness(a), posterize.Brightness(b)
		if ba < bb {
			return -1
		}
		if ba > bb {
			return 1
		}
		return 0
	})
}
