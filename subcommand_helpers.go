package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/image-remixer/remixer/palette"
	"github.com/image-remixer/remixer/posterize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/colornames"
)

// imageExt is the only image extension read and written.
const imageExt = ".jpg"

const extensionHint = "check file extensions, images must be " + imageExt +
	" and palettes " + palette.SCSSExt + " or " + palette.RIFFExt

func isImageFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == imageExt
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// listFiles returns the paths of the regular files in dir that keep accepts,
// sorted by name.
func listFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && keep(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// usageError prints the help and returns an error built from format.
func usageError(c *cli.Context, format string, a ...any) error {
	cli.ShowAppHelp(c)
	fmt.Fprintln(c.App.Writer)
	return fmt.Errorf(format, a...)
}

// hexToColor only accepts the six digit form, so that numbers like 255 are
// left for the grayscale case.
func hexToColor(hex string) (posterize.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return posterize.Color{}, fmt.Errorf("%s is not a hex color", hex)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return posterize.Color{}, err
	}
	r, g, b := c.RGB255()
	return posterize.Color{R: r, G: g, B: b}, nil
}

func rgbToColor(s string) (posterize.Color, error) {
	var r, g, b uint8
	n, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b)
	if err != nil {
		return posterize.Color{}, err
	}
	if n != 3 {
		return posterize.Color{}, fmt.Errorf("%s is not an RGB tuple", s)
	}
	return posterize.Color{R: r, G: g, B: b}, nil
}

// parseColor reads a color given on the command line.
func parseColor(arg string) (posterize.Color, error) {
	// Try to parse as RGB numbers, then hex, then grayscale, then SVG colors, then fail

	if strings.Count(arg, ",") == 2 {
		c, err := rgbToColor(arg)
		if err != nil {
			return posterize.Color{}, fmt.Errorf("%s is not a valid RGB tuple. Example: 25,200,150", arg)
		}
		return c, nil
	}

	if c, err := hexToColor(arg); err == nil {
		return c, nil
	}

	if n, err := strconv.Atoi(arg); err == nil {
		if n > 255 || n < 0 {
			return posterize.Color{}, fmt.Errorf("single numbers like %d must be in the range 0-255", n)
		}
		return posterize.Color{R: uint8(n), G: uint8(n), B: uint8(n)}, nil
	}

	if c, ok := colornames.Map[strings.ToLower(arg)]; ok {
		return posterize.Color{R: c.R, G: c.G, B: c.B}, nil
	}

	return posterize.Color{}, fmt.Errorf("%s not recognized as an RGB tuple, hex code, number 0-255, or SVG color name", arg)
}

// getInputImage opens the image at path and applies the resizing flags.
func getInputImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, autoOrientation)
	if err != nil {
		return nil, err
	}

	if width != 0 || height != 0 {
		// Box sampling is quick and fast, and better then others at downscaling
		img = imaging.Resize(img, width, height, imaging.Box)
	}
	return img, nil
}

func loadRaster(path string) (*posterize.Raster, error) {
	img, err := getInputImage(path)
	if err != nil {
		return nil, fmt.Errorf("error loading '%s': %w", path, err)
	}
	return posterize.FromImage(img), nil
}

// writeImage encodes img as a JPEG at path.
func writeImage(path string, img image.Image) error {
	file, err := os.OpenFile(path, outFileFlags, 0644)
	if err != nil {
		return fmt.Errorf("'%s': %w", path, err)
	}

	err = imaging.Encode(file, img, imaging.JPEG, imaging.JPEGQuality(quality))
	if err != nil {
		file.Close()
		return fmt.Errorf("error writing JPEG to '%s': %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("'%s': %w", path, err)
	}
	return nil
}

// remix repaints r with p and writes the result to out. r is only read.
func remix(r *posterize.Raster, p posterize.Palette, out string) error {
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		stats, err := quantizer.Stats(r, p)
		if err != nil {
			return err
		}
		for i, s := range stats {
			cf, _ := colorful.MakeColor(s.Color)
			slog.Debug("band", "output", out, "band", i, "color", cf.Hex(),
				"low", s.Low, "high", s.High, "pixels", s.Pixels, "mean", s.Mean, "stddev", s.StdDev)
		}
	}

	dst, err := quantizer.Transform(r, p)
	if err != nil {
		return err
	}
	if err := writeImage(out, dst); err != nil {
		return err
	}
	slog.Info("saved transformed image", "output", out, "colors", len(p), "tie", quantizer.TieBreak)
	return nil
}
