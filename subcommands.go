package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/disintegration/imaging"
	"github.com/image-remixer/remixer/palette"
	"github.com/image-remixer/remixer/parallel"
	"github.com/image-remixer/remixer/posterize"
	"github.com/urfave/cli/v2"
)

// errHelp is returned once the help has been printed because it was asked
// for. It still makes the process exit with status 1.
var errHelp = errors.New("help requested")

var (
	quantizer posterize.Quantizer

	autoOrientation imaging.DecodeOption

	quality int
	threads int

	outFileFlags int // For os.OpenFile

	width  int
	height int

	// For --extract
	paletteSize   int
	extractMethod palette.Method
	swatchPath    string
)

// preProcess is automatically called by the app before anything else.
// It's run in the global context.
func preProcess(c *cli.Context) error {
	// Help wins over any other flag, valid or not
	if c.Bool("help") {
		cli.ShowAppHelp(c)
		return errHelp
	}

	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level})))

	fill, err := parseColor(c.String("fill"))
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	quantizer = posterize.Quantizer{Fill: fill}
	if c.Bool("tie-lower") {
		quantizer.TieBreak = posterize.TieLower
	}

	autoOrientation = imaging.AutoOrientation(!c.Bool("no-exif-rotation"))

	quality = c.Int("quality")
	if quality < 1 || quality > 100 {
		return fmt.Errorf("quality must be in the range 1-100, got %d", quality)
	}
	threads = int(c.Uint("threads"))

	if c.Bool("no-overwrite") {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	} else {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	// Set here for convenience
	width = int(c.Uint("width"))
	height = int(c.Uint("height"))

	paletteSize = int(c.Uint("colors"))
	if paletteSize < 1 || paletteSize > palette.MaxColors {
		return fmt.Errorf("colors must be in the range 1-%d, got %d", palette.MaxColors, paletteSize)
	}
	extractMethod, err = palette.ParseMethod(c.String("method"))
	if err != nil {
		return err
	}
	swatchPath = c.String("swatch")

	return nil
}

// run picks the mode from the flags.
func run(c *cli.Context) error {
	modes := 0
	for _, m := range []string{"color-batch", "image-batch", "combine-batch", "extract"} {
		if c.Bool(m) {
			modes++
		}
	}
	if modes > 1 {
		return usageError(c, "only one of --color-batch, --image-batch, --combine-batch and --extract can be used")
	}

	args := c.Args().Slice()
	switch {
	case c.Bool("color-batch"):
		return colorBatch(c, args)
	case c.Bool("image-batch"):
		return imageBatch(c, args)
	case c.Bool("combine-batch"):
		return combineBatch(c, args)
	case c.Bool("extract"):
		return extract(c, args)
	}
	return single(c, args)
}

// single applies one palette to one image.
func single(c *cli.Context, args []string) error {
	if len(args) != 3 {
		return usageError(c, "invalid arguments, expected input.jpg output.jpg palette.txt")
	}
	src, dst, palPath := args[0], args[1], args[2]
	if !isImageFile(src) || !isImageFile(dst) || !palette.IsPaletteFile(palPath) {
		return usageError(c, extensionHint)
	}

	p, err := palette.Load(palPath)
	if err != nil {
		return err
	}

	img, err := getInputImage(src)
	if err != nil {
		return fmt.Errorf("error loading '%s': %w", src, err)
	}
	return remix(posterize.FromImage(img), p, dst)
}

// colorBatch applies every palette in a folder to one image. Outputs are
// numbered by the position of the palette in the folder listing. Palettes
// that can't be loaded are skipped.
func colorBatch(c *cli.Context, args []string) error {
	if len(args) != 3 {
		return usageError(c, "invalid arguments, expected --color-batch input.jpg output_prefix palettes_folder")
	}
	src, prefix, palDir := args[0], args[1], args[2]
	if !isImageFile(src) || !isDir(palDir) {
		return usageError(c, "check file extensions (%s for images) and if %s is a valid directory", imageExt, palDir)
	}

	palPaths, err := listFiles(palDir, palette.IsPaletteFile)
	if err != nil {
		return err
	}

	img, err := getInputImage(src)
	if err != nil {
		return fmt.Errorf("error loading '%s': %w", src, err)
	}
	// Read-only from here on, so every job can share it
	r := posterize.FromImage(img)

	var st batchStats
	pool := parallel.Start(threads)
	for idx, palPath := range palPaths {
		pool.Do(func() {
			p, err := palette.Load(palPath)
			if err != nil {
				st.skip(palPath, err)
				return
			}
			st.record(remix(r, p, fmt.Sprintf("%s%d%s", prefix, idx, imageExt)))
		})
	}
	pool.Wait()

	return st.report()
}

// imageBatch applies one palette to every image in a folder. A palette that
// can't be loaded stops the batch before any image is read.
func imageBatch(c *cli.Context, args []string) error {
	if len(args) != 3 {
		return usageError(c, "invalid arguments, expected --image-batch images_folder output_folder palette.txt")
	}
	imgDir, outDir, palPath := args[0], args[1], args[2]
	if !isDir(imgDir) || !isDir(outDir) || !palette.IsPaletteFile(palPath) {
		return usageError(c, "check file extensions (%s or %s for palettes) and if folders are valid directories",
			palette.SCSSExt, palette.RIFFExt)
	}

	p, err := palette.Load(palPath)
	if err != nil {
		return err
	}

	imgPaths, err := listFiles(imgDir, isImageFile)
	if err != nil {
		return err
	}

	var st batchStats
	pool := parallel.Start(threads)
	for _, imgPath := range imgPaths {
		pool.Do(func() {
			r, err := loadRaster(imgPath)
			if err != nil {
				st.record(err)
				return
			}
			st.record(remix(r, p, filepath.Join(outDir, "transformed_"+filepath.Base(imgPath))))
		})
	}
	pool.Wait()

	return st.report()
}

// combineBatch applies every palette in a folder to every image in another
// folder. Outputs are named after the palette's position in its folder and
// the image name. Palettes that can't be loaded are skipped.
func combineBatch(c *cli.Context, args []string) error {
	if len(args) != 3 {
		return usageError(c, "invalid arguments, expected --combine-batch images_folder output_folder palettes_folder")
	}
	imgDir, outDir, palDir := args[0], args[1], args[2]
	if !isDir(imgDir) || !isDir(outDir) || !isDir(palDir) {
		return usageError(c, "check if folders are valid directories")
	}

	palPaths, err := listFiles(palDir, palette.IsPaletteFile)
	if err != nil {
		return err
	}
	imgPaths, err := listFiles(imgDir, isImageFile)
	if err != nil {
		return err
	}

	var st batchStats

	type indexedPalette struct {
		idx int
		p   posterize.Palette
	}
	palettes := make([]indexedPalette, 0, len(palPaths))
	for idx, palPath := range palPaths {
		p, err := palette.Load(palPath)
		if err != nil {
			st.skip(palPath, err)
			continue
		}
		palettes = append(palettes, indexedPalette{idx, p})
	}

	// One job per image, so each image is only decoded once
	pool := parallel.Start(threads)
	for _, imgPath := range imgPaths {
		pool.Do(func() {
			r, err := loadRaster(imgPath)
			if err != nil {
				st.record(err)
				return
			}
			name := filepath.Base(imgPath)
			for _, ip := range palettes {
				out := filepath.Join(outDir, fmt.Sprintf("transformed_%d_%s", ip.idx, name))
				st.record(remix(r, ip.p, out))
			}
		})
	}
	pool.Wait()

	return st.report()
}

// extract samples a palette from an image and saves it as a palette file.
func extract(c *cli.Context, args []string) error {
	if len(args) != 2 {
		return usageError(c, "invalid arguments, expected --extract input.jpg palette.txt")
	}
	src, palPath := args[0], args[1]
	if !isImageFile(src) || !palette.IsPaletteFile(palPath) {
		return usageError(c, extensionHint)
	}

	img, err := getInputImage(src)
	if err != nil {
		return fmt.Errorf("error loading '%s': %w", src, err)
	}

	p, err := palette.Extract(img, paletteSize, extractMethod)
	if err != nil {
		return err
	}
	if err := palette.Save(palPath, p); err != nil {
		return err
	}
	slog.Info("saved palette", "output", palPath, "colors", len(p), "method", extractMethod)

	if swatchPath != "" {
		if err := imaging.Save(palette.Swatch(p, 64), swatchPath); err != nil {
			return fmt.Errorf("error writing swatch to '%s': %w", swatchPath, err)
		}
		slog.Info("saved swatch", "output", swatchPath)
	}
	return nil
}

// batchStats counts the outcomes of a batch. It's safe for concurrent use.
type batchStats struct {
	processed atomic.Uint64
	skipped   atomic.Uint64
	errors    atomic.Uint64
}

func (st *batchStats) record(err error) {
	if err != nil {
		st.errors.Add(1)
		slog.Error("could not process image", "error", err)
		return
	}
	st.processed.Add(1)
}

func (st *batchStats) skip(palPath string, err error) {
	st.skipped.Add(1)
	slog.Warn("skipping palette", "palette", palPath, "error", err)
}

func (st *batchStats) report() error {
	processed, skipped, errs := st.processed.Load(), st.skipped.Load(), st.errors.Load()
	slog.Info("stats", "processed", processed, "skipped palettes", skipped, "errors", errs,
		"total", processed+errs)

	if errs > 0 {
		return fmt.Errorf("error processing %d files", errs)
	}
	return nil
}
