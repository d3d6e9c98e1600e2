// Package palette reads, writes and generates the palettes used by remixer.
//
// Palettes are usually coolors.co "Code" exports saved as text files, see
// ParseSCSS. Microsoft RIFF palettes (.pal) are supported as well.
package palette

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/image-remixer/remixer/posterize"
)

// MaxColors is the largest palette accepted from any source.
const MaxColors = 20

const (
	SCSSExt = ".txt"
	RIFFExt = ".pal"
)

var (
	// ErrParse is wrapped by every error about the content of a palette source.
	ErrParse = errors.New("palette parse error")

	ErrNoSection = fmt.Errorf("%w: no %q section", ErrParse, startMarker)
	ErrNoColors  = fmt.Errorf("%w: no colors found", ErrParse)

	ErrTooManyColors = fmt.Errorf("%w: too many colors (max %d)", posterize.ErrInvalidInput, MaxColors)
)

// IsPaletteFile reports whether name has an extension Load understands.
func IsPaletteFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == SCSSExt || ext == RIFFExt
}

// Load reads the palette file at path, picking the format from the extension.
func Load(path string) (posterize.Palette, error) {
	var read func(io.Reader) (posterize.Palette, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case SCSSExt:
		read = ParseSCSS
	case RIFFExt:
		read = ReadRIFF
	default:
		return nil, fmt.Errorf("'%s': unsupported palette extension, use %s or %s", path, SCSSExt, RIFFExt)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return p, nil
}

// Save writes p to path, picking the format from the extension.
func Save(path string, p posterize.Palette) (err error) {
	var write func(io.Writer, posterize.Palette) error
	switch strings.ToLower(filepath.Ext(path)) {
	case SCSSExt:
		write = WriteSCSS
	case RIFFExt:
		write = WriteRIFF
	default:
		return fmt.Errorf("'%s': unsupported palette extension, use %s or %s", path, SCSSExt, RIFFExt)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err = write(f, p); err != nil {
		return fmt.Errorf("'%s': %w", path, err)
	}
	return nil
}

func checkSize(n int) error {
	if n > MaxColors {
		return fmt.Errorf("%w: found %d", ErrTooManyColors, n)
	}
	return nil
}
