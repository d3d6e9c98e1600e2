package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/image-remixer/remixer/posterize"
	"golang.org/x/image/riff"
)

/*
typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// ReadRIFF reads a Microsoft RIFF palette. Colors from every data chunk are
// concatenated, other chunks are skipped.
func ReadRIFF(r io.Reader) (posterize.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open RIFF stream: %v", ErrParse, err)
	} else if formType != palType {
		return nil, fmt.Errorf("%w: unsupported RIFF content type: %s", ErrParse, string(formType[:]))
	}

	var p posterize.Palette
	for n := 0; ; n++ {
		id, _, data, err := rd.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: could not read chunk #%d: %v", ErrParse, n, err)
		}
		if id != dataType {
			continue
		}

		colors, err := readChunk(data, n)
		if err != nil {
			return nil, err
		}
		p = append(p, colors...)
	}

	if len(p) == 0 {
		return nil, ErrNoColors
	}
	if err := checkSize(len(p)); err != nil {
		return nil, err
	}
	return p, nil
}

func readChunk(r io.Reader, chunk int) (posterize.Palette, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: could not read header of chunk #%d: %v", ErrParse, chunk, err)
	}

	ver := binary.BigEndian.Uint16(buf[:2])
	if ver != 3 {
		return nil, fmt.Errorf("%w: unsupported palette version in chunk #%d: %d", ErrParse, chunk, ver)
	}

	count := int(binary.LittleEndian.Uint16(buf[2:]))
	if err := checkSize(count); err != nil {
		return nil, err
	}

	p := make(posterize.Palette, count)
	for i := range count {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("%w: could not read color %d/%d from chunk #%d: %v", ErrParse, i, count, chunk, err)
		}
		p[i] = posterize.Color{R: buf[0], G: buf[1], B: buf[2]}
	}
	return p, nil
}

// WriteRIFF writes p as a RIFF palette with a single data chunk.
func WriteRIFF(w io.Writer, p posterize.Palette) error {
	chunkSize := 4 + len(p)*4 // palVersion + palNumEntries + 4 bytes/color
	formSize := 4 + 4 + 4 + chunkSize

	var buf []byte
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(formSize))
	buf = append(buf, palType[:]...)
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(chunkSize))
	buf = append(buf, 0, 0x03)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p)))
	for _, c := range p {
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}

	n, err := w.Write(buf)
	if err != nil {
		return err
	} else if n != len(buf) {
		return fmt.Errorf("wrote only %d/%d bytes", n, len(buf))
	}
	return nil
}
