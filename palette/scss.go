package palette

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/image-remixer/remixer/posterize"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	startMarker = "/* SCSS RGB */"
	endMarker   = "/* SCSS Gradient */"
)

var rgbaRe = regexp.MustCompile(`rgba\((\d+),\s*(\d+),\s*(\d+)`)

// ParseSCSS reads a coolors.co code export. Colors are taken from lines like
//
//	$name: rgba(10, 20, 30, 1);
//
// between the "/* SCSS RGB */" and "/* SCSS Gradient */" marker lines, in
// order. Anything after the third number is ignored, and lines that don't
// hold a valid color are skipped.
func ParseSCSS(r io.Reader) (posterize.Palette, error) {
	var p posterize.Palette
	inSection := false
	found := false

	sc := bufio.NewScanner(r)
	// Lines outside of the colors can be arbitrarily long
	sc.Buffer(make([]byte, 0, 64*1024), math.MaxInt32)
	for sc.Scan() {
		line := sc.Text()
		if strings.Contains(line, startMarker) {
			inSection = true
			found = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.Contains(line, endMarker) {
			break
		}

		c, ok := parseRGBA(strings.TrimSpace(line))
		if ok {
			p = append(p, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrNoSection
	}
	if len(p) == 0 {
		return nil, ErrNoColors
	}
	if err := checkSize(len(p)); err != nil {
		return nil, err
	}
	return p, nil
}

func parseRGBA(line string) (posterize.Color, bool) {
	m := rgbaRe.FindStringSubmatch(line)
	if m == nil {
		return posterize.Color{}, false
	}
	var ch [3]uint8
	for i := range ch {
		n, err := strconv.ParseUint(m[i+1], 10, 8)
		if err != nil {
			// Out of range
			return posterize.Color{}, false
		}
		ch[i] = uint8(n)
	}
	return posterize.Color{R: ch[0], G: ch[1], B: ch[2]}, true
}

// WriteSCSS writes p in the same layout as a coolors.co code export, so it
// can be read back with ParseSCSS.
func WriteSCSS(w io.Writer, p posterize.Palette) error {
	hexes := make([]string, len(p))
	for i, c := range p {
		cf, _ := colorful.MakeColor(c)
		hexes[i] = cf.Hex()
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "/* CSV */")
	bare := make([]string, len(hexes))
	for i, h := range hexes {
		bare[i] = strings.TrimPrefix(h, "#")
	}
	fmt.Fprintln(bw, strings.Join(bare, ","))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "/* With # */")
	fmt.Fprintln(bw, strings.Join(hexes, ", "))
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "/* SCSS HEX */")
	for i, h := range hexes {
		fmt.Fprintf(bw, "$color-%d: %sff;\n", i+1, h)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, startMarker)
	for i, c := range p {
		fmt.Fprintf(bw, "$color-%d: rgba(%d, %d, %d, 1);\n", i+1, c.R, c.G, c.B)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, endMarker)
	stops := make([]string, len(hexes))
	for i, h := range hexes {
		stops[i] = h + "ff"
	}
	fmt.Fprintf(bw, "$gradient-top: linear-gradient(0deg, %s);\n", strings.Join(stops, ", "))

	return bw.Flush()
}
