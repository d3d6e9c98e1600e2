package palette

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/image-remixer/remixer/posterize"
)

const coolorsExport = `/* CSV */
0a141e,28323c

/* With # */
#0a141e, #28323c

/* SCSS HEX */
$background: #0a141eff;
$foo: #28323cff;

/* SCSS HSL */
$background: hsla(210, 50%, 8%, 1);

/* SCSS RGB */
background: rgba(10, 20, 30, 1);
foo: rgba(40, 50, 60, 0.5);

/* SCSS Gradient */
$gradient-top: linear-gradient(0deg, rgba(99, 99, 99, 1), #28323cff);
`

func TestParseSCSS(t *testing.T) {
	p, err := ParseSCSS(strings.NewReader(coolorsExport))
	if err != nil {
		t.Fatal(err)
	}
	want := posterize.Palette{{R: 10, G: 20, B: 30}, {R: 40, G: 50, B: 60}}
	if len(p) != len(want) {
		t.Fatalf("got %v, want %v", p, want)
	}
	for i := range want {
		if p[i] != want[i] {
			t.Errorf("color %d = %v, want %v", i, p[i], want[i])
		}
	}
}

func TestParseSCSSSkipsBadLines(t *testing.T) {
	src := `/* SCSS RGB */
$a: rgba(1, 2, 3, 1);
$b: rgba(1, 2);
$c: rgb(4, 5, 6);
$d: rgba(256, 0, 0, 1);
   $e:   rgba(7,8,   9, 1);
garbage
$f: rgba(-1, 2, 3, 1);
/* SCSS Gradient */
$g: rgba(10, 11, 12, 1);
`
	p, err := ParseSCSS(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := posterize.Palette{{R: 1, G: 2, B: 3}, {R: 7, G: 8, B: 9}}
	if fmt.Sprint(p) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", p, want)
	}
}

func TestParseSCSSNoEndMarker(t *testing.T) {
	p, err := ParseSCSS(strings.NewReader("/* SCSS RGB */\n$a: rgba(1, 2, 3, 1);\n$b: rgba(4, 5, 6, 1);"))
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 2 {
		t.Errorf("got %v, want 2 colors", p)
	}
}

func TestParseSCSSLongLine(t *testing.T) {
	src := startMarker + "\n$a: rgba(10, 20, 30, 1);\n/* " + strings.Repeat("x", 70000) +
		" */\n$b: rgba(40, 50, 60, 1);\n" + endMarker + "\n"
	p, err := ParseSCSS(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	want := posterize.Palette{{R: 10, G: 20, B: 30}, {R: 40, G: 50, B: 60}}
	if fmt.Sprint(p) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", p, want)
	}
}

func TestParseSCSSErrors(t *testing.T) {
	tooMany := new(strings.Builder)
	tooMany.WriteString(startMarker + "\n")
	for i := 0; i < MaxColors+1; i++ {
		fmt.Fprintf(tooMany, "$c%d: rgba(%d, %d, %d, 1);\n", i, i, i, i)
	}
	tooMany.WriteString(endMarker + "\n")

	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no markers", "$a: rgba(1, 2, 3, 1);\n", ErrNoSection},
		{"empty section", startMarker + "\n" + endMarker + "\n", ErrNoColors},
		{"colors after end only", endMarker + "\n$a: rgba(1, 2, 3, 1);\n", ErrNoSection},
		{"21 colors", tooMany.String(), ErrTooManyColors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseSCSS(strings.NewReader(tt.src))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if p != nil {
				t.Errorf("got palette %v along with an error", p)
			}
		})
	}

	_, err := ParseSCSS(strings.NewReader(tooMany.String()))
	if !errors.Is(err, posterize.ErrInvalidInput) {
		t.Errorf("too many colors error %v does not wrap ErrInvalidInput", err)
	}
	_, err = ParseSCSS(strings.NewReader("nothing"))
	if !errors.Is(err, ErrParse) {
		t.Errorf("missing section error %v does not wrap ErrParse", err)
	}
}

func TestParseSCSSMaxColors(t *testing.T) {
	src := new(strings.Builder)
	src.WriteString(startMarker + "\n")
	for i := 0; i < MaxColors; i++ {
		fmt.Fprintf(src, "$c%d: rgba(%d, 0, 0, 1);\n", i, i)
	}
	p, err := ParseSCSS(strings.NewReader(src.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != MaxColors {
		t.Errorf("got %d colors, want %d", len(p), MaxColors)
	}
}

func TestWriteSCSSRoundTrip(t *testing.T) {
	want := posterize.Palette{{R: 0, G: 0, B: 0}, {R: 0x12, G: 0xab, B: 0xff}, {R: 255, G: 255, B: 255}}
	var buf bytes.Buffer
	if err := WriteSCSS(&buf, want); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "000000,12abff,ffffff") {
		t.Errorf("CSV section missing from:\n%s", buf.String())
	}

	got, err := ParseSCSS(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRIFFRoundTrip(t *testing.T) {
	want := posterize.Palette{{R: 1, G: 2, B: 3}, {R: 250, G: 128, B: 0}, {R: 9, G: 9, B: 9}}
	var buf bytes.Buffer
	if err := WriteRIFF(&buf, want); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) || string(buf.Bytes()[8:12]) != "PAL " {
		t.Fatalf("bad header % x", buf.Bytes()[:12])
	}

	got, err := ReadRIFF(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReadRIFFErrors(t *testing.T) {
	var big bytes.Buffer
	p := make(posterize.Palette, MaxColors+1)
	if err := WriteRIFF(&big, p); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRIFF(&big); !errors.Is(err, ErrTooManyColors) {
		t.Errorf("err = %v, want %v", err, ErrTooManyColors)
	}

	if _, err := ReadRIFF(strings.NewReader("not a riff file at all")); !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want %v", err, ErrParse)
	}

	var empty bytes.Buffer
	if err := WriteRIFF(&empty, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadRIFF(&empty); !errors.Is(err, ErrNoColors) {
		t.Errorf("err = %v, want %v", err, ErrNoColors)
	}
}

func TestLoadAndSave(t *testing.T) {
	dir := t.TempDir()
	want := posterize.Palette{{R: 10, G: 20, B: 30}, {R: 40, G: 50, B: 60}}

	for _, name := range []string{"p.txt", "p.pal", "UPPER.TXT"} {
		path := filepath.Join(dir, name)
		if err := Save(path, want); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}

	if err := Save(filepath.Join(dir, "p.json"), want); err == nil {
		t.Error("saved palette with unsupported extension")
	}
	if _, err := Load(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}

	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(bad)
	if !errors.Is(err, ErrNoSection) || !strings.Contains(err.Error(), bad) {
		t.Errorf("err = %v, want %v naming the file", err, ErrNoSection)
	}
}

func TestIsPaletteFile(t *testing.T) {
	tests := map[string]bool{
		"a.txt":     true,
		"a.TXT":     true,
		"dir/b.pal": true,
		"a.jpg":     false,
		"txt":       false,
		"a.txt.bak": false,
	}
	for name, want := range tests {
		if got := IsPaletteFile(name); got != want {
			t.Errorf("IsPaletteFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSwatch(t *testing.T) {
	p := posterize.Palette{{R: 255, G: 0, B: 0}, {R: 0, G: 255, B: 0}, {R: 0, G: 0, B: 255}}
	img := Swatch(p, 8)
	if img.Bounds() != image.Rect(0, 0, 24, 8) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for i, c := range p {
		for _, pt := range []image.Point{{i * 8, 0}, {i*8 + 7, 7}} {
			if got := img.RGBAAt(pt.X, pt.Y); got != (color.RGBA{c.R, c.G, c.B, 255}) {
				t.Errorf("%v = %v, want %v", pt, got, c)
			}
		}
	}
}

// gradient returns an image where red and green grow along the axes and blue
// peaks in the middle.
func gradient() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			b := 255 - 4*((x-32)*(x-32)+(y-32)*(y-32))/8
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 4), uint8(y * 4), uint8(max(b, 0)), 255})
		}
	}
	return img
}

func TestExtract(t *testing.T) {
	for _, m := range []Method{Palettor, KMeans, Dominant} {
		t.Run(m.String(), func(t *testing.T) {
			p, err := Extract(gradient(), 4, m)
			if err != nil {
				t.Fatal(err)
			}
			if len(p) == 0 || len(p) > 4 {
				t.Fatalf("got %d colors, want 1-4", len(p))
			}
			for i := 1; i < len(p); i++ {
				if posterize.Brightness(p[i]) < posterize.Brightness(p[i-1]) {
					t.Errorf("palette not sorted by brightness: %v", p)
				}
			}
		})
	}
}

func TestExtractInvalid(t *testing.T) {
	for _, k := range []int{0, -1, MaxColors + 1} {
		if _, err := Extract(gradient(), k, Palettor); !errors.Is(err, posterize.ErrInvalidInput) {
			t.Errorf("k=%d: err = %v, want %v", k, err, posterize.ErrInvalidInput)
		}
	}
	if _, err := Extract(image.NewNRGBA(image.Rect(0, 0, 0, 0)), 3, Palettor); !errors.Is(err, posterize.ErrEmptyRaster) {
		t.Errorf("err = %v, want %v", err, posterize.ErrEmptyRaster)
	}
}

func TestParseMethod(t *testing.T) {
	for _, name := range []string{"palettor", "KMeans", "dominant"} {
		m, err := ParseMethod(name)
		if err != nil {
			t.Fatal(err)
		}
		if m.String() != strings.ToLower(name) {
			t.Errorf("ParseMethod(%q) = %v", name, m)
		}
	}
	if _, err := ParseMethod("median"); err == nil {
		t.Error("no error for unknown method")
	}
}

func TestSortByBrightness(t *testing.T) {
	p := posterize.Palette{{R: 255, G: 255, B: 255}, {R: 90, G: 0, B: 0}, {R: 0, G: 0, B: 90}, {R: 0, G: 0, B: 0}}
	SortByBrightness(p)
	want := posterize.Palette{{R: 0, G: 0, B: 0}, {R: 90, G: 0, B: 0}, {R: 0, G: 0, B: 90}, {R: 255, G: 255, B: 255}}
	if fmt.Sprint(p) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", p, want)
	}
}
