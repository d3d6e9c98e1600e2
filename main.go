package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Set at build time with go build -ldflags "-X main.version=..."
var (
	version = "v1.0.0"
	commit  = "unknown"
	builtBy = "unknown"
)

const usageText = `remixer [options] input.jpg output.jpg palette.txt
   remixer [options] --color-batch input.jpg output_prefix palettes_folder
   remixer [options] --image-batch images_folder output_folder palette.txt
   remixer [options] --combine-batch images_folder output_folder palettes_folder
   remixer [options] --extract input.jpg palette.txt`

func newApp() *cli.App {
	return &cli.App{
		Name:      "remixer",
		Usage:     "repaint images with a color palette, one color per brightness band",
		UsageText: usageText,
		Description: "remixer sorts the pixels of an image by brightness, splits them into as many\n" +
			"equally populated bands as the palette has colors, and paints every band with\n" +
			"its palette color, darkest band first.\n\n" +
			"Palettes are coolors.co code exports saved as .txt files, or RIFF .pal files.\n" +
			"Palettes can't have more than 20 colors.",
		UseShortOptionHandling: true,
		// --help is handled by the app itself, see run
		HideHelp: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "show this help",
			},
			&cli.BoolFlag{
				Name:  "color-batch",
				Usage: "one image, every palette in a folder",
			},
			&cli.BoolFlag{
				Name:  "image-batch",
				Usage: "every image in a folder, one palette",
			},
			&cli.BoolFlag{
				Name:  "combine-batch",
				Usage: "every image in a folder with every palette in a folder",
			},
			&cli.BoolFlag{
				Name:  "extract",
				Usage: "sample a palette from an image and save it",
			},
			&cli.UintFlag{
				Name:    "threads",
				Aliases: []string{"j"},
				Usage:   "number of images processed at once, 0 for one per CPU",
			},
			&cli.IntFlag{
				Name:    "quality",
				Aliases: []string{"q"},
				Usage:   "JPEG quality of the output, 1-100",
				Value:   100,
			},
			&cli.BoolFlag{
				Name:  "tie-lower",
				Usage: "give pixels on a band boundary to the darker band",
			},
			&cli.StringFlag{
				Name:  "fill",
				Usage: "color for pixels outside every band",
				Value: "black",
			},
			&cli.BoolFlag{
				Name: "no-exif-rotation",
			},
			&cli.BoolFlag{
				Name:  "no-overwrite",
				Usage: "fail instead of replacing existing output files",
			},
			&cli.UintFlag{
				Name:    "width",
				Aliases: []string{"x"},
			},
			&cli.UintFlag{
				Name:    "height",
				Aliases: []string{"y"},
			},
			&cli.UintFlag{
				Name:    "colors",
				Aliases: []string{"k"},
				Usage:   "number of colors to extract",
				Value:   5,
			},
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"m"},
				Usage:   "palette extraction method: palettor, kmeans or dominant",
				Value:   "palettor",
			},
			&cli.StringFlag{
				Name:  "swatch",
				Usage: "also save a preview image of the extracted palette here",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log band boundaries and statistics",
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
			},
		},
		Before: preProcess,
		Action: run,
	}
}

func main() {
	// Handle version flag
	if len(os.Args) == 2 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println("remixer", version)
		fmt.Println("Commit:", commit)
		fmt.Println("Built by:", builtBy)
		return
	}

	err := newApp().Run(os.Args)
	if err != nil {
		// Help was already printed
		if !errors.Is(err, errHelp) {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
