package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"

	"docscan"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <input.jpg> [output.jpg]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  If output is not specified, it will be <input>_output.jpg\n")
		fmt.Fprintf(os.Stderr, "  The cropped document is written next to it as <output>_crop.jpg\n")
		os.Exit(1)
	}

	inputFile := os.Args[1]

	var outputFile string
	if len(os.Args) >= 3 {
		outputFile = os.Args[2]
	} else {
		ext := filepath.Ext(inputFile)
		base := strings.TrimSuffix(inputFile, ext)
		outputFile = base + "_output" + ext
	}

	input, err := rimage.ReadImageFromFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Image size: %dx%d\n", input.Bounds().Dx(), input.Bounds().Dy())

	detector := docscan.NewDetector(docscan.DefaultPipelineConfig(), logging.NewLogger("docfinder"))
	res := detector.DetectImage(input, nil)
	if res.Rect == nil {
		fmt.Fprintf(os.Stderr, "No document found\n")
		os.Exit(1)
	}

	rect := *res.Rect
	fmt.Printf("Found document:\n")
	fmt.Printf("  Top-left:     (%0.1f, %0.1f)\n", rect.TopLeft.X, rect.TopLeft.Y)
	fmt.Printf("  Top-right:    (%0.1f, %0.1f)\n", rect.TopRight.X, rect.TopRight.Y)
	fmt.Printf("  Bottom-right: (%0.1f, %0.1f)\n", rect.BottomRight.X, rect.BottomRight.Y)
	fmt.Printf("  Bottom-left:  (%0.1f, %0.1f)\n", rect.BottomLeft.X, rect.BottomLeft.Y)

	q := detector.EvaluateQuality(rect, res.Width, res.Height, docscan.SpaceImage)
	fmt.Printf("Quality: %s\n", q)

	output := image.NewRGBA(input.Bounds())
	draw.Draw(output, input.Bounds(), input, image.Point{}, draw.Src)

	red := color.RGBA{255, 0, 0, 255}
	for _, corner := range rect.Points() {
		drawCircle(output, int(corner.X), int(corner.Y), 10, red)
		drawCross(output, int(corner.X), int(corner.Y), 15, red)
	}

	err = rimage.WriteImageToFile(outputFile, output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved output image to %s\n", outputFile)

	cropped := docscan.WarpAndCrop(input, rect)
	ext := filepath.Ext(outputFile)
	cropFile := strings.TrimSuffix(outputFile, ext) + "_crop" + ext
	err = rimage.WriteImageToFile(cropFile, cropped)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing cropped image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved cropped document to %s\n", cropFile)
}

func drawCircle(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for angle := 0.0; angle < 360; angle += 1 {
		x := cx + int(float64(radius)*math.Cos(angle*math.Pi/180))
		y := cy + int(float64(radius)*math.Sin(angle*math.Pi/180))
		if x >= 0 && x < img.Bounds().Max.X && y >= 0 && y < img.Bounds().Max.Y {
			img.Set(x, y, c)
		}
	}
}

func drawCross(img *image.RGBA, cx, cy, size int, c color.Color) {
	for d := -size; d <= size; d++ {
		x := cx + d
		if x >= 0 && x < img.Bounds().Max.X && cy >= 0 && cy < img.Bounds().Max.Y {
			img.Set(x, cy, c)
		}
		y := cy + d
		if cx >= 0 && cx < img.Bounds().Max.X && y >= 0 && y < img.Bounds().Max.Y {
			img.Set(cx, y, c)
		}
	}
}
