package docscan

import (
	"image"
	"image/color"
	"testing"

	"github.com/golang/geo/r2"

	"go.viam.com/test"
)

func pt(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 0, 255})
		}
	}
	return img
}

func quadrantImage(w, h int) *image.RGBA {
	quads := []color.RGBA{
		{200, 30, 30, 255}, {30, 200, 30, 255},
		{30, 30, 200, 255}, {200, 200, 30, 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			q := 0
			if x >= w/2 {
				q = 1
			}
			if y >= h/2 {
				q += 2
			}
			img.SetRGBA(x, y, quads[q])
		}
	}
	return img
}

func TestWarpAndCropFullFrame(t *testing.T) {
	img := quadrantImage(200, 100)

	// corners on the frame itself: the warp is the identity, so the
	// output must reproduce the input, size and pixels both
	rect := viewRect(0, 0, 200, 100)
	out := WarpAndCrop(img, rect)

	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 200)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 100)

	// compare away from the quadrant seams and the border so sampling
	// stays within solid color
	for y := 5; y < 95; y += 10 {
		for x := 5; x < 195; x += 10 {
			if x > 90 && x < 110 {
				continue
			}
			if y > 40 && y < 60 {
				continue
			}
			wr, wg, wb, _ := img.At(x, y).RGBA()
			gr, gg, gb, _ := out.At(x, y).RGBA()
			test.That(t, gr, test.ShouldEqual, wr)
			test.That(t, gg, test.ShouldEqual, wg)
			test.That(t, gb, test.ShouldEqual, wb)
		}
	}
}

func TestWarpAndCropAxisAligned(t *testing.T) {
	img := gradientImage(200, 100)

	rect := viewRect(20, 10, 180, 90)
	out := WarpAndCrop(img, rect)

	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 160)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 80)
}

func TestWarpAndCropKeystone(t *testing.T) {
	img := gradientImage(400, 300)

	// top edge shorter than bottom, like a document leaning away
	rect := Rectangle{
		TopLeft:     pt(120, 40),
		TopRight:    pt(280, 40),
		BottomLeft:  pt(60, 260),
		BottomRight: pt(340, 260),
	}
	out := WarpAndCrop(img, rect)

	// output sized by the longer opposing edges; the slanted sides run
	// sqrt(60^2 + 220^2) which rounds to 228
	test.That(t, out.Bounds().Dx(), test.ShouldEqual, 280)
	test.That(t, out.Bounds().Dy(), test.ShouldEqual, 228)
}

func TestWarpAndCropDegenerate(t *testing.T) {
	img := gradientImage(50, 50)

	// all corners collapsed; the caller gets the input back untouched
	rect := viewRect(25, 25, 25, 25)
	out := WarpAndCrop(img, rect)
	test.That(t, out, test.ShouldEqual, img)

	// zero-size rectangle
	rect = viewRect(10, 10, 10, 40)
	out = WarpAndCrop(img, rect)
	test.That(t, out, test.ShouldEqual, img)
}
