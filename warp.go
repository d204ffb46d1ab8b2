package docscan

import (
	"image"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/rdk/rimage"
)

// WarpAndCrop flattens the region inside rect (in the source image's
// coordinate space) into an axis-aligned output sized by the longest opposing
// edges. It both corrects keystone distortion and crops in one resample.
// Degenerate rectangles fail soft: the caller always gets a usable image, so a
// capture flow never dies on a bad candidate.
func WarpAndCrop(img image.Image, rect Rectangle) image.Image {
	dstWidth := int(math.Round(math.Max(rect.TopEdge(), rect.BottomEdge())))
	dstHeight := int(math.Round(math.Max(rect.LeftEdge(), rect.RightEdge())))
	if dstWidth < 1 || dstHeight < 1 {
		return img
	}

	src := []image.Point{
		roundPoint(rect.TopLeft),
		roundPoint(rect.TopRight),
		roundPoint(rect.BottomLeft),
		roundPoint(rect.BottomRight),
	}
	if degenerate(src) {
		return img
	}
	dst := []image.Point{
		{0, 0},
		{dstWidth, 0},
		{0, dstHeight},
		{dstWidth, dstHeight},
	}

	m := rimage.GetPerspectiveTransform(src, dst)
	return rimage.WarpImage(img, m, image.Point{dstWidth, dstHeight})
}

func roundPoint(p r2.Point) image.Point {
	return image.Point{int(math.Round(p.X)), int(math.Round(p.Y))}
}

// degenerate reports whether any two corners collapsed onto the same pixel,
// which makes the perspective system singular.
func degenerate(pts []image.Point) bool {
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			if pts[i] == pts[j] {
				return true
			}
		}
	}
	return false
}
