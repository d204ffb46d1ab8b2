package docscan

import (
	"math"

	"github.com/golang/geo/r2"
)

// ScalePolicy selects how an upright image is fitted to a display viewport.
type ScalePolicy int

const (
	// ScaleFill crops to fill: scale = max(sx, sy), centered.
	ScaleFill ScalePolicy = iota
	// ScaleFit letterboxes: scale = min(sx, sy), centered with padding.
	ScaleFit
)

// ViewTransform describes the mapping between an upright image and a display
// viewport. Rotation is the sensor-to-upright rotation; 90/270 swap the
// effective source dimensions.
type ViewTransform struct {
	ImageWidth  int
	ImageHeight int
	ViewWidth   int
	ViewHeight  int
	Rotation    int
	Policy      ScalePolicy
}

func (t ViewTransform) uprightSize() (float64, float64) {
	if t.Rotation == 90 || t.Rotation == 270 {
		return float64(t.ImageHeight), float64(t.ImageWidth)
	}
	return float64(t.ImageWidth), float64(t.ImageHeight)
}

func (t ViewTransform) scaleAndOffset() (float64, float64, float64) {
	iw, ih := t.uprightSize()
	if iw == 0 || ih == 0 {
		return 1, 0, 0
	}
	sx := float64(t.ViewWidth) / iw
	sy := float64(t.ViewHeight) / ih
	scale := math.Min(sx, sy)
	if t.Policy == ScaleFill {
		scale = math.Max(sx, sy)
	}
	offX := (float64(t.ViewWidth) - iw*scale) / 2
	offY := (float64(t.ViewHeight) - ih*scale) / 2
	return scale, offX, offY
}

// ImageToView maps a rectangle from upright image space into view space,
// clamped to the viewport.
func ImageToView(rect Rectangle, t ViewTransform) Rectangle {
	scale, offX, offY := t.scaleAndOffset()
	return mapRect(rect, func(p r2.Point) r2.Point {
		return r2.Point{
			X: clampFloat(p.X*scale+offX, 0, float64(t.ViewWidth)),
			Y: clampFloat(p.Y*scale+offY, 0, float64(t.ViewHeight)),
		}
	})
}

// ViewToImage is the inverse of ImageToView under the same policy, clamped to
// the upright image bounds.
func ViewToImage(rect Rectangle, t ViewTransform) Rectangle {
	scale, offX, offY := t.scaleAndOffset()
	iw, ih := t.uprightSize()
	return mapRect(rect, func(p r2.Point) r2.Point {
		return r2.Point{
			X: clampFloat((p.X-offX)/scale, 0, iw),
			Y: clampFloat((p.Y-offY)/scale, 0, ih),
		}
	})
}

// MapToBitmap retargets a rectangle onto a differently-sized bitmap with
// independent X/Y scaling and no aspect correction. Used when a rectangle
// detected on a preview frame must be applied to a full-size capture.
func MapToBitmap(rect Rectangle, srcWidth, srcHeight, dstWidth, dstHeight int) Rectangle {
	if srcWidth <= 0 || srcHeight <= 0 {
		return rect
	}
	sx := float64(dstWidth) / float64(srcWidth)
	sy := float64(dstHeight) / float64(srcHeight)
	return mapRect(rect, func(p r2.Point) r2.Point {
		return r2.Point{
			X: clampFloat(p.X*sx, 0, float64(dstWidth)),
			Y: clampFloat(p.Y*sy, 0, float64(dstHeight)),
		}
	})
}

func mapRect(rect Rectangle, f func(r2.Point) r2.Point) Rectangle {
	return Rectangle{
		TopLeft:     f(rect.TopLeft),
		TopRight:    f(rect.TopRight),
		BottomLeft:  f(rect.BottomLeft),
		BottomRight: f(rect.BottomRight),
	}
}
