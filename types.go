package docscan

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// Quality is a one-shot verdict on a single detected rectangle relative to a
// reference frame. It carries no history; temporal smoothing lives in Stabilizer.
type Quality int

const (
	QualityGood Quality = iota
	QualityBadAngle
	QualityTooFar
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityBadAngle:
		return "bad_angle"
	case QualityTooFar:
		return "too_far"
	}
	return "unknown"
}

// Space declares which coordinate space a rectangle's points are expressed in.
type Space int

const (
	SpaceImage Space = iota
	SpaceView
)

// Rectangle is four points in canonical order. Every function that builds one
// goes through OrderPoints so downstream consumers can rely on the ordering.
type Rectangle struct {
	TopLeft     r2.Point
	TopRight    r2.Point
	BottomLeft  r2.Point
	BottomRight r2.Point
}

// Points returns the corners in warp order: TL, TR, BL, BR.
func (r Rectangle) Points() []r2.Point {
	return []r2.Point{r.TopLeft, r.TopRight, r.BottomLeft, r.BottomRight}
}

func (r Rectangle) TopEdge() float64    { return r.TopRight.Sub(r.TopLeft).Norm() }
func (r Rectangle) BottomEdge() float64 { return r.BottomRight.Sub(r.BottomLeft).Norm() }
func (r Rectangle) LeftEdge() float64   { return r.BottomLeft.Sub(r.TopLeft).Norm() }
func (r Rectangle) RightEdge() float64  { return r.BottomRight.Sub(r.TopRight).Norm() }

// ApproxArea is max(top, bottom) x max(left, right), the estimate used for
// view-space quality gating.
func (r Rectangle) ApproxArea() float64 {
	w := math.Max(r.TopEdge(), r.BottomEdge())
	h := math.Max(r.LeftEdge(), r.RightEdge())
	return w * h
}

// RegionOfInterest is an axis-aligned box in upright image space, typically an
// external object-detector hint used to restrict detection.
type RegionOfInterest struct {
	MinX, MinY, MaxX, MaxY int
}

// Clamp normalizes the box to fit inside width x height. An inverted or fully
// out-of-bounds box clamps to an empty region.
func (roi RegionOfInterest) Clamp(width, height int) RegionOfInterest {
	out := roi
	if out.MinX > out.MaxX {
		out.MinX, out.MaxX = out.MaxX, out.MinX
	}
	if out.MinY > out.MaxY {
		out.MinY, out.MaxY = out.MaxY, out.MinY
	}
	out.MinX = clampInt(out.MinX, 0, width)
	out.MaxX = clampInt(out.MaxX, 0, width)
	out.MinY = clampInt(out.MinY, 0, height)
	out.MaxY = clampInt(out.MaxY, 0, height)
	return out
}

// Expand grows the box by pad on every side, in pixels.
func (roi RegionOfInterest) Expand(pad int) RegionOfInterest {
	return RegionOfInterest{roi.MinX - pad, roi.MinY - pad, roi.MaxX + pad, roi.MaxY + pad}
}

func (roi RegionOfInterest) Empty() bool {
	return roi.MaxX-roi.MinX <= 0 || roi.MaxY-roi.MinY <= 0
}

func (roi RegionOfInterest) Bounds() image.Rectangle {
	return image.Rect(roi.MinX, roi.MinY, roi.MaxX, roi.MaxY)
}

// DetectionResult is the detector's output for one frame. Rect is nil when no
// document boundary was found; Width and Height are the upright frame
// dimensions the rectangle coordinates refer to.
type DetectionResult struct {
	Rect   *Rectangle
	Width  int
	Height int
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
