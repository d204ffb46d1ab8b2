package docscan

import (
	"testing"

	"github.com/golang/geo/r2"

	"go.viam.com/test"
)

func viewRect(x0, y0, x1, y1 float64) Rectangle {
	return Rectangle{
		TopLeft:     r2.Point{X: x0, Y: y0},
		TopRight:    r2.Point{X: x1, Y: y0},
		BottomLeft:  r2.Point{X: x0, Y: y1},
		BottomRight: r2.Point{X: x1, Y: y1},
	}
}

func TestViewSpaceGood(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	// centered, axis aligned, about half the viewport
	rect := viewRect(150, 150, 850, 850)
	q := EvaluateQuality(rect, 1000, 1000, SpaceView, cfg)
	test.That(t, q, test.ShouldEqual, QualityGood)
}

func TestViewSpaceTooFar(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	// 4% of the viewport area
	rect := viewRect(400, 400, 600, 600)
	test.That(t, rect.ApproxArea(), test.ShouldAlmostEqual, 40000, 1)
	q := EvaluateQuality(rect, 1000, 1000, SpaceView, cfg)
	test.That(t, q, test.ShouldEqual, QualityTooFar)
}

func TestViewSpaceFillsViewport(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	// nearly the whole viewport usually means the screen border got detected
	rect := viewRect(5, 5, 995, 995)
	q := EvaluateQuality(rect, 1000, 1000, SpaceView, cfg)
	test.That(t, q, test.ShouldEqual, QualityTooFar)
}

func TestViewSpaceSkew(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	// top edge drops 300px over a ~760px run, well past the skew limit
	rect := Rectangle{
		TopLeft:     r2.Point{X: 100, Y: 100},
		TopRight:    r2.Point{X: 800, Y: 400},
		BottomLeft:  r2.Point{X: 100, Y: 800},
		BottomRight: r2.Point{X: 800, Y: 850},
	}
	q := EvaluateQuality(rect, 1000, 1000, SpaceView, cfg)
	test.That(t, q, test.ShouldEqual, QualityBadAngle)
}

func TestViewSpaceLopsidedEdges(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	// each edge individually passes the skew gate, but the right edge is
	// more than three times the left edge
	rect := Rectangle{
		TopLeft:     r2.Point{X: 100, Y: 400},
		TopRight:    r2.Point{X: 900, Y: 170},
		BottomLeft:  r2.Point{X: 100, Y: 600},
		BottomRight: r2.Point{X: 900, Y: 830},
	}
	q := EvaluateQuality(rect, 1000, 1000, SpaceView, cfg)
	test.That(t, q, test.ShouldEqual, QualityBadAngle)
}

func TestImageSpaceMisalignment(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	rect := Rectangle{
		TopLeft:     r2.Point{X: 100, Y: 100},
		TopRight:    r2.Point{X: 900, Y: 250},
		BottomLeft:  r2.Point{X: 100, Y: 900},
		BottomRight: r2.Point{X: 900, Y: 950},
	}
	q := EvaluateQuality(rect, 1000, 1000, SpaceImage, cfg)
	test.That(t, q, test.ShouldEqual, QualityBadAngle)
}

func TestImageSpaceTooFar(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	// top edge sits well below the margin, so the document is small in frame
	rect := viewRect(300, 300, 700, 700)
	q := EvaluateQuality(rect, 1000, 1000, SpaceImage, cfg)
	test.That(t, q, test.ShouldEqual, QualityTooFar)
}

func TestImageSpaceGood(t *testing.T) {
	cfg := DefaultPipelineConfig().Quality

	rect := viewRect(200, 100, 800, 920)
	q := EvaluateQuality(rect, 1000, 1000, SpaceImage, cfg)
	test.That(t, q, test.ShouldEqual, QualityGood)
}
