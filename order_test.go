package docscan

import (
	"testing"

	"github.com/golang/geo/r2"

	"go.viam.com/test"
)

func TestOrderPoints(t *testing.T) {
	pts := []r2.Point{
		{X: 880, Y: 920},
		{X: 120, Y: 80},
		{X: 900, Y: 100},
		{X: 100, Y: 900},
	}

	rect := OrderPoints(pts)
	test.That(t, rect.TopLeft, test.ShouldResemble, r2.Point{X: 120, Y: 80})
	test.That(t, rect.TopRight, test.ShouldResemble, r2.Point{X: 900, Y: 100})
	test.That(t, rect.BottomLeft, test.ShouldResemble, r2.Point{X: 100, Y: 900})
	test.That(t, rect.BottomRight, test.ShouldResemble, r2.Point{X: 880, Y: 920})
}

func TestOrderPointsRotated(t *testing.T) {
	// a card rotated about 30 degrees still orders sensibly
	pts := []r2.Point{
		{X: 520, Y: 110}, // highest point
		{X: 700, Y: 410}, // rightmost
		{X: 310, Y: 290}, // leftmost
		{X: 480, Y: 610}, // lowest
	}

	rect := OrderPoints(pts)
	test.That(t, rect.TopLeft, test.ShouldResemble, r2.Point{X: 310, Y: 290})
	test.That(t, rect.TopRight, test.ShouldResemble, r2.Point{X: 520, Y: 110})
	test.That(t, rect.BottomLeft, test.ShouldResemble, r2.Point{X: 480, Y: 610})
	test.That(t, rect.BottomRight, test.ShouldResemble, r2.Point{X: 700, Y: 410})
}

func TestOrderPointsDiamond(t *testing.T) {
	// a square rotated 45 degrees ties both the sum and diff extremes
	// pairwise; every corner slot must still get its own point
	pts := []r2.Point{
		{X: 100, Y: 160},
		{X: 40, Y: 100},
		{X: 100, Y: 40},
		{X: 160, Y: 100},
	}

	rect := OrderPoints(pts)
	test.That(t, rect.TopLeft, test.ShouldResemble, r2.Point{X: 100, Y: 40})
	test.That(t, rect.TopRight, test.ShouldResemble, r2.Point{X: 160, Y: 100})
	test.That(t, rect.BottomRight, test.ShouldResemble, r2.Point{X: 100, Y: 160})
	test.That(t, rect.BottomLeft, test.ShouldResemble, r2.Point{X: 40, Y: 100})

	// perimeter edges must all have real length
	edges := [][2]r2.Point{
		{rect.TopLeft, rect.TopRight},
		{rect.TopRight, rect.BottomRight},
		{rect.BottomRight, rect.BottomLeft},
		{rect.BottomLeft, rect.TopLeft},
	}
	for _, e := range edges {
		test.That(t, e[1].Sub(e[0]).Norm(), test.ShouldBeGreaterThan, 1.0)
	}
}

func TestOrderPointsWrongCount(t *testing.T) {
	rect := OrderPoints([]r2.Point{{X: 1, Y: 1}})
	test.That(t, rect, test.ShouldResemble, Rectangle{})
}
