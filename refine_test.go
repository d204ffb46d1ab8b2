package docscan

import (
	"testing"

	"go.viam.com/test"
)

func TestRefineCornersFailSoft(t *testing.T) {
	cfg := DefaultPipelineConfig()

	// no gradient anywhere: refinement cannot converge and must hand back
	// the original estimates
	img := uniformGray(100, 100, 128)
	rect := viewRect(20, 20, 80, 80)

	out := refineCorners(img, rect, cfg)
	for i, p := range out.Points() {
		test.That(t, p.Sub(rect.Points()[i]).Norm(), test.ShouldBeLessThan, 1e-9)
	}
}

func TestRefineCornersSnapsToEdge(t *testing.T) {
	cfg := DefaultPipelineConfig()

	// bright block with corners nudged a pixel off; refinement should not
	// wander away from the true corner
	img := documentScene(100, 100, 30, 30, 70, 70, 40, 220)
	rect := viewRect(31, 31, 68, 68)

	out := refineCorners(img, rect, cfg)
	test.That(t, out.TopLeft.Sub(pt(30, 30)).Norm(), test.ShouldBeLessThan, 2.5)
	test.That(t, out.BottomRight.Sub(pt(69, 69)).Norm(), test.ShouldBeLessThan, 2.5)
}

func TestRefineCornersClampsOutOfBounds(t *testing.T) {
	cfg := DefaultPipelineConfig()

	img := uniformGray(50, 50, 128)
	rect := viewRect(-10, -10, 80, 80)

	out := refineCorners(img, rect, cfg)
	for _, p := range out.Points() {
		test.That(t, p.X, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, p.Y, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, p.X, test.ShouldBeLessThanOrEqualTo, 49)
		test.That(t, p.Y, test.ShouldBeLessThanOrEqualTo, 49)
	}
}
