package docscan

import (
	"testing"

	"go.viam.com/test"
)

func TestViewTransformRoundTrip(t *testing.T) {
	// portrait phone: landscape sensor rotated 90, shown full-screen
	vt := ViewTransform{
		ImageWidth:  1280,
		ImageHeight: 720,
		ViewWidth:   360,
		ViewHeight:  640,
		Rotation:    90,
		Policy:      ScaleFill,
	}

	orig := viewRect(50, 100, 300, 500)
	img := ViewToImage(orig, vt)
	back := ImageToView(img, vt)

	for i, p := range back.Points() {
		test.That(t, p.X, test.ShouldAlmostEqual, orig.Points()[i].X, 1e-9)
		test.That(t, p.Y, test.ShouldAlmostEqual, orig.Points()[i].Y, 1e-9)
	}
}

func TestViewTransformFitCentering(t *testing.T) {
	// a 100x100 upright image letterboxed into 300x200: scale 2, x offset 50
	vt := ViewTransform{
		ImageWidth:  100,
		ImageHeight: 100,
		ViewWidth:   300,
		ViewHeight:  200,
		Policy:      ScaleFit,
	}

	out := ImageToView(viewRect(0, 0, 100, 100), vt)
	test.That(t, out.TopLeft.X, test.ShouldAlmostEqual, 50)
	test.That(t, out.TopLeft.Y, test.ShouldAlmostEqual, 0)
	test.That(t, out.BottomRight.X, test.ShouldAlmostEqual, 250)
	test.That(t, out.BottomRight.Y, test.ShouldAlmostEqual, 200)
}

func TestViewTransformClamping(t *testing.T) {
	vt := ViewTransform{
		ImageWidth:  100,
		ImageHeight: 100,
		ViewWidth:   200,
		ViewHeight:  100,
		Policy:      ScaleFill,
	}

	// fill on a wider viewport pushes parts of the image off-screen; the
	// mapped rectangle must stay inside the viewport
	out := ImageToView(viewRect(0, 0, 100, 100), vt)
	for _, p := range out.Points() {
		test.That(t, p.X, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, p.X, test.ShouldBeLessThanOrEqualTo, 200)
		test.That(t, p.Y, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, p.Y, test.ShouldBeLessThanOrEqualTo, 100)
	}
}

func TestMapToBitmap(t *testing.T) {
	// preview-resolution detection applied to the full-size still
	rect := viewRect(64, 48, 576, 432)
	out := MapToBitmap(rect, 640, 480, 4032, 3024)

	test.That(t, out.TopLeft.X, test.ShouldAlmostEqual, 64*4032.0/640)
	test.That(t, out.TopLeft.Y, test.ShouldAlmostEqual, 48*3024.0/480)
	test.That(t, out.BottomRight.X, test.ShouldAlmostEqual, 576*4032.0/640)
	test.That(t, out.BottomRight.Y, test.ShouldAlmostEqual, 432*3024.0/480)
}

func TestMapToBitmapBadSource(t *testing.T) {
	rect := viewRect(10, 10, 20, 20)
	out := MapToBitmap(rect, 0, 0, 100, 100)
	test.That(t, out, test.ShouldResemble, rect)
}
