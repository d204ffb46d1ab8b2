package docscan

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestNewFrameBufferContract(t *testing.T) {
	_, err := NewFrame(make([]byte, 100), 10, 10, FormatGray, 0)
	test.That(t, err, test.ShouldBeNil)

	_, err = NewFrame(make([]byte, 99), 10, 10, FormatGray, 0)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewFrame(make([]byte, 400), 10, 10, FormatRGBA, 0)
	test.That(t, err, test.ShouldBeNil)

	// NV21 needs the half-res interleaved chroma plane too
	_, err = NewFrame(make([]byte, 150), 10, 10, FormatNV21, 0)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewFrame(make([]byte, 100), 10, 10, FormatNV21, 0)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewFrame(make([]byte, 100), 10, 10, FormatGray, 45)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewFrame(nil, 0, 10, FormatGray, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestUprightSize(t *testing.T) {
	f, err := NewFrame(make([]byte, 64*48), 64, 48, FormatGray, 90)
	test.That(t, err, test.ShouldBeNil)

	w, h := f.UprightSize()
	test.That(t, w, test.ShouldEqual, 48)
	test.That(t, h, test.ShouldEqual, 64)

	f.Rotation = 180
	w, h = f.UprightSize()
	test.That(t, w, test.ShouldEqual, 64)
	test.That(t, h, test.ShouldEqual, 48)
}

func TestDecodeNV21Neutral(t *testing.T) {
	// Y=200 with neutral chroma decodes to a plain gray pixel
	w, h := 8, 8
	data := make([]byte, w*h+2*(w/2)*(h/2))
	for i := 0; i < w*h; i++ {
		data[i] = 200
	}
	for i := w * h; i < len(data); i++ {
		data[i] = 128
	}

	f, err := NewFrame(data, w, h, FormatNV21, 0)
	test.That(t, err, test.ShouldBeNil)

	img := f.Image()
	r, g, b, _ := img.At(3, 3).RGBA()
	test.That(t, r>>8, test.ShouldEqual, 200)
	test.That(t, g>>8, test.ShouldEqual, 200)
	test.That(t, b>>8, test.ShouldEqual, 200)
}

func TestDecodeNV21RedChroma(t *testing.T) {
	// push V high: red channel rises, green falls, blue unchanged
	w, h := 4, 4
	data := make([]byte, w*h+2*(w/2)*(h/2))
	for i := 0; i < w*h; i++ {
		data[i] = 128
	}
	for i := w * h; i < len(data); i += 2 {
		data[i] = 255   // V
		data[i+1] = 128 // U
	}

	f, err := NewFrame(data, w, h, FormatNV21, 0)
	test.That(t, err, test.ShouldBeNil)

	img := f.Image()
	r, g, b, _ := img.At(1, 1).RGBA()
	test.That(t, r>>8, test.ShouldBeGreaterThan, 200)
	test.That(t, g>>8, test.ShouldBeLessThan, 128)
	test.That(t, b>>8, test.ShouldEqual, 128)
}

func TestRotateGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	// row 0: 1 2 3, row 1: 4 5 6
	copy(src.Pix, []byte{1, 2, 3, 4, 5, 6})

	out := rotateGray(src, 90)
	test.That(t, out.Rect.Dx(), test.ShouldEqual, 2)
	test.That(t, out.Rect.Dy(), test.ShouldEqual, 3)
	// clockwise: first output row reads up the first input column
	test.That(t, out.Pix[0], test.ShouldEqual, 4)
	test.That(t, out.Pix[1], test.ShouldEqual, 1)
	test.That(t, out.GrayAt(0, 2).Y, test.ShouldEqual, 6)
	test.That(t, out.GrayAt(1, 2).Y, test.ShouldEqual, 3)

	out = rotateGray(src, 180)
	test.That(t, out.Pix[0], test.ShouldEqual, 6)
	test.That(t, out.GrayAt(2, 1).Y, test.ShouldEqual, 1)

	out = rotateGray(src, 270)
	test.That(t, out.GrayAt(0, 0).Y, test.ShouldEqual, 3)
	test.That(t, out.GrayAt(1, 2).Y, test.ShouldEqual, 4)
}
