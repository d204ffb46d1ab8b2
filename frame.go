package docscan

import (
	"fmt"
	"image"
	"image/color"
)

// PixelFormat enumerates the buffer layouts a Frame can carry.
type PixelFormat int

const (
	FormatGray PixelFormat = iota
	FormatRGBA
	FormatNV21
)

func (f PixelFormat) String() string {
	switch f {
	case FormatGray:
		return "gray"
	case FormatRGBA:
		return "rgba"
	case FormatNV21:
		return "nv21"
	}
	return "unknown"
}

// bytesPerFrame returns the required buffer length for a format, or an error
// for formats without a fixed layout.
func bytesPerFrame(format PixelFormat, width, height int) (int, error) {
	switch format {
	case FormatGray:
		return width * height, nil
	case FormatRGBA:
		return width * height * 4, nil
	case FormatNV21:
		// full-res Y plane plus interleaved half-res VU plane
		return width*height + 2*((width+1)/2)*((height+1)/2), nil
	}
	return 0, fmt.Errorf("unsupported pixel format %d", int(format))
}

// Frame is an immutable view over caller-owned pixel data plus the rotation
// needed to reach upright orientation. The pipeline never retains one past a
// detection call.
type Frame struct {
	Width    int
	Height   int
	Format   PixelFormat
	Rotation int // 0, 90, 180, 270 degrees clockwise to upright
	Data     []byte
}

// NewFrame validates the buffer-length contract. A mismatched length is a
// programmer error, not a detection outcome.
func NewFrame(data []byte, width, height int, format PixelFormat, rotation int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	switch rotation {
	case 0, 90, 180, 270:
	default:
		return nil, fmt.Errorf("invalid rotation %d, want 0/90/180/270", rotation)
	}
	want, err := bytesPerFrame(format, width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != want {
		return nil, fmt.Errorf("buffer length %d does not match %dx%d %s (want %d)",
			len(data), width, height, format, want)
	}
	return &Frame{Width: width, Height: height, Format: format, Rotation: rotation, Data: data}, nil
}

// UprightSize returns the frame dimensions after rotation to upright.
func (f *Frame) UprightSize() (int, int) {
	if f.Rotation == 90 || f.Rotation == 270 {
		return f.Height, f.Width
	}
	return f.Width, f.Height
}

// Image decodes the buffer to an image.Image in sensor orientation.
// NV21 goes through BT.601 YUV to RGB first.
func (f *Frame) Image() image.Image {
	switch f.Format {
	case FormatGray:
		g := &image.Gray{Pix: f.Data, Stride: f.Width, Rect: image.Rect(0, 0, f.Width, f.Height)}
		return g
	case FormatRGBA:
		return &image.RGBA{Pix: f.Data, Stride: f.Width * 4, Rect: image.Rect(0, 0, f.Width, f.Height)}
	case FormatNV21:
		return decodeNV21(f.Data, f.Width, f.Height)
	}
	return nil
}

func decodeNV21(data []byte, width, height int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	uvStart := width * height
	uvStride := 2 * ((width + 1) / 2)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			yy := int(data[y*width+x])
			uvRow := uvStart + (y/2)*uvStride
			v := int(data[uvRow+(x/2)*2]) - 128
			u := int(data[uvRow+(x/2)*2+1]) - 128

			// BT.601 integer conversion
			r := yy + (91881*v)>>16
			g := yy - ((22554*u)+(46802*v))>>16
			b := yy + (116130*u)>>16

			i := out.PixOffset(x, y)
			out.Pix[i] = uint8(clampInt(r, 0, 255))
			out.Pix[i+1] = uint8(clampInt(g, 0, 255))
			out.Pix[i+2] = uint8(clampInt(b, 0, 255))
			out.Pix[i+3] = 255
		}
	}
	return out
}

// rotateGray rotates a grayscale image clockwise by 90, 180 or 270 degrees so
// the result is upright. A rotation of 0 returns the input untouched.
func rotateGray(src *image.Gray, rotation int) *image.Gray {
	if rotation == 0 {
		return src
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	var dst *image.Gray
	switch rotation {
	case 90, 270:
		dst = image.NewGray(image.Rect(0, 0, h, w))
	case 180:
		dst = image.NewGray(image.Rect(0, 0, w, h))
	default:
		return src
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.GrayAt(src.Rect.Min.X+x, src.Rect.Min.Y+y)
			switch rotation {
			case 90:
				dst.SetGray(h-1-y, x, v)
			case 180:
				dst.SetGray(w-1-x, h-1-y, v)
			case 270:
				dst.SetGray(y, w-1-x, v)
			}
		}
	}
	return dst
}

// grayFromImage converts any image to 8-bit grayscale via luminance.
func grayFromImage(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return out
}
