package docscan

import (
	"image"
	"math"
)

// cannyThresholds derives the low/high hysteresis pair from the intensity
// median. The floors keep high-resolution sensors from flooding the edge map
// with noise.
func cannyThresholds(gray *image.Gray, cfg PipelineConfig) (float64, float64) {
	med := medianIntensity(gray)
	low := math.Max(cfg.CannyLowFloor, (1-cfg.CannySigma)*med)
	high := math.Max(cfg.CannyHighFloor, (1+cfg.CannySigma)*med)
	return low, high
}

func medianIntensity(gray *image.Gray) float64 {
	var hist [256]int
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for _, v := range row {
			hist[v]++
		}
	}
	half := w * h / 2
	seen := 0
	for i, c := range hist {
		seen += c
		if seen >= half {
			return float64(i)
		}
	}
	return 127
}

// extractEdges is the primary pass: adaptive Canny followed by a morphological
// close that bridges gaps left by glare or shadow on the document edge.
func extractEdges(gray *image.Gray, cfg PipelineConfig) *image.Gray {
	low, high := cannyThresholds(gray, cfg)
	edges := cannyGray(gray, low, high)
	return closeBinary(edges, cfg.CloseKernel)
}

// extractEdgesFallback re-binarizes with a local adaptive threshold. Canny is
// precise on high-contrast edges but brittle on low-contrast documents; this
// pass is the opposite trade-off and runs only when the first yields nothing.
func extractEdgesFallback(gray *image.Gray, cfg PipelineConfig) *image.Gray {
	bin := adaptiveThresholdGray(gray, cfg.AdaptiveBlock, cfg.AdaptiveC)
	return closeBinary(bin, cfg.CloseKernel)
}

// cannyGray runs Sobel gradients, non-maximum suppression and hysteresis
// linking. Output pixels are 0 or 255.
func cannyGray(src *image.Gray, low, high float64) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	mag := make([]float64, w*h)
	dir := make([]float64, w*h)

	at := func(x, y int) float64 {
		x = clampInt(x, 0, w-1)
		y = clampInt(y, 0, h-1)
		return float64(src.Pix[y*src.Stride+x])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag[y*w+x] = math.Hypot(gx, gy)
			dir[y*w+x] = math.Atan2(gy, gx)
		}
	}

	// non-maximum suppression along the gradient direction, quantized to
	// 0/45/90/135 degrees
	thin := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			m := mag[y*w+x]
			if m == 0 {
				continue
			}
			angle := dir[y*w+x] * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			var a, b float64
			switch {
			case angle < 22.5 || angle >= 157.5:
				a, b = mag[y*w+x-1], mag[y*w+x+1]
			case angle < 67.5:
				a, b = mag[(y-1)*w+x+1], mag[(y+1)*w+x-1]
			case angle < 112.5:
				a, b = mag[(y-1)*w+x], mag[(y+1)*w+x]
			default:
				a, b = mag[(y-1)*w+x-1], mag[(y+1)*w+x+1]
			}
			if m >= a && m >= b {
				thin[y*w+x] = m
			}
		}
	}

	// hysteresis: strong pixels seed, weak pixels join when connected
	const (
		weak   = 1
		strong = 2
	)
	mark := make([]uint8, w*h)
	var seeds []int
	for i, m := range thin {
		if m >= high {
			mark[i] = strong
			seeds = append(seeds, i)
		} else if m >= low {
			mark[i] = weak
		}
	}
	for len(seeds) > 0 {
		i := seeds[len(seeds)-1]
		seeds = seeds[:len(seeds)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if mark[j] == weak {
					mark[j] = strong
					seeds = append(seeds, j)
				}
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for i, m := range mark {
		if m == strong {
			out.Pix[i/w*out.Stride+i%w] = 255
		}
	}
	return out
}

// adaptiveThresholdGray binarizes against a Gaussian-weighted local mean:
// a pixel at least c above the local mean becomes foreground. Flat
// regions land below the offset everywhere, so the output is a band
// along the bright flank of each local intensity step, which keeps a
// faint document boundary traceable when the gradient is too weak for
// hysteresis.
func adaptiveThresholdGray(src *image.Gray, block int, c float64) *image.Gray {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	local := gaussianBlurGray(src, block)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(src.GrayAt(src.Rect.Min.X+x, src.Rect.Min.Y+y).Y)
			m := float64(local.Pix[y*local.Stride+x])
			if v >= m+c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// closeBinary is dilation followed by erosion with a k x k rectangular kernel.
func closeBinary(src *image.Gray, k int) *image.Gray {
	if k < 2 {
		return src
	}
	return erodeBinary(dilateBinary(src, k), k)
}

func dilateBinary(src *image.Gray, k int) *image.Gray {
	return morphBinary(src, k, true)
}

func erodeBinary(src *image.Gray, k int) *image.Gray {
	return morphBinary(src, k, false)
}

func morphBinary(src *image.Gray, k int, dilate bool) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	offsets := kernelOffsets(k)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hit := !dilate
			for _, d := range offsets {
				nx := clampInt(x+d[0], 0, w-1)
				ny := clampInt(y+d[1], 0, h-1)
				fg := src.Pix[ny*src.Stride+nx] > 0
				if dilate && fg {
					hit = true
					break
				}
				if !dilate && !fg {
					hit = false
					break
				}
			}
			if hit {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// kernelOffsets mirrors the convolution range-array convention: an even length
// puts the origin right of middle.
func kernelOffsets(k int) [][2]int {
	r := make([]int, k)
	span := (k - 1) / 2
	for i := range r {
		r[i] = i - span
	}
	out := make([][2]int, 0, k*k)
	for _, dy := range r {
		for _, dx := range r {
			out = append(out, [2]int{dx, dy})
		}
	}
	return out
}
