package docscan

import (
	"image"
	"math"
)

// preprocess runs the grayscale frame through local-contrast enhancement and a
// small blur. Contrast boost happens before blurring so faint document edges
// (white card on white desk) survive the noise suppression.
func preprocess(gray *image.Gray, cfg PipelineConfig) *image.Gray {
	enhanced := claheGray(gray, cfg.ClaheClipLimit, cfg.ClaheTiles)
	return gaussianBlurGray(enhanced, cfg.BlurKernel)
}

// claheGray is contrast-limited adaptive histogram equalization: per-tile
// clipped histograms with bilinear interpolation between tile lookup tables.
func claheGray(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 || tiles <= 0 {
		return src
	}
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles
	if tileW == 0 || tileH == 0 {
		return src
	}
	tilesX := (w + tileW - 1) / tileW
	tilesY := (h + tileH - 1) / tileH

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := minInt(x0+tileW, w), minInt(y0+tileH, h)

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[src.GrayAt(src.Rect.Min.X+x, src.Rect.Min.Y+y).Y]++
				}
			}

			n := (x1 - x0) * (y1 - y0)
			clip := int(clipLimit * float64(n) / 256.0)
			if clip < 1 {
				clip = 1
			}
			// clip and redistribute the excess uniformly
			excess := 0
			for i := range hist {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			bonus := excess / 256
			for i := range hist {
				hist[i] += bonus
			}

			scale := 255.0 / float64(n)
			cdf := 0
			for i := range hist {
				cdf += hist[i]
				luts[ty*tilesX+tx][i] = uint8(clampFloat(float64(cdf)*scale, 0, 255))
			}
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.GrayAt(src.Rect.Min.X+x, src.Rect.Min.Y+y).Y

			// tile-center relative position for interpolation
			fx := (float64(x) - float64(tileW)/2.0) / float64(tileW)
			fy := (float64(y) - float64(tileH)/2.0) / float64(tileH)
			tx0 := int(math.Floor(fx))
			ty0 := int(math.Floor(fy))
			wx := fx - float64(tx0)
			wy := fy - float64(ty0)

			tx1 := clampInt(tx0+1, 0, tilesX-1)
			ty1 := clampInt(ty0+1, 0, tilesY-1)
			tx0 = clampInt(tx0, 0, tilesX-1)
			ty0 = clampInt(ty0, 0, tilesY-1)

			v00 := float64(luts[ty0*tilesX+tx0][v])
			v01 := float64(luts[ty0*tilesX+tx1][v])
			v10 := float64(luts[ty1*tilesX+tx0][v])
			v11 := float64(luts[ty1*tilesX+tx1][v])

			top := v00*(1-wx) + v01*wx
			bot := v10*(1-wx) + v11*wx
			dst.Pix[y*dst.Stride+x] = uint8(clampFloat(top*(1-wy)+bot*wy, 0, 255))
		}
	}
	return dst
}

// gaussianBlurGray applies a separable Gaussian blur with the given odd kernel
// size. Sigma is derived from the kernel the way OpenCV does it.
func gaussianBlurGray(src *image.Gray, kernel int) *image.Gray {
	if kernel < 3 {
		return src
	}
	if kernel%2 == 0 {
		kernel++
	}
	sigma := 0.3*(float64(kernel-1)*0.5-1) + 0.8
	half := kernel / 2

	weights := make([]float64, kernel)
	sum := 0.0
	for i := range weights {
		d := float64(i - half)
		weights[i] = math.Exp(-0.5 * d * d / (sigma * sigma))
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for i, wt := range weights {
				xx := clampInt(x+i-half, 0, w-1)
				acc += wt * float64(src.GrayAt(src.Rect.Min.X+xx, src.Rect.Min.Y+y).Y)
			}
			tmp[y*w+x] = acc
		}
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := 0.0
			for i, wt := range weights {
				yy := clampInt(y+i-half, 0, h-1)
				acc += wt * tmp[yy*w+x]
			}
			dst.Pix[y*dst.Stride+x] = uint8(clampFloat(acc+0.5, 0, 255))
		}
	}
	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
