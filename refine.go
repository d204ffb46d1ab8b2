package docscan

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// refineCorners runs sub-pixel localization on each corner of the candidate
// against the preprocessed grayscale image. Refinement is a precision
// improvement, never a correctness gate: a corner whose iteration diverges
// keeps its unrefined estimate.
func refineCorners(gray *image.Gray, rect Rectangle, cfg PipelineConfig) Rectangle {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	pts := rect.Points()
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		clamped := r2.Point{
			X: clampFloat(p.X, 0, float64(w-1)),
			Y: clampFloat(p.Y, 0, float64(h-1)),
		}
		refined, ok := subPixelCorner(gray, clamped, cfg.RefineWindow, cfg.RefineIters, cfg.RefineEpsilon)
		if ok {
			out[i] = refined
		} else {
			out[i] = clamped
		}
	}
	return OrderPoints(out)
}

// subPixelCorner performs the classic gradient-orthogonality iteration: inside
// a window around the estimate, every image gradient should be orthogonal to
// the offset from the true corner, giving a 2x2 linear system per step.
func subPixelCorner(gray *image.Gray, start r2.Point, window, maxIters int, eps float64) (r2.Point, bool) {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	half := window / 2
	if half < 1 {
		return start, false
	}

	at := func(x, y int) float64 {
		x = clampInt(x, 0, w-1)
		y = clampInt(y, 0, h-1)
		return float64(gray.Pix[y*gray.Stride+x])
	}

	// gaussian weighting over the window, matching the search window scale
	sigma := float64(half) / 2
	weight := func(dx, dy int) float64 {
		return math.Exp(-0.5 * float64(dx*dx+dy*dy) / (sigma * sigma))
	}

	cur := start
	for iter := 0; iter < maxIters; iter++ {
		cx := int(math.Round(cur.X))
		cy := int(math.Round(cur.Y))

		var a, b, c, bx, by float64
		for dy := -half; dy <= half; dy++ {
			for dx := -half; dx <= half; dx++ {
				x, y := cx+dx, cy+dy
				gx := (at(x+1, y) - at(x-1, y)) / 2
				gy := (at(x, y+1) - at(x, y-1)) / 2
				wgt := weight(dx, dy)
				a += wgt * gx * gx
				b += wgt * gx * gy
				c += wgt * gy * gy
				px := float64(x)
				py := float64(y)
				bx += wgt * (gx*gx*px + gx*gy*py)
				by += wgt * (gx*gy*px + gy*gy*py)
			}
		}

		if math.Abs(a*c-b*b) < 1e-9 {
			return start, false
		}
		var sol mat.VecDense
		err := sol.SolveVec(
			mat.NewDense(2, 2, []float64{a, b, b, c}),
			mat.NewVecDense(2, []float64{bx, by}))
		if err != nil {
			return start, false
		}
		next := r2.Point{X: sol.AtVec(0), Y: sol.AtVec(1)}
		if math.IsNaN(next.X) || math.IsNaN(next.Y) {
			return start, false
		}
		// a corner should not run away from its estimate; a jump past the
		// window means the system latched onto a different feature
		if next.Sub(start).Norm() > float64(window) {
			return start, false
		}
		moved := next.Sub(cur).Norm()
		cur = next
		if moved < eps {
			break
		}
	}
	cur.X = clampFloat(cur.X, 0, float64(w-1))
	cur.Y = clampFloat(cur.Y, 0, float64(h-1))
	return cur, true
}
