package docscan

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// findExternalContours extracts the ordered outer boundary of every
// 8-connected foreground component. Interior holes are never traced.
func findExternalContours(bin *image.Gray) [][]r2.Point {
	w, h := bin.Rect.Dx(), bin.Rect.Dy()
	visited := make([]bool, w*h)
	isFg := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return bin.Pix[y*bin.Stride+x] > 0
	}

	var contours [][]r2.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !isFg(x, y) || visited[y*w+x] {
				continue
			}
			// scan order guarantees (x,y) is a topmost-leftmost pixel of a
			// fresh component, so its outer boundary starts here
			contour := traceBoundary(isFg, x, y, w, h)
			fillComponent(isFg, visited, x, y, w, h)
			if len(contour) >= 4 {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

// neighbor ring in clockwise order, y down: E SE S SW W NW N NE
var ring = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// traceBoundary is Moore-neighbor border following with Jacob's stopping
// criterion: walk the boundary clockwise, scanning each neighborhood starting
// 90 degrees counterclockwise of the last movement.
func traceBoundary(isFg func(x, y int) bool, sx, sy, w, h int) []r2.Point {
	contour := []r2.Point{{X: float64(sx), Y: float64(sy)}}
	cx, cy := sx, sy
	dir := 0 // pretend we arrived moving east; start pixel has no N/W neighbors
	firstDir := -1
	limit := 4 * (w + h + 2) * 2
	if area := w * h; limit < area {
		limit = 4 * area
	}
	for iter := 0; iter < limit; iter++ {
		found := -1
		for k := 0; k < 8; k++ {
			d := (dir + 6 + k) % 8
			if isFg(cx+ring[d][0], cy+ring[d][1]) {
				found = d
				break
			}
		}
		if found < 0 {
			break // isolated pixel
		}
		if cx == sx && cy == sy {
			if firstDir < 0 {
				firstDir = found
			} else if found == firstDir {
				break
			}
		}
		cx += ring[found][0]
		cy += ring[found][1]
		dir = found
		if cx == sx && cy == sy {
			continue // decide termination on the next scan
		}
		contour = append(contour, r2.Point{X: float64(cx), Y: float64(cy)})
	}
	return contour
}

func fillComponent(isFg func(x, y int) bool, visited []bool, sx, sy, w, h int) {
	stack := []image.Point{{sx, sy}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			continue
		}
		i := p.Y*w + p.X
		if visited[i] || !isFg(p.X, p.Y) {
			continue
		}
		visited[i] = true
		stack = append(stack,
			image.Point{p.X + 1, p.Y}, image.Point{p.X - 1, p.Y},
			image.Point{p.X, p.Y + 1}, image.Point{p.X, p.Y - 1},
			image.Point{p.X + 1, p.Y + 1}, image.Point{p.X - 1, p.Y - 1},
			image.Point{p.X + 1, p.Y - 1}, image.Point{p.X - 1, p.Y + 1})
	}
}

// polygonArea is the absolute shoelace area of a closed polygon.
func polygonArea(pts []r2.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

func polygonPerimeter(pts []r2.Point) float64 {
	sum := 0.0
	for i, p := range pts {
		sum += pts[(i+1)%len(pts)].Sub(p).Norm()
	}
	return sum
}

// approxPolygon is Douglas-Peucker simplification of a closed contour: split
// at the point farthest from the first, simplify both halves.
func approxPolygon(pts []r2.Point, epsilon float64) []r2.Point {
	if len(pts) < 3 {
		return pts
	}
	far, maxDist := 0, 0.0
	for i, p := range pts {
		if d := p.Sub(pts[0]).Norm(); d > maxDist {
			maxDist = d
			far = i
		}
	}
	if far == 0 {
		return pts[:1]
	}
	closed := make([]r2.Point, 0, len(pts)-far+1)
	closed = append(closed, pts[far:]...)
	closed = append(closed, pts[0])
	first := douglasPeucker(pts[:far+1], epsilon)
	second := douglasPeucker(closed, epsilon)
	out := make([]r2.Point, 0, len(first)+len(second)-2)
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

func douglasPeucker(pts []r2.Point, epsilon float64) []r2.Point {
	if len(pts) < 3 {
		return pts
	}
	a, b := pts[0], pts[len(pts)-1]
	far, maxDist := 0, 0.0
	for i := 1; i < len(pts)-1; i++ {
		if d := pointSegmentDistance(pts[i], a, b); d > maxDist {
			maxDist = d
			far = i
		}
	}
	if maxDist <= epsilon {
		return []r2.Point{a, b}
	}
	left := douglasPeucker(pts[:far+1], epsilon)
	right := douglasPeucker(pts[far:], epsilon)

	// left and right may alias the caller's slice, so join into a fresh one
	out := make([]r2.Point, 0, len(left)+len(right)-1)
	out = append(out, left[:len(left)-1]...)
	out = append(out, right...)
	return out
}

func pointSegmentDistance(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Sub(a).Norm()
	}
	t := clampFloat(p.Sub(a).Dot(ab)/l2, 0, 1)
	proj := a.Add(ab.Mul(t))
	return p.Sub(proj).Norm()
}

// isConvexQuad reports whether four points in sequence form a convex
// quadrilateral (all cross products share a sign, none degenerate).
func isConvexQuad(pts []r2.Point) bool {
	if len(pts) != 4 {
		return false
	}
	sign := 0
	for i := range pts {
		a, b, c := pts[i], pts[(i+1)%4], pts[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			return false
		}
		s := 1
		if cross < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

// convexHull is Andrew's monotone chain, counterclockwise.
func convexHull(pts []r2.Point) []r2.Point {
	if len(pts) < 3 {
		return pts
	}
	sorted := make([]r2.Point, len(pts))
	copy(sorted, pts)
	sortPoints(sorted)

	cross := func(o, a, b r2.Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	var lower []r2.Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []r2.Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

func sortPoints(pts []r2.Point) {
	// insertion sort keeps this dependency-free for the small hull inputs
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0; j-- {
			a, b := pts[j-1], pts[j]
			if a.X < b.X || (a.X == b.X && a.Y <= b.Y) {
				break
			}
			pts[j-1], pts[j] = b, a
		}
	}
}

// minAreaRect finds the minimum-area rotated bounding rectangle of a point set
// by rotating calipers over the convex hull. Returns the four corners and the
// rect area.
func minAreaRect(pts []r2.Point) ([]r2.Point, float64) {
	hull := convexHull(pts)
	if len(hull) < 3 {
		return nil, 0
	}
	bestArea := math.MaxFloat64
	var best [4]r2.Point
	for i := range hull {
		edge := hull[(i+1)%len(hull)].Sub(hull[i])
		n := edge.Norm()
		if n == 0 {
			continue
		}
		ux := edge.Mul(1 / n)
		uy := r2.Point{X: -ux.Y, Y: ux.X}

		minU, maxU := math.MaxFloat64, -math.MaxFloat64
		minV, maxV := math.MaxFloat64, -math.MaxFloat64
		for _, p := range hull {
			u := p.Dot(ux)
			v := p.Dot(uy)
			minU = math.Min(minU, u)
			maxU = math.Max(maxU, u)
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}
		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			best = [4]r2.Point{
				ux.Mul(minU).Add(uy.Mul(minV)),
				ux.Mul(maxU).Add(uy.Mul(minV)),
				ux.Mul(maxU).Add(uy.Mul(maxV)),
				ux.Mul(minU).Add(uy.Mul(maxV)),
			}
		}
	}
	if bestArea == math.MaxFloat64 {
		return nil, 0
	}
	return best[:], bestArea
}

// edgeSanity rejects candidates with implausible edge geometry: edges shorter
// than a fraction of the frame's short side, or grossly lopsided aspect.
func edgeSanity(rect Rectangle, width, height int, cfg PipelineConfig) bool {
	short := float64(minInt(width, height))
	minEdge := math.Max(cfg.MinEdgePixels, cfg.MinEdgeSideRatio*short)

	edges := []float64{rect.TopEdge(), rect.BottomEdge(), rect.LeftEdge(), rect.RightEdge()}
	for _, e := range edges {
		if e < minEdge {
			return false
		}
	}
	avgW := (rect.TopEdge() + rect.BottomEdge()) / 2
	avgH := (rect.LeftEdge() + rect.RightEdge()) / 2
	if avgH == 0 {
		return false
	}
	aspect := avgW / avgH
	return aspect >= cfg.MinEdgeAspect && aspect <= cfg.MaxEdgeAspect
}

// scoreContours picks the single best rectangle candidate across all contours
// using score = contourArea x rectangularity. Ties keep the earlier contour so
// results are deterministic.
func scoreContours(contours [][]r2.Point, width, height int, cfg PipelineConfig) (Rectangle, bool) {
	frameArea := float64(width * height)
	minArea := math.Max(cfg.MinContourArea, cfg.MinAreaFrameRatio*frameArea)
	maxArea := cfg.MaxAreaFrameRatio * frameArea

	var best Rectangle
	bestScore := 0.0
	found := false

	for _, contour := range contours {
		area := polygonArea(contour)
		if area < minArea || area > maxArea {
			continue
		}
		perimeter := polygonPerimeter(contour)

		approx := approxPolygon(contour, cfg.ApproxEpsilon*perimeter)
		if len(approx) != 4 {
			approx = approxPolygon(contour, cfg.ApproxEpsilonRelax*perimeter)
		}

		var candidate Rectangle
		var rectangularity float64
		if len(approx) == 4 && isConvexQuad(approx) {
			_, boxArea := minAreaRect(contour)
			if boxArea == 0 {
				continue
			}
			rectangularity = area / boxArea
			if rectangularity < cfg.MinRectangularity {
				continue
			}
			candidate = OrderPoints(approx)
		} else {
			// contour fragmented into a non-quad polygon; a genuinely
			// rectangular document can still be rescued by its rotated box
			box, boxArea := minAreaRect(contour)
			if boxArea == 0 {
				continue
			}
			rectangularity = area / boxArea
			if rectangularity < cfg.BoxRectangularity {
				continue
			}
			candidate = OrderPoints(box)
		}
		if !edgeSanity(candidate, width, height, cfg) {
			continue
		}
		if score := area * rectangularity; score > bestScore {
			bestScore = score
			best = candidate
			found = true
		}
	}
	return best, found
}
