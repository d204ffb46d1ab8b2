package docscan

import "github.com/golang/geo/r2"

// OrderPoints canonicalizes four unordered points: the smallest x+y is
// top-left, the largest is bottom-right, and of the remaining pair the
// smaller y-x is top-right. Sum ties are broken on y-x so each input
// point fills exactly one corner slot, which keeps a 45-degree square
// from collapsing into a rectangle with a repeated corner. Robust to
// rotation, and every consumer of a Rectangle assumes it has been
// applied.
func OrderPoints(pts []r2.Point) Rectangle {
	var rect Rectangle
	if len(pts) != 4 {
		return rect
	}

	tl, br := 0, 0
	for i := 1; i < 4; i++ {
		if lessSumDiff(pts[i], pts[tl]) {
			tl = i
		}
		if lessSumDiff(pts[br], pts[i]) {
			br = i
		}
	}
	if tl == br {
		return rect
	}

	rest := make([]r2.Point, 0, 2)
	for i, p := range pts {
		if i != tl && i != br {
			rest = append(rest, p)
		}
	}
	if rest[1].Y-rest[1].X < rest[0].Y-rest[0].X {
		rest[0], rest[1] = rest[1], rest[0]
	}

	rect.TopLeft = pts[tl]
	rect.TopRight = rest[0]
	rect.BottomRight = pts[br]
	rect.BottomLeft = rest[1]
	return rect
}

// lessSumDiff orders points by x+y, breaking ties on y-x.
func lessSumDiff(a, b r2.Point) bool {
	if a.X+a.Y != b.X+b.Y {
		return a.X+a.Y < b.X+b.Y
	}
	return a.Y-a.X < b.Y-b.X
}
