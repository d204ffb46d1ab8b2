package docscan

import "math"

// EvaluateQuality classifies a candidate rectangle against a reference frame.
// The two spaces use deliberately different rules: image space works in
// absolute pixel margins right after detection, view space is ratio-based and
// resolution independent, which is what auto-capture gating should use.
func EvaluateQuality(rect Rectangle, refWidth, refHeight int, space Space, cfg QualityConfig) Quality {
	if space == SpaceView {
		return evaluateViewSpace(rect, refWidth, refHeight, cfg)
	}
	return evaluateImageSpace(rect, refWidth, refHeight, cfg)
}

func evaluateImageSpace(rect Rectangle, width, height int, cfg QualityConfig) Quality {
	if math.Abs(rect.TopRight.Y-rect.TopLeft.Y) > cfg.MaxEdgeMisalign ||
		math.Abs(rect.BottomRight.Y-rect.BottomLeft.Y) > cfg.MaxEdgeMisalign ||
		math.Abs(rect.BottomLeft.X-rect.TopLeft.X) > cfg.MaxEdgeMisalign ||
		math.Abs(rect.BottomRight.X-rect.TopRight.X) > cfg.MaxEdgeMisalign {
		return QualityBadAngle
	}

	topY := math.Min(rect.TopLeft.Y, rect.TopRight.Y)
	bottomY := math.Max(rect.BottomLeft.Y, rect.BottomRight.Y)
	if topY > cfg.FrameMargin || bottomY < float64(height)-cfg.FrameMargin {
		return QualityTooFar
	}
	return QualityGood
}

func evaluateViewSpace(rect Rectangle, width, height int, cfg QualityConfig) Quality {
	viewArea := float64(width * height)
	if viewArea <= 0 {
		return QualityTooFar
	}
	ratio := rect.ApproxArea() / viewArea
	if ratio < cfg.MinAreaRatio {
		return QualityTooFar
	}
	if ratio > cfg.MaxAreaRatio {
		// filling the whole viewport almost always means the screen border
		// was detected, not a document
		return QualityTooFar
	}

	// per-edge skew: perpendicular delta over edge length
	type edge struct {
		perp, length float64
	}
	edges := []edge{
		{math.Abs(rect.TopRight.Y - rect.TopLeft.Y), rect.TopEdge()},
		{math.Abs(rect.BottomRight.Y - rect.BottomLeft.Y), rect.BottomEdge()},
		{math.Abs(rect.BottomLeft.X - rect.TopLeft.X), rect.LeftEdge()},
		{math.Abs(rect.BottomRight.X - rect.TopRight.X), rect.RightEdge()},
	}
	for _, e := range edges {
		if e.length == 0 {
			return QualityBadAngle
		}
		if e.perp/e.length > cfg.MaxSkewRatio {
			return QualityBadAngle
		}
	}

	// excessive perspective distortion shows up as lopsided opposite edges
	ratios := []float64{
		safeRatio(rect.TopEdge(), rect.BottomEdge()),
		safeRatio(rect.LeftEdge(), rect.RightEdge()),
	}
	for _, r := range ratios {
		if r < cfg.MinEdgeRatio || r > cfg.MaxEdgeRatio {
			return QualityBadAngle
		}
	}
	return QualityGood
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}
