package docscan

import (
	"image"

	"github.com/golang/geo/r2"

	"go.viam.com/rdk/logging"
)

// Detector runs the full boundary-finding pipeline on one frame at a time. It
// holds only configuration, never cross-frame state, so a single Detector is
// safe to share across goroutines as long as callers keep at most one
// detection in flight per frame source.
type Detector struct {
	cfg    PipelineConfig
	logger logging.Logger
}

func NewDetector(cfg PipelineConfig, logger logging.Logger) *Detector {
	return &Detector{cfg: cfg, logger: logger}
}

// Detect runs the pipeline on an already-decoded frame. The only errors are
// contract violations surfaced by the Frame itself; "no document" is a nil
// Rect in the result, never an error.
func (d *Detector) Detect(frame *Frame, roi *RegionOfInterest) (DetectionResult, error) {
	gray := grayFromImage(frame.Image())
	gray = rotateGray(gray, frame.Rotation)
	return d.detectGray(gray, roi), nil
}

// DetectInYUV accepts raw NV21 camera planes and performs the YUV decode and
// upright rotation internally. The reported dimensions are upright: a
// 1280x960 buffer tagged rotation=90 reports 960x1280.
func (d *Detector) DetectInYUV(data []byte, width, height, rotation int, roi *RegionOfInterest) (DetectionResult, error) {
	frame, err := NewFrame(data, width, height, FormatNV21, rotation)
	if err != nil {
		return DetectionResult{}, err
	}
	return d.Detect(frame, roi)
}

// DetectImage is a convenience for callers that already hold a decoded,
// upright image (still photos, test fixtures, the offline CLI).
func (d *Detector) DetectImage(img image.Image, roi *RegionOfInterest) DetectionResult {
	return d.detectGray(grayFromImage(img), roi)
}

func (d *Detector) detectGray(gray *image.Gray, roi *RegionOfInterest) DetectionResult {
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	result := DetectionResult{Width: width, Height: height}
	if width == 0 || height == 0 {
		return result
	}

	work := gray
	offX, offY := 0, 0
	if roi != nil {
		// pad the external hint a little: object-detector boxes tend to sit
		// inside the true document boundary
		pad := int(d.cfg.ROIPadRatio * float64(maxInt(roi.MaxX-roi.MinX, roi.MaxY-roi.MinY)))
		clamped := roi.Expand(pad).Clamp(width, height)
		if !clamped.Empty() {
			work = cropGray(gray, clamped)
			offX, offY = clamped.MinX, clamped.MinY
		}
	}

	pre := preprocess(work, d.cfg)
	workW, workH := pre.Rect.Dx(), pre.Rect.Dy()

	rect, ok := d.scorePass(extractEdges(pre, d.cfg), workW, workH)
	if !ok {
		// low-contrast documents defeat Canny; retry on the adaptive
		// binarization before giving up
		if d.logger != nil {
			d.logger.Debug("no candidate from canny pass, trying adaptive threshold fallback")
		}
		rect, ok = d.scorePass(extractEdgesFallback(pre, d.cfg), workW, workH)
	}
	if !ok {
		return result
	}

	refined := refineCorners(pre, rect, d.cfg)
	if offX != 0 || offY != 0 {
		off := r2.Point{X: float64(offX), Y: float64(offY)}
		refined = mapRect(refined, func(p r2.Point) r2.Point { return p.Add(off) })
	}
	result.Rect = &refined
	return result
}

func (d *Detector) scorePass(edges *image.Gray, width, height int) (Rectangle, bool) {
	contours := findExternalContours(edges)
	return scoreContours(contours, width, height, d.cfg)
}

// EvaluateQuality applies the detector's configured thresholds; see the
// package-level EvaluateQuality for the rules.
func (d *Detector) EvaluateQuality(rect Rectangle, refWidth, refHeight int, space Space) Quality {
	return EvaluateQuality(rect, refWidth, refHeight, space, d.cfg.Quality)
}

func cropGray(src *image.Gray, roi RegionOfInterest) *image.Gray {
	w := roi.MaxX - roi.MinX
	h := roi.MaxY - roi.MinY
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcOff := (roi.MinY+y)*src.Stride + roi.MinX
		copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[srcOff:srcOff+w])
	}
	return out
}
