package docscan

// PipelineConfig holds every tuning constant the detection pipeline uses.
// Backend-specific tuning is data injected per call site, not duplicated code;
// bump Version when a threshold changes meaning.
type PipelineConfig struct {
	Version int `json:"version"`

	// Preprocessor
	ClaheClipLimit float64 `json:"clahe-clip-limit"`
	ClaheTiles     int     `json:"clahe-tiles"`
	BlurKernel     int     `json:"blur-kernel"`

	// EdgeExtractor
	CannySigma     float64 `json:"canny-sigma"`
	CannyLowFloor  float64 `json:"canny-low-floor"`
	CannyHighFloor float64 `json:"canny-high-floor"`
	CloseKernel    int     `json:"close-kernel"`
	AdaptiveBlock  int     `json:"adaptive-block"`
	AdaptiveC      float64 `json:"adaptive-c"`

	// ContourScorer
	MinContourArea     float64 `json:"min-contour-area"`
	MinAreaFrameRatio  float64 `json:"min-area-frame-ratio"`
	MaxAreaFrameRatio  float64 `json:"max-area-frame-ratio"`
	ApproxEpsilon      float64 `json:"approx-epsilon"`
	ApproxEpsilonRelax float64 `json:"approx-epsilon-relax"`
	MinRectangularity  float64 `json:"min-rectangularity"`
	BoxRectangularity  float64 `json:"box-rectangularity"`
	MinEdgePixels      float64 `json:"min-edge-pixels"`
	MinEdgeSideRatio   float64 `json:"min-edge-side-ratio"`
	MinEdgeAspect      float64 `json:"min-edge-aspect"`
	MaxEdgeAspect      float64 `json:"max-edge-aspect"`

	// CornerRefiner
	RefineWindow  int     `json:"refine-window"`
	RefineIters   int     `json:"refine-iters"`
	RefineEpsilon float64 `json:"refine-epsilon"`

	// ROI hint handling
	ROIPadRatio float64 `json:"roi-pad-ratio"`

	Quality QualityConfig `json:"quality"`
}

// QualityConfig gates a candidate rectangle against a reference frame. The
// image-space rule uses absolute pixel margins; the view-space rule is
// ratio-based and resolution independent.
type QualityConfig struct {
	// image space
	MaxEdgeMisalign float64 `json:"max-edge-misalign"`
	FrameMargin     float64 `json:"frame-margin"`

	// view space
	MinAreaRatio float64 `json:"min-area-ratio"`
	MaxAreaRatio float64 `json:"max-area-ratio"`
	MaxSkewRatio float64 `json:"max-skew-ratio"`
	MinEdgeRatio float64 `json:"min-edge-ratio"`
	MaxEdgeRatio float64 `json:"max-edge-ratio"`
}

// DefaultPipelineConfig reconciles the historically drifted per-backend
// constants into one tuning set.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Version: 1,

		ClaheClipLimit: 2.5,
		ClaheTiles:     8,
		BlurKernel:     5,

		CannySigma:     0.33,
		CannyLowFloor:  50,
		CannyHighFloor: 150,
		CloseKernel:    3,
		AdaptiveBlock:  15,
		AdaptiveC:      2,

		MinContourArea:     350,
		MinAreaFrameRatio:  0.02,
		MaxAreaFrameRatio:  0.85,
		ApproxEpsilon:      0.01,
		ApproxEpsilonRelax: 0.02,
		MinRectangularity:  0.7,
		BoxRectangularity:  0.5,
		MinEdgePixels:      60,
		MinEdgeSideRatio:   0.08,
		MinEdgeAspect:      0.45,
		MaxEdgeAspect:      2.8,

		RefineWindow:  11,
		RefineIters:   40,
		RefineEpsilon: 0.001,

		ROIPadRatio: 0.1,

		Quality: QualityConfig{
			MaxEdgeMisalign: 100,
			FrameMargin:     150,
			MinAreaRatio:    0.06,
			MaxAreaRatio:    0.95,
			MaxSkewRatio:    0.3,
			MinEdgeRatio:    0.33,
			MaxEdgeRatio:    3.0,
		},
	}
}
