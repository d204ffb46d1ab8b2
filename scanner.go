package docscan

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/rimage"
	generic "go.viam.com/rdk/services/generic"
)

var ScannerModel = family.WithModel("scanner")

func init() {
	resource.RegisterService(generic.API, ScannerModel,
		resource.Registration[resource.Resource, *ScannerConfig]{
			Constructor: newScanner,
		},
	)
}

type ScannerConfig struct {
	Camera string

	// StableCount is how many consecutive good detections arm an automatic
	// capture. Zero means the default of 5.
	StableCount int  `json:"stable-count"`
	ManualOnly  bool `json:"manual-only"`

	// OutputDir is where captures land. Empty means the working directory.
	OutputDir string `json:"output-dir"`

	Pipeline *PipelineConfig `json:"pipeline"`
}

func (cfg *ScannerConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Camera == "" {
		return nil, nil, fmt.Errorf("need a camera")
	}
	return []string{cfg.Camera}, nil, nil
}

func (cfg *ScannerConfig) pipeline() PipelineConfig {
	if cfg.Pipeline != nil {
		return *cfg.Pipeline
	}
	return DefaultPipelineConfig()
}

func (cfg *ScannerConfig) stableCount() int {
	if cfg.StableCount > 0 {
		return cfg.StableCount
	}
	return 5
}

type scanner struct {
	resource.AlwaysRebuild

	name resource.Name

	logger logging.Logger
	conf   *ScannerConfig

	cancelCtx  context.Context
	cancelFunc func()

	cam      camera.Camera
	detector *Detector

	// busy keeps at most one detection in flight; a frame that arrives while
	// one is running is dropped, not queued
	busy sync.Mutex

	stabMu sync.Mutex
	stab   *Stabilizer
}

func newScanner(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (resource.Resource, error) {
	conf, err := resource.NativeConfig[*ScannerConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewScanner(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewScanner(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *ScannerConfig, logger logging.Logger) (resource.Resource, error) {
	var err error

	cancelCtx, cancelFunc := context.WithCancel(context.Background())

	s := &scanner{
		name:       name,
		logger:     logger,
		conf:       conf,
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
		detector:   NewDetector(conf.pipeline(), logger),
		stab:       NewStabilizer(conf.stableCount()),
	}

	s.cam, err = camera.FromProvider(deps, conf.Camera)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *scanner) Name() resource.Name {
	return s.name
}

// ----

type roiCmd struct {
	MinX, MinY, MaxX, MaxY int
}

type scanCmd struct {
	Detect  bool
	Capture bool
	Reset   bool

	ROI *roiCmd
}

func (s *scanner) DoCommand(ctx context.Context, cmdMap map[string]interface{}) (map[string]interface{}, error) {
	var cmd scanCmd
	err := mapstructure.Decode(cmdMap, &cmd)
	if err != nil {
		return nil, err
	}

	switch {
	case cmd.Reset:
		s.stabMu.Lock()
		s.stab.Reset()
		s.stabMu.Unlock()
		return map[string]interface{}{"reset": true}, nil
	case cmd.Detect:
		return s.doDetect(ctx, cmd.ROI)
	case cmd.Capture:
		return s.doCapture(ctx, cmd.ROI)
	}

	return nil, fmt.Errorf("bad cmd %v", cmdMap)
}

func (s *scanner) doDetect(ctx context.Context, roi *roiCmd) (map[string]interface{}, error) {
	if !s.busy.TryLock() {
		return map[string]interface{}{"dropped": true}, nil
	}
	defer s.busy.Unlock()

	img, err := s.grabImage(ctx)
	if err != nil {
		return nil, err
	}

	res := s.detector.DetectImage(img, convertROI(roi))

	s.stabMu.Lock()
	defer s.stabMu.Unlock()

	if res.Rect == nil {
		s.stab.ObserveMiss()
		return map[string]interface{}{
			"found": false,
			"state": s.stab.State().String(),
		}, nil
	}

	q := s.detector.EvaluateQuality(*res.Rect, res.Width, res.Height, SpaceImage)
	s.stab.Observe(q)

	out := rectToMap(*res.Rect)
	out["found"] = true
	out["quality"] = q.String()
	out["state"] = s.stab.State().String()
	out["count"] = s.stab.Count()
	out["width"] = res.Width
	out["height"] = res.Height
	if !s.conf.ManualOnly && s.stab.State() == StateReady {
		out["capture-ready"] = true
	}
	return out, nil
}

func (s *scanner) doCapture(ctx context.Context, roi *roiCmd) (map[string]interface{}, error) {
	s.busy.Lock()
	defer s.busy.Unlock()

	img, err := s.grabImage(ctx)
	if err != nil {
		return nil, err
	}

	res := s.detector.DetectImage(img, convertROI(roi))
	if res.Rect == nil {
		return nil, fmt.Errorf("no document in frame")
	}

	cropped := WarpAndCrop(img, *res.Rect)

	stamp := time.Now().Format("20060102-150405.000")
	origPath := filepath.Join(s.conf.OutputDir, fmt.Sprintf("scan-%s-orig.jpg", stamp))
	cropPath := filepath.Join(s.conf.OutputDir, fmt.Sprintf("scan-%s.jpg", stamp))

	if s.conf.OutputDir != "" {
		err = os.MkdirAll(s.conf.OutputDir, 0o755)
		if err != nil {
			return nil, err
		}
	}

	err = multierr.Combine(
		rimage.WriteImageToFile(origPath, img),
		rimage.WriteImageToFile(cropPath, cropped),
	)
	if err != nil {
		return nil, err
	}

	s.stabMu.Lock()
	s.stab.Reset()
	s.stabMu.Unlock()

	out := rectToMap(*res.Rect)
	out["original"] = origPath
	out["cropped"] = cropPath
	return out, nil
}

func (s *scanner) grabImage(ctx context.Context) (image.Image, error) {
	ni, _, err := s.cam.Images(ctx, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(ni) == 0 {
		return nil, fmt.Errorf("no images returned from camera")
	}
	return ni[0].Image(ctx)
}

func (s *scanner) Close(context.Context) error {
	s.cancelFunc()
	return nil
}

func convertROI(roi *roiCmd) *RegionOfInterest {
	if roi == nil {
		return nil
	}
	return &RegionOfInterest{MinX: roi.MinX, MinY: roi.MinY, MaxX: roi.MaxX, MaxY: roi.MaxY}
}

func rectToMap(r Rectangle) map[string]interface{} {
	return map[string]interface{}{
		"top-left":     []float64{r.TopLeft.X, r.TopLeft.Y},
		"top-right":    []float64{r.TopRight.X, r.TopRight.Y},
		"bottom-left":  []float64{r.BottomLeft.X, r.BottomLeft.Y},
		"bottom-right": []float64{r.BottomRight.X, r.BottomRight.Y},
	}
}
