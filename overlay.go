package docscan

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"go.viam.com/rdk/components/camera"
	"go.viam.com/rdk/data"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/pointcloud"
	"go.viam.com/rdk/resource"
	"go.viam.com/rdk/spatialmath"
)

var OverlayCameraModel = family.WithModel("overlay-camera")

func init() {
	resource.RegisterComponent(camera.API, OverlayCameraModel,
		resource.Registration[camera.Camera, *OverlayCameraConfig]{
			Constructor: newOverlayCamera,
		},
	)
}

type OverlayCameraConfig struct {
	Input string

	Pipeline *PipelineConfig `json:"pipeline"`
}

func (cfg *OverlayCameraConfig) Validate(path string) ([]string, []string, error) {
	if cfg.Input == "" {
		return nil, nil, fmt.Errorf("need an input")
	}
	return []string{cfg.Input}, nil, nil
}

func newOverlayCamera(ctx context.Context, deps resource.Dependencies, rawConf resource.Config, logger logging.Logger) (camera.Camera, error) {
	conf, err := resource.NativeConfig[*OverlayCameraConfig](rawConf)
	if err != nil {
		return nil, err
	}

	return NewOverlayCamera(ctx, deps, rawConf.ResourceName(), conf, logger)
}

func NewOverlayCamera(ctx context.Context, deps resource.Dependencies, name resource.Name, conf *OverlayCameraConfig, logger logging.Logger) (camera.Camera, error) {
	var err error

	pipeline := DefaultPipelineConfig()
	if conf.Pipeline != nil {
		pipeline = *conf.Pipeline
	}

	oc := &OverlayCamera{
		name:     name,
		conf:     conf,
		logger:   logger,
		detector: NewDetector(pipeline, logger),
	}

	oc.input, err = camera.FromProvider(deps, conf.Input)
	if err != nil {
		return nil, err
	}

	return oc, nil
}

// OverlayCamera passes its input camera through, drawing the detected
// boundary on each frame. The border color encodes the quality verdict so a
// person aiming the camera gets live feedback.
type OverlayCamera struct {
	resource.AlwaysRebuild
	resource.TriviallyCloseable

	name   resource.Name
	conf   *OverlayCameraConfig
	logger logging.Logger

	input    camera.Camera
	detector *Detector
}

func (oc *OverlayCamera) Image(ctx context.Context, mimeType string, extra map[string]interface{}) ([]byte, camera.ImageMetadata, error) {
	return camera.GetImageFromGetImages(ctx, nil, oc, extra, nil)
}

func (oc *OverlayCamera) Images(ctx context.Context, filterSourceNames []string, extra map[string]interface{}) ([]camera.NamedImage, resource.ResponseMetadata, error) {
	ni, rm, err := oc.input.Images(ctx, nil, extra)
	if err != nil {
		return nil, rm, err
	}

	if len(ni) == 0 {
		return nil, rm, fmt.Errorf("no images returned from input camera")
	}

	srcImg, err := ni[0].Image(ctx)
	if err != nil {
		return nil, rm, err
	}

	res := oc.detector.DetectImage(srcImg, nil)
	dst := OverlayImage(srcImg, res, oc.detector)

	result, err := camera.NamedImageFromImage(dst, ni[0].SourceName, "", data.Annotations{})
	if err != nil {
		return nil, rm, err
	}
	return []camera.NamedImage{result}, rm, nil
}

// OverlayImage copies src and draws the detection on top. A nil Rect just
// yields the copy with a "searching" label.
func OverlayImage(srcImg image.Image, res DetectionResult, d *Detector) image.Image {
	bounds := srcImg.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, srcImg, bounds.Min, draw.Src)

	if res.Rect == nil {
		drawString(dst, bounds.Min.X+10, bounds.Min.Y+20, "searching", color.RGBA{255, 255, 255, 255})
		return dst
	}

	q := d.EvaluateQuality(*res.Rect, res.Width, res.Height, SpaceImage)
	c := qualityColor(q)

	// perimeter order, not the TL TR BL BR warp order
	perim := []r2.Point{res.Rect.TopLeft, res.Rect.TopRight, res.Rect.BottomRight, res.Rect.BottomLeft}
	for i := range perim {
		drawLine(dst, perim[i], perim[(i+1)%len(perim)], c)
	}
	for _, p := range perim {
		drawCircle(dst, roundPoint(p), 4, c)
	}

	label := q.String()
	lp := roundPoint(res.Rect.TopLeft)
	drawString(dst, lp.X, maxInt(bounds.Min.Y+13, lp.Y-6), label, c)

	return dst
}

func qualityColor(q Quality) color.RGBA {
	// hue wheel: green for good, amber for a fixable angle, red for too far
	var h float64
	switch q {
	case QualityGood:
		h = 120
	case QualityBadAngle:
		h = 45
	default:
		h = 0
	}
	cf := colorful.Hsv(h, 1, 1)
	r, g, b := cf.RGB255()
	return color.RGBA{r, g, b, 255}
}

func drawLine(dst *image.RGBA, a, b r2.Point, c color.RGBA) {
	d := b.Sub(a)
	steps := int(math.Max(math.Abs(d.X), math.Abs(d.Y)))
	if steps == 0 {
		dst.SetRGBA(int(a.X), int(a.Y), c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(a.X + d.X*t)
		y := int(a.Y + d.Y*t)
		dst.SetRGBA(x, y, c)
		dst.SetRGBA(x+1, y, c)
		dst.SetRGBA(x, y+1, c)
	}
}

func drawCircle(dst *image.RGBA, center image.Point, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				dst.SetRGBA(center.X+dx, center.Y+dy, c)
			}
		}
	}
}

func drawString(dst *image.RGBA, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func (oc *OverlayCamera) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	return nil, fmt.Errorf("DoCommand not supported")
}

func (oc *OverlayCamera) NextPointCloud(ctx context.Context, extra map[string]interface{}) (pointcloud.PointCloud, error) {
	return nil, fmt.Errorf("NextPointCloud not supported")
}

func (oc *OverlayCamera) Properties(ctx context.Context) (camera.Properties, error) {
	return camera.Properties{}, nil
}

func (oc *OverlayCamera) Geometries(ctx context.Context, extra map[string]interface{}) ([]spatialmath.Geometry, error) {
	return nil, nil
}

func (oc *OverlayCamera) Name() resource.Name {
	return oc.name
}
