package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
)

// CascadeDetector finds frontal faces with a Haar cascade. It has no score,
// so every hit is reported with confidence 1.
type CascadeDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

// NewCascadeDetector loads a Haar cascade XML file.
func NewCascadeDetector(path string) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load face cascade classifier %s", path)
	}
	return &CascadeDetector{classifier: classifier}, nil
}

// Detect implements detect.Detector. Cascades have no score, so confidence is 1.
func (c *CascadeDetector) Detect(_ context.Context, img image.Image) ([]detect.Detection, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	c.mu.Lock()
	rects := c.classifier.DetectMultiScale(mat)
	c.mu.Unlock()

	origin := img.Bounds().Min
	dets := make([]detect.Detection, 0, len(rects))
	for _, r := range rects {
		dets = append(dets, detect.Detection{Region: detect.RegionFromRect(r.Add(origin)), Confidence: 1})
	}
	return dets, nil
}

func (c *CascadeDetector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifier.Close()
}
