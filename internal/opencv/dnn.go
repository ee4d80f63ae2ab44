package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
)

// SSD res10 input geometry and BGR channel means.
var (
	dnnInputSize = image.Pt(300, 300)
	dnnMean      = gocv.NewScalar(104, 177, 123, 0)
)

// dnnOverlap is the IoU above which the weaker of two SSD boxes is dropped.
const dnnOverlap = 0.4

// DNNDetector runs the OpenCV res10 SSD face model.
type DNNDetector struct {
	mu  sync.Mutex
	net gocv.Net
}

// NewDNNDetector loads a Caffe model and its prototxt.
func NewDNNDetector(model, config string) (*DNNDetector, error) {
	net := gocv.ReadNet(model, config)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load DNN face model %s", model)
	}
	return &DNNDetector{net: net}, nil
}

// Detect implements detect.Detector. Boxes are scaled back to frame pixels.
func (d *DNNDetector) Detect(_ context.Context, img image.Image) ([]detect.Detection, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0, dnnInputSize, dnnMean, false, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	// Output is [1, 1, N, 7]: image id, class, score, x1, y1, x2, y2 (normalized).
	rows := gocv.GetBlobChannel(out, 0, 0)
	defer rows.Close()

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	var dets []detect.Detection
	for r := 0; r < rows.Rows(); r++ {
		score := float64(rows.GetFloatAt(r, 2))
		x1 := float64(rows.GetFloatAt(r, 3)) * w
		y1 := float64(rows.GetFloatAt(r, 4)) * h
		x2 := float64(rows.GetFloatAt(r, 5)) * w
		y2 := float64(rows.GetFloatAt(r, 6)) * h
		region := detect.RegionFromBox(x1, y1, x2, y2)
		region.Left += b.Min.X
		region.Right += b.Min.X
		region.Top += b.Min.Y
		region.Bottom += b.Min.Y
		dets = append(dets, detect.Detection{Region: region, Confidence: score})
	}
	return detect.Suppress(dets, dnnOverlap), nil
}

// Close releases the network.
func (d *DNNDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
