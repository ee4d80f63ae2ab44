// Package opencv wraps the gocv bindings: webcam capture and the two
// OpenCV face detectors (SSD DNN and Haar cascade).
package opencv

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ErrReadFrame is returned when the device yields no frame.
var ErrReadFrame = errors.New("failed to read frame")

// Camera is an opened video capture device.
type Camera struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	frame   gocv.Mat
}

// OpenCamera opens a device index ("0") or a video file path.
func OpenCamera(device string) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("opening capture device %s: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("capture device %s is not available", device)
	}
	return &Camera{capture: capture, frame: gocv.NewMat()}, nil
}

// Read grabs the next frame as an RGBA image.
func (c *Camera) Read() (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrReadFrame
	}
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, ErrReadFrame
	}
	img, err := c.frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	return img, nil
}

// Close releases the device. Safe to call more than once.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	c.frame.Close()
	return err
}
