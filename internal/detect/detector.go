// Package detect defines face regions and the ordered detector chain used
// to find them in a frame.
package detect

import (
	"context"
	"fmt"
	"image"
	"log"
)

// Region is a face bounding box in frame pixels.
type Region struct {
	Top, Right, Bottom, Left int
}

// RegionFromBox converts an (x1, y1, x2, y2) box, truncating to whole pixels.
func RegionFromBox(x1, y1, x2, y2 float64) Region {
	return Region{Top: int(y1), Right: int(x2), Bottom: int(y2), Left: int(x1)}
}

// RegionFromRect converts an image.Rectangle.
func RegionFromRect(r image.Rectangle) Region {
	return Region{Top: r.Min.Y, Right: r.Max.X, Bottom: r.Max.Y, Left: r.Min.X}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

// Location returns [left, top, right, bottom].
func (r Region) Location() [4]int {
	return [4]int{r.Left, r.Top, r.Right, r.Bottom}
}

// Detection is raw detector output. Detectors without a score report 1.
type Detection struct {
	Region     Region
	Confidence float64
}

// Detector finds faces in an image.
type Detector interface {
	Detect(ctx context.Context, img image.Image) ([]Detection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, img image.Image) ([]Detection, error)

func (f DetectorFunc) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	return f(ctx, img)
}

// Strategy is one step of a Chain.
type Strategy struct {
	Name     string
	Detector Detector
	// MinConfidence, when positive, drops detections scoring at or below it.
	MinConfidence float64
}

// Chain tries strategies in order and keeps the first non-empty result.
type Chain struct {
	strategies []Strategy
}

func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Names returns the strategy names in order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.strategies))
	for i, s := range c.strategies {
		names[i] = s.Name
	}
	return names
}

// Detect returns the regions found by the first strategy that finds any,
// together with that strategy's name. A failing strategy is logged and the
// next one is tried; the error is only returned if every strategy failed.
func (c *Chain) Detect(ctx context.Context, img image.Image) ([]Region, string, error) {
	var lastErr error
	failed := 0
	for _, s := range c.strategies {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		dets, err := s.Detector.Detect(ctx, img)
		if err != nil {
			log.Printf("Detector %s failed: %v", s.Name, err)
			lastErr = err
			failed++
			continue
		}

		regions := make([]Region, 0, len(dets))
		for _, d := range dets {
			if s.MinConfidence > 0 && d.Confidence <= s.MinConfidence {
				continue
			}
			regions = append(regions, d.Region)
		}
		if len(regions) > 0 {
			return regions, s.Name, nil
		}
	}

	if failed > 0 && failed == len(c.strategies) {
		return nil, "", fmt.Errorf("all detectors failed: %w", lastErr)
	}
	return nil, "", nil
}
