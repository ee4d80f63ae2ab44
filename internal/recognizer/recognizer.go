// Package recognizer runs the per-frame pipeline: detect regions, encode
// them, match against the known faces, suppress repeat sightings and draw
// the result onto the frame.
package recognizer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/imaging"
)

// RegionFinder locates faces and names the strategy that found them.
// *detect.Chain implements it.
type RegionFinder interface {
	Detect(ctx context.Context, img image.Image) ([]detect.Region, string, error)
}

// Encoder computes one embedding per region. The returned slice is aligned
// with regions; a nil entry means that region could not be encoded.
type Encoder interface {
	Encode(ctx context.Context, img image.Image, regions []detect.Region) ([]faces.Embedding, error)
}

// Result is one recognized face in a frame.
type Result struct {
	Name       string `json:"name"`
	Time       string `json:"time"`
	Location   [4]int `json:"location"` // left, top, right, bottom
	Confidence string `json:"confidence"`
	Detector   string `json:"detector"`

	Region detect.Region `json:"-"`
}

// Known reports whether the result matched an enrolled identity.
func (r Result) Known() bool {
	return r.Name != constants.UnknownName
}

// Thresholds are the matching parameters.
type Thresholds struct {
	// Tolerance is the pairwise match decision (distance <= Tolerance).
	Tolerance float64
	// AcceptDistance must also be beaten (distance < AcceptDistance) to name a face.
	AcceptDistance float64
	SightingWindow time.Duration
}

// DefaultThresholds returns the stock matching parameters.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Tolerance:      constants.DefaultMatchTolerance,
		AcceptDistance: constants.DefaultAcceptDistance,
		SightingWindow: constants.DefaultDedupWindowSeconds * time.Second,
	}
}

// Recognizer names the faces in a frame and draws them onto it.
type Recognizer struct {
	finder     RegionFinder
	encoder    Encoder
	index      faces.Index
	thresholds Thresholds
	sightings  *Sightings
	annotator  *Annotator

	// Now is the clock; replaced in tests.
	Now func() time.Time
}

// New creates a recognizer. A nil index means a LinearIndex.
func New(finder RegionFinder, encoder Encoder, index faces.Index, thresholds Thresholds) *Recognizer {
	if index == nil {
		index = faces.NewLinearIndex()
	}
	return &Recognizer{
		finder:     finder,
		encoder:    encoder,
		index:      index,
		thresholds: thresholds,
		sightings:  NewSightings(thresholds.SightingWindow),
		annotator:  NewAnnotator(),
		Now:        time.Now,
	}
}

// SetKnown replaces the known faces and forgets recent sightings.
// Register it with faces.Store.OnReload.
func (r *Recognizer) SetKnown(known []faces.KnownFace) {
	r.index.Rebuild(known)
	r.sightings.Reset()
}

// AddKnown indexes one more known face. Sightings are forgotten as on a full reload.
func (r *Recognizer) AddKnown(face faces.KnownFace) {
	r.index.Add(face)
	r.sightings.Reset()
}

// KnownCount returns the number of indexed known faces.
func (r *Recognizer) KnownCount() int {
	return r.index.Len()
}

// Recognize labels every face in frame. It returns an annotated RGBA copy
// of the frame (or the frame itself if it already was RGBA) and one result
// per face that was not suppressed as a recent sighting.
func (r *Recognizer) Recognize(ctx context.Context, frame image.Image) (*image.RGBA, []Result, error) {
	img := imaging.ToRGBA(frame)

	regions, source, err := r.finder.Detect(ctx, img)
	if err != nil {
		return img, nil, fmt.Errorf("detecting faces: %w", err)
	}
	if len(regions) == 0 {
		return img, []Result{}, nil
	}

	embeddings, err := r.encoder.Encode(ctx, img, regions)
	if err != nil {
		return img, nil, fmt.Errorf("encoding faces: %w", err)
	}

	now := r.Now()
	stamp := now.Format(constants.TimeLayout)
	results := make([]Result, 0, len(regions))
	for i, region := range regions {
		if i >= len(embeddings) || embeddings[i] == nil {
			continue
		}

		res, keep := r.match(embeddings[i], now)
		if !keep {
			continue
		}
		res.Time = stamp
		res.Location = region.Location()
		res.Detector = source
		res.Region = region

		r.annotator.Draw(img, res)
		results = append(results, res)
	}
	return img, results, nil
}

// match names one embedding. keep is false for a recently sighted identity.
func (r *Recognizer) match(probe faces.Embedding, now time.Time) (res Result, keep bool) {
	res = Result{Name: constants.UnknownName, Confidence: constants.UnknownConfidence}

	m, ok := r.index.Nearest(probe)
	if !ok {
		return res, true
	}
	res.Confidence = faces.Confidence(m.Distance)

	// Confidence comes from the raw distance even when the face stays
	// Unknown: distance 0.55 shows "45.0%".
	if faces.WithinTolerance(m.Distance, r.thresholds.Tolerance) && m.Distance < r.thresholds.AcceptDistance {
		res.Name = m.Face.Name
		if r.sightings.Seen(res.Name, now) {
			return res, false
		}
	}
	return res, true
}
