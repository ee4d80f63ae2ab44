// Package dlib provides the HOG face detector and the ResNet face encoder
// through go-face. Both need the dlib model files:
//   - shape_predictor_5_face_landmarks.dat
//   - dlib_face_recognition_resnet_model_v1.dat
//   - mmod_human_face_detector.dat
package dlib

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/Kagami/go-face"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/imaging"
)

const (
	// cropMargin gives the HOG detector enough context around a region to
	// find the face again when encoding.
	cropMargin  = 0.25
	jpegQuality = 95
)

// Recognizer wraps a go-face recognizer. go-face is not safe for concurrent
// use, so every call is serialized.
type Recognizer struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

// NewRecognizer loads the models from modelsDir.
func NewRecognizer(modelsDir string) (*Recognizer, error) {
	log.Printf("Loading dlib models from %s", modelsDir)
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dlib models: %w", err)
	}
	return &Recognizer{rec: rec}, nil
}

// Close releases the recognizer.
func (r *Recognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec != nil {
		r.rec.Close()
		r.rec = nil
	}
	return nil
}

func (r *Recognizer) recognize(data []byte) ([]face.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec == nil {
		return nil, fmt.Errorf("dlib recognizer closed")
	}
	return r.rec.Recognize(data)
}

// Detect implements detect.Detector with dlib's HOG frontal face detector.
// HOG gives no score, so every face is reported with confidence 1.
func (r *Recognizer) Detect(_ context.Context, img image.Image) ([]detect.Detection, error) {
	data, err := imaging.EncodeJPEG(img, jpegQuality)
	if err != nil {
		return nil, err
	}
	found, err := r.recognize(data)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	origin := img.Bounds().Min
	dets := make([]detect.Detection, 0, len(found))
	for _, f := range found {
		dets = append(dets, detect.Detection{Region: detect.RegionFromRect(f.Rectangle.Add(origin)), Confidence: 1})
	}
	return dets, nil
}

// EncodeImage implements faces.ImageEncoder. dlib only reads JPEG, so
// other formats are transcoded first.
func (r *Recognizer) EncodeImage(_ context.Context, data []byte) ([]faces.Embedding, error) {
	if !isJPEG(data) {
		img, err := imaging.Decode(data)
		if err != nil {
			return nil, err
		}
		if data, err = imaging.EncodeJPEG(img, jpegQuality); err != nil {
			return nil, err
		}
	}
	found, err := r.recognize(data)
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}
	out := make([]faces.Embedding, len(found))
	for i, f := range found {
		out[i] = descriptorToEmbedding(f.Descriptor)
	}
	return out, nil
}

// Encode returns one embedding per region. go-face cannot encode at a given
// location, so each region is cropped with a margin and re-detected; the
// entry is nil when the crop shows no face.
func (r *Recognizer) Encode(ctx context.Context, img image.Image, regions []detect.Region) ([]faces.Embedding, error) {
	out := make([]faces.Embedding, len(regions))
	for i, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		crop := imaging.Crop(img, region.Rect(), cropMargin)
		if crop == nil {
			continue
		}
		data, err := imaging.EncodeJPEG(crop, jpegQuality)
		if err != nil {
			continue
		}
		embeddings, err := r.EncodeImage(ctx, data)
		if err != nil || len(embeddings) == 0 {
			continue
		}
		out[i] = embeddings[0]
	}
	return out, nil
}

func descriptorToEmbedding(d face.Descriptor) faces.Embedding {
	e := make(faces.Embedding, len(d))
	copy(e, d[:])
	return e
}

func isJPEG(data []byte) bool {
	return len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}
