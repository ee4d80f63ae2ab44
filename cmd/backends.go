package cmd

import (
	"fmt"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/config"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/dlib"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/embedding"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/live"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/opencv"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/recognizer"
)

// Detector labels shown on frames and in the history.
const (
	labelDNN     = "OpenCV DNN"
	labelRemote  = "Remote"
	labelHOG     = "dlib HOG"
	labelCascade = "Haar Cascade"
)

// encoderBackend computes embeddings for frames and for stored images.
type encoderBackend interface {
	recognizer.Encoder
	faces.ImageEncoder
}

// backends holds the constructed detection and encoding backends.
// Close releases the native ones.
type backends struct {
	chain   *detect.Chain
	encoder encoderBackend
	closers []func() error

	dlib   *dlib.Recognizer
	remote *embedding.Client
}

func (b *backends) dlibRecognizer(cfg *config.Config) (*dlib.Recognizer, error) {
	if b.dlib != nil {
		return b.dlib, nil
	}
	rec, err := dlib.NewRecognizer(cfg.Encoder.ModelsDir)
	if err != nil {
		return nil, err
	}
	b.dlib = rec
	b.closers = append(b.closers, rec.Close)
	return rec, nil
}

func (b *backends) remoteClient(cfg *config.Config) *embedding.Client {
	if b.remote == nil {
		b.remote = embedding.NewClient(cfg.Embedding.URL)
	}
	return b.remote
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			fmt.Printf("Warning: failed to release backend: %v\n", err)
		}
	}
}

// buildEncoder constructs only the encoder, for commands that never detect in frames.
func buildEncoder(cfg *config.Config) (*backends, error) {
	b := &backends{}
	switch cfg.Encoder.Backend {
	case "remote":
		b.encoder = b.remoteClient(cfg)
	default:
		rec, err := b.dlibRecognizer(cfg)
		if err != nil {
			return nil, err
		}
		b.encoder = rec
	}
	return b, nil
}

// buildBackends constructs the encoder and the primary/fallback detector chain.
func buildBackends(cfg *config.Config) (*backends, error) {
	b, err := buildEncoder(cfg)
	if err != nil {
		return nil, err
	}

	minConfidence := cfg.Recognition.Detection.MinConfidence
	var strategies []detect.Strategy

	switch cfg.Detector.Primary {
	case "remote":
		strategies = append(strategies, detect.Strategy{Name: labelRemote, Detector: b.remoteClient(cfg), MinConfidence: minConfidence})
	default:
		dnn, err := opencv.NewDNNDetector(cfg.Detector.DNNModel, cfg.Detector.DNNConfig)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, dnn.Close)
		strategies = append(strategies, detect.Strategy{Name: labelDNN, Detector: dnn, MinConfidence: minConfidence})
	}

	switch cfg.Detector.Fallback {
	case "none":
	case "cascade":
		cascade, err := opencv.NewCascadeDetector(cfg.Detector.CascadePath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, cascade.Close)
		strategies = append(strategies, detect.Strategy{Name: labelCascade, Detector: cascade})
	default:
		rec, err := b.dlibRecognizer(cfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		strategies = append(strategies, detect.Strategy{Name: labelHOG, Detector: rec})
	}

	b.chain = detect.NewChain(strategies...)
	return b, nil
}

// openCamera adapts the OpenCV capture device to the live session.
func openCamera(device string) (live.Camera, error) {
	cam, err := opencv.OpenCamera(device)
	if err != nil {
		return nil, err
	}
	return cam, nil
}

// newStore creates the known-face store for cfg.
func newStore(cfg *config.Config, enc faces.ImageEncoder) *faces.Store {
	return faces.NewStore(cfg.Faces.Dir, enc, faces.ReloadMode(cfg.Faces.Reload))
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
