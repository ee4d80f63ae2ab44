package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed recognition.yaml
var recognitionYAML []byte

type Config struct {
	Faces       FacesConfig
	Camera      CameraConfig
	Detector    DetectorConfig
	Encoder     EncoderConfig
	Embedding   EmbeddingConfig
	Web         WebConfig
	Recognition RecognitionConfig
}

type FacesConfig struct {
	Dir    string // root of the folder-per-person store (default known_faces)
	Index  string // linear or hnsw
	Reload string // full or incremental
}

type CameraConfig struct {
	Device      string // device index or video file path
	JPEGQuality int
}

type DetectorConfig struct {
	Primary  string // dnn or remote
	Fallback string // hog, cascade or none
	// DNNModel and DNNConfig point at the OpenCV SSD face model
	// (res10_300x300_ssd_iter_140000.caffemodel + deploy.prototxt).
	DNNModel    string
	DNNConfig   string
	CascadePath string
}

type EncoderConfig struct {
	Backend   string // dlib or remote
	ModelsDir string // dlib models for go-face
}

type EmbeddingConfig struct {
	URL string // face embedding server, defaults to http://localhost:8000
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // extra CORS origins; loopback is always allowed
}

// RecognitionConfig holds the numeric thresholds of the pipeline.
type RecognitionConfig struct {
	Detection struct {
		MinConfidence float64 `yaml:"min_confidence"`
	} `yaml:"detection"`
	Matching struct {
		Tolerance      float64       `yaml:"tolerance"`
		AcceptDistance float64       `yaml:"accept_distance"`
		SightingWindow time.Duration `yaml:"sighting_window"`
	} `yaml:"matching"`
	History struct {
		Cap         int           `yaml:"cap"`
		DedupWindow time.Duration `yaml:"dedup_window"`
	} `yaml:"history"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable, falling back to defaultVal when unset.
func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LoadRecognition parses the embedded thresholds and applies overrides from path, if set.
func LoadRecognition(path string) (RecognitionConfig, error) {
	var rc RecognitionConfig
	if err := yaml.Unmarshal(recognitionYAML, &rc); err != nil {
		// Embedded file, so this only fires on a broken build.
		panic("failed to unmarshal embedded recognition.yaml: " + err.Error())
	}
	if path == "" {
		return rc, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return rc, fmt.Errorf("reading recognition config: %w", err)
	}
	// Fields absent from the override keep their embedded values.
	if err := yaml.Unmarshal(data, &rc); err != nil {
		return rc, fmt.Errorf("parsing recognition config %s: %w", path, err)
	}
	return rc, nil
}

func Load() (*Config, error) {
	recognition, err := LoadRecognition(os.Getenv("RECOGNITION_CONFIG"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Faces: FacesConfig{
			Dir:    envString("KNOWN_FACES_DIR", "known_faces"),
			Index:  envString("KNOWN_FACES_INDEX", "linear"),
			Reload: envString("KNOWN_FACES_RELOAD", "full"),
		},
		Camera: CameraConfig{
			Device:      envString("CAMERA_DEVICE", "0"),
			JPEGQuality: envInt("JPEG_QUALITY", 80),
		},
		Detector: DetectorConfig{
			Primary:     envString("DETECTOR_PRIMARY", "dnn"),
			Fallback:    envString("DETECTOR_FALLBACK", "hog"),
			DNNModel:    envString("DNN_MODEL", "models/res10_300x300_ssd_iter_140000.caffemodel"),
			DNNConfig:   envString("DNN_CONFIG", "models/deploy.prototxt"),
			CascadePath: envString("CASCADE_PATH", "models/haarcascade_frontalface_default.xml"),
		},
		Encoder: EncoderConfig{
			Backend:   envString("ENCODER", "dlib"),
			ModelsDir: envString("DLIB_MODELS_DIR", "models"),
		},
		Embedding: EmbeddingConfig{
			URL: os.Getenv("EMBEDDING_URL"),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 5000),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Recognition: recognition,
	}, nil
}

// Validate reports configuration values the server cannot start with.
func (c *Config) Validate() error {
	switch c.Faces.Index {
	case "linear", "hnsw":
	default:
		return fmt.Errorf("unknown KNOWN_FACES_INDEX %q (want linear or hnsw)", c.Faces.Index)
	}
	switch c.Faces.Reload {
	case "full", "incremental":
	default:
		return fmt.Errorf("unknown KNOWN_FACES_RELOAD %q (want full or incremental)", c.Faces.Reload)
	}
	switch c.Detector.Primary {
	case "dnn", "remote":
	default:
		return fmt.Errorf("unknown DETECTOR_PRIMARY %q (want dnn or remote)", c.Detector.Primary)
	}
	switch c.Detector.Fallback {
	case "hog", "cascade", "none":
	default:
		return fmt.Errorf("unknown DETECTOR_FALLBACK %q (want hog, cascade or none)", c.Detector.Fallback)
	}
	switch c.Encoder.Backend {
	case "dlib", "remote":
	default:
		return fmt.Errorf("unknown ENCODER %q (want dlib or remote)", c.Encoder.Backend)
	}
	if c.Recognition.History.Cap <= 0 {
		return fmt.Errorf("history cap must be positive, got %d", c.Recognition.History.Cap)
	}
	return nil
}
