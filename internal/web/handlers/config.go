package handlers

import (
	"net/http"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/config"
)

// Status is the live state reported next to the configuration.
type Status interface {
	ID() string
	Active() bool
}

// KnownCounter reports how many known faces are indexed.
type KnownCounter interface {
	KnownCount() int
}

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config    *config.Config
	detectors []string
	status    Status
	known     KnownCounter
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, detectors []string, status Status, known KnownCounter) *ConfigHandler {
	return &ConfigHandler{
		config:    cfg,
		detectors: detectors,
		status:    status,
		known:     known,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Detectors      []string `json:"detectors"`
	Encoder        string   `json:"encoder"`
	Index          string   `json:"index"`
	Reload         string   `json:"reload"`
	KnownFaces     int      `json:"known_faces"`
	SessionID      string   `json:"session_id"`
	CameraActive   bool     `json:"camera_active"`
	MinConfidence  float64  `json:"min_confidence"`
	Tolerance      float64  `json:"tolerance"`
	AcceptDistance float64  `json:"accept_distance"`
	HistoryCap     int      `json:"history_cap"`
}

// Get returns the active pipeline configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	rc := h.config.Recognition
	response := ConfigResponse{
		Detectors:      h.detectors,
		Encoder:        h.config.Encoder.Backend,
		Index:          h.config.Faces.Index,
		Reload:         h.config.Faces.Reload,
		KnownFaces:     h.known.KnownCount(),
		SessionID:      h.status.ID(),
		CameraActive:   h.status.Active(),
		MinConfidence:  rc.Detection.MinConfidence,
		Tolerance:      rc.Matching.Tolerance,
		AcceptDistance: rc.Matching.AcceptDistance,
		HistoryCap:     rc.History.Cap,
	}
	if response.Detectors == nil {
		response.Detectors = []string{}
	}

	respondJSON(w, http.StatusOK, response)
}
