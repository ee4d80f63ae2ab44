package handlers

import (
	"log"
	"net/http"
)

// CameraControl toggles frame processing.
type CameraControl interface {
	Start() error
	Stop()
}

// CameraHandler handles the camera toggle endpoints
type CameraHandler struct {
	camera CameraControl
}

// NewCameraHandler creates a new camera handler
func NewCameraHandler(camera CameraControl) *CameraHandler {
	return &CameraHandler{camera: camera}
}

// Start opens the camera (if needed) and enables processing.
func (h *CameraHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.camera.Start(); err != nil {
		log.Printf("Failed to start camera: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to start camera")
		return
	}
	respondStatus(w, "camera started")
}

// Stop disables processing and releases the camera.
func (h *CameraHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.camera.Stop()
	respondStatus(w, "camera stopped")
}
