package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"log"
	"net/http"
	"strings"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/imaging"
)

// FaceEnroller stores new face images and lists identities.
type FaceEnroller interface {
	Enroll(ctx context.Context, img image.Image, name string) (string, error)
	ListIdentities() ([]string, error)
}

// FacesHandler handles enrollment and the known people list
type FacesHandler struct {
	store FaceEnroller
}

// NewFacesHandler creates a new faces handler
func NewFacesHandler(store FaceEnroller) *FacesHandler {
	return &FacesHandler{store: store}
}

// AddFaceRequest is the body of POST /add_face.
type AddFaceRequest struct {
	Image string `json:"image"` // data URL, e.g. data:image/jpeg;base64,...
	Name  string `json:"name"`
}

// Add enrolls the posted image under the given name.
func (h *FacesHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxEnrollBodySize)

	var req AddFaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	img, err := imaging.DecodeDataURL(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid image data")
		return
	}

	path, err := h.store.Enroll(r.Context(), img, req.Name)
	switch {
	case errors.Is(err, faces.ErrInvalidName):
		respondError(w, http.StatusBadRequest, "invalid name")
		return
	case err != nil && path != "":
		log.Printf("Saved %s but reload failed: %v", sanitizeForLog(path), err)
		respondError(w, http.StatusInternalServerError, "face saved but known faces could not be reloaded")
		return
	case err != nil:
		log.Printf("Failed to enroll %s: %v", sanitizeForLog(req.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to save face")
		return
	}

	log.Printf("Enrolled new face for %s", sanitizeForLog(req.Name))
	respondStatus(w, "face added")
}

// ListKnown returns the sorted identity names.
func (h *FacesHandler) ListKnown(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListIdentities()
	if err != nil {
		log.Printf("Failed to list identities: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list known people")
		return
	}
	respondJSON(w, http.StatusOK, names)
}
