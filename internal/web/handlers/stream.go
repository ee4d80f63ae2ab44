package handlers

import (
	"image"
	"net/http"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/imaging"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/live"
)

// FrameSource is the shared processing loop seen by viewers.
type FrameSource interface {
	Subscribe() (<-chan []byte, func())
	Snapshot() (image.Image, bool)
}

// StreamHandler serves the annotated MJPEG feed and raw snapshots
type StreamHandler struct {
	source  FrameSource
	quality int
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(source FrameSource, quality int) *StreamHandler {
	if quality <= 0 {
		quality = constants.DefaultJPEGQuality
	}
	return &StreamHandler{source: source, quality: quality}
}

// VideoFeed streams annotated frames until the client goes away or the
// camera fails. Nothing is sent while the camera is stopped.
func (h *StreamHandler) VideoFeed(w http.ResponseWriter, r *http.Request) {
	frames, unsubscribe := h.source.Subscribe()
	defer unsubscribe()

	flusher, _ := w.(http.Flusher)

	w.Header().Set("Content-Type", live.MJPEGContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := live.WriteMJPEGPart(w, frame); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// Snapshot returns the latest unannotated frame as a JPEG, for enrollment.
func (h *StreamHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	img, ok := h.source.Snapshot()
	if !ok {
		respondError(w, http.StatusNotFound, "no frame captured yet")
		return
	}
	data, err := imaging.EncodeJPEG(img, h.quality)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode frame")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
