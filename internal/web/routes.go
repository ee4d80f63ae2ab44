package web

import (
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/web/handlers"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/web/middleware"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	cameraHandler := handlers.NewCameraHandler(s.deps.Session)
	streamHandler := handlers.NewStreamHandler(s.deps.Session, s.config.Camera.JPEGQuality)
	detectionsHandler := handlers.NewDetectionsHandler(s.deps.History)
	facesHandler := handlers.NewFacesHandler(s.deps.Store)
	configHandler := handlers.NewConfigHandler(s.config, s.deps.Detectors, s.deps.Session, s.deps.Known)

	s.router.Get("/health", handlers.HealthCheck)

	// Streams must not be cut by the request timeout.
	s.router.Get("/video_feed", streamHandler.VideoFeed)
	s.router.Get("/events", detectionsHandler.Events)

	s.router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(2 * time.Minute))

		r.Get("/start_camera", cameraHandler.Start)
		r.Get("/stop_camera", cameraHandler.Stop)
		r.Get("/snapshot", streamHandler.Snapshot)
		r.Get("/get_detections", detectionsHandler.List)
		r.Post("/add_face", facesHandler.Add)
		r.Get("/get_known_people", facesHandler.ListKnown)
		r.Get("/config", configHandler.Get)
	})

	// Operator page
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders())
		r.Get("/", s.serveStatic)
		r.Get("/{file}", s.serveStatic)
	})
}

// serveStatic serves the embedded operator page and its assets.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path
	if name == "/" {
		name = "/index.html"
	}
	name = path.Clean(name)

	f, err := static.FileSystem().Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(name, ".html"):
		contentType = "text/html; charset=utf-8"
	case strings.HasSuffix(name, ".css"):
		contentType = "text/css; charset=utf-8"
	case strings.HasSuffix(name, ".js"):
		contentType = "application/javascript; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
