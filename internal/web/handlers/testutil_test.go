package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/config"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/history"
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	cfg := &config.Config{
		Faces:   config.FacesConfig{Dir: "known_faces", Index: "linear", Reload: "full"},
		Encoder: config.EncoderConfig{Backend: "dlib"},
		Camera:  config.CameraConfig{Device: "0", JPEGQuality: 80},
	}
	cfg.Recognition.Detection.MinConfidence = 0.6
	cfg.Recognition.Matching.Tolerance = 0.6
	cfg.Recognition.Matching.AcceptDistance = 0.5
	cfg.Recognition.History.Cap = 50
	return cfg
}

// fakeSession implements CameraControl, FrameSource and Status.
type fakeSession struct {
	mu       sync.Mutex
	startErr error
	active   bool
	starts   int
	stops    int
	frames   chan []byte
	snapshot image.Image
}

func (s *fakeSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.startErr != nil {
		return s.startErr
	}
	s.active = true
	return nil
}

func (s *fakeSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	s.active = false
}

func (s *fakeSession) Subscribe() (<-chan []byte, func()) {
	return s.frames, func() {}
}

func (s *fakeSession) Snapshot() (image.Image, bool) {
	return s.snapshot, s.snapshot != nil
}

func (s *fakeSession) ID() string { return "session-1" }

func (s *fakeSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

type fakeHistory struct {
	entries  []history.Entry
	listener chan history.Entry
	removed  chan struct{}
}

func (h *fakeHistory) All() []history.Entry { return h.entries }

func (h *fakeHistory) Follow() ([]history.Entry, chan history.Entry) {
	if h.listener == nil {
		h.listener = make(chan history.Entry, 4)
	}
	return h.entries, h.listener
}

func (h *fakeHistory) RemoveListener(chan history.Entry) {
	if h.removed != nil {
		close(h.removed)
	}
}

type enrollCall struct {
	name   string
	bounds image.Rectangle
}

type fakeStore struct {
	names     []string
	listErr   error
	enrollErr error
	savedPath string
	calls     []enrollCall
}

func (s *fakeStore) Enroll(_ context.Context, img image.Image, name string) (string, error) {
	s.calls = append(s.calls, enrollCall{name: name, bounds: img.Bounds()})
	return s.savedPath, s.enrollErr
}

func (s *fakeStore) ListIdentities() ([]string, error) {
	return s.names, s.listErr
}

type fakeKnown int

func (k fakeKnown) KnownCount() int { return int(k) }

var errBoom = errors.New("boom")

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// assertStatusBody checks for the {"status": ...} acknowledgement
func assertStatusBody(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != expected {
		t.Errorf("expected status '%s', got '%s'", expected, result["status"])
	}
}
