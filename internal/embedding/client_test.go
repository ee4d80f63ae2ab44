package embedding

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
)

func createTestImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func newFaceServer(t *testing.T, resp FaceResponse, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if r.URL.Path != "/embed/face" {
			t.Errorf("expected /embed/face, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart file: %v", err)
		} else {
			if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
				t.Errorf("expected image/jpeg part, got %s", ct)
			}
			_, _ = io.Copy(io.Discard, file)
			file.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestDetect(t *testing.T) {
	server := newFaceServer(t, FaceResponse{
		FacesCount: 2,
		Faces: []FaceDetection{
			{FaceIndex: 0, BBox: []float64{10.6, 20.2, 50.9, 70.1}, DetScore: 0.92},
			{FaceIndex: 1, BBox: []float64{1, 2}, DetScore: 0.99},
		},
	}, nil)
	defer server.Close()

	client := NewClient(server.URL + "/")
	dets, err := client.Detect(context.Background(), createTestImage(100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dets) != 1 {
		t.Fatalf("expected 1 detection (malformed box skipped), got %d", len(dets))
	}
	want := detect.Region{Top: 20, Right: 50, Bottom: 70, Left: 10}
	if dets[0].Region != want {
		t.Errorf("region = %+v, want %+v", dets[0].Region, want)
	}
	if dets[0].Confidence != 0.92 {
		t.Errorf("confidence = %v, want 0.92", dets[0].Confidence)
	}
}

func TestEncode_AlignedWithRegions(t *testing.T) {
	var calls int32
	server := newFaceServer(t, FaceResponse{
		FacesCount: 1,
		Faces:      []FaceDetection{{Dim: 3, Embedding: []float32{0.1, 0.2, 0.3}}},
	}, &calls)
	defer server.Close()

	client := NewClient(server.URL)
	regions := []detect.Region{
		{Top: 10, Right: 40, Bottom: 40, Left: 10},
		{Top: 500, Right: 600, Bottom: 600, Left: 500}, // outside the frame
	}
	out, err := client.Encode(context.Background(), createTestImage(64, 64), regions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	if len(out[0]) != 3 {
		t.Errorf("expected embedding for first region, got %v", out[0])
	}
	if out[1] != nil {
		t.Errorf("expected nil for region outside frame, got %v", out[1])
	}
	if calls != 1 {
		t.Errorf("expected 1 request, got %d", calls)
	}
}

func TestEncodeImage_NoFaces(t *testing.T) {
	server := newFaceServer(t, FaceResponse{FacesCount: 0}, nil)
	defer server.Close()

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}
	out, err := NewClient(server.URL).EncodeImage(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no embeddings, got %d", len(out))
	}
}

func TestComputeFaceEmbeddings_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ComputeFaceEmbeddings(context.Background(), []byte("x"))
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"short", []byte{0xFF}, "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("detectMIMEType() = %s, want %s", got, tt.expected)
			}
		})
	}
}
