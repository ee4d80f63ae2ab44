// Package embedding talks to the face embedding server: one multipart POST
// per image returns every face found with its box, score and embedding.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/imaging"
)

const (
	defaultEmbeddingURL = "http://localhost:8000"
	facePath            = "/embed/face"
	// cropMargin pads each region before it is sent for encoding so the
	// server's own detector sees the whole face.
	cropMargin  = 0.25
	jpegQuality = 90
)

// Client computes face detections and embeddings using the embedding server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a new embedding client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultEmbeddingURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FaceDetection represents a single detected face.
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse represents the response from the face embedding endpoint.
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postMultipartImage posts imageData as the "file" form field to endpoint.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// detectMIMEType detects the MIME type from image data
func detectMIMEType(data []byte) string {
	if len(data) < 8 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47 0D 0A 1A 0A
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	return "application/octet-stream"
}

// ComputeFaceEmbeddings detects faces and computes their embeddings.
func (c *Client) ComputeFaceEmbeddings(ctx context.Context, imageData []byte) (*FaceResponse, error) {
	body, err := c.postMultipartImage(ctx, facePath, imageData)
	if err != nil {
		return nil, err
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &faceResp, nil
}

// Detect implements detect.Detector using the server's face detector.
func (c *Client) Detect(ctx context.Context, img image.Image) ([]detect.Detection, error) {
	data, err := imaging.EncodeJPEG(img, jpegQuality)
	if err != nil {
		return nil, err
	}
	resp, err := c.ComputeFaceEmbeddings(ctx, data)
	if err != nil {
		return nil, err
	}

	// Boxes are relative to the posted image; shift them into img's frame.
	origin := img.Bounds().Min
	dets := make([]detect.Detection, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if len(f.BBox) != 4 {
			continue
		}
		r := detect.RegionFromBox(f.BBox[0], f.BBox[1], f.BBox[2], f.BBox[3])
		r.Left += origin.X
		r.Right += origin.X
		r.Top += origin.Y
		r.Bottom += origin.Y
		dets = append(dets, detect.Detection{Region: r, Confidence: f.DetScore})
	}
	return dets, nil
}

// EncodeImage implements faces.ImageEncoder.
func (c *Client) EncodeImage(ctx context.Context, data []byte) ([]faces.Embedding, error) {
	resp, err := c.ComputeFaceEmbeddings(ctx, data)
	if err != nil {
		return nil, err
	}
	out := make([]faces.Embedding, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		if len(f.Embedding) > 0 {
			out = append(out, f.Embedding)
		}
	}
	return out, nil
}

// Encode returns one embedding per region, nil where the crop showed no face
// or the request failed.
func (c *Client) Encode(ctx context.Context, img image.Image, regions []detect.Region) ([]faces.Embedding, error) {
	out := make([]faces.Embedding, len(regions))
	for i, r := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		crop := imaging.Crop(img, r.Rect(), cropMargin)
		if crop == nil {
			continue
		}
		data, err := imaging.EncodeJPEG(crop, jpegQuality)
		if err != nil {
			continue
		}
		embeddings, err := c.EncodeImage(ctx, data)
		if err != nil || len(embeddings) == 0 {
			continue
		}
		out[i] = embeddings[0]
	}
	return out, nil
}
