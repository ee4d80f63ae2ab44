package recognizer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/detect"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
)

type fakeFinder struct {
	regions []detect.Region
	source  string
	err     error
}

func (f *fakeFinder) Detect(context.Context, image.Image) ([]detect.Region, string, error) {
	return f.regions, f.source, f.err
}

type fakeEncoder struct {
	embeddings []faces.Embedding
	err        error
}

func (f *fakeEncoder) Encode(_ context.Context, _ image.Image, regions []detect.Region) ([]faces.Embedding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embeddings[:len(regions)], nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

var (
	faceA = detect.Region{Top: 20, Right: 80, Bottom: 100, Left: 10}
	faceB = detect.Region{Top: 20, Right: 180, Bottom: 100, Left: 110}
)

func newTestRecognizer(finder *fakeFinder, enc *fakeEncoder, known []faces.KnownFace) (*Recognizer, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)}
	r := New(finder, enc, faces.NewLinearIndex(), DefaultThresholds())
	r.Now = clock.Now
	r.SetKnown(known)
	return r, clock
}

func frame() *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 200, 150))
}

// alice sits at the origin; a probe at {d} is exactly d away from her.
var aliceKnown = []faces.KnownFace{{Name: "alice", Embedding: faces.Embedding{0}}}

func TestRecognize_MatchDecision(t *testing.T) {
	tests := []struct {
		name               string
		known              []faces.KnownFace
		distance           float32
		expectedName       string
		expectedConfidence string
	}{
		{"close match accepted", aliceKnown, 0.3, "alice", "70.0%"},
		{"within accept distance", aliceKnown, 0.4, "alice", "60.0%"},
		{"accept distance is exclusive", aliceKnown, 0.5, "Unknown", "50.0%"},
		{"within tolerance but not accepted", aliceKnown, 0.55, "Unknown", "45.0%"},
		{"far face clamps to zero", aliceKnown, 1.7, "Unknown", "0.0%"},
		{"no known faces", nil, 0.1, "Unknown", "0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &fakeFinder{regions: []detect.Region{faceA}, source: "dnn"}
			enc := &fakeEncoder{embeddings: []faces.Embedding{{tt.distance}}}
			r, _ := newTestRecognizer(finder, enc, tt.known)

			_, results, err := r.Recognize(context.Background(), frame())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("expected 1 result, got %d", len(results))
			}
			res := results[0]
			if res.Name != tt.expectedName {
				t.Errorf("name = %s, want %s", res.Name, tt.expectedName)
			}
			if res.Confidence != tt.expectedConfidence {
				t.Errorf("confidence = %s, want %s", res.Confidence, tt.expectedConfidence)
			}
			if res.Detector != "dnn" {
				t.Errorf("detector = %s, want dnn", res.Detector)
			}
			if res.Location != [4]int{10, 20, 80, 100} {
				t.Errorf("location = %v", res.Location)
			}
			if res.Time != "2024-05-01 12:00:00" {
				t.Errorf("time = %s", res.Time)
			}
		})
	}
}

func TestRecognize_SuppressesRecentSightings(t *testing.T) {
	finder := &fakeFinder{regions: []detect.Region{faceA}, source: "dnn"}
	enc := &fakeEncoder{embeddings: []faces.Embedding{{0.1}}}
	r, clock := newTestRecognizer(finder, enc, aliceKnown)

	recognize := func() []Result {
		t.Helper()
		_, results, err := r.Recognize(context.Background(), frame())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return results
	}

	if got := recognize(); len(got) != 1 {
		t.Fatalf("first sighting: expected 1 result, got %d", len(got))
	}

	clock.now = clock.now.Add(4 * time.Minute)
	if got := recognize(); len(got) != 0 {
		t.Errorf("4 minutes later: expected suppression, got %d results", len(got))
	}

	// The suppressed sighting did not refresh the timestamp.
	clock.now = clock.now.Add(2 * time.Minute)
	if got := recognize(); len(got) != 1 {
		t.Errorf("6 minutes after first: expected 1 result, got %d", len(got))
	}
}

func TestRecognize_UnknownNeverSuppressed(t *testing.T) {
	finder := &fakeFinder{regions: []detect.Region{faceA}, source: "hog"}
	enc := &fakeEncoder{embeddings: []faces.Embedding{{0.9}}}
	r, _ := newTestRecognizer(finder, enc, aliceKnown)

	for i := 0; i < 3; i++ {
		_, results, err := r.Recognize(context.Background(), frame())
		if err != nil {
			t.Fatal(err)
		}
		if len(results) != 1 || results[0].Name != "Unknown" {
			t.Fatalf("iteration %d: expected one Unknown, got %+v", i, results)
		}
	}
}

func TestRecognize_ReloadResetsSightings(t *testing.T) {
	finder := &fakeFinder{regions: []detect.Region{faceA}, source: "dnn"}
	enc := &fakeEncoder{embeddings: []faces.Embedding{{0.1}}}
	r, clock := newTestRecognizer(finder, enc, aliceKnown)

	if _, results, _ := r.Recognize(context.Background(), frame()); len(results) != 1 {
		t.Fatalf("expected first sighting to be reported")
	}

	clock.now = clock.now.Add(time.Minute)
	r.SetKnown(aliceKnown)
	if _, results, _ := r.Recognize(context.Background(), frame()); len(results) != 1 {
		t.Errorf("expected sighting to be reported again after reload")
	}

	clock.now = clock.now.Add(time.Minute)
	r.AddKnown(faces.KnownFace{Name: "bob", Embedding: faces.Embedding{5}})
	if _, results, _ := r.Recognize(context.Background(), frame()); len(results) != 1 {
		t.Errorf("expected sighting to be reported again after incremental add")
	}
}

func TestRecognize_DropsFailedEncodings(t *testing.T) {
	finder := &fakeFinder{regions: []detect.Region{faceA, faceB}, source: "dnn"}
	enc := &fakeEncoder{embeddings: []faces.Embedding{nil, {0.2}}}
	r, _ := newTestRecognizer(finder, enc, aliceKnown)

	_, results, err := r.Recognize(context.Background(), frame())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Region != faceB {
		t.Errorf("expected result for the encoded region, got %+v", results[0].Region)
	}
}

func TestRecognize_NoFaces(t *testing.T) {
	r, _ := newTestRecognizer(&fakeFinder{}, &fakeEncoder{}, aliceKnown)
	img, results, err := r.Recognize(context.Background(), frame())
	if err != nil {
		t.Fatal(err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil results, got %#v", results)
	}
	if img == nil {
		t.Error("expected frame to be returned")
	}
}

func TestRecognize_Errors(t *testing.T) {
	r, _ := newTestRecognizer(&fakeFinder{err: errors.New("no detectors")}, &fakeEncoder{}, aliceKnown)
	if _, _, err := r.Recognize(context.Background(), frame()); err == nil {
		t.Error("expected detector error")
	}

	r, _ = newTestRecognizer(
		&fakeFinder{regions: []detect.Region{faceA}},
		&fakeEncoder{err: errors.New("encoder down")},
		aliceKnown,
	)
	if _, _, err := r.Recognize(context.Background(), frame()); err == nil {
		t.Error("expected encoder error")
	}
}

func TestRecognize_AnnotatesFrame(t *testing.T) {
	finder := &fakeFinder{regions: []detect.Region{faceA, faceB}, source: "dnn"}
	enc := &fakeEncoder{embeddings: []faces.Embedding{{0.1}, {0.9}}}
	r, _ := newTestRecognizer(finder, enc, aliceKnown)

	img, results, err := r.Recognize(context.Background(), frame())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Top edge of each box, away from any text.
	if got := img.RGBAAt(faceA.Left+40, faceA.Top); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("expected green box for known face, got %v", got)
	}
	if got := img.RGBAAt(faceB.Left+40, faceB.Top); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("expected red box for unknown face, got %v", got)
	}
	// Inside the band but left of the text inset.
	if got := img.RGBAAt(faceA.Left+3, faceA.Bottom-45); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("expected 50px green band for known face, got %v", got)
	}
	if got := img.RGBAAt(faceB.Left+3, faceB.Bottom-45); got == (color.RGBA{R: 255, A: 255}) {
		t.Error("unknown band should only be 35px tall")
	}
}
