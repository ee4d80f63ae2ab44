// Package live owns the single camera of the process and the processing
// loop that turns its frames into recognition results and a JPEG stream.
package live

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/imaging"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/recognizer"
)

// ErrNoCamera is returned by Start when the device cannot be opened.
var ErrNoCamera = errors.New("camera unavailable")

// Camera is an open capture device.
type Camera interface {
	Read() (image.Image, error)
	Close() error
}

// Opener opens the capture device named by device.
type Opener func(device string) (Camera, error)

// Processor recognizes faces in one frame.
type Processor interface {
	Recognize(ctx context.Context, frame image.Image) (*image.RGBA, []recognizer.Result, error)
}

// Recorder receives every result the loop produces.
type Recorder interface {
	Record(res recognizer.Result) bool
}

// Session is the camera toggle plus the processing loop shared by all viewers.
type Session struct {
	id       string
	ctx      context.Context
	device   string
	open     Opener
	proc     Processor
	recorder Recorder
	quality  int

	mu      sync.Mutex
	camera  Camera
	active  bool
	running bool
	subs    map[int]chan []byte
	nextSub int
	last    *image.RGBA   // most recent frame before annotation
	done    chan struct{} // closed when the current loop exits
}

// NewSession creates an inactive session. ctx bounds the processing loop.
func NewSession(ctx context.Context, device string, open Opener, proc Processor, recorder Recorder, quality int) *Session {
	if quality <= 0 {
		quality = constants.DefaultJPEGQuality
	}
	return &Session{
		id:       uuid.NewString(),
		ctx:      ctx,
		device:   device,
		open:     open,
		proc:     proc,
		recorder: recorder,
		quality:  quality,
		subs:     make(map[int]chan []byte),
	}
}

// ID identifies the session in logs and /config.
func (s *Session) ID() string {
	return s.id
}

// Active reports whether frames are being processed.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start opens the camera if needed and enables processing. Calling it on an
// active session changes nothing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.camera == nil {
		cam, err := s.open(s.device)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNoCamera, err)
		}
		s.camera = cam
		log.Printf("Session %s: opened camera %s", s.id, s.device)
	}
	s.active = true

	if !s.running {
		s.running = true
		s.done = make(chan struct{})
		go s.loop(s.done)
	}
	return nil
}

// Stop disables processing and releases the camera. A read in flight
// finishes first; the loop then exits without closing the streams.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
	s.closeCameraLocked()
}

// Wait blocks until the current processing loop, if any, has exited.
func (s *Session) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Subscribe registers a viewer. Frames arrive as JPEG bytes; a viewer that
// falls behind misses frames. The channel is closed when the camera fails.
func (s *Session) Subscribe() (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan []byte, constants.SubscriberBuffer)
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

// Snapshot returns the latest unannotated frame; ok is false before the
// first frame was read.
func (s *Session) Snapshot() (img image.Image, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, false
	}
	return s.last, true
}

func (s *Session) closeCameraLocked() {
	if s.camera == nil {
		return
	}
	if err := s.camera.Close(); err != nil {
		log.Printf("Session %s: error closing camera: %v", s.id, err)
	}
	s.camera = nil
	log.Printf("Session %s: released camera", s.id)
}

func (s *Session) closeSubscribersLocked() {
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Session) loop(done chan struct{}) {
	defer close(done)

	for {
		s.mu.Lock()
		if !s.active || s.ctx.Err() != nil {
			s.closeCameraLocked()
			s.active = false
			s.running = false
			s.mu.Unlock()
			return
		}
		cam := s.camera
		s.mu.Unlock()

		frame, err := cam.Read()
		if err != nil {
			s.mu.Lock()
			if s.camera != cam {
				// Stopped, and possibly restarted, during the read.
				s.mu.Unlock()
				continue
			}
			log.Printf("Session %s: camera read failed: %v", s.id, err)
			s.closeCameraLocked()
			s.active = false
			s.running = false
			s.closeSubscribersLocked()
			s.mu.Unlock()
			return
		}

		s.process(frame)
	}
}

func (s *Session) process(frame image.Image) {
	raw := imaging.Clone(frame)
	s.mu.Lock()
	s.last = raw
	s.mu.Unlock()

	annotated, results, err := s.proc.Recognize(s.ctx, frame)
	if err != nil {
		log.Printf("Session %s: recognition failed: %v", s.id, err)
	}
	if annotated == nil {
		annotated = imaging.ToRGBA(frame)
	}

	for _, res := range results {
		s.recorder.Record(res)
	}

	data, err := imaging.EncodeJPEG(annotated, s.quality)
	if err != nil {
		log.Printf("Session %s: %v", s.id, err)
		return
	}
	s.broadcast(data)
}

func (s *Session) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- data:
		default:
		}
	}
}
