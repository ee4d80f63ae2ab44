// Package constants provides shared constants used across the codebase.
package constants

// Streaming constants
const (
	// FrameBoundary separates JPEG parts in the multipart video stream
	FrameBoundary = "frame"

	// DefaultJPEGQuality is the quality used when encoding streamed and enrolled frames
	DefaultJPEGQuality = 80

	// SubscriberBuffer is the number of frames buffered per stream viewer
	SubscriberBuffer = 1

	// HistoryListenerBuffer is the number of detections buffered per event stream
	HistoryListenerBuffer = 16
)

// Request constants
const (
	// MaxEnrollBodySize is the maximum accepted /add_face body in bytes (20MB)
	MaxEnrollBodySize = 20 << 20
)
