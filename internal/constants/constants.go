// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Identity constants
const (
	// UnknownName is the label given to faces without an acceptable match
	UnknownName = "Unknown"

	// UnknownConfidence is the confidence shown when there is nothing to compare against
	UnknownConfidence = "0%"
)

// Face matching constants
const (
	// DefaultMatchTolerance is the euclidean distance at or below which two
	// embeddings are considered the same person
	DefaultMatchTolerance = 0.6

	// DefaultAcceptDistance is the stricter distance a best match must stay under
	// before its name is used
	DefaultAcceptDistance = 0.5
)

// History constants
const (
	// DefaultHistoryCap is the maximum number of entries kept in the detection history
	DefaultHistoryCap = 50

	// DefaultDedupWindowSeconds is the window during which a known person is not re-recorded
	DefaultDedupWindowSeconds = 300

	// TimeLayout formats detection timestamps (YYYY-MM-DD HH:MM:SS)
	TimeLayout = "2006-01-02 15:04:05"
)

// Known-faces storage constants
const (
	// DefaultKnownFacesDir is the root directory of the folder-per-person store
	DefaultKnownFacesDir = "known_faces"

	// EnrollExt is the extension of images written by enrollment
	EnrollExt = ".jpg"
)

// ImageExtensions lists the file suffixes loaded from identity folders.
var ImageExtensions = []string{".jpg", ".png", ".jpeg"}
