package faces

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
)

// ErrInvalidName is returned for identity names that cannot be used as a folder.
var ErrInvalidName = errors.New("invalid identity name")

// NormalizeName trims and NFC-normalizes an identity name so that the same
// name typed on different systems maps to one folder.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.TrimSpace(name))
	switch {
	case name == "", name == ".", name == "..":
		return "", ErrInvalidName
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return "", ErrInvalidName
	case name == constants.UnknownName:
		// Would be indistinguishable from an unmatched face.
		return "", ErrInvalidName
	}
	return name, nil
}
