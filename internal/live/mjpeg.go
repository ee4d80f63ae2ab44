package live

import (
	"fmt"
	"io"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
)

// MJPEGContentType is the Content-Type of a multipart JPEG stream.
var MJPEGContentType = "multipart/x-mixed-replace; boundary=" + constants.FrameBoundary

// WriteMJPEGPart writes one frame as a multipart/x-mixed-replace part.
func WriteMJPEGPart(w io.Writer, frame []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\n\r\n", constants.FrameBoundary); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}
