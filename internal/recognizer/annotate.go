package recognizer

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	knownColor   = color.RGBA{G: 255, A: 255}
	unknownColor = color.RGBA{R: 255, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	tagColor     = color.RGBA{G: 255, B: 255, A: 255}
)

const (
	boxThickness      = 2
	knownBandHeight   = 50
	unknownBandHeight = 35
	textInset         = 6
)

// Annotator draws recognition results onto frames.
type Annotator struct {
	face font.Face
}

func NewAnnotator() *Annotator {
	return &Annotator{face: basicfont.Face7x13}
}

// Draw renders one result: box, filled label band at the bottom of the box,
// the name (plus a confidence line for known faces) and the detector tag
// above the box. Anything outside the frame is clipped.
func (a *Annotator) Draw(dst *image.RGBA, res Result) {
	r := res.Region
	c := unknownColor
	band := unknownBandHeight
	nameY := r.Bottom - textInset
	if res.Known() {
		c = knownColor
		band = knownBandHeight
		nameY = r.Bottom - 30
	}

	a.box(dst, r.Rect(), c)
	fill(dst, image.Rect(r.Left, r.Bottom-band, r.Right, r.Bottom), c)

	a.text(dst, res.Name, r.Left+textInset, nameY, textColor)
	if res.Known() {
		a.text(dst, "Conf: "+res.Confidence, r.Left+textInset, r.Bottom-textInset, textColor)
	}
	if res.Detector != "" {
		a.text(dst, res.Detector, r.Left, r.Top-10, tagColor)
	}
}

func (a *Annotator) box(dst *image.RGBA, r image.Rectangle, c color.Color) {
	t := boxThickness
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// text draws s with its baseline starting at (x, y).
func (a *Annotator) text(dst *image.RGBA, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: a.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func fill(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}
