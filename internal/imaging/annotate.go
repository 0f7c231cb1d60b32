package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/rcnn-detect/internal/geometry"
)

// Annotation is one labeled rectangle to render.
type Annotation struct {
	Box   geometry.Box `json:"box"`
	Label string       `json:"label"`
	Score float64      `json:"score"`
	Class int          `json:"class"`
}

// RenderResult contains an annotated image encoded for transport.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Annotations int    `json:"annotations"`
}

const (
	outlineThickness = 2
	labelPadding     = 2
)

// Annotate draws each annotation onto a copy of img: a class-colored
// rectangle outline plus a filled label strip reading like "orange 0.87".
// The strip sits above the box when there is room, inside its top edge
// otherwise.
func Annotate(img image.Image, annotations []Annotation) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for _, a := range annotations {
		col := ClassColor(a.Class)
		drawOutline(result, a.Box, col)
		drawAnnotationLabel(result, a, col)
	}
	return result
}

// Render annotates img and encodes the result as a base64 PNG for
// protocol responses.
func Render(img image.Image, annotations []Annotation) (*RenderResult, error) {
	annotated := Annotate(img, annotations)

	var buf bytes.Buffer
	if err := png.Encode(&buf, annotated); err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %w", err)
	}

	bounds := annotated.Bounds()
	return &RenderResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Annotations: len(annotations),
	}, nil
}

// Save writes img to path, choosing the format from the file extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// ClassColor returns the deterministic render color for a class index.
// Hues advance by the golden angle so nearby class indices stay visually
// distinct.
func ClassColor(class int) color.RGBA {
	hue := math.Mod(float64(class)*137.508, 360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.95).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawOutline draws the box edges at outlineThickness, clipped to the
// image.
func drawOutline(img *image.RGBA, b geometry.Box, col color.RGBA) {
	for t := 0; t < outlineThickness; t++ {
		for x := b.X1; x < b.X2; x++ {
			setPixel(img, x, b.Y1+t, col)
			setPixel(img, x, b.Y2-1-t, col)
		}
		for y := b.Y1; y < b.Y2; y++ {
			setPixel(img, b.X1+t, y, col)
			setPixel(img, b.X2-1-t, y, col)
		}
	}
}

// drawAnnotationLabel fills a strip in the class color and renders the
// label text over it.
func drawAnnotationLabel(img *image.RGBA, a Annotation, col color.RGBA) {
	text := a.Label
	if a.Score > 0 {
		text = fmt.Sprintf("%s %.2f", a.Label, a.Score)
	}

	face := basicfont.Face7x13
	stripW := font.MeasureString(face, text).Ceil() + 2*labelPadding
	stripH := face.Height + 2*labelPadding

	stripX := a.Box.X1
	stripY := a.Box.Y1 - stripH
	if stripY < 0 {
		stripY = a.Box.Y1
	}

	for y := stripY; y < stripY+stripH; y++ {
		for x := stripX; x < stripX+stripW; x++ {
			setPixel(img, x, y, col)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(stripX+labelPadding, stripY+labelPadding+face.Ascent),
	}
	d.DrawString(text)
}

func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(img.Bounds()) {
		img.Set(x, y, col)
	}
}
