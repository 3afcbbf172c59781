package core

import (
	"fmt"
	"image"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const textPad = 4

// TextRasterizer renders HUD lines (load status, error message, point
// count) into an alpha mask for upload as an R8 texture. The mask is
// rebuilt only when the text changes, never per frame.
type TextRasterizer struct {
	face     font.Face
	lastText string
	img      *image.Alpha
}

// NewTextRasterizer opens an opentype face from fontPath, or falls back to
// the built-in bitmap face when fontPath is empty or unreadable.
func NewTextRasterizer(fontPath string, size float64) (*TextRasterizer, error) {
	if fontPath == "" {
		return &TextRasterizer{face: basicfont.Face7x13}, nil
	}

	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return &TextRasterizer{face: face}, nil
}

// Render rasterizes the lines into an alpha image. The second result is
// false when the text is unchanged and the cached image was returned, so
// the caller can skip the texture upload.
func (tr *TextRasterizer) Render(lines []string) (*image.Alpha, bool) {
	joined := strings.Join(lines, "\n")
	if joined == tr.lastText && tr.img != nil {
		return tr.img, false
	}

	metrics := tr.face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := metrics.Height.Ceil()
	if lineHeight == 0 {
		lineHeight = ascent + metrics.Descent.Ceil()
	}

	width := 1
	for _, line := range lines {
		if w := font.MeasureString(tr.face, line).Ceil(); w > width {
			width = w
		}
	}
	height := lineHeight*len(lines) + 2*textPad
	if height < 1 {
		height = 1
	}

	img := image.NewAlpha(image.Rect(0, 0, width+2*textPad, height))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: tr.face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(textPad, textPad+ascent+i*lineHeight)
		drawer.DrawString(line)
	}

	tr.lastText = joined
	tr.img = img
	return img, true
}
