// Package overlay burns a post's title into downloaded media: images get a
// white caption band composited above the frame, videos get the equivalent
// band rendered through an ffmpeg filtergraph.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/redgrab-cli/redgrab/util"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	minFontSize  = 24
	maxFontSize  = 48
	bandPadding  = 16
	wrapFraction = 0.9
)

// Image composites a caption band above an encoded image and returns the
// result as PNG. Decode failures propagate so the caller can fall back to
// saving the original bytes.
func Image(encoded []byte, text string) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Font size tracks image width so captions stay readable across
	// thumbnail and full resolution sources.
	fontSize := util.Clamp(width/20, minFontSize, maxFontSize)
	lineHeight := fontSize * 12 / 10

	face, err := captionFace(fontSize)
	if err != nil {
		return nil, err
	}
	defer util.Ignore(face.Close)

	lines := wrapToWidth(text, face, int(float64(width)*wrapFraction))
	bandHeight := len(lines)*lineHeight + 2*bandPadding

	dst := image.NewRGBA(image.Rect(0, 0, width, height+bandHeight))
	draw.Draw(dst, image.Rect(0, 0, width, bandHeight), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, bandHeight, width, bandHeight+height), src, bounds.Min, draw.Src)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}
	for i, line := range lines {
		lineWidth := drawer.MeasureString(line).Ceil()
		drawer.Dot = fixed.P((width-lineWidth)/2, bandPadding+fontSize+i*lineHeight)
		drawer.DrawString(line)
	}

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return out.Bytes(), nil
}

func captionFace(size int) (font.Face, error) {
	parsed, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse caption font: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build caption face: %w", err)
	}
	return face, nil
}

// wrapToWidth breaks text into lines that fit maxWidth when rendered with
// face. A single word wider than the limit still gets its own line.
func wrapToWidth(text string, face font.Face, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	measurer := &font.Drawer{Face: face}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measurer.MeasureString(candidate).Ceil() < maxWidth {
			current = candidate
		} else {
			lines = append(lines, current)
			current = word
		}
	}
	return append(lines, current)
}
