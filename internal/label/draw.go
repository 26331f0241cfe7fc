package label

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

func newCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// drawText draws text with its top-left corner at (x, y).
func drawText(dst draw.Image, face font.Face, x, y int, text string) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
	}
	d.DrawString(text)
}

func textWidth(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

// wrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than maxWidth occupies its own line.
func wrapText(face font.Face, text string, maxWidth int) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if textWidth(face, candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// fitText shortens text with a trailing ellipsis until it fits maxWidth.
func fitText(face font.Face, text string, maxWidth int) string {
	if text == "" || textWidth(face, text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for i := len(runes) - 1; i > 0; i-- {
		candidate := strings.TrimRight(string(runes[:i]), " ") + ellipsis
		if textWidth(face, candidate) <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

// rightColumn returns the x of a right-aligned column wide enough for every
// text in its face, ending at right.
func rightColumn(right int, items ...columnItem) int {
	width := 0
	for _, item := range items {
		if item.text == "" {
			continue
		}
		if w := textWidth(item.face, item.text); w > width {
			width = w
		}
	}
	return right - width
}

type columnItem struct {
	face font.Face
	text string
}
