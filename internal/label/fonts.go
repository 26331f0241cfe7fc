package label

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Fonts holds the parsed bold and regular typefaces.
type Fonts struct {
	bold    *opentype.Font
	regular *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size float64
}

// LoadFonts parses the TTF files at the given paths. An empty path selects the
// matching embedded Go font.
func LoadFonts(boldPath, regularPath string) (*Fonts, error) {
	bold, err := parseFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("bold font: %w", err)
	}
	regular, err := parseFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("regular font: %w", err)
	}
	return &Fonts{bold: bold, regular: regular, faces: make(map[faceKey]font.Face)}, nil
}

// DefaultFonts returns the embedded Go fonts.
func DefaultFonts() *Fonts {
	fonts, err := LoadFonts("", "")
	if err != nil {
		panic(fmt.Sprintf("embedded go fonts: %v", err))
	}
	return fonts
}

func parseFont(path string, fallback []byte) (*opentype.Font, error) {
	data := fallback
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		data = raw
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", displayPath(path), err)
	}
	return parsed, nil
}

func displayPath(path string) string {
	if path == "" {
		return "embedded font"
	}
	return path
}

// face returns a cached face for the requested weight and size.
func (f *Fonts) face(bold bool, size float64) (font.Face, error) {
	key := faceKey{bold: bold, size: size}
	f.mu.Lock()
	defer f.mu.Unlock()
	if face, ok := f.faces[key]; ok {
		return face, nil
	}
	src := f.regular
	if bold {
		src = f.bold
	}
	face, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face (size %.0f): %w", size, err)
	}
	f.faces[key] = face
	return face, nil
}
