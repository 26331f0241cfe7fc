package label

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// Renderer draws labels with a fixed set of fonts.
type Renderer struct {
	fonts *Fonts
}

// NewRenderer returns a renderer drawing with fonts. Nil selects the Go fonts.
func NewRenderer(fonts *Fonts) *Renderer {
	if fonts == nil {
		fonts = DefaultFonts()
	}
	return &Renderer{fonts: fonts}
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	return writeImage(path, func(w io.Writer) error { return png.Encode(w, img) })
}

// WriteGIF encodes img to path, creating parent directories.
func WriteGIF(path string, img image.Image) error {
	return writeImage(path, func(w io.Writer) error { return gif.Encode(w, img, nil) })
}

func writeImage(path string, encode func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create label directory: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if err := encode(f); err != nil {
		return errors.Join(fmt.Errorf("encode %s: %w", filepath.Base(path), err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
