package label

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	musicBrainzReleaseURL = "https://musicbrainz.org/release/"
	tmdbMovieURL          = "https://www.themoviedb.org/movie/"
)

// qrImage encodes payload and scales it to size x size with nearest-neighbour
// sampling so modules stay crisp.
func qrImage(payload string, size int) (image.Image, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	// Render one pixel per module, then scale.
	src := code.Image(-1)
	return resize.Resize(uint(size), uint(size), src, resize.NearestNeighbor), nil
}

func pasteQR(dst draw.Image, payload string) error {
	img, err := qrImage(payload, QRSize)
	if err != nil {
		return err
	}
	x, y := qrOrigin()
	draw.Draw(dst, image.Rect(x, y, x+QRSize, y+QRSize), img, img.Bounds().Min, draw.Src)
	return nil
}
