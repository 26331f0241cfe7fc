package label

import (
	"image"
	"image/color"
	"image/draw"
)

// SheetEntry is one row on a small sheet.
type SheetEntry struct {
	Artist string
	Album  string
	Year   string
	Genre  string
}

var grayPalette = func() color.Palette {
	p := make(color.Palette, 0, 16)
	for i := 0; i < 16; i++ {
		v := uint8(i * 17)
		p = append(p, color.Gray{Y: v})
	}
	return p
}()

// RenderSheets packs entries onto as many small sheets as needed, SheetRows
// per sheet.
func (r *Renderer) RenderSheets(entries []SheetEntry) ([]*image.Paletted, error) {
	bold, err := r.fonts.face(true, sheetBoldSize)
	if err != nil {
		return nil, err
	}
	regular, err := r.fonts.face(false, sheetRegSize)
	if err != nil {
		return nil, err
	}

	var sheets []*image.Paletted
	for start := 0; start < len(entries); start += SheetRows {
		end := min(start+SheetRows, len(entries))
		canvas := newCanvas(SheetWidth, SheetHeight)
		for row, entry := range entries[start:end] {
			base := row * (sheetRowH + sheetRowGap)
			right := SheetWidth - sheetMargin

			yearW := textWidth(bold, entry.Year)
			genreW := textWidth(regular, entry.Genre)
			line1 := max(10, right-sheetPadRight-yearW-sheetMargin)
			line2 := max(10, right-sheetPadRight-genreW-sheetMargin)

			drawText(canvas, bold, sheetMargin, base+sheetLine1, fitText(bold, entry.Artist, line1))
			drawText(canvas, bold, right-yearW, base+sheetLine1, entry.Year)
			drawText(canvas, regular, sheetMargin, base+sheetLine2, fitText(regular, entry.Album, line2))
			drawText(canvas, regular, right-genreW, base+sheetLine2, entry.Genre)
		}
		sheet := image.NewPaletted(canvas.Bounds(), grayPalette)
		draw.Draw(sheet, sheet.Bounds(), canvas, image.Point{}, draw.Src)
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}
