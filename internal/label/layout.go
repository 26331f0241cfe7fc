package label

// Large label geometry, in pixels.
const (
	CanvasWidth  = 1800
	CanvasHeight = 1200

	MarginLeft   = 40
	MarginRight  = 500
	MarginTop    = 40
	MarginBottom = 80

	QRSize      = 250
	LineSpacing = 44

	qrGap = 20
)

// Font sizes, in points at 72 DPI (one point per pixel).
const (
	titleSize      = 60
	trackSize      = 38
	movieTitleSize = 56
	movieMetaSize  = 36
	movieBodySize  = 34
	sheetBoldSize  = 22
	sheetRegSize   = 18
)

// Small sheet geometry.
const (
	SheetWidth    = 560
	SheetRows     = 8
	sheetRowH     = 50
	sheetRowGap   = 8
	sheetMargin   = 4
	sheetLine1    = 4
	sheetLine2    = 30
	sheetPadRight = 6
)

// SheetHeight is the pixel height of one small sheet.
const SheetHeight = sheetRowH*SheetRows + sheetRowGap*(SheetRows-1)

const ellipsis = "..."

func fullWidth() int {
	return CanvasWidth - MarginLeft - MarginRight
}

func narrowWidth() int {
	return fullWidth() - QRSize - qrGap
}

// qrCutoff is the first baseline row that would collide with the QR code.
func qrCutoff() int {
	return CanvasHeight - QRSize - MarginBottom - qrGap
}

func qrOrigin() (int, int) {
	return CanvasWidth - QRSize - MarginRight, CanvasHeight - QRSize - MarginBottom
}
