// Package label renders disc labels and spools them to a CUPS printer.
//
// Large labels target a 4x6 inch sheet at 300 DPI (1800x1200 px) with hard
// margins matching the DYMO LabelWriter 4XL dead zones. Album labels carry
// the artist, album, year, genre and a numbered track list; movie labels carry
// the TMDB enrichment. Both place a QR code linking back to the source record
// in the bottom-right corner.
//
// Small sheets pack eight artist/album rows onto a 560 px wide GIF used for
// spine and case stickers. Text is drawn with the Go fonts unless TTF paths
// are configured.
package label
