// Package catalog appends identified discs to a CSV file and reads it back
// for batch label runs. The file is append-only; the header is written when
// the file is created.
package catalog
