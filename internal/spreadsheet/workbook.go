// Package spreadsheet defines the narrow port through which the
// reconciliation engine touches the external month-per-sheet workbook:
// read cell, write cell, protect, unprotect, save. Keeping the port
// this small keeps the accounting logic testable against an in-memory
// fake.
package spreadsheet

import "errors"

// ErrSheetNotFound is returned when a named sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook is the external workbook seen through the adapter port.
// Implementations must return an empty string (not an error) when a
// cell inside an existing sheet is simply empty.
type Workbook interface {
	// SheetNames returns the workbook's sheet names in file order.
	SheetNames() []string

	// SheetExists reports whether a sheet with the given name exists.
	SheetExists(sheet string) bool

	// ReadCell returns the display value of a cell, e.g. "D13".
	ReadCell(sheet, cell string) (string, error)

	// WriteCell sets a cell value.
	WriteCell(sheet, cell string, value interface{}) error

	// UnprotectSheet removes protection using the given password.
	UnprotectSheet(sheet, password string) error

	// ProtectSheet applies the fixed protection policy: content locked,
	// no row/column insertion, no sorting/filtering/pivot use, no
	// formatting edits.
	ProtectSheet(sheet, password string) error

	// Save persists all modifications back to the workbook file.
	Save() error
}
