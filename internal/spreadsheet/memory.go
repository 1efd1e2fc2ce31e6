package spreadsheet

import (
	"fmt"
	"sort"
)

// MemoryWorkbook is an in-memory Workbook used by tests and dry runs.
// It mirrors the password and protection semantics of the real file:
// unprotecting with the wrong password fails, and Save only counts.
type MemoryWorkbook struct {
	sheets    map[string]map[string]string
	order     []string
	protected map[string]string // sheet -> protection password
	SaveCount int

	// FailWrites simulates a broken file: every WriteCell errors.
	FailWrites bool
}

// NewMemoryWorkbook creates an empty workbook with the given sheets.
func NewMemoryWorkbook(sheetNames ...string) *MemoryWorkbook {
	w := &MemoryWorkbook{
		sheets:    make(map[string]map[string]string),
		protected: make(map[string]string),
	}
	for _, name := range sheetNames {
		w.AddSheet(name)
	}
	return w
}

// AddSheet creates an empty sheet if it does not already exist.
func (w *MemoryWorkbook) AddSheet(name string) {
	if _, ok := w.sheets[name]; ok {
		return
	}
	w.sheets[name] = make(map[string]string)
	w.order = append(w.order, name)
}

// SheetNames returns the sheet names in creation order.
func (w *MemoryWorkbook) SheetNames() []string {
	names := make([]string, len(w.order))
	copy(names, w.order)
	return names
}

// SheetExists reports whether a sheet with the given name exists.
func (w *MemoryWorkbook) SheetExists(sheet string) bool {
	_, ok := w.sheets[sheet]
	return ok
}

// SetCell seeds a cell value directly, bypassing protection. Test setup
// helper.
func (w *MemoryWorkbook) SetCell(sheet, cell, value string) {
	w.AddSheet(sheet)
	w.sheets[sheet][cell] = value
}

// Cells returns the sorted non-empty cell references of a sheet.
func (w *MemoryWorkbook) Cells(sheet string) []string {
	var refs []string
	for ref, v := range w.sheets[sheet] {
		if v != "" {
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return refs
}

// ReadCell returns the value of a cell, empty string when unset.
func (w *MemoryWorkbook) ReadCell(sheet, cell string) (string, error) {
	cells, ok := w.sheets[sheet]
	if !ok {
		return "", fmt.Errorf("reading %s!%s: %w", sheet, cell, ErrSheetNotFound)
	}
	return cells[cell], nil
}

// WriteCell sets a cell value. Writing to a protected sheet fails, as
// the real workbook library would refuse it.
func (w *MemoryWorkbook) WriteCell(sheet, cell string, value interface{}) error {
	cells, ok := w.sheets[sheet]
	if !ok {
		return fmt.Errorf("writing %s!%s: %w", sheet, cell, ErrSheetNotFound)
	}
	if w.FailWrites {
		return fmt.Errorf("writing %s!%s: simulated write failure", sheet, cell)
	}
	if _, locked := w.protected[sheet]; locked {
		return fmt.Errorf("writing %s!%s: sheet is protected", sheet, cell)
	}
	cells[cell] = fmt.Sprint(value)
	return nil
}

// UnprotectSheet removes protection when the password matches.
func (w *MemoryWorkbook) UnprotectSheet(sheet, password string) error {
	if _, ok := w.sheets[sheet]; !ok {
		return fmt.Errorf("unprotecting %s: %w", sheet, ErrSheetNotFound)
	}
	stored, locked := w.protected[sheet]
	if !locked {
		return nil
	}
	if stored != password {
		return fmt.Errorf("unprotecting %s: wrong password", sheet)
	}
	delete(w.protected, sheet)
	return nil
}

// ProtectSheet locks a sheet with the given password.
func (w *MemoryWorkbook) ProtectSheet(sheet, password string) error {
	if _, ok := w.sheets[sheet]; !ok {
		return fmt.Errorf("protecting %s: %w", sheet, ErrSheetNotFound)
	}
	w.protected[sheet] = password
	return nil
}

// Protected reports whether a sheet is currently locked.
func (w *MemoryWorkbook) Protected(sheet string) bool {
	_, ok := w.protected[sheet]
	return ok
}

// Save counts save passes; nothing is persisted.
func (w *MemoryWorkbook) Save() error {
	w.SaveCount++
	return nil
}
