package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelWorkbook implements Workbook over an .xlsx file via excelize.
type ExcelWorkbook struct {
	file *excelize.File
	path string
}

// Open loads the workbook at path.
func Open(path string) (*ExcelWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	return &ExcelWorkbook{file: f, path: path}, nil
}

// Close releases the underlying file handle without saving.
func (w *ExcelWorkbook) Close() error {
	return w.file.Close()
}

// SheetNames returns the workbook's sheet names in file order.
func (w *ExcelWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// SheetExists reports whether a sheet with the given name exists.
func (w *ExcelWorkbook) SheetExists(sheet string) bool {
	idx, err := w.file.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}

// ReadCell returns the display value of a cell. Empty cells yield an
// empty string, matching excelize behavior.
func (w *ExcelWorkbook) ReadCell(sheet, cell string) (string, error) {
	if !w.SheetExists(sheet) {
		return "", fmt.Errorf("reading %s!%s: %w", sheet, cell, ErrSheetNotFound)
	}
	value, err := w.file.GetCellValue(sheet, cell)
	if err != nil {
		return "", fmt.Errorf("reading %s!%s: %w", sheet, cell, err)
	}
	return value, nil
}

// WriteCell sets a cell value.
func (w *ExcelWorkbook) WriteCell(sheet, cell string, value interface{}) error {
	if !w.SheetExists(sheet) {
		return fmt.Errorf("writing %s!%s: %w", sheet, cell, ErrSheetNotFound)
	}
	if err := w.file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// UnprotectSheet removes protection, verifying the password.
func (w *ExcelWorkbook) UnprotectSheet(sheet, password string) error {
	if !w.SheetExists(sheet) {
		return fmt.Errorf("unprotecting %s: %w", sheet, ErrSheetNotFound)
	}
	if err := w.file.UnprotectSheet(sheet, password); err != nil {
		return fmt.Errorf("unprotecting %s: %w", sheet, err)
	}
	return nil
}

// ProtectSheet applies the fixed protection policy. Selection of cells
// stays allowed; structural edits (row/column insertion or deletion),
// sorting, filtering, pivot tables, and formatting remain disabled by
// the zero value of the remaining options.
func (w *ExcelWorkbook) ProtectSheet(sheet, password string) error {
	if !w.SheetExists(sheet) {
		return fmt.Errorf("protecting %s: %w", sheet, ErrSheetNotFound)
	}
	err := w.file.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
		AlgorithmName:       "SHA-512",
		Password:            password,
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
	})
	if err != nil {
		return fmt.Errorf("protecting %s: %w", sheet, err)
	}
	return nil
}

// Save persists all modifications back to the original file.
func (w *ExcelWorkbook) Save() error {
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("saving workbook %s: %w", w.path, err)
	}
	return nil
}
