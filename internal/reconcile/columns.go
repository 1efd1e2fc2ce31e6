package reconcile

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// MonthSheetNames are the workbook sheet names, one per calendar month,
// in the regional language the external file uses. The names are part
// of the file's fixed layout.
var MonthSheetNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthSheet returns the sheet name for a calendar month.
func MonthSheet(m time.Month) string {
	return MonthSheetNames[int(m)-1]
}

// ColumnMap is the fixed bijection from day-of-month to spreadsheet
// column. Day 1 maps to the base column; later days continue the
// column sequence, rolling from single letters into two-letter names.
// With base "D": day 1 → D, day 23 → Z, day 24 → AA, day 31 → AH.
type ColumnMap struct {
	base int
}

// NewColumnMap builds a ColumnMap anchored at baseColumn, e.g. "D".
func NewColumnMap(baseColumn string) (ColumnMap, error) {
	n, err := excelize.ColumnNameToNumber(baseColumn)
	if err != nil {
		return ColumnMap{}, fmt.Errorf("invalid base column %q: %w", baseColumn, err)
	}
	return ColumnMap{base: n}, nil
}

// DayColumn returns the column name for a day of month in 1..31.
func (m ColumnMap) DayColumn(day int) (string, error) {
	if day < 1 || day > 31 {
		return "", fmt.Errorf("day %d out of range 1..31", day)
	}
	name, err := excelize.ColumnNumberToName(m.base + day - 1)
	if err != nil {
		return "", fmt.Errorf("mapping day %d: %w", day, err)
	}
	return name, nil
}

// daysInMonth returns the number of days in a month, with February's
// leap-year rule applied.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
