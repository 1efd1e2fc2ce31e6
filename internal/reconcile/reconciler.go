// Package reconcile computes the incremental hours to write into the
// external day-by-day workbook so that repeated exports never double
// count values already recorded.
package reconcile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Avflux/chronos/internal/accounting"
	"github.com/Avflux/chronos/internal/spreadsheet"
)

// ErrNoFreeRow is returned when the bounded row scan finds neither a
// matching row nor a free slot for a new entry.
var ErrNoFreeRow = errors.New("no free row slot in sheet")

// Config fixes the workbook geometry the reconciler operates on.
type Config struct {
	// DescriptionColumn and TypeColumn hold the row-matching keys.
	DescriptionColumn string
	TypeColumn        string

	// Columns maps day-of-month to its day column.
	Columns ColumnMap

	// StartRow is the first data row of each month sheet.
	StartRow int

	// MaxRows bounds the row scan; exceeding it without a match means
	// "no slot available" and the record is skipped.
	MaxRows int

	// Password protects and unprotects the month sheets.
	Password string
}

// Reconciler writes incremental day values into the workbook.
type Reconciler struct {
	wb  spreadsheet.Workbook
	cfg Config
	log logrus.FieldLogger
}

// New creates a Reconciler over wb.
func New(wb spreadsheet.Workbook, cfg Config, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{wb: wb, cfg: cfg, log: log}
}

// Result summarizes one reconciliation pass.
type Result struct {
	Written int
	Skipped int
}

// RecordAll reconciles every grouped record for the given day. Sheets
// are unlocked before the first write and re-locked afterwards even
// when individual records fail. Per-record failures are logged and do
// not stop the pass; only Save-level failures are fatal to the caller.
func (r *Reconciler) RecordAll(now time.Time, groups []accounting.GroupedRecord) Result {
	r.unlockAll()
	defer r.lockAll()

	var res Result
	for _, g := range groups {
		wrote, err := r.Record(now, g)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"description":   g.Description,
				"activity_type": g.ActivityType,
			}).Warnf("skipping record: %v", err)
			res.Skipped++
			continue
		}
		if wrote {
			res.Written++
		} else {
			res.Skipped++
		}
	}
	return res
}

// Record reconciles a single grouped record into the current month's
// sheet. It returns false with a nil error when nothing needs writing:
// either the value is already fully recorded (delta ≤ 0) or the target
// cell is already populated (write-once guard).
func (r *Reconciler) Record(now time.Time, g accounting.GroupedRecord) (bool, error) {
	sheet := MonthSheet(now.Month())
	if !r.wb.SheetExists(sheet) {
		return false, fmt.Errorf("month sheet %q: %w", sheet, spreadsheet.ErrSheetNotFound)
	}

	row, err := r.findOrClaimRow(sheet, g.Description, g.ActivityType)
	if err != nil {
		return false, err
	}

	column, err := r.cfg.Columns.DayColumn(now.Day())
	if err != nil {
		return false, err
	}
	target := fmt.Sprintf("%s%d", column, row)

	// Never overwrite a populated cell: a second pass over the same
	// data must leave the first write untouched.
	existing, err := r.wb.ReadCell(sheet, target)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(existing) != "" {
		r.log.WithField("cell", sheet+"!"+target).
			Debug("target cell already populated, leaving as is")
		return false, nil
	}

	recorded, err := r.alreadyRecorded(now, sheet, row, g.Description, g.ActivityType)
	if err != nil {
		return false, err
	}

	delta := accounting.DecimalHours(g.Seconds) - recorded
	if delta <= 0 {
		r.log.WithFields(logrus.Fields{
			"description": g.Description,
			"recorded":    recorded,
		}).Debug("already fully reconciled, nothing to write")
		return false, nil
	}

	delta = math.Round(delta*10000) / 10000
	if err := r.wb.WriteCell(sheet, target, delta); err != nil {
		return false, err
	}
	return true, nil
}

// findOrClaimRow scans the sheet's data region for the record's row.
// An empty description cell claims that row for a new entry; a row
// matching on both description and activity type is reused; a matching
// description with a different activity type keeps scanning.
func (r *Reconciler) findOrClaimRow(sheet, description, activityType string) (int, error) {
	for row := r.cfg.StartRow; row < r.cfg.StartRow+r.cfg.MaxRows; row++ {
		desc, err := r.wb.ReadCell(sheet, fmt.Sprintf("%s%d", r.cfg.DescriptionColumn, row))
		if err != nil {
			return 0, err
		}

		if strings.TrimSpace(desc) == "" {
			if err := r.wb.WriteCell(sheet, fmt.Sprintf("%s%d", r.cfg.DescriptionColumn, row), description); err != nil {
				return 0, err
			}
			if err := r.wb.WriteCell(sheet, fmt.Sprintf("%s%d", r.cfg.TypeColumn, row), activityType); err != nil {
				return 0, err
			}
			return row, nil
		}

		if desc != description {
			continue
		}

		typ, err := r.wb.ReadCell(sheet, fmt.Sprintf("%s%d", r.cfg.TypeColumn, row))
		if err != nil {
			return 0, err
		}
		if typ == activityType {
			return row, nil
		}
		// Same description, different type: rows are not shared.
	}

	return 0, fmt.Errorf("sheet %s: %w", sheet, ErrNoFreeRow)
}

// findExistingRow is the lookback variant of row matching: it only
// reuses an existing row and never claims a free one, since prior
// months must not gain entries.
func (r *Reconciler) findExistingRow(sheet, description, activityType string) (int, bool) {
	for row := r.cfg.StartRow; row < r.cfg.StartRow+r.cfg.MaxRows; row++ {
		desc, err := r.wb.ReadCell(sheet, fmt.Sprintf("%s%d", r.cfg.DescriptionColumn, row))
		if err != nil || desc != description {
			continue
		}
		typ, err := r.wb.ReadCell(sheet, fmt.Sprintf("%s%d", r.cfg.TypeColumn, row))
		if err == nil && typ == activityType {
			return row, true
		}
	}
	return 0, false
}

// alreadyRecorded sums everything previously written for this logical
// activity: the matched row's cells for days 1..(today−1) on the
// current sheet, plus the matched row across every prior month of the
// year over that month's full day count.
func (r *Reconciler) alreadyRecorded(now time.Time, sheet string, row int, description, activityType string) (float64, error) {
	total, err := r.sumRowDays(sheet, row, now.Day()-1)
	if err != nil {
		return 0, err
	}

	for m := time.January; m < now.Month(); m++ {
		priorSheet := MonthSheet(m)
		if !r.wb.SheetExists(priorSheet) {
			r.log.WithField("sheet", priorSheet).
				Debug("prior month sheet missing, skipping lookback")
			continue
		}
		priorRow, ok := r.findExistingRow(priorSheet, description, activityType)
		if !ok {
			continue
		}
		sum, err := r.sumRowDays(priorSheet, priorRow, daysInMonth(now.Year(), m))
		if err != nil {
			return 0, err
		}
		total += sum
	}

	return total, nil
}

// sumRowDays sums the numeric day cells of a row for days 1..lastDay.
// Non-numeric cell contents are logged and counted as zero.
func (r *Reconciler) sumRowDays(sheet string, row, lastDay int) (float64, error) {
	var total float64
	for day := 1; day <= lastDay; day++ {
		column, err := r.cfg.Columns.DayColumn(day)
		if err != nil {
			return 0, err
		}
		cell := fmt.Sprintf("%s%d", column, row)
		value, err := r.wb.ReadCell(sheet, cell)
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		total += r.parseNumeric(sheet+"!"+cell, value)
	}
	return total, nil
}

// parseNumeric converts a cell's display value to a float, accepting
// both comma and dot decimal separators. Unparseable contents are
// logged and counted as zero rather than aborting the pass.
func (r *Reconciler) parseNumeric(ref, value string) float64 {
	normalized := strings.Replace(strings.TrimSpace(value), ",", ".", 1)
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"cell":  ref,
			"value": value,
		}).Warn("non-numeric cell content, counting as zero")
		return 0
	}
	return f
}

// unlockAll removes protection from every month sheet present in the
// workbook. A sheet that fails to unlock is logged and skipped; the
// pass degrades by leaving that sheet locked.
func (r *Reconciler) unlockAll() {
	for _, sheet := range MonthSheetNames {
		if !r.wb.SheetExists(sheet) {
			continue
		}
		if err := r.wb.UnprotectSheet(sheet, r.cfg.Password); err != nil {
			r.log.WithField("sheet", sheet).Warnf("could not unprotect sheet: %v", err)
		}
	}
}

// lockAll re-applies the protection policy to every month sheet.
func (r *Reconciler) lockAll() {
	for _, sheet := range MonthSheetNames {
		if !r.wb.SheetExists(sheet) {
			continue
		}
		if err := r.wb.ProtectSheet(sheet, r.cfg.Password); err != nil {
			r.log.WithField("sheet", sheet).Warnf("could not protect sheet: %v", err)
		}
	}
}
