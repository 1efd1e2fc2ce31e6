// Package export wires the accounting pass together: raw day rows from
// the store, grouped by the duration accumulator, reconciled into the
// external workbook.
package export

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Avflux/chronos/internal/accounting"
	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/reconcile"
	"github.com/Avflux/chronos/internal/spreadsheet"
	"github.com/Avflux/chronos/internal/store"
)

// Exporter runs reconciliation passes. The workbook drives a single
// external file, so passes are serialized: only one export may touch
// the workbook at a time.
type Exporter struct {
	store store.Store
	acc   *accounting.Accumulator
	cfg   model.WorkbookConfig
	log   logrus.FieldLogger

	mu sync.Mutex
}

// New creates an Exporter.
func New(s store.Store, cfg model.WorkbookConfig, log logrus.FieldLogger) *Exporter {
	return &Exporter{
		store: s,
		acc:   accounting.NewAccumulator(log),
		cfg:   cfg,
		log:   log,
	}
}

// Export reconciles one user's activity for the given calendar day into
// wb and saves it. Per-record problems are logged and skipped inside
// the pass; a failure to read the store or save the workbook is fatal
// and surfaced to the caller.
func (e *Exporter) Export(ctx context.Context, userID string, day time.Time, wb spreadsheet.Workbook, password string) (reconcile.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	records, err := e.store.GetDayRecords(ctx, userID, day)
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("loading day records: %w", err)
	}
	if len(records) == 0 {
		e.log.WithFields(logrus.Fields{
			"user": userID,
			"day":  day.Format("2006-01-02"),
		}).Info("no activity to export")
		return reconcile.Result{}, nil
	}

	raw := make([]accounting.RawRecord, 0, len(records))
	for _, rec := range records {
		raw = append(raw, accounting.RawRecord{
			Description:  rec.Description,
			ActivityType: rec.ActivityType,
			Duration:     rec.TotalTime,
			StartTime:    rec.StartTime,
			UpdatedAt:    rec.UpdatedAt,
		})
	}
	groups := e.acc.Accumulate(raw)

	columns, err := reconcile.NewColumnMap(e.cfg.DayBaseColumn)
	if err != nil {
		return reconcile.Result{}, err
	}
	r := reconcile.New(wb, reconcile.Config{
		DescriptionColumn: e.cfg.DescriptionColumn,
		TypeColumn:        e.cfg.TypeColumn,
		Columns:           columns,
		StartRow:          e.cfg.StartRow,
		MaxRows:           e.cfg.MaxRows,
		Password:          password,
	}, e.log)

	result := r.RecordAll(day, groups)

	if err := wb.Save(); err != nil {
		return result, fmt.Errorf("saving workbook: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"user":    userID,
		"day":     day.Format("2006-01-02"),
		"written": result.Written,
		"skipped": result.Skipped,
	}).Info("export finished")

	return result, nil
}
