package export_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avflux/chronos/internal/export"
	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/reconcile"
	"github.com/Avflux/chronos/internal/spreadsheet"
	"github.com/Avflux/chronos/tests/testutil"
)

func workbookConfig() model.WorkbookConfig {
	return model.WorkbookConfig{
		DescriptionColumn: "B",
		TypeColumn:        "C",
		DayBaseColumn:     "D",
		StartRow:          13,
		MaxRows:           50,
	}
}

func TestExportEndToEnd(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, model.User{ID: "user-1", Username: "alice"}))

	// Two rows of the same logical activity plus one distinct one.
	for _, tc := range []struct {
		id, desc, typ string
		total         time.Duration
	}{
		{"a1", "review", "code", time.Hour},
		{"a2", "review", "code", 30 * time.Minute},
		{"a3", "deploy", "ops", time.Hour},
	} {
		require.NoError(t, s.CreateActivity(ctx, model.Activity{
			ID: tc.id, UserID: "user-1", Description: tc.desc,
			ActivityType: tc.typ, State: model.ActivityCompleted,
			TotalTime: tc.total,
		}))
	}

	day := time.Now().UTC()
	wb := spreadsheet.NewMemoryWorkbook(monthSheetFor(day))

	e := export.New(s, workbookConfig(), testutil.SilentLogger())
	res, err := e.Export(ctx, "user-1", day, wb, "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Written)
	assert.Equal(t, 1, wb.SaveCount)

	// Grouped hours land in the matched rows.
	desc, _ := wb.ReadCell(monthSheetFor(day), "B13")
	assert.Equal(t, "review", desc)

	// A second export of the same data writes nothing new.
	res, err = e.Export(ctx, "user-1", day, wb, "pw")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Written)
	assert.Equal(t, 2, res.Skipped)
}

func TestExportNoActivity(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, model.User{ID: "user-1", Username: "alice"}))

	day := time.Now().UTC()
	wb := spreadsheet.NewMemoryWorkbook(monthSheetFor(day))

	e := export.New(s, workbookConfig(), testutil.SilentLogger())
	res, err := e.Export(ctx, "user-1", day, wb, "pw")
	require.NoError(t, err)
	assert.Zero(t, res.Written)
	assert.Zero(t, wb.SaveCount, "no save when there is nothing to export")
}

func monthSheetFor(day time.Time) string {
	return reconcile.MonthSheet(day.Month())
}
