package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avflux/chronos/internal/accounting"
	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/report"
	"github.com/Avflux/chronos/tests/testutil"
)

func TestSummarize(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, model.User{
		ID: "user-1", Username: "alice", BaseValue: 1000,
	}))
	for _, tc := range []struct {
		id    string
		total time.Duration
	}{
		{"a1", 4 * time.Hour},
		{"a2", 4*time.Hour + 48*time.Minute},
	} {
		require.NoError(t, s.CreateActivity(ctx, model.Activity{
			ID: tc.id, UserID: "user-1", Description: "work",
			State: model.ActivityCompleted, TotalTime: tc.total,
		}))
	}

	calc := accounting.NewCalculator(model.AccountingConfig{}, testutil.SilentLogger())
	g := report.NewGenerator(s, calc, testutil.SilentLogger())

	now := time.Now().UTC()
	summary, err := g.Summarize(ctx, "user-1", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ActivityCount)
	assert.Equal(t, 8*time.Hour+48*time.Minute, summary.TotalTime)
	assert.Equal(t, 1000.0, summary.Breakdown.BaseValue)
	assert.InDelta(t, 8.8, summary.Breakdown.TotalHours, 1e-9)
	assert.InDelta(t, 8800.0/184.8, summary.Breakdown.FinalValue, 1e-9)
}

func TestSummarizeEmptyRange(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, model.User{
		ID: "user-1", Username: "alice", BaseValue: 1000,
	}))

	calc := accounting.NewCalculator(model.AccountingConfig{}, testutil.SilentLogger())
	g := report.NewGenerator(s, calc, testutil.SilentLogger())

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	summary, err := g.Summarize(ctx, "user-1", from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, summary.ActivityCount)
	assert.Zero(t, summary.TotalTime)
}

func TestRenderFormats(t *testing.T) {
	summary := &report.Summary{
		User: model.User{Username: "alice"},
		From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),

		ActivityCount: 12,
		TotalTime:     8*time.Hour + 48*time.Minute,
		Breakdown: accounting.Breakdown{
			BaseValue:    1234.5,
			TotalHours:   8.8,
			BaseDays:     21,
			DailyHours:   8.8,
			TotalValue:   10863.6,
			DivisionBase: 184.8,
			FinalValue:   58.7857,
		},
	}

	out := summary.Render()
	assert.Contains(t, out, "Activities:      12")
	assert.Contains(t, out, "Total time:      08:48:00")
	assert.Contains(t, out, "Total hours:     8,8000")
	assert.Contains(t, out, "Base value:      R$ 1.234,50")
	assert.Contains(t, out, "Total value:     R$ 10.863,60")
	assert.Contains(t, out, "R$ 58,79")
}

func TestDailyTotals(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, model.User{ID: "user-1", Username: "alice"}))

	require.NoError(t, s.CreateActivity(ctx, model.Activity{
		ID: "a1", UserID: "user-1", Description: "work",
		State: model.ActivityCompleted, TotalTime: time.Hour,
	}))
	require.NoError(t, s.CreateActivity(ctx, model.Activity{
		ID: "a2", UserID: "user-1", Description: "work",
		State: model.ActivityCompleted, TotalTime: 30 * time.Minute,
	}))

	calc := accounting.NewCalculator(model.AccountingConfig{}, testutil.SilentLogger())
	g := report.NewGenerator(s, calc, testutil.SilentLogger())

	now := time.Now().UTC()
	totals, err := g.DailyTotals(ctx, "user-1", now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 90*time.Minute, totals[0].Total)
}
