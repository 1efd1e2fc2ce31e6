// Package report renders productivity summaries from stored activity.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Avflux/chronos/internal/accounting"
	"github.com/Avflux/chronos/internal/model"
	"github.com/Avflux/chronos/internal/store"
)

// Summary is the per-user period summary: the externally visible
// output of the value calculator.
type Summary struct {
	User model.User
	From time.Time
	To   time.Time

	ActivityCount int
	TotalTime     time.Duration
	Breakdown     accounting.Breakdown
}

// DayTotal is one calendar day's accumulated time, for dashboards.
type DayTotal struct {
	Day   time.Time
	Total time.Duration
}

// Generator builds summaries from the store.
type Generator struct {
	store store.Store
	calc  *accounting.Calculator
	log   logrus.FieldLogger
}

// NewGenerator creates a Generator.
func NewGenerator(s store.Store, calc *accounting.Calculator, log logrus.FieldLogger) *Generator {
	return &Generator{store: s, calc: calc, log: log}
}

// Summarize computes the summary for a user over [from, to].
func (g *Generator) Summarize(ctx context.Context, userID string, from, to time.Time) (*Summary, error) {
	user, err := g.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	activities, err := g.activitiesInRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	var total time.Duration
	for _, a := range activities {
		total += a.TotalTime
	}

	hours := accounting.DecimalHours(int64(total.Seconds()))

	return &Summary{
		User:          *user,
		From:          from,
		To:            to,
		ActivityCount: len(activities),
		TotalTime:     total,
		Breakdown:     g.calc.Compute(user.BaseValue, hours),
	}, nil
}

// DailyTotals aggregates a user's tracked time per calendar day over
// [from, to], in ascending day order. Days without activity are omitted.
func (g *Generator) DailyTotals(ctx context.Context, userID string, from, to time.Time) ([]DayTotal, error) {
	activities, err := g.activitiesInRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]time.Duration)
	for _, a := range activities {
		day := a.UpdatedAt.UTC().Truncate(24 * time.Hour)
		byDay[day] += a.TotalTime
	}

	totals := make([]DayTotal, 0, len(byDay))
	for day, total := range byDay {
		totals = append(totals, DayTotal{Day: day, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Day.Before(totals[j].Day) })

	return totals, nil
}

// activitiesInRange loads a user's activities last updated in [from, to].
func (g *Generator) activitiesInRange(ctx context.Context, userID string, from, to time.Time) ([]model.Activity, error) {
	all, err := g.store.GetActivities(ctx, store.ActivityFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	var inRange []model.Activity
	for _, a := range all {
		if a.UpdatedAt.Before(from) || a.UpdatedAt.After(to) {
			continue
		}
		inRange = append(inRange, a)
	}
	return inRange, nil
}

// Render formats the summary table. The number formats (decimal comma,
// thousands dot) are a fixed output contract.
func (s *Summary) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summary for %s (%s .. %s)\n",
		s.User.Username,
		s.From.Format("2006-01-02"),
		s.To.Format("2006-01-02"),
	)
	fmt.Fprintf(&b, "Activities:      %d\n", s.ActivityCount)
	fmt.Fprintf(&b, "Total time:      %s\n", accounting.FormatClock(s.TotalTime))
	fmt.Fprintf(&b, "Total hours:     %s\n", accounting.FormatDecimalHours(int64(s.TotalTime.Seconds())))
	fmt.Fprintf(&b, "Base value:      %s\n", accounting.FormatCurrency(s.Breakdown.BaseValue))
	fmt.Fprintf(&b, "Total value:     %s\n", accounting.FormatCurrency(s.Breakdown.TotalValue))
	fmt.Fprintf(&b, "\n")
	fmt.Fprintf(&b, "Formula: (%s x %s) / (%d x %s) = %s\n",
		accounting.FormatCurrency(s.Breakdown.BaseValue),
		strings.Replace(fmt.Sprintf("%.4f", s.Breakdown.TotalHours), ".", ",", 1),
		s.Breakdown.BaseDays,
		strings.Replace(fmt.Sprintf("%.1f", s.Breakdown.DailyHours), ".", ",", 1),
		accounting.FormatCurrency(s.Breakdown.FinalValue),
	)

	return b.String()
}
