package accounting

import (
	"github.com/sirupsen/logrus"

	"github.com/Avflux/chronos/internal/model"
)

// Default accounting constants, overridable through configuration.
const (
	// DefaultWorkdays is the notional number of working days per month.
	DefaultWorkdays = 21

	// DefaultHoursPerDay is the notional working hours per day.
	DefaultHoursPerDay = 8.8

	// DefaultFallbackRate substitutes for a missing or non-positive
	// per-user base rate, so reports never divide a zero rate through
	// the formula. Configurable per deployment.
	DefaultFallbackRate = 50
)

// Breakdown carries the full value computation, step by step. Every
// intermediate is surfaced because reports display the formula term by
// term, not just the final figure.
type Breakdown struct {
	BaseValue    float64 `json:"base_value"`
	TotalHours   float64 `json:"total_hours"`
	BaseDays     int     `json:"base_days"`
	DailyHours   float64 `json:"daily_hours"`
	TotalValue   float64 `json:"total_value"`
	DivisionBase float64 `json:"division_base"`
	FinalValue   float64 `json:"final_value"`
}

// Calculator derives monetary value from accumulated hours:
//
//	division_base = workdays × hours_per_day
//	final_value   = (base_rate × hours) / division_base
type Calculator struct {
	Workdays     int
	HoursPerDay  float64
	FallbackRate float64

	log logrus.FieldLogger
}

// NewCalculator builds a Calculator from configuration, substituting
// the package defaults for zero-valued settings.
func NewCalculator(cfg model.AccountingConfig, log logrus.FieldLogger) *Calculator {
	c := &Calculator{
		Workdays:     cfg.Workdays,
		HoursPerDay:  cfg.HoursPerDay,
		FallbackRate: cfg.FallbackBaseRate,
		log:          log,
	}
	if c.Workdays == 0 {
		c.Workdays = DefaultWorkdays
	}
	if c.HoursPerDay == 0 {
		c.HoursPerDay = DefaultHoursPerDay
	}
	if c.FallbackRate == 0 {
		c.FallbackRate = DefaultFallbackRate
	}
	return c
}

// Compute derives the monetary value for baseRate and totalHours.
// A non-positive baseRate is replaced with the fallback rate. A
// non-positive division base yields a zero final value instead of a
// division error. Any panic during computation degrades to an all-zero
// breakdown: a visibly zero report beats a crashed report generator.
func (c *Calculator) Compute(baseRate, totalHours float64) (b Breakdown) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("value computation failed, returning zeros")
			b = Breakdown{}
		}
	}()

	if baseRate <= 0 {
		c.log.WithField("base_rate", baseRate).
			Warnf("base rate not set, falling back to %v", c.FallbackRate)
		baseRate = c.FallbackRate
	}
	if totalHours < 0 {
		totalHours = 0
	}

	b = Breakdown{
		BaseValue:  baseRate,
		TotalHours: totalHours,
		BaseDays:   c.Workdays,
		DailyHours: c.HoursPerDay,
	}

	b.DivisionBase = float64(c.Workdays) * c.HoursPerDay
	b.TotalValue = baseRate * totalHours
	if b.DivisionBase > 0 {
		b.FinalValue = b.TotalValue / b.DivisionBase
	}

	return b
}
