// Package accounting implements the time and value accounting engine:
// normalizing heterogeneous elapsed-time representations, grouping
// duplicate activity rows, and deriving monetary value from accumulated
// hours.
package accounting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RawRecord is one ungrouped activity row as read from the store or an
// external export. The elapsed time arrives either as Clock (a
// colon-delimited "H:MM:SS" string or a bare numeric count of seconds)
// or as Duration when the caller already has a structured value.
// Clock takes precedence when both are set.
type RawRecord struct {
	Description  string
	ActivityType string
	Clock        string
	Duration     time.Duration
	StartTime    *time.Time
	UpdatedAt    time.Time
}

// GroupedRecord is the sum of all raw records sharing the same
// (description, activity type) pair.
type GroupedRecord struct {
	Description  string
	ActivityType string

	// Seconds is the combined elapsed time of the group.
	Seconds int64

	// DecimalHours is Seconds/3600 rendered with four decimal places
	// and a comma separator, e.g. "1,5000". The comma is a regional
	// formatting contract with the downstream spreadsheet and reports.
	DecimalHours string

	// StartTime is the earliest start among the group, for display only.
	StartTime *time.Time

	// UpdatedAt is the most recent update among the group, for display only.
	UpdatedAt time.Time
}

// ParseClock converts a raw time representation into seconds. Accepted
// forms are "H:MM:SS" (hours may exceed two digits) and a bare numeric
// string interpreted as seconds.
func ParseClock(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty time value")
	}

	if !strings.Contains(raw, ":") {
		secs, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %q as seconds: %w", raw, err)
		}
		if secs < 0 {
			return 0, fmt.Errorf("negative time value %q", raw)
		}
		return int64(secs), nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("expected H:MM:SS, got %q", raw)
	}

	var fields [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing field %d of %q: %w", i, raw, err)
		}
		if n < 0 {
			return 0, fmt.Errorf("negative field in %q", raw)
		}
		fields[i] = n
	}

	return fields[0]*3600 + fields[1]*60 + fields[2], nil
}

// Accumulator normalizes and sums elapsed time across raw activity
// records. Conversion failures are isolated per record: a malformed
// value is logged and counted as zero so one bad row can never abort a
// whole accounting pass.
type Accumulator struct {
	log logrus.FieldLogger
}

// NewAccumulator creates an Accumulator that reports conversion
// problems through log.
func NewAccumulator(log logrus.FieldLogger) *Accumulator {
	return &Accumulator{log: log}
}

// seconds resolves a record's elapsed time to seconds, fail-soft.
func (ac *Accumulator) seconds(rec RawRecord) int64 {
	if rec.Clock != "" {
		secs, err := ParseClock(rec.Clock)
		if err != nil {
			ac.log.WithFields(logrus.Fields{
				"description": rec.Description,
				"value":       rec.Clock,
			}).Warnf("unparseable time value, counting as zero: %v", err)
			return 0
		}
		return secs
	}
	if rec.Duration < 0 {
		ac.log.WithField("description", rec.Description).
			Warn("negative duration, counting as zero")
		return 0
	}
	return int64(rec.Duration.Seconds())
}

// Accumulate groups records by exact (description, activity type) match
// and sums their elapsed seconds. Group order follows first appearance
// in the input. The earliest start and latest update within each group
// are retained for display; they do not affect the sum.
func (ac *Accumulator) Accumulate(records []RawRecord) []GroupedRecord {
	type groupKey struct {
		description  string
		activityType string
	}

	index := make(map[groupKey]int)
	var groups []GroupedRecord

	for _, rec := range records {
		key := groupKey{rec.Description, rec.ActivityType}
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, GroupedRecord{
				Description:  rec.Description,
				ActivityType: rec.ActivityType,
				StartTime:    rec.StartTime,
				UpdatedAt:    rec.UpdatedAt,
			})
		}

		g := &groups[i]
		g.Seconds += ac.seconds(rec)

		if rec.StartTime != nil {
			if g.StartTime == nil || rec.StartTime.Before(*g.StartTime) {
				g.StartTime = rec.StartTime
			}
		}
		if rec.UpdatedAt.After(g.UpdatedAt) {
			g.UpdatedAt = rec.UpdatedAt
		}
	}

	for i := range groups {
		groups[i].DecimalHours = FormatDecimalHours(groups[i].Seconds)
	}

	return groups
}

// DecimalHours converts a second count to decimal hours.
func DecimalHours(seconds int64) float64 {
	return float64(seconds) / 3600
}
