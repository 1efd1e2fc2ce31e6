package accounting

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "plain clock", raw: "02:15:30", want: 8130},
		{name: "hours past two digits", raw: "120:00:05", want: 432005},
		{name: "zero", raw: "00:00:00", want: 0},
		{name: "bare seconds", raw: "90", want: 90},
		{name: "fractional seconds truncate", raw: "90.7", want: 90},
		{name: "whitespace tolerated", raw: " 01:02:03 ", want: 3723},
		{name: "malformed word", raw: "bad", wantErr: true},
		{name: "too few fields", raw: "02:15", wantErr: true},
		{name: "too many fields", raw: "1:2:3:4", wantErr: true},
		{name: "non-numeric field", raw: "01:xx:00", wantErr: true},
		{name: "negative seconds", raw: "-5", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseClockIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		got, err := ParseClock("02:15:30")
		require.NoError(t, err)
		require.Equal(t, int64(8130), got)
	}
}

func TestAccumulateGroupsByDescriptionAndType(t *testing.T) {
	ac := NewAccumulator(testLogger())

	groups := ac.Accumulate([]RawRecord{
		{Description: "review", ActivityType: "code", Clock: "01:00:00"},
		{Description: "review", ActivityType: "code", Clock: "00:30:00"},
	})

	require.Len(t, groups, 1)
	assert.Equal(t, int64(5400), groups[0].Seconds)
	assert.Equal(t, "1,5000", groups[0].DecimalHours)
}

func TestAccumulateKeepsDistinctTypesApart(t *testing.T) {
	ac := NewAccumulator(testLogger())

	groups := ac.Accumulate([]RawRecord{
		{Description: "review", ActivityType: "code", Clock: "01:00:00"},
		{Description: "review", ActivityType: "docs", Clock: "00:15:00"},
		{Description: "Review", ActivityType: "code", Clock: "00:10:00"}, // case-sensitive
	})

	require.Len(t, groups, 3)
	assert.Equal(t, int64(3600), groups[0].Seconds)
	assert.Equal(t, int64(900), groups[1].Seconds)
	assert.Equal(t, int64(600), groups[2].Seconds)
}

func TestAccumulateFailSoft(t *testing.T) {
	ac := NewAccumulator(testLogger())

	// Malformed rows count as zero and never abort the pass.
	groups := ac.Accumulate([]RawRecord{
		{Description: "review", ActivityType: "code", Clock: "bad"},
		{Description: "review", ActivityType: "code", Clock: "00:45:00"},
		{Description: "review", ActivityType: "code", Clock: "1:2"},
	})

	require.Len(t, groups, 1)
	assert.Equal(t, int64(2700), groups[0].Seconds)
	assert.Equal(t, "0,7500", groups[0].DecimalHours)
}

func TestAccumulateStructuredDuration(t *testing.T) {
	ac := NewAccumulator(testLogger())

	groups := ac.Accumulate([]RawRecord{
		{Description: "deploy", ActivityType: "ops", Duration: 45 * time.Minute},
		{Description: "deploy", ActivityType: "ops", Clock: "900"},
	})

	require.Len(t, groups, 1)
	assert.Equal(t, int64(3600), groups[0].Seconds)
	assert.Equal(t, "1,0000", groups[0].DecimalHours)
}

func TestAccumulateDisplayTimes(t *testing.T) {
	ac := NewAccumulator(testLogger())

	early := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	groups := ac.Accumulate([]RawRecord{
		{Description: "review", ActivityType: "code", Clock: "60", StartTime: &late, UpdatedAt: late},
		{Description: "review", ActivityType: "code", Clock: "60", StartTime: &early, UpdatedAt: early},
	})

	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].StartTime)
	assert.Equal(t, early, *groups[0].StartTime)
	assert.Equal(t, late, groups[0].UpdatedAt)
	// Display metadata never changes the sum.
	assert.Equal(t, int64(120), groups[0].Seconds)
}
