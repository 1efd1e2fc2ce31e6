package accounting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDecimalHours(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0,0000"},
		{3600, "1,0000"},
		{5400, "1,5000"},
		{8130, "2,2583"},
		{37, "0,0103"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDecimalHours(tt.seconds))
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{2*time.Hour + 15*time.Minute + 30*time.Second, "02:15:30"},
		{125 * time.Hour, "125:00:00"},
		{-time.Minute, "00:00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatClock(tt.d))
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "R$ 0,00"},
		{1234.56, "R$ 1.234,56"},
		{50, "R$ 50,00"},
		{1000000, "R$ 1.000.000,00"},
		{999.999, "R$ 1.000,00"},
		{-42.5, "R$ -42,50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.v))
	}
}
