package accounting

import (
	"fmt"
	"strings"
	"time"
)

// FormatDecimalHours renders a second count as decimal hours with four
// decimal places and a comma separator: 5400 seconds → "1,5000".
func FormatDecimalHours(seconds int64) string {
	s := fmt.Sprintf("%.4f", DecimalHours(seconds))
	return strings.Replace(s, ".", ",", 1)
}

// FormatClock renders a duration as "HH:MM:SS". Hours grow past two
// digits rather than wrapping.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatCurrency renders a monetary value in the fixed regional format
// "R$ 1.234,56": dot for thousands, comma for decimals. Downstream
// documents depend on this exact shape.
func FormatCurrency(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	intPart := s[:len(s)-3]
	decPart := s[len(s)-2:]

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sign, sb.String(), decPart)
}
