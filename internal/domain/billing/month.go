package billing

import (
	"time"

	"github.com/wastebill/backend/internal/domain/shared"
)

// MonthLayout is the wire format for billing months
const MonthLayout = "2006-01"

// ParseMonth parses a YYYY-MM string into the first day of that month in UTC
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, shared.ErrInvalidMonth
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// NormalizeMonth truncates a timestamp to the first day of its month in UTC
func NormalizeMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FormatMonth renders a billing month as YYYY-MM
func FormatMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

// PreviousMonth returns the first day of the month before t
func PreviousMonth(t time.Time) time.Time {
	return NormalizeMonth(t).AddDate(0, -1, 0)
}
