// Package reports builds period sales/purchase reports and the dashboard.
package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/vsbilling/vsbilling/internal/billing"
	"github.com/vsbilling/vsbilling/internal/shared"
)

// Period names a reporting window ending today.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Periods lists every supported period in dashboard order.
var Periods = []Period{PeriodToday, PeriodWeek, PeriodMonth, PeriodYear}

// ParsePeriod validates a period name.
func ParsePeriod(raw string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", shared.NewValidationError(map[string]string{
		"period": fmt.Sprintf("unknown period %q, want today, week, month or year", raw),
	})
}

// DateRange is an inclusive pair of calendar dates in billing.DateLayout.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Resolve computes the inclusive window for p as seen from now in loc.
// The week window starts seven days back, so it spans eight calendar dates.
func Resolve(p Period, now time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	end := now.Format(billing.DateLayout)

	var start time.Time
	switch p {
	case PeriodWeek:
		start = now.AddDate(0, 0, -7)
	case PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		start = now
	}
	return DateRange{Start: start.Format(billing.DateLayout), End: end}
}
