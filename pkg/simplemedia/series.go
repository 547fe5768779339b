package simplemedia

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultDashboardDays is the trailing window used when none, or an
	// unusable one, is requested.
	DefaultDashboardDays = 10

	// MaxDashboardDays caps every window.
	MaxDashboardDays = 366

	dayKeyLayout   = "2006-01-02"
	dayLabelLayout = "Jan 2"
)

// NormalizeDays maps a non-positive window to the default and caps it at
// MaxDashboardDays.
func NormalizeDays(days int) int {
	if days <= 0 {
		return DefaultDashboardDays
	}
	if days > MaxDashboardDays {
		return MaxDashboardDays
	}
	return days
}

// ParseDays reads a window size from a query parameter or flag value.
// Empty, non-numeric, NaN and infinite inputs yield the default, fractions
// are floored and the result is capped at MaxDashboardDays.
func ParseDays(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultDashboardDays
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultDashboardDays
	}
	f = math.Floor(f)
	if f < 1 {
		return DefaultDashboardDays
	}
	if f > MaxDashboardDays {
		return MaxDashboardDays
	}
	return int(f)
}

// windowStart returns local midnight of the oldest day in a window of days
// ending today.
func windowStart(now time.Time, loc *time.Location, days int) time.Time {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return today.AddDate(0, 0, -(days - 1))
}

// dayWindow lists the calendar days of the window, oldest first
func dayWindow(start time.Time, days int) []time.Time {
	out := make([]time.Time, days)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func dayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// dayLabels renders the short labels for a window
func dayLabels(window []time.Time) []string {
	labels := make([]string, len(window))
	for i, day := range window {
		labels[i] = day.Format(dayLabelLayout)
	}
	return labels
}

// densify expands sparse per-day rows into one value per window day,
// zero filling the gaps. Rows outside the window are ignored.
func densify(window []time.Time, rows []DayCount) []int64 {
	byDay := make(map[string]int64, len(rows))
	for _, row := range rows {
		byDay[dayKey(row.Day)] += row.Count
	}

	series := make([]int64, len(window))
	for i, day := range window {
		series[i] = byDay[dayKey(day)]
	}
	return series
}
