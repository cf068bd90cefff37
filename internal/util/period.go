package util

import "time"

// PreviousPeriod returns the year and month preceding the given year/month
func PreviousPeriod(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// PeriodBoundaries returns the first and last day of a month
func PeriodBoundaries(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// IsHistoricalPeriod returns true if the given year/month is before the current month
func IsHistoricalPeriod(year, month int) bool {
	now := time.Now()
	currentYear := now.Year()
	currentMonth := int(now.Month())

	if year < currentYear {
		return true
	}
	if year == currentYear && month < currentMonth {
		return true
	}
	return false
}
