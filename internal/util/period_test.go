package util

import (
	"testing"
	"time"
)

func TestPreviousPeriod(t *testing.T) {
	year, month := PreviousPeriod(2024, 3)
	if year != 2024 || month != 2 {
		t.Errorf("expected 2024-2, got %d-%d", year, month)
	}

	year, month = PreviousPeriod(2024, 1)
	if year != 2023 || month != 12 {
		t.Errorf("expected 2023-12, got %d-%d", year, month)
	}
}

func TestPeriodBoundaries(t *testing.T) {
	start, end := PeriodBoundaries(2024, 2)
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", start)
	}
	// 2024 is a leap year
	if !end.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %v", end)
	}

	_, end = PeriodBoundaries(2023, 2)
	if end.Day() != 28 {
		t.Errorf("expected Feb 2023 to end on the 28th, got %d", end.Day())
	}
}
