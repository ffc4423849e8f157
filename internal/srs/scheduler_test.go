package srs

import (
	"testing"
	"time"

	"vize-study-service/internal/domain"
)

var now = time.Date(2024, 11, 22, 10, 30, 0, 0, time.UTC)

func TestUpdateCorrectAdvancesLevelAndInterval(t *testing.T) {
	item := Update(1, true, now)
	if item.Level != 2 {
		t.Fatalf("expected level 2, got %d", item.Level)
	}
	wantDue := now.AddDate(0, 0, 7).Format(time.RFC3339)
	if item.DueDate != wantDue {
		t.Fatalf("expected due %s, got %s", wantDue, item.DueDate)
	}
	if item.LastReviewed != now.Format(time.RFC3339) {
		t.Fatalf("expected lastReviewed now, got %s", item.LastReviewed)
	}
}

func TestUpdateFirstReviewDefaultsToLevelOne(t *testing.T) {
	// A question with no prior review item has level 0 for the caller.
	item := Update(0, true, now)
	if item.Level != 2 {
		t.Fatalf("expected level 2 after first correct, got %d", item.Level)
	}
	if item = Update(0, false, now); item.Level != 1 {
		t.Fatalf("expected level floor 1 after first incorrect, got %d", item.Level)
	}
}

func TestUpdateIncorrectResetsToOneDay(t *testing.T) {
	for _, level := range []int{1, 2, 5, 40} {
		item := Update(level, false, now)
		wantLevel := level - 1
		if wantLevel < 1 {
			wantLevel = 1
		}
		if item.Level != wantLevel {
			t.Fatalf("level %d: expected drop to %d, got %d", level, wantLevel, item.Level)
		}
		wantDue := now.AddDate(0, 0, 1).Format(time.RFC3339)
		if item.DueDate != wantDue {
			t.Fatalf("level %d: expected due tomorrow, got %s", level, item.DueDate)
		}
	}
}

func TestUpdateIntervalCapsAtLongestSpacing(t *testing.T) {
	item := Update(50, true, now)
	if item.Level != 51 {
		t.Fatalf("expected level to keep climbing, got %d", item.Level)
	}
	wantDue := now.AddDate(0, 0, 240).Format(time.RFC3339)
	if item.DueDate != wantDue {
		t.Fatalf("expected spacing capped at 240 days, got %s", item.DueDate)
	}
}

func TestIntervalTableIsNonDecreasing(t *testing.T) {
	for i := 1; i < len(intervals); i++ {
		if intervals[i] < intervals[i-1] {
			t.Fatalf("interval table decreases at %d: %v", i, intervals)
		}
	}
}

func TestUpdateCorrectNeverSchedulesInThePast(t *testing.T) {
	for level := 1; level < 20; level++ {
		item := Update(level, true, now)
		due, err := time.Parse(time.RFC3339, item.DueDate)
		if err != nil {
			t.Fatalf("parse due: %v", err)
		}
		if due.Before(now) {
			t.Fatalf("level %d: due %s before now", level, item.DueDate)
		}
	}
}

func TestIsDueComparesCalendarDays(t *testing.T) {
	today := time.Date(2024, 11, 22, 0, 1, 0, 0, time.UTC)
	item := domain.ReviewItem{
		Level:        1,
		DueDate:      time.Date(2024, 11, 22, 23, 59, 0, 0, time.UTC).Format(time.RFC3339),
		LastReviewed: now.Format(time.RFC3339),
	}
	if !IsDue(item, today) {
		t.Fatalf("item due later today should count as due")
	}

	item.DueDate = time.Date(2024, 11, 23, 0, 0, 1, 0, time.UTC).Format(time.RFC3339)
	if IsDue(item, today) {
		t.Fatalf("item due tomorrow should not count as due")
	}

	item.DueDate = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
	if !IsDue(item, today) {
		t.Fatalf("overdue item should count as due")
	}
}
