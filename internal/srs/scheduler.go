// Package srs implements the spaced-repetition scheduler and the daily study
// streak. Both are pure functions over the caller-supplied clock; day
// boundaries use UTC calendar days.
package srs

import (
	"time"

	"vize-study-service/internal/domain"
)

// intervals holds the review spacing in days, indexed by level. Growth is a
// fixed Leitner-style table rather than a multiplicative ease factor; the cap
// at 240 days holds no matter how high the level climbs.
var intervals = [...]int{1, 3, 7, 14, 30, 60, 120, 240}

const dayLayout = "2006-01-02"

// Update applies one answer outcome to a review item. A correct answer moves
// the item up a level and out to the next interval; an incorrect answer drops
// it a level (never below 1) and resets the interval to a single day.
// currentLevel below 1 is treated as a first review at level 1.
func Update(currentLevel int, isCorrect bool, now time.Time) domain.ReviewItem {
	if currentLevel < 1 {
		currentLevel = 1
	}

	var level, days int
	if isCorrect {
		level = currentLevel + 1
		idx := level
		if idx > len(intervals)-1 {
			idx = len(intervals) - 1
		}
		days = intervals[idx]
	} else {
		level = currentLevel - 1
		if level < 1 {
			level = 1
		}
		days = 1
	}

	return domain.ReviewItem{
		Level:        level,
		DueDate:      now.AddDate(0, 0, days).UTC().Format(time.RFC3339),
		LastReviewed: now.UTC().Format(time.RFC3339),
	}
}

// IsDue reports whether an item is due on the given day. The comparison is at
// day granularity: an item due any time today counts as due now.
func IsDue(item domain.ReviewItem, today time.Time) bool {
	due, err := time.Parse(time.RFC3339, item.DueDate)
	if err != nil {
		// Unreadable due dates count as due rather than silently dropping
		// the question from review.
		return true
	}
	return due.UTC().Format(dayLayout) <= today.UTC().Format(dayLayout)
}
