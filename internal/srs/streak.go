package srs

import (
	"time"

	"vize-study-service/internal/domain"
)

// UpdateStreak advances the streak for a completed study session on the given
// day. Studying on consecutive days increments the count; a second session on
// the same day leaves it unchanged; any gap resets it to 1. Must be invoked
// once per completed session, not per answer.
func UpdateStreak(previous domain.Streak, today time.Time) domain.Streak {
	todayStr := today.UTC().Format(dayLayout)
	yesterdayStr := today.UTC().AddDate(0, 0, -1).Format(dayLayout)

	count := previous.Count
	switch previous.LastStudiedDate {
	case yesterdayStr:
		count++
	case todayStr:
		// already counted today
	default:
		count = 1
	}

	return domain.Streak{Count: count, LastStudiedDate: todayStr}
}
