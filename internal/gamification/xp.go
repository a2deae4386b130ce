// Package gamification holds the XP curve, job rewards and feature flags of the
// game overlay.
package gamification

import (
	"math"
	"time"

	"github.com/joseph-ayodele/fieldops/internal/entity"
)

// XPNeededForLevel is the XP that must be accumulated at level to advance.
func XPNeededForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	d := level - 1
	return 100 + d*d*50
}

// NewSnapshot is the starting state of every employee.
func NewSnapshot() entity.XPSnapshot {
	return entity.XPSnapshot{Level: 1}
}

// AddXP applies amount to s, rolling over as many levels as it covers.
// Non-positive amounts return s unchanged.
func AddXP(s entity.XPSnapshot, amount int) entity.XPSnapshot {
	if s.Level < 1 {
		s.Level = 1
	}
	if amount <= 0 {
		return s
	}
	s.XP += amount
	s.TotalXP += amount
	for s.XP >= XPNeededForLevel(s.Level) {
		s.XP -= XPNeededForLevel(s.Level)
		s.Level++
	}
	return s
}

// Progress is the percentage of the current level completed, in [0, 100).
func Progress(s entity.XPSnapshot) float64 {
	return float64(s.XP) / float64(XPNeededForLevel(s.Level)) * 100
}

// RecordActivity updates the daily streak for activity at now. Days are
// compared as calendar dates in now's location.
func RecordActivity(s entity.XPSnapshot, now time.Time) entity.XPSnapshot {
	today := truncateDay(now)
	switch {
	case s.LastActivityAt == nil:
		s.StreakDays = 1
	default:
		last := truncateDay(s.LastActivityAt.In(now.Location()))
		switch days := int(math.Round(today.Sub(last).Hours() / 24)); {
		case days <= 0:
			if s.StreakDays == 0 {
				s.StreakDays = 1
			}
		case days == 1:
			s.StreakDays++
		default:
			s.StreakDays = 1
		}
	}
	s.LastActivityAt = &now
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
