package entity

import "time"

// XPSnapshot is an employee's gamification state. Level is always derived from
// cumulative XP; XP holds the remainder toward the next level.
type XPSnapshot struct {
	XP             int        `json:"xp"`
	Level          int        `json:"level"`
	TotalXP        int        `json:"total_xp"`
	StreakDays     int        `json:"streak_days"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}
