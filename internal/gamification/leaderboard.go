package gamification

import (
	"cmp"
	"slices"

	"github.com/joseph-ayodele/fieldops/internal/entity"
)

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	EmployeeID string `json:"employeeId"`
	Level      int    `json:"level"`
	XP         int    `json:"xp"`
	TotalXP    int    `json:"totalXp"`
	Title      string `json:"title"`
	Rank       int    `json:"rank"`
}

// Leaderboard orders snapshots by cumulative XP, ties broken by employee id,
// and keeps the first limit rows (all when limit <= 0).
func Leaderboard(snapshots map[string]entity.XPSnapshot, limit int) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(snapshots))
	for id, s := range snapshots {
		out = append(out, LeaderboardEntry{
			EmployeeID: id,
			Level:      s.Level,
			XP:         s.XP,
			TotalXP:    s.TotalXP,
			Title:      RankTitle(s.Level),
		})
	}
	slices.SortFunc(out, func(a, b LeaderboardEntry) int {
		if c := cmp.Compare(b.Level, a.Level); c != 0 {
			return c
		}
		if c := cmp.Compare(b.XP, a.XP); c != 0 {
			return c
		}
		return cmp.Compare(a.EmployeeID, b.EmployeeID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
