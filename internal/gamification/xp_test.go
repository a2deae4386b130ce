package gamification

import (
	"testing"
	"time"

	"github.com/joseph-ayodele/fieldops/internal/entity"
)

func TestXPNeededForLevel(t *testing.T) {
	for level, want := range map[int]int{1: 100, 2: 150, 3: 300, 5: 900, 0: 100} {
		if got := XPNeededForLevel(level); got != want {
			t.Errorf("XPNeededForLevel(%d) = %d, want %d", level, got, want)
		}
	}
}

func TestAddXPSingleAndSplitAgree(t *testing.T) {
	once := AddXP(NewSnapshot(), 250)
	split := AddXP(AddXP(NewSnapshot(), 100), 150)
	if once != split {
		t.Errorf("AddXP(250) = %+v, AddXP(100)+AddXP(150) = %+v", once, split)
	}
	if once.Level != 3 || once.XP != 0 || once.TotalXP != 250 {
		t.Errorf("AddXP(250) = %+v, want level 3 xp 0", once)
	}
}

func TestAddXPMultipleLevelsAndInvariant(t *testing.T) {
	s := AddXP(NewSnapshot(), 100+150+300+10)
	if s.Level != 4 || s.XP != 10 {
		t.Fatalf("got %+v, want level 4 xp 10", s)
	}
	for _, amt := range []int{1, 37, 999, 5000, 12} {
		s = AddXP(s, amt)
		if s.XP < 0 || s.XP >= XPNeededForLevel(s.Level) {
			t.Fatalf("invariant broken after +%d: %+v", amt, s)
		}
	}
}

func TestAddXPIgnoresNonPositive(t *testing.T) {
	s := AddXP(NewSnapshot(), 40)
	if got := AddXP(s, -30); got != s {
		t.Errorf("negative amount changed snapshot: %+v", got)
	}
	if got := AddXP(s, 0); got != s {
		t.Errorf("zero amount changed snapshot: %+v", got)
	}
}

func TestProgress(t *testing.T) {
	s := AddXP(NewSnapshot(), 175) // level 2, 75 of 150
	if got := Progress(s); got != 50 {
		t.Errorf("Progress = %v, want 50", got)
	}
}

func TestRecordActivityStreak(t *testing.T) {
	loc := time.UTC
	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, loc) }

	s := RecordActivity(entity.XPSnapshot{Level: 1}, day(1, 9))
	if s.StreakDays != 1 {
		t.Fatalf("first activity streak = %d", s.StreakDays)
	}
	s = RecordActivity(s, day(1, 17))
	if s.StreakDays != 1 {
		t.Errorf("same day streak = %d, want 1", s.StreakDays)
	}
	s = RecordActivity(s, day(2, 6))
	if s.StreakDays != 2 {
		t.Errorf("next day streak = %d, want 2", s.StreakDays)
	}
	s = RecordActivity(s, day(3, 23))
	if s.StreakDays != 3 {
		t.Errorf("third day streak = %d, want 3", s.StreakDays)
	}
	s = RecordActivity(s, day(6, 8))
	if s.StreakDays != 1 {
		t.Errorf("after gap streak = %d, want 1", s.StreakDays)
	}
	if !s.LastActivityAt.Equal(day(6, 8)) {
		t.Errorf("LastActivityAt = %v", s.LastActivityAt)
	}
}
