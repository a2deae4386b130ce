package gamification

import (
	"testing"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/entity"
)

func intPtr(v int) *int { return &v }

func TestJobXP(t *testing.T) {
	tests := []struct {
		name     string
		in       JobOutcome
		wantBase int
		want     int
	}{
		{"small no bonus", JobOutcome{TotalCost: 900}, 50, 50},
		{"medium", JobOutcome{TotalCost: 2500}, 150, 150},
		{"boundary 5000 is medium", JobOutcome{TotalCost: 5000}, 150, 150},
		{"large on time", JobOutcome{TotalCost: 7000, CompletedOnTime: true}, 300, 350},
		{
			"huge everything",
			JobOutcome{TotalCost: 12000, Rating: intPtr(5), CompletedOnTime: true, BudgetUsed: 70, BudgetTotal: 100, Incidents: intPtr(0)},
			500, 500 + 100 + 50 + 150 + 25,
		},
		{"under budget", JobOutcome{TotalCost: 100, BudgetUsed: 90, BudgetTotal: 100}, 50, 125},
		{"over budget", JobOutcome{TotalCost: 100, BudgetUsed: 99, BudgetTotal: 100, Rating: intPtr(4), Incidents: intPtr(2)}, 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JobXP(tt.in)
			if got.BaseXP != tt.wantBase || got.TotalXP != tt.want {
				t.Errorf("JobXP = base %d total %d, want %d/%d (%+v)", got.BaseXP, got.TotalXP, tt.wantBase, tt.want, got.Bonuses)
			}
		})
	}
}

func TestEmployeeXP(t *testing.T) {
	tests := []struct {
		role constants.EmployeeRole
		want int
	}{
		{constants.RoleForeman, 120},
		{constants.RoleSpecialist, 115},
		{constants.RoleOperator, 110},
		{constants.RoleScout, 105},
		{constants.RoleLaborer, 100},
		{"", 100},
	}
	for _, tt := range tests {
		if got := EmployeeXP(167, tt.role); got != tt.want {
			t.Errorf("EmployeeXP(167, %q) = %d, want %d", tt.role, got, tt.want)
		}
	}
}

func TestRankTitle(t *testing.T) {
	for level, want := range map[int]string{
		1: "Novice Contractor", 10: "Apprentice Paver", 25: "Journeyman Contractor",
		60: "Master Craftsman", 99: "Elite Operator", 100: "Dynasty Master",
	} {
		if got := RankTitle(level); got != want {
			t.Errorf("RankTitle(%d) = %q, want %q", level, got, want)
		}
	}
}

func TestLeaderboard(t *testing.T) {
	board := Leaderboard(map[string]entity.XPSnapshot{
		"c": {Level: 2, XP: 10},
		"a": {Level: 3, XP: 5},
		"b": {Level: 2, XP: 10},
		"d": {Level: 1, XP: 90},
	}, 3)
	if len(board) != 3 {
		t.Fatalf("len = %d, want 3", len(board))
	}
	wantOrder := []string{"a", "b", "c"}
	for i, id := range wantOrder {
		if board[i].EmployeeID != id || board[i].Rank != i+1 {
			t.Errorf("row %d = %+v, want %s", i, board[i], id)
		}
	}
}
