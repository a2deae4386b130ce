package gamification

import "github.com/joseph-ayodele/fieldops/constants"

// Job-size base rewards, keyed by the job's total price.
const (
	XPJobSmall  = 50
	XPJobMedium = 150
	XPJobLarge  = 300
	XPJobHuge   = 500

	XPFiveStar       = 100
	XPOnTime         = 50
	XPUnderBudget    = 75
	XPWayUnderBudget = 150
	XPZeroIncidents  = 25

	EmployeeSharePercent = 60
	defaultMultiplier    = 100
)

// JobOutcome describes a completed job for reward purposes.
type JobOutcome struct {
	TotalCost       float64 `json:"totalCost"`
	Rating          *int    `json:"rating,omitempty"`
	CompletedOnTime bool    `json:"completedOnTime"`
	BudgetUsed      float64 `json:"budgetUsed"`
	BudgetTotal     float64 `json:"budgetTotal"`
	Incidents       *int    `json:"incidents,omitempty"`
}

// Bonus is one line of extra XP on a job award.
type Bonus struct {
	Source string `json:"source"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// JobAward is the XP granted for a job.
type JobAward struct {
	BaseXP  int     `json:"baseXP"`
	Bonuses []Bonus `json:"bonuses"`
	TotalXP int     `json:"totalXP"`
}

// JobXP prices a completed job in XP.
func JobXP(j JobOutcome) JobAward {
	base := XPJobSmall
	switch {
	case j.TotalCost > 10000:
		base = XPJobHuge
	case j.TotalCost > 5000:
		base = XPJobLarge
	case j.TotalCost > 2000:
		base = XPJobMedium
	}

	award := JobAward{BaseXP: base, Bonuses: []Bonus{}}
	if j.Rating != nil && *j.Rating == 5 {
		award.Bonuses = append(award.Bonuses, Bonus{Source: "QUALITY", Amount: XPFiveStar, Reason: "Perfect 5-star rating"})
	}
	if j.CompletedOnTime {
		award.Bonuses = append(award.Bonuses, Bonus{Source: "TIME", Amount: XPOnTime, Reason: "Completed on time"})
	}
	if j.BudgetUsed > 0 && j.BudgetTotal > 0 {
		switch pct := j.BudgetUsed / j.BudgetTotal * 100; {
		case pct < 80:
			award.Bonuses = append(award.Bonuses, Bonus{Source: "BUDGET", Amount: XPWayUnderBudget, Reason: "Way under budget"})
		case pct < 95:
			award.Bonuses = append(award.Bonuses, Bonus{Source: "BUDGET", Amount: XPUnderBudget, Reason: "Under budget"})
		}
	}
	if j.Incidents != nil && *j.Incidents == 0 {
		award.Bonuses = append(award.Bonuses, Bonus{Source: "SAFETY", Amount: XPZeroIncidents, Reason: "Zero safety incidents"})
	}

	award.TotalXP = base
	for _, b := range award.Bonuses {
		award.TotalXP += b.Amount
	}
	return award
}

// Role multipliers in percent, kept integral so 100 XP at 115 % is exactly 115.
var roleMultipliers = map[constants.EmployeeRole]int{
	constants.RoleForeman:    120,
	constants.RoleSpecialist: 115,
	constants.RoleOperator:   110,
	constants.RoleScout:      105,
	constants.RoleLaborer:    100,
}

// EmployeeXP is a crew member's share of jobXP, scaled by role.
func EmployeeXP(jobXP int, role constants.EmployeeRole) int {
	if jobXP <= 0 {
		return 0
	}
	base := jobXP * EmployeeSharePercent / 100
	mult, ok := roleMultipliers[role]
	if !ok {
		mult = defaultMultiplier
	}
	return base * mult / 100
}

// RankTitle names a level band.
func RankTitle(level int) string {
	switch {
	case level < 10:
		return "Novice Contractor"
	case level < 25:
		return "Apprentice Paver"
	case level < 50:
		return "Journeyman Contractor"
	case level < 75:
		return "Master Craftsman"
	case level < 100:
		return "Elite Operator"
	default:
		return "Dynasty Master"
	}
}
