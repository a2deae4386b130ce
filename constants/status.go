package constants

// ClockAction is the action field of a timesheet request.
type ClockAction string

const (
	ClockIn  ClockAction = "clock_in"
	ClockOut ClockAction = "clock_out"
)

// WorkRecommendation is the outcome of a weather suitability check.
// Stable values (returned verbatim over the API).
const (
	RecommendProceed WorkRecommendation = "PROCEED"
	RecommendCaution WorkRecommendation = "CAUTION"
	RecommendDelay   WorkRecommendation = "DELAY"
)

type WorkRecommendation string

// Severity orders recommendations so checks can only ever worsen a result.
func (r WorkRecommendation) Severity() int {
	switch r {
	case RecommendDelay:
		return 2
	case RecommendCaution:
		return 1
	default:
		return 0
	}
}

type EmployeeRole string

const (
	RoleForeman    EmployeeRole = "FOREMAN"
	RoleSpecialist EmployeeRole = "SPECIALIST"
	RoleOperator   EmployeeRole = "OPERATOR"
	RoleScout      EmployeeRole = "SCOUT"
	RoleLaborer    EmployeeRole = "LABORER"
)

const (
	DefaultCurrency   = "USD"
	EstimateValidDays = 30
)

var allRoles = []EmployeeRole{RoleForeman, RoleSpecialist, RoleOperator, RoleScout, RoleLaborer}

func ValidRole(r EmployeeRole) bool {
	for _, v := range allRoles {
		if v == r {
			return true
		}
	}
	return false
}
