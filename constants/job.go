package constants

import (
	"strings"
)

type JobType string

const (
	JobTypeSealcoating     JobType = "SEALCOATING"
	JobTypeCrackRepair     JobType = "CRACK_REPAIR"
	JobTypeAsphaltPatching JobType = "ASPHALT_PATCHING"
	JobTypeLineStriping    JobType = "LINE_STRIPING"
	JobTypeCombination     JobType = "COMBINATION"
)

var allJobTypes = []JobType{
	JobTypeSealcoating,
	JobTypeCrackRepair,
	JobTypeAsphaltPatching,
	JobTypeLineStriping,
	JobTypeCombination,
}

func JobTypesAsStrings() []string {
	result := make([]string, len(allJobTypes))
	for i, jt := range allJobTypes {
		result[i] = string(jt)
	}
	return result
}

// CanonicalizeJobType maps loose user input ("crack repair", "striping") onto a JobType.
func CanonicalizeJobType(input string) (JobType, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]JobType{
		"SEALCOAT":   JobTypeSealcoating,
		"SEAL":       JobTypeSealcoating,
		"CRACK":      JobTypeCrackRepair,
		"CRACK_FILL": JobTypeCrackRepair,
		"PATCHING":   JobTypeAsphaltPatching,
		"PATCH":      JobTypeAsphaltPatching,
		"STRIPING":   JobTypeLineStriping,
		"COMBO":      JobTypeCombination,
	}
	if jt, ok := synonyms[normalized]; ok {
		return jt, true
	}
	for _, jt := range allJobTypes {
		if string(jt) == normalized {
			return jt, true
		}
	}
	return "", false
}

type CrackSeverity string

const (
	CrackSeverityLight  CrackSeverity = "LIGHT"
	CrackSeverityMedium CrackSeverity = "MEDIUM"
	CrackSeverityHeavy  CrackSeverity = "HEAVY"
)

// DefaultCrackSeverity is assumed when an estimate request leaves severity empty.
const DefaultCrackSeverity = CrackSeverityMedium

// PatchType selects the patching material.
type PatchType string

const (
	PatchHot  PatchType = "HOT"
	PatchCold PatchType = "COLD"
)
