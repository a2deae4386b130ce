package estimate

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
)

const maxSuggestionDistance = 4

// ParseJobType accepts canonical names and common synonyms. Unknown input
// yields a validation error that suggests the closest job type.
func ParseJobType(input string) (constants.JobType, error) {
	if jt, ok := constants.CanonicalizeJobType(input); ok {
		return jt, nil
	}
	msg := fmt.Sprintf("unknown job type %q", input)
	if s := suggestJobType(input); s != "" {
		msg += fmt.Sprintf(", did you mean %s?", s)
	}
	return "", common.ValidationErrors{{Field: "jobType", Value: input, Message: msg}}
}

func suggestJobType(input string) string {
	normalized := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToUpper(strings.TrimSpace(input)))
	if normalized == "" {
		return ""
	}
	best, bestDist := "", maxSuggestionDistance+1
	for _, candidate := range constants.JobTypesAsStrings() {
		if d := levenshtein.ComputeDistance(normalized, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
