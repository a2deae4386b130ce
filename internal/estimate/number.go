package estimate

import (
	"fmt"
	"strconv"
	"strings"
)

const numberPrefix = "EST-"

// FormatNumber renders a sequence value as EST-0001. Values past 9999 widen.
func FormatNumber(n int64) string {
	return fmt.Sprintf("%s%04d", numberPrefix, n)
}

// ParseNumber is the inverse of FormatNumber.
func ParseNumber(s string) (int64, error) {
	if !strings.HasPrefix(s, numberPrefix) {
		return 0, fmt.Errorf("estimate number %q: missing %s prefix", s, numberPrefix)
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(s, numberPrefix), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("estimate number %q: bad sequence", s)
	}
	return n, nil
}
