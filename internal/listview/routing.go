package listview

import (
	"math"
	"strconv"
	"strings"
)

// RouteSearch splits a single search box value into either an exact
// identifier (the whole value parses as a finite number) or free text.
// Exactly one of the results is non-empty unless value is blank.
func RouteSearch(value string) (identifier, text string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", ""
	}
	if IsIdentifier(trimmed) {
		return trimmed, ""
	}
	return "", trimmed
}

// IsIdentifier reports whether value parses entirely as a finite number.
func IsIdentifier(value string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SplitIDs turns "1, 2,,3" into ["1" "2" "3"].
func SplitIDs(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinIDs normalises an id list to "1,2,3".
func JoinIDs(value string) string {
	return strings.Join(SplitIDs(value), ",")
}
