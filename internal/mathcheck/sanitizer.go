package mathcheck

import (
	"regexp"
	"strings"
)

// bannedPattern lists solver-invoking commands, plus the math engine's own
// name, that must never appear in a submitted answer. Whole-word matching
// only: "int" must not flag inside "interest", and "sin" stays usable.
var bannedPattern = regexp.MustCompile(
	`(?i)\b(int|integrate|defint|diff|d|derivative|solve|roots|limit|lim|sum|product|expr)\b`,
)

// IsLegal reports whether an answer may be checked at all. It runs
// strictly before equivalence checking; empty input is always illegal.
func IsLegal(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	return !bannedPattern.MatchString(input)
}
