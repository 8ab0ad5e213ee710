package school

import (
	"regexp"
	"strconv"
	"strings"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

// ValidPostalCode reports whether s is a plausible Singapore postal code:
// exactly six digits with a district prefix of 01 through 82. Districts 83
// and up are unassigned.
func ValidPostalCode(s string) bool {
	cleaned := strings.TrimSpace(s)
	if !sixDigits.MatchString(cleaned) {
		return false
	}
	code, err := strconv.Atoi(cleaned)
	if err != nil {
		return false
	}
	district := code / 10000
	if district < 1 || district > 82 {
		return false
	}
	// Assigned codes run from roughly 018956 to 828893.
	return code >= 10000 && code <= 829999
}

// ValidALScore reports whether n is a legal PSLE Achievement Level total.
// 4 is the best possible result, 30 the worst.
func ValidALScore(n int) bool {
	return n >= 4 && n <= 30
}

// Slugify normalizes a primary school name for affiliation matching:
// lowercase, "&" becomes " and ", dots dropped, spaces and apostrophes
// collapsed into single hyphens.
func Slugify(input string) string {
	if input == "" {
		return ""
	}
	s := strings.ToLower(input)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, ".", "")
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return s
}

var (
	slugStrip      = regexp.MustCompile(`[^a-z0-9'\s-]`)
	slugSeparators = regexp.MustCompile(`['\s]+`)
	slugHyphens    = regexp.MustCompile(`-+`)
)
