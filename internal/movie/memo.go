package movie

import (
	"strconv"
	"strings"
)

// NormalizeQuery builds the canonical key for free-text search memoization:
// the lowercased title, suffixed with the year when one is known.
func NormalizeQuery(title string, year int) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if year > 0 {
		normalized += " " + strconv.Itoa(year)
	}
	return normalized
}
