package titles

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// earliestYear is the first year a candidate trailing number is treated as a
// release year rather than part of the title.
const earliestYear = 1888

// Parse extracts a movie title and optional release year from free text such
// as a file name or a loosely formatted query ("District.9.2009.1080p",
// "Inception (2010)"). The returned year is 0 when the text carries none.
func Parse(text string) (string, int) {
	cleaned := cleanSeparators(text)
	if cleaned == "" {
		return "", 0
	}

	words := strings.Fields(cleaned)
	year := 0
	for i := len(words) - 1; i > 0; i-- {
		if y, ok := parseYear(words[i]); ok {
			year = y
			// Everything after the year is release cruft (resolution, codec).
			words = words[:i]
			break
		}
	}

	title := strings.Join(words, " ")
	title = cases.Title(language.Und, cases.NoLower).String(title)
	return title, year
}

func parseYear(word string) (int, bool) {
	if len(word) != 4 {
		return 0, false
	}
	value, err := strconv.Atoi(word)
	if err != nil {
		return 0, false
	}
	if value < earliestYear || value > time.Now().Year()+1 {
		return 0, false
	}
	return value, true
}

func cleanSeparators(text string) string {
	builder := strings.Builder{}
	prevSpace := false
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'':
			builder.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.' || r == '(' || r == ')' || r == '[' || r == ']':
			if !prevSpace {
				builder.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(builder.String())
}
