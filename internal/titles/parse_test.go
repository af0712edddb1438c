package titles_test

import (
	"testing"

	"reelcache/internal/titles"
)

func TestParse(t *testing.T) {
	cases := []struct {
		text  string
		title string
		year  int
	}{
		{"Inception 2010", "Inception", 2010},
		{"Inception (2010)", "Inception", 2010},
		{"District.9.2009.1080p.BluRay", "District 9", 2009},
		{"District 9 movie", "District 9 Movie", 0},
		{"The_Matrix", "The Matrix", 0},
		{"2001 A Space Odyssey", "2001 A Space Odyssey", 0},
		{"2001 A Space Odyssey 1968", "2001 A Space Odyssey", 1968},
		{"blade runner 2049 2017", "Blade Runner 2049", 2017},
		{"", "", 0},
		{"...", "", 0},
	}

	for _, tc := range cases {
		title, year := titles.Parse(tc.text)
		if title != tc.title || year != tc.year {
			t.Errorf("Parse(%q) = (%q, %d), want (%q, %d)", tc.text, title, year, tc.title, tc.year)
		}
	}
}
