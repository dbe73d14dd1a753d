// Package lexicon holds the pure text-matching helpers shared by all portal
// adapters: city lookup, postal-code extraction and keyword scoring. It keeps
// no state so adapters and the categorizer can call it from any goroutine.
package lexicon

import (
	"regexp"
	"strings"
)

var cities = []string{
	"Wien", "Graz", "Linz", "Salzburg", "Innsbruck", "Klagenfurt",
	"Berlin", "Hamburg", "München", "Muenchen", "Köln", "Koeln", "Frankfurt",
	"Stuttgart", "Düsseldorf", "Duesseldorf", "Leipzig", "Dortmund", "Essen",
	"Bremen", "Dresden", "Hannover", "Nürnberg", "Nuernberg", "Duisburg",
	"Bochum", "Wuppertal", "Bielefeld", "Bonn", "Münster", "Muenster",
	"Karlsruhe", "Mannheim", "Augsburg", "Wiesbaden", "Freiburg", "Mainz",
	"Kassel", "Heidelberg", "Ulm", "Zürich", "Basel", "Bern", "Genf",
}

// postalPlace matches "<4-5 digit code> <Capitalized place>".
var postalPlace = regexp.MustCompile(`(\d{4,5})\s+([A-ZÄÖÜ][a-zäöüß]+)`)

// City returns the first known city mentioned in text, or the place name from
// a postal-code pattern, or "".
func City(text string) string {
	lower := strings.ToLower(text)
	for _, c := range cities {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	if m := postalPlace.FindStringSubmatch(text); m != nil {
		return m[2]
	}
	return ""
}

// PostalCode extracts the first 4-5 digit postal code preceding a place name.
func PostalCode(text string) string {
	if m := postalPlace.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// Score counts how many of the keywords occur in the lowercased text.
func Score(text string, keywords []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			n++
		}
	}
	return n
}

// ContainsAny reports whether any of the needles occurs in the lowercased text.
func ContainsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
