package domain

import (
	"math"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StatusAvailable is the only feed status that counts as availability.
const StatusAvailable = "Available"

// StatusEntry is one city in a state's status document.
type StatusEntry struct {
	City   string `json:"city"`
	Status string `json:"status"`
}

// TitleCase normalizes a feed city name ("NEW YORK") to the dataset's form
// ("New York"). Every letter that follows a non-letter starts a word, so
// "O'FALLON" becomes "O'Fallon" as the dataset spells it.
func TitleCase(s string) string {
	lower := cases.Lower(language.English).String(s)

	var b strings.Builder
	b.Grow(len(lower))
	afterLetter := false
	for _, r := range lower {
		if !afterLetter {
			r = unicode.ToTitle(r)
		}
		b.WriteRune(r)
		afterLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// AvailableCities returns the cities whose status is exactly "Available".
func AvailableCities(statuses map[string]string) map[string]struct{} {
	out := make(map[string]struct{})
	for city, status := range statuses {
		if status == StatusAvailable {
			out[city] = struct{}{}
		}
	}
	return out
}

// MatchRegion returns the table rows in region whose city is available.
func MatchRegion(table []CityRecord, region string, available map[string]struct{}) []CityRecord {
	var out []CityRecord
	for _, r := range table {
		if r.State != region {
			continue
		}
		if _, ok := available[r.City]; ok {
			out = append(out, r)
		}
	}
	return out
}

// BuildSnapshot orders matched rows by distance and truncates each distance
// to whole miles. Returns nil when there are no matches.
func BuildSnapshot(matches []CityRecord) []CityRecord {
	if len(matches) == 0 {
		return nil
	}
	out := slices.Clone(matches)
	slices.SortStableFunc(out, byDistance)
	for i := range out {
		out[i].Distance = math.Trunc(out[i].Distance)
	}
	return out
}

// SnapshotsEqual reports whether two snapshots have identical rows in identical order.
func SnapshotsEqual(a, b []CityRecord) bool {
	return slices.Equal(a, b)
}
