package domain

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/paulmach/orb"
)

// FilterByRadius keeps rows no farther than radius miles.
func FilterByRadius(rows []CityRecord, radius float64) []CityRecord {
	out := make([]CityRecord, 0, len(rows))
	for _, r := range rows {
		if r.Distance <= radius {
			out = append(out, r)
		}
	}
	return out
}

// NearestPerCity keeps one row per (city, state): the one with the smallest
// distance. Ties keep the row that appeared first in the input.
func NearestPerCity(rows []CityRecord) []CityRecord {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, byDistance)

	seen := make(map[CityKey]struct{}, len(sorted))
	out := make([]CityRecord, 0, len(sorted))
	for _, r := range sorted {
		if _, ok := seen[r.Key()]; ok {
			continue
		}
		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}
	return out
}

// SortTable orders rows by state, then city, then distance.
func SortTable(rows []CityRecord) {
	slices.SortStableFunc(rows, func(a, b CityRecord) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		if c := cmp.Compare(a.City, b.City); c != 0 {
			return c
		}
		return byDistance(a, b)
	})
}

// BuildFilteredTable turns the full zip dataset into the distance table for
// the given home zip and radius.
func BuildFilteredTable(rows []CityRecord, zip int, radius float64) ([]CityRecord, orb.Point, error) {
	home, err := HomeCoordinate(rows, zip)
	if err != nil {
		return nil, orb.Point{}, err
	}
	if radius < 0 {
		return nil, orb.Point{}, fmt.Errorf("radius must not be negative, got %v", radius)
	}

	table := NearestPerCity(FilterByRadius(ComputeDistances(rows, home), radius))
	SortTable(table)
	return table, home, nil
}

// Regions returns the distinct state codes in the table, sorted.
func Regions(table []CityRecord) []string {
	var regions []string
	for _, r := range table {
		regions = append(regions, r.State)
	}
	slices.Sort(regions)
	return slices.Compact(regions)
}

func byDistance(a, b CityRecord) int {
	return cmp.Compare(a.Distance, b.Distance)
}
