package domain

import (
	"errors"
	"fmt"
)

// ValidateFilteredTable checks that every row is within radius, that each
// (city, state) appears once, and that rows are ordered by state, city, distance.
func ValidateFilteredTable(table []CityRecord, radius float64) error {
	var errs []error
	seen := make(map[CityKey]int, len(table))
	for i, r := range table {
		if r.Distance > radius {
			errs = append(errs, fmt.Errorf("row %d (%s, %s): distance %.1f exceeds radius %.1f", i, r.City, r.State, r.Distance, radius))
		}
		if prev, ok := seen[r.Key()]; ok {
			errs = append(errs, fmt.Errorf("row %d (%s, %s): duplicate of row %d", i, r.City, r.State, prev))
		} else {
			seen[r.Key()] = i
		}
		if i > 0 && outOfTableOrder(table[i-1], r) {
			errs = append(errs, fmt.Errorf("row %d (%s, %s): out of state/city/distance order", i, r.City, r.State))
		}
	}
	return errors.Join(errs...)
}

// ValidateSnapshot checks that a snapshot is ordered by distance and that
// every row belongs to the distance table.
func ValidateSnapshot(snapshot, table []CityRecord) error {
	known := make(map[CityKey]struct{}, len(table))
	for _, r := range table {
		known[r.Key()] = struct{}{}
	}

	var errs []error
	for i, r := range snapshot {
		if _, ok := known[r.Key()]; !ok {
			errs = append(errs, fmt.Errorf("row %d (%s, %s): not in distance table", i, r.City, r.State))
		}
		if i > 0 && r.Distance < snapshot[i-1].Distance {
			errs = append(errs, fmt.Errorf("row %d (%s, %s): distance %.0f below previous %.0f", i, r.City, r.State, r.Distance, snapshot[i-1].Distance))
		}
	}
	return errors.Join(errs...)
}

func outOfTableOrder(prev, cur CityRecord) bool {
	if prev.State != cur.State {
		return prev.State > cur.State
	}
	if prev.City != cur.City {
		return prev.City > cur.City
	}
	return prev.Distance > cur.Distance
}
