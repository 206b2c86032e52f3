package domain

import "github.com/paulmach/orb"

// CityRecord is one row of the zip dataset, the filtered distance table,
// or a snapshot.
type CityRecord struct {
	City     string
	State    string
	Zip      string
	Lat      float64
	Lng      float64
	Distance float64 // miles from the home coordinate
}

// Point returns the record's coordinate in orb's lng/lat order.
func (r CityRecord) Point() orb.Point {
	return orb.Point{r.Lng, r.Lat}
}

// Key identifies a city independent of zip.
func (r CityRecord) Key() CityKey {
	return CityKey{City: r.City, State: r.State}
}

// CityKey is the (city, state) identity used for deduplication and joins.
type CityKey struct {
	City  string
	State string
}
