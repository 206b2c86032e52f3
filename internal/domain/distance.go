package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
const EarthRadiusMiles = 3958.7613

// ErrZipNotFound is returned when the home zip has no rows in the dataset.
var ErrZipNotFound = errors.New("zip code not found in dataset")

// HomeCoordinate averages the coordinates of every row whose zip matches.
// Zips are compared numerically so "01001" matches 1001.
func HomeCoordinate(rows []CityRecord, zip int) (orb.Point, error) {
	var matches orb.MultiPoint
	for _, r := range rows {
		n, err := parseZip(r.Zip)
		if err != nil || n != zip {
			continue
		}
		matches = append(matches, r.Point())
	}
	if len(matches) == 0 {
		return orb.Point{}, fmt.Errorf("%w: %05d", ErrZipNotFound, zip)
	}
	center, _ := planar.CentroidArea(matches)
	return center, nil
}

// GreatCircleMiles returns the great-circle distance between two points in miles.
func GreatCircleMiles(a, b orb.Point) float64 {
	from := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	to := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return float64(from.Distance(to)) * EarthRadiusMiles
}

// ComputeDistances sets each row's Distance from home, rounded to a tenth of a mile.
// The input slice is not modified.
func ComputeDistances(rows []CityRecord, home orb.Point) []CityRecord {
	out := make([]CityRecord, len(rows))
	for i, r := range rows {
		r.Distance = roundTenth(GreatCircleMiles(home, r.Point()))
		out[i] = r
	}
	return out
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func parseZip(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
