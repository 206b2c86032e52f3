package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// milesPerDegree is the great-circle length of one degree of latitude.
const milesPerDegree = 69.0934

func TestGreatCircleMiles(t *testing.T) {
	home := orb.Point{-74.0, 40.0}

	assert.InDelta(t, 0, GreatCircleMiles(home, home), 1e-9)
	assert.InDelta(t, milesPerDegree, GreatCircleMiles(home, orb.Point{-74.0, 41.0}), 0.001)
	assert.InDelta(t, GreatCircleMiles(home, orb.Point{-73.5, 40.5}), GreatCircleMiles(orb.Point{-73.5, 40.5}, home), 1e-9)

	// New York to Los Angeles, roughly 2445 miles.
	assert.InDelta(t, 2445, GreatCircleMiles(orb.Point{-73.9857, 40.7484}, orb.Point{-118.2437, 34.0522}), 15)
}

func TestHomeCoordinate(t *testing.T) {
	rows := []CityRecord{
		{City: "Agawam", State: "MA", Zip: "01001", Lat: 42.0, Lng: -72.6},
		{City: "Agawam", State: "MA", Zip: "1001", Lat: 42.2, Lng: -72.8},
		{City: "Amherst", State: "MA", Zip: "01002", Lat: 42.4, Lng: -72.5},
	}

	t.Run("averages duplicate zips", func(t *testing.T) {
		home, err := HomeCoordinate(rows, 1001)
		require.NoError(t, err)
		assert.InDelta(t, 42.1, home.Lat(), 1e-9)
		assert.InDelta(t, -72.7, home.Lon(), 1e-9)
	})

	t.Run("single match", func(t *testing.T) {
		home, err := HomeCoordinate(rows, 1002)
		require.NoError(t, err)
		assert.InDelta(t, 42.4, home.Lat(), 1e-9)
	})

	t.Run("unknown zip", func(t *testing.T) {
		_, err := HomeCoordinate(rows, 99999)
		require.ErrorIs(t, err, ErrZipNotFound)
		assert.Contains(t, err.Error(), "99999")
	})

	t.Run("unparseable zips are skipped", func(t *testing.T) {
		_, err := HomeCoordinate([]CityRecord{{Zip: "abc"}}, 0)
		require.ErrorIs(t, err, ErrZipNotFound)
	})
}

func TestComputeDistances(t *testing.T) {
	rows := []CityRecord{
		{City: "Here", Lat: 40.0, Lng: -74.0},
		{City: "Near", Lat: 40.02, Lng: -74.0},
	}
	out := ComputeDistances(rows, orb.Point{-74.0, 40.0})

	require.Len(t, out, 2)
	assert.InDelta(t, 0.0, out[0].Distance, 1e-9)
	assert.InDelta(t, 1.4, out[1].Distance, 1e-9)
	assert.Zero(t, rows[1].Distance, "input must not be modified")
}
