package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/appointment-watch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2021, time.April, 12, 9, 30, 0, 0, time.UTC)
	t1 = t0.Add(10 * time.Minute)
)

func sampleRows() []domain.CityRecord {
	return []domain.CityRecord{
		{City: "Albany", State: "NY", Zip: "12203", Lat: 42.68, Lng: -73.82, Distance: 4},
		{City: "Troy", State: "NY", Zip: "12180", Lat: 42.73, Lng: -73.69, Distance: 9},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "2021-04-12.09.30.00.000000.csv", FileName(t0))
	assert.Equal(t, "2021-04-12.09.30.00.000007.csv", FileName(t0.Add(7*time.Microsecond)))
	assert.Less(t, FileName(t0.Add(999*time.Microsecond)), FileName(t0.Add(time.Second)))
}

func TestFileName_UTCAcrossFallBack(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 01:30 occurs twice on 2021-11-07 in New York: first EDT, then EST.
	first := time.Date(2021, time.November, 7, 5, 30, 0, 0, time.UTC).In(ny)
	second := first.Add(time.Hour)
	require.Equal(t, first.Hour(), second.Hour())

	assert.Equal(t, "2021-11-07.05.30.00.000000.csv", FileName(first))
	assert.Less(t, FileName(first), FileName(second))
	assert.Equal(t, FileName(t0), FileName(t0.In(ny)))
}

func TestStore_SaveCreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "past_availabilities")
	s := NewStore(dir)

	path, err := s.Save(sampleRows(), t0)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2021-04-12.09.30.00.000000.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "city,state,zip,lat,lng,distance\nAlbany,NY,12203,42.68,-73.82,4\nTroy,NY,12180,42.73,-73.69,9\n", string(data))
}

func TestStore_SaveNeverOverwrites(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Save(sampleRows(), t0)
	require.NoError(t, err)
	_, err = s.Save(sampleRows()[:1], t0)
	require.Error(t, err)

	rows, _, found, err := s.Latest("")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, rows, 2)
	assertOnlySnapshots(t, s.Dir(), 1)
}

func TestStore_SaveLeavesNoTempFiles(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.Save(sampleRows(), t0)
	require.NoError(t, err)
	_, err = s.Save(nil, t1)
	require.NoError(t, err)

	assertOnlySnapshots(t, s.Dir(), 2)
}

// assertOnlySnapshots checks that dir holds exactly n entries, all snapshots.
func assertOnlySnapshots(t *testing.T, dir string, n int) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, n)
	for _, e := range entries {
		assert.Equal(t, ".csv", filepath.Ext(e.Name()), e.Name())
	}
}

func TestStore_LatestNone(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing"))

	rows, path, found, err := s.Latest("")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, path)
	assert.Nil(t, rows)
}

func TestStore_LatestExcludesJustWritten(t *testing.T) {
	s := NewStore(t.TempDir())

	first, err := s.Save(sampleRows(), t0)
	require.NoError(t, err)

	_, _, found, err := s.Latest(first)
	require.NoError(t, err)
	assert.False(t, found, "the only snapshot is the excluded one")

	second, err := s.Save(sampleRows()[:1], t1)
	require.NoError(t, err)

	rows, path, found, err := s.Latest(second)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first, path)
	assert.True(t, domain.SnapshotsEqual(sampleRows(), rows))

	rows, path, found, err = s.Latest("")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, second, path)
	assert.Len(t, rows, 1)
}

func TestStore_ListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.Save(sampleRows(), t1)
	require.NoError(t, err)
	_, err = s.Save(sampleRows(), t0)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0o755))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{FileName(t0), FileName(t1)}, names)
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	path := filepath.Join(dir, FileName(t0))
	require.NoError(t, os.WriteFile(path, []byte("city,state\nAlbany,NY\n"), 0o644))

	_, _, _, err := s.Latest("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load snapshot")
}
