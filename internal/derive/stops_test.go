package derive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationlines.transitboard.org/internal/gtfscsv"
)

func loadStops(t *testing.T, content string) (*StopIndex, int64) {
	t.Helper()
	path := writeTable(t, t.TempDir(), StopsFile, content)
	index, malformed, err := LoadStopIndex(path)
	require.NoError(t, err)
	return index, malformed
}

func TestStopResolvesToItselfWithoutParent(t *testing.T) {
	index, malformed := loadStops(t,
		"stop_id,stop_name,parent_station\n"+
			"S1,Main St,\n")

	assert.Zero(t, malformed)
	stationID, ok := index.StationFor("S1")
	require.True(t, ok)
	assert.Equal(t, "S1", stationID)
	assert.Equal(t, "Main St", index.NameFor("S1"))
}

func TestChildStopResolvesToParent(t *testing.T) {
	index, _ := loadStops(t,
		"stop_id,stop_name,parent_station\n"+
			"S1N,Main St Northbound,S1\n"+
			"S1,Main St,\n")

	stationID, ok := index.StationFor("S1N")
	require.True(t, ok)
	assert.Equal(t, "S1", stationID)

	// The station row's own name wins over the child's placeholder.
	assert.Equal(t, "Main St", index.NameFor("S1"))
}

func TestStationNameWinsRegardlessOfRowOrder(t *testing.T) {
	index, _ := loadStops(t,
		"stop_id,stop_name,parent_station\n"+
			"S1,Main St,\n"+
			"S1N,Main St Northbound,S1\n")

	assert.Equal(t, "Main St", index.NameFor("S1"))
}

func TestChildNameStandsWhenStationRowNeverAppears(t *testing.T) {
	index, _ := loadStops(t,
		"stop_id,stop_name,parent_station\n"+
			"S1N,Main St Northbound,S1\n"+
			"S1S,Main St Southbound,S1\n")

	// First child seen provides the placeholder name.
	assert.Equal(t, "Main St Northbound", index.NameFor("S1"))

	stationID, ok := index.StationFor("S1S")
	require.True(t, ok)
	assert.Equal(t, "S1", stationID)
}

func TestStationRowWithEmptyNameDoesNotClobberPlaceholder(t *testing.T) {
	index, _ := loadStops(t,
		"stop_id,stop_name,parent_station\n"+
			"S1N,Main St Northbound,S1\n"+
			"S1,,\n")

	assert.Equal(t, "Main St Northbound", index.NameFor("S1"))
}

func TestRowsWithoutStopIDAreCounted(t *testing.T) {
	index, malformed := loadStops(t,
		"stop_id,stop_name,parent_station\n"+
			",Ghost Stop,\n"+
			"S1,Main St,\n")

	assert.Equal(t, int64(1), malformed)
	assert.Equal(t, 1, index.Len())
}

func TestLoadStopIndexMissingFile(t *testing.T) {
	_, _, err := LoadStopIndex(t.TempDir() + "/stops.txt")
	var missing *gtfscsv.MissingFileError
	require.True(t, errors.As(err, &missing))
}
