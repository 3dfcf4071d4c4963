package derive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationlines.transitboard.org/internal/gtfscsv"
	"stationlines.transitboard.org/internal/logging"
)

func grandAveFeed(t *testing.T) string {
	t.Helper()
	return writeFeed(t,
		"stop_id,stop_name,parent_station\n"+
			"101,Grand Ave,\n"+
			"101N,Grand Ave Platform N,101\n",
		"route_id,route_short_name,route_type\n"+
			"Q,Q,1\n",
		"route_id,service_id,trip_id\n"+
			"Q,WKD,t1\n",
		"trip_id,stop_id,stop_sequence\n"+
			"t1,101N,1\n")
}

func TestPipelineEndToEnd(t *testing.T) {
	pipeline := NewPipeline(Options{GTFSDir: grandAveFeed(t)})

	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StageDone, pipeline.Stage())

	out := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, WriteStations(out, result.Stations))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"101","name":"Grand Ave","lines":["Q"]}]`, string(data))
}

func TestPipelineIsDeterministic(t *testing.T) {
	dir := writeFeed(t,
		"stop_id,stop_name,parent_station\n"+
			"101,Grand Ave,\n"+
			"202,Astor Pl,\n"+
			"303,Broadway Jct,\n",
		"route_id,route_short_name,route_type\n"+
			"10,10,1\nQ,Q,1\n2,2,1\n1,1,1\nA,A,1\n",
		"route_id,trip_id\n"+
			"10,t10\nQ,tQ\n2,t2\n1,t1\nA,tA\n",
		"trip_id,stop_id\n"+
			"t10,101\ntQ,101\nt2,101\nt1,101\ntA,101\n"+
			"tQ,202\nt1,303\ntA,303\n")

	render := func() []byte {
		pipeline := NewPipeline(Options{GTFSDir: dir})
		result, err := pipeline.Run(context.Background())
		require.NoError(t, err)

		out := filepath.Join(t.TempDir(), "stations.json")
		require.NoError(t, WriteStations(out, result.Stations))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return data
	}

	first := render()
	second := render()
	assert.True(t, bytes.Equal(first, second))

	// Natural line ordering on the busiest station.
	var stations []struct {
		ID    string   `json:"id"`
		Lines []string `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(first, &stations))
	require.Len(t, stations, 3)
	for _, station := range stations {
		if station.ID == "101" {
			assert.Equal(t, []string{"1", "2", "10", "A", "Q"}, station.Lines)
		}
	}
}

func TestPipelineFailsBeforeStreamingWhenTableMissing(t *testing.T) {
	dir := grandAveFeed(t)
	require.NoError(t, os.Remove(filepath.Join(dir, TripsFile)))

	pipeline := NewPipeline(Options{GTFSDir: dir})
	_, err := pipeline.Run(context.Background())

	var missing *gtfscsv.MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Contains(t, missing.Path, TripsFile)
	assert.Equal(t, StageFailed, pipeline.Stage())
}

func TestPipelineSubwayOnly(t *testing.T) {
	dir := writeFeed(t,
		"stop_id,stop_name,parent_station\n101,Grand Ave,\n",
		"route_id,route_short_name,route_type\n"+
			"Q,Q,1\n"+
			"BUS9,9,3\n"+
			"GS,,\n",
		"route_id,trip_id\nQ,t1\nBUS9,t2\nGS,t3\n",
		"trip_id,stop_id\nt1,101\nt2,101\nt3,101\n")

	pipeline := NewPipeline(Options{GTFSDir: dir, SubwayOnly: true})
	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Stations, 1)
	assert.Equal(t, []string{"GS", "Q"}, result.Stations[0].Lines)
	assert.Equal(t, int64(1), result.Diagnostics.FilteredEvents)
}

func TestPipelineOrphanTolerance(t *testing.T) {
	dir := writeFeed(t,
		"stop_id,stop_name,parent_station\n101,Grand Ave,\n",
		"route_id,route_short_name\nQ,Q\n",
		"route_id,trip_id\nQ,t1\n",
		"trip_id,stop_id\n"+
			"ghost,101\n"+
			"t1,nowhere\n"+
			"t1,101\n")

	pipeline := NewPipeline(Options{GTFSDir: dir})
	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.Diagnostics.OrphanTrips)
	assert.Equal(t, int64(1), result.Diagnostics.OrphanStops)
	require.Len(t, result.Stations, 1)
	assert.Equal(t, []string{"Q"}, result.Stations[0].Lines)
}

func TestPipelineLogsStagesAndSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

	pipeline := NewPipeline(Options{GTFSDir: grandAveFeed(t), Logger: logger})
	_, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, `"stage":"aggregating"`)
	assert.Contains(t, output, `"stage":"assembling"`)
	assert.Contains(t, output, `"stage":"done"`)
	assert.Contains(t, output, `"msg":"pipeline_summary"`)
	assert.Contains(t, output, `"stop_time_rows":1`)
}

func TestPipelineEmptyStopTimesProducesEmptyArray(t *testing.T) {
	dir := writeFeed(t,
		"stop_id,stop_name,parent_station\n101,Grand Ave,\n",
		"route_id,route_short_name\nQ,Q\n",
		"route_id,trip_id\nQ,t1\n",
		"trip_id,stop_id\n")

	pipeline := NewPipeline(Options{GTFSDir: dir})
	result, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Stations)

	out := filepath.Join(t.TempDir(), "stations.json")
	require.NoError(t, WriteStations(out, result.Stations))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
