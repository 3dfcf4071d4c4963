package derive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeFeed lays out a complete four-table GTFS directory.
func writeFeed(t *testing.T, stops, routes, trips, stopTimes string) string {
	t.Helper()
	dir := t.TempDir()
	writeTable(t, dir, StopsFile, stops)
	writeTable(t, dir, RoutesFile, routes)
	writeTable(t, dir, TripsFile, trips)
	writeTable(t, dir, StopTimesFile, stopTimes)
	return dir
}
