package derive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stationlines.transitboard.org/internal/models"
)

// WriteStations writes the station list as a pretty-printed JSON array. The
// file appears atomically: content goes to a temp file in the destination
// directory first and is renamed into place, so an interrupted run never
// leaves a partial output file behind.
func WriteStations(path string, stations []models.Station) error {
	if stations == nil {
		stations = []models.Station{}
	}

	data, err := json.MarshalIndent(stations, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding station list: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating temp output file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           // nolint:errcheck
		os.Remove(tmp.Name()) // nolint:errcheck
		return fmt.Errorf("error writing station list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) // nolint:errcheck
		return fmt.Errorf("error closing temp output file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name()) // nolint:errcheck
		return fmt.Errorf("error moving station list into place: %w", err)
	}
	return nil
}
