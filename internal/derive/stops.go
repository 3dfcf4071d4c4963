package derive

import (
	"stationlines.transitboard.org/internal/gtfscsv"
)

// StopIndex resolves every physical stop to its owning logical station and
// carries the canonical display name per station. A stop with no
// parent_station is its own station.
type StopIndex struct {
	stationByStop map[string]string
	nameByStation map[string]string
}

// LoadStopIndex builds a StopIndex in a single pass over stops.txt. The
// second return value counts rows skipped for a missing stop_id.
//
// Name resolution is first-applicable-rule-wins: a station row's own non-empty
// name always lands, otherwise the first name recorded for the station stands,
// even if it came from a child platform. Child names are only placeholders for
// stations whose own row never appears.
func LoadStopIndex(path string) (*StopIndex, int64, error) {
	reader, err := gtfscsv.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close() // nolint:errcheck

	index := &StopIndex{
		stationByStop: make(map[string]string),
		nameByStation: make(map[string]string),
	}

	var malformed int64
	for reader.Next() {
		record := reader.Record()

		stopID := record["stop_id"]
		if stopID == "" {
			malformed++
			continue
		}

		parent := record["parent_station"]
		stationID := parent
		if stationID == "" {
			stationID = stopID
		}
		index.stationByStop[stopID] = stationID

		name := record["stop_name"]
		isStationRow := parent == ""
		if (isStationRow && name != "") || index.nameByStation[stationID] == "" {
			index.nameByStation[stationID] = name
		}
	}
	if err := reader.Err(); err != nil {
		return nil, malformed, err
	}

	return index, malformed, nil
}

// StationFor resolves a stop id to its station id.
func (ix *StopIndex) StationFor(stopID string) (string, bool) {
	stationID, ok := ix.stationByStop[stopID]
	return stationID, ok
}

// NameFor returns the canonical name recorded for a station id, or "".
func (ix *StopIndex) NameFor(stationID string) string {
	return ix.nameByStation[stationID]
}

// Len reports the number of distinct stops indexed.
func (ix *StopIndex) Len() int {
	return len(ix.stationByStop)
}
