package derive

import (
	"stationlines.transitboard.org/internal/gtfscsv"
)

// TripIndex maps every trip id to the route it runs on. It must be fully
// resident before the stop_times pass starts, since stop_times references
// trips in arbitrary order.
type TripIndex struct {
	routeByTrip map[string]string
}

// LoadTripIndex builds the index in a single pass over trips.txt. Rows
// missing either trip_id or route_id are skipped and counted.
func LoadTripIndex(path string) (*TripIndex, int64, error) {
	reader, err := gtfscsv.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close() // nolint:errcheck

	index := &TripIndex{routeByTrip: make(map[string]string)}

	var malformed int64
	for reader.Next() {
		record := reader.Record()

		tripID := record["trip_id"]
		routeID := record["route_id"]
		if tripID == "" || routeID == "" {
			malformed++
			continue
		}

		index.routeByTrip[tripID] = routeID
	}
	if err := reader.Err(); err != nil {
		return nil, malformed, err
	}

	return index, malformed, nil
}

// RouteFor resolves a trip id to its route id.
func (ix *TripIndex) RouteFor(tripID string) (string, bool) {
	routeID, ok := ix.routeByTrip[tripID]
	return routeID, ok
}

// Len reports the number of trips indexed.
func (ix *TripIndex) Len() int {
	return len(ix.routeByTrip)
}
