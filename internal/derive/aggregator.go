package derive

import (
	"context"

	"stationlines.transitboard.org/internal/gtfscsv"
)

// checkCancelEvery bounds how often the stop_times scan polls the context.
const checkCancelEvery = 4096

// stationAccum is one station under accumulation: the station entity owns its
// route-id set directly rather than living inside nested maps.
type stationAccum struct {
	id     string
	routes map[string]struct{}
}

// Accumulator holds the per-station route-id sets built from the stop_times
// pass. Peak memory is bounded by stations × routes-per-station, never by the
// row count of stop_times.
type Accumulator struct {
	stations map[string]*stationAccum
}

func newAccumulator() *Accumulator {
	return &Accumulator{stations: make(map[string]*stationAccum)}
}

func (a *Accumulator) add(stationID, routeID string) {
	station, ok := a.stations[stationID]
	if !ok {
		station = &stationAccum{
			id:     stationID,
			routes: make(map[string]struct{}),
		}
		a.stations[stationID] = station
	}
	station.routes[routeID] = struct{}{}
}

// Len reports the number of stations with at least one observed route.
func (a *Accumulator) Len() int {
	return len(a.stations)
}

// Diagnostics counts the non-fatal row problems observed during a run. None
// of these abort the pipeline; they are surfaced once in the final summary.
type Diagnostics struct {
	StopTimeRows       int64
	MalformedStops     int64
	MalformedRoutes    int64
	MalformedTrips     int64
	MalformedStopTimes int64
	OrphanTrips        int64
	OrphanStops        int64
	FilteredEvents     int64
}

// AggregateStopTimes streams stop_times.txt once, joining each row through
// the trip index and stop index and recording the resolved route id into the
// owning station's set. Unresolvable rows are skipped and counted.
//
// With subwayOnly set, events on routes whose classification is known and not
// subway are dropped; routes with an unknown or blank classification are kept
// (conservative inclusion).
func AggregateStopTimes(ctx context.Context, path string, trips *TripIndex, stops *StopIndex, routes *RouteCatalog, subwayOnly bool, modes ModeConfig, diag *Diagnostics) (*Accumulator, error) {
	reader, err := gtfscsv.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close() // nolint:errcheck

	acc := newAccumulator()

	for reader.Next() {
		diag.StopTimeRows++
		if diag.StopTimeRows%checkCancelEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record := reader.Record()

		tripID := record["trip_id"]
		stopID := record["stop_id"]
		if tripID == "" || stopID == "" {
			diag.MalformedStopTimes++
			continue
		}

		routeID, ok := trips.RouteFor(tripID)
		if !ok {
			diag.OrphanTrips++
			continue
		}

		stationID, ok := stops.StationFor(stopID)
		if !ok {
			diag.OrphanStops++
			continue
		}

		if subwayOnly {
			if info, known := routes.Info(routeID); known && info.RouteType != "" && !modes.IsSubway(info.RouteType) {
				diag.FilteredEvents++
				continue
			}
		}

		acc.add(stationID, routeID)
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}

	return acc, nil
}
