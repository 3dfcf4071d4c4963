package derive

import (
	"sort"
	"strings"

	"stationlines.transitboard.org/internal/models"
)

// Assemble converts the accumulated route-id sets into the final ordered
// station list. Route ids become display codes (multiple ids can collapse to
// one code, so codes are deduplicated again), line codes get natural order,
// and stations are sorted by canonical name, case-insensitively, with the
// station id as the tie-break so output is byte-stable.
func Assemble(acc *Accumulator, stops *StopIndex, routes *RouteCatalog) []models.Station {
	stations := make([]models.Station, 0, len(acc.stations))

	for stationID, accum := range acc.stations {
		if len(accum.routes) == 0 {
			continue
		}

		codes := make(map[string]struct{}, len(accum.routes))
		for routeID := range accum.routes {
			codes[routes.ShortCode(routeID)] = struct{}{}
		}

		lines := make([]string, 0, len(codes))
		for code := range codes {
			lines = append(lines, code)
		}
		// Distinct codes can compare equal naturally ("7" vs "007"); a plain
		// byte comparison breaks the tie so output stays byte-stable.
		sort.Slice(lines, func(i, j int) bool {
			if c := compareNatural(lines[i], lines[j]); c != 0 {
				return c < 0
			}
			return lines[i] < lines[j]
		})

		stations = append(stations, models.NewStation(stationID, stops.NameFor(stationID), lines))
	}

	sort.Slice(stations, func(i, j int) bool {
		ni := strings.ToLower(stations[i].Name)
		nj := strings.ToLower(stations[j].Name)
		if ni != nj {
			return ni < nj
		}
		return stations[i].ID < stations[j].ID
	})

	return stations
}
