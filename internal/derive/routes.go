package derive

import (
	"stationlines.transitboard.org/internal/gtfscsv"
)

// RouteInfo carries the display code and mode classification for one route.
type RouteInfo struct {
	ShortCode string
	RouteType string
}

// RouteCatalog maps route ids to their display code and mode classification.
type RouteCatalog struct {
	routes map[string]RouteInfo
}

// LoadRouteCatalog builds the catalog in a single pass over routes.txt. Rows
// without a route_id are skipped and counted, not fatal. A blank
// route_short_name falls back to the route id itself, mirroring how the MTA
// feed leaves short names off shuttle routes.
func LoadRouteCatalog(path string) (*RouteCatalog, int64, error) {
	reader, err := gtfscsv.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close() // nolint:errcheck

	catalog := &RouteCatalog{routes: make(map[string]RouteInfo)}

	var malformed int64
	for reader.Next() {
		record := reader.Record()

		routeID := record["route_id"]
		if routeID == "" {
			malformed++
			continue
		}

		shortCode := record["route_short_name"]
		if shortCode == "" {
			shortCode = routeID
		}

		catalog.routes[routeID] = RouteInfo{
			ShortCode: shortCode,
			RouteType: record["route_type"],
		}
	}
	if err := reader.Err(); err != nil {
		return nil, malformed, err
	}

	return catalog, malformed, nil
}

// ShortCode resolves a route id to its display code, falling back to the raw
// id for routes that never appeared in routes.txt.
func (c *RouteCatalog) ShortCode(routeID string) string {
	if info, ok := c.routes[routeID]; ok {
		return info.ShortCode
	}
	return routeID
}

// Info returns the catalog entry for a route id.
func (c *RouteCatalog) Info(routeID string) (RouteInfo, bool) {
	info, ok := c.routes[routeID]
	return info, ok
}

// Len reports the number of routes in the catalog.
func (c *RouteCatalog) Len() int {
	return len(c.routes)
}
