package models

// Station is one entry in the derived station list: a logical station and the
// deduplicated, naturally-ordered line codes that serve it. Borough and
// Directions are populated by downstream enrichment, never by the pipeline;
// they are declared here so the enriched and unenriched forms share one type.
type Station struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Lines      []string           `json:"lines"`
	Borough    string             `json:"borough,omitempty"`
	Directions []StationDirection `json:"directions,omitempty"`
}

// StationDirection identifies the directional platform stop for one side of a
// station, e.g. {"dir": "N", "stopId": "101N"}.
type StationDirection struct {
	Dir    string `json:"dir"`
	StopID string `json:"stopId"`
}

func NewStation(id, name string, lines []string) Station {
	return Station{
		ID:    id,
		Name:  name,
		Lines: lines,
	}
}
