package stationsdb

import (
	"context"
	"database/sql"
	"fmt"

	"stationlines.transitboard.org/internal/logging"
	"stationlines.transitboard.org/internal/models"
)

// SaveStations replaces the stored station list with the given one. The whole
// replacement happens in one transaction so readers never observe a mix of
// old and new runs.
func (c *Client) SaveStations(ctx context.Context, stations []models.Station) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "save_stations")

	if _, err := tx.ExecContext(ctx, `DELETE FROM stations;`); err != nil {
		return fmt.Errorf("error clearing stations: %w", err)
	}

	stationStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO stations (station_id, name) VALUES (?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stationStmt.Close() // nolint:errcheck

	lineStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO station_lines (station_id, position, line) VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer lineStmt.Close() // nolint:errcheck

	for _, station := range stations {
		if _, err := stationStmt.ExecContext(ctx, station.ID, station.Name); err != nil {
			return fmt.Errorf("error inserting station %s: %w", station.ID, err)
		}
		for position, line := range station.Lines {
			if _, err := lineStmt.ExecContext(ctx, station.ID, position, line); err != nil {
				return fmt.Errorf("error inserting line for station %s: %w", station.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// ListStations returns the stored station list in the same order the
// assembler produced it: by name, case-insensitively, then station id, with
// line positions preserved. One query covers stations and lines.
func (c *Client) ListStations(ctx context.Context) ([]models.Station, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT s.station_id, s.name, l.line
		FROM stations s
		LEFT JOIN station_lines l ON l.station_id = s.station_id
		ORDER BY LOWER(s.name), s.station_id, l.position;
	`)
	if err != nil {
		return nil, fmt.Errorf("error querying stations: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var stations []models.Station
	for rows.Next() {
		var (
			id, name string
			line     sql.NullString
		)
		if err := rows.Scan(&id, &name, &line); err != nil {
			return nil, fmt.Errorf("error scanning station: %w", err)
		}

		if len(stations) == 0 || stations[len(stations)-1].ID != id {
			stations = append(stations, models.Station{ID: id, Name: name})
		}
		if line.Valid {
			last := &stations[len(stations)-1]
			last.Lines = append(last.Lines, line.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading stations: %w", err)
	}

	return stations, nil
}
