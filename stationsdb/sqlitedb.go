package stationsdb

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"stationlines.transitboard.org/internal/appconf"
)

// InitDB creates a new SQLite database holding the derived station list
func InitDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("test environment must use an in-memory database, got %s", config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err = db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close() // nolint:errcheck
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close() // nolint:errcheck
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}

	if err := createTables(tx); err != nil {
		tx.Rollback() // nolint:errcheck
		db.Close()    // nolint:errcheck
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		db.Close() // nolint:errcheck
		return nil, fmt.Errorf("error committing transaction: %w", err)
	}

	return db, nil
}

func createTables(tx *sql.Tx) error {
	if err := createTable(tx, "stations", `
		CREATE TABLE IF NOT EXISTS stations (
			station_id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
	); err != nil {
		return err
	}

	// Line order is the assembler's natural order; position preserves it.
	if err := createTable(tx, "station_lines", `
		CREATE TABLE IF NOT EXISTS station_lines (
			station_id TEXT NOT NULL REFERENCES stations(station_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			line TEXT NOT NULL,
			PRIMARY KEY (station_id, position)
		);`,
	); err != nil {
		return err
	}

	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_station_lines_station_id ON station_lines(station_id);`)
	if err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

// createTable creates a table in the database
func createTable(tx *sql.Tx, tableName string, createStmt string) error {
	if _, err := tx.Exec(createStmt); err != nil {
		return fmt.Errorf("error creating table %s: %w", tableName, err)
	}
	return nil
}
