package stationsdb

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Client owns the station-list database the departure board reads from.
type Client struct {
	config Config
	DB     *sql.DB
	logger *slog.Logger
}

// NewClient creates a new Client with the provided configuration
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	db, err := InitDB(config)
	if err != nil {
		return nil, fmt.Errorf("error initializing station database: %w", err)
	}
	if config.verbose && logger != nil {
		logger.Info("created station database tables", slog.String("path", config.DBPath))
	}

	return &Client{
		config: config,
		DB:     db,
		logger: logger,
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}
