package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stationlines.transitboard.org/internal/appconf"
	"stationlines.transitboard.org/internal/derive"
	"stationlines.transitboard.org/internal/gtfscsv"
	"stationlines.transitboard.org/internal/logging"
	"stationlines.transitboard.org/stationsdb"
)

// config holds all the settings for one derivation run, read from
// command-line flags when the process starts.
type config struct {
	gtfsDir    string
	outPath    string
	dbPath     string
	modesPath  string
	env        string
	logLevel   string
	subwayOnly bool
}

func main() {
	var cfg config

	flag.StringVar(&cfg.gtfsDir, "gtfs", ".", "Directory containing stops.txt, routes.txt, trips.txt and stop_times.txt")
	flag.StringVar(&cfg.outPath, "out", "stations.json", "Destination file for the derived station list")
	flag.StringVar(&cfg.dbPath, "db", "", "Optional SQLite database to persist the station list into")
	flag.StringVar(&cfg.modesPath, "modes", "", "Optional YAML file overriding the route_type mode classification")
	flag.StringVar(&cfg.env, "env", "development", "Environment (development|production)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	flag.BoolVar(&cfg.subwayOnly, "subway-only", false, "Restrict aggregation to routes classified as subway")
	flag.Parse()

	level, knownLevel := parseLogLevel(cfg.logLevel)
	logger := logging.NewStructuredLogger(os.Stderr, level)
	if !knownLevel {
		logger.Warn("unrecognized log level, using info",
			slog.String("log_level", cfg.logLevel))
	}

	if err := run(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "stationlines: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	modes := derive.DefaultModeConfig()
	if cfg.modesPath != "" {
		var err error
		modes, err = derive.LoadModeConfig(cfg.modesPath)
		if err != nil {
			return err
		}
	}

	pipeline := derive.NewPipeline(derive.Options{
		GTFSDir:    cfg.gtfsDir,
		SubwayOnly: cfg.subwayOnly,
		Modes:      modes,
		Logger:     logger,
	})

	result, err := pipeline.Run(ctx)
	if err != nil {
		var missing *gtfscsv.MissingFileError
		if errors.As(err, &missing) {
			return fmt.Errorf("missing source table %s", missing.Path)
		}
		return err
	}

	if err := derive.WriteStations(cfg.outPath, result.Stations); err != nil {
		return err
	}
	logging.LogOperation(logger, "station_list_written",
		slog.String("path", cfg.outPath),
		slog.Int("stations", len(result.Stations)))

	if cfg.dbPath != "" {
		dbConfig := stationsdb.NewConfig(cfg.dbPath, appconf.EnvFlagToEnvironment(cfg.env), cfg.logLevel == "debug")
		client, err := stationsdb.NewClient(dbConfig, logger)
		if err != nil {
			return err
		}
		defer logging.SafeCloseWithLogging(client, logger, "close_station_db")

		if err := client.SaveStations(ctx, result.Stations); err != nil {
			return err
		}
		logging.LogOperation(logger, "station_list_persisted",
			slog.String("path", cfg.dbPath))
	}

	return nil
}

// parseLogLevel maps the -log-level flag to a slog level. The second return
// value reports whether the flag value was recognized; unrecognized values
// fall back to info.
func parseLogLevel(level string) (slog.Level, bool) {
	switch level {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
