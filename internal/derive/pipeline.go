package derive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"stationlines.transitboard.org/internal/gtfscsv"
	"stationlines.transitboard.org/internal/logging"
	"stationlines.transitboard.org/internal/models"
)

// GTFS table file names the pipeline requires in the source directory.
const (
	StopsFile     = "stops.txt"
	RoutesFile    = "routes.txt"
	TripsFile     = "trips.txt"
	StopTimesFile = "stop_times.txt"
)

// Stage identifies where the pipeline is in its strict forward progression.
type Stage int32

const (
	StageLoadingReferenceTables Stage = iota
	StageAggregating
	StageAssembling
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageLoadingReferenceTables:
		return "loading_reference_tables"
	case StageAggregating:
		return "aggregating"
	case StageAssembling:
		return "assembling"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a pipeline run.
type Options struct {
	// GTFSDir is the directory containing the four source tables.
	GTFSDir string
	// SubwayOnly restricts aggregation to routes classified as subway.
	SubwayOnly bool
	// Modes classifies route_type values; zero value falls back to the default.
	Modes ModeConfig
	// Logger receives stage and summary events; nil disables logging.
	Logger *slog.Logger
}

// Result carries the assembled station list and the run's diagnostics.
type Result struct {
	Stations    []models.Station
	Diagnostics Diagnostics
}

// Pipeline derives the station-line dataset from one GTFS directory. A
// Pipeline is single-use: Run advances it through the stage machine exactly
// once.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
	stage  Stage
}

func NewPipeline(opts Options) *Pipeline {
	if opts.Modes.subway == nil {
		opts.Modes = DefaultModeConfig()
	}
	return &Pipeline{
		opts:   opts,
		logger: opts.Logger,
		stage:  StageLoadingReferenceTables,
	}
}

// Stage reports the pipeline's current stage.
func (p *Pipeline) Stage() Stage {
	return p.stage
}

func (p *Pipeline) setStage(stage Stage) {
	p.stage = stage
	if p.logger != nil {
		logging.LogOperation(p.logger, "pipeline_stage", slog.String("stage", stage.String()))
	}
}

func (p *Pipeline) fail(err error) error {
	p.stage = StageFailed
	if p.logger != nil {
		logging.LogError(p.logger, "pipeline failed", err, slog.String("stage", StageFailed.String()))
	}
	return err
}

// Run executes the full derivation: preflight, the three parallel reference
// loads with a join barrier, the streaming stop_times pass, and assembly.
// Any missing source table fails the run before any table is streamed.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if err := p.preflight(); err != nil {
		return nil, p.fail(err)
	}

	var (
		result Result
		stops  *StopIndex
		routes *RouteCatalog
		trips  *TripIndex
	)
	diag := &result.Diagnostics

	// The three reference tables are independent of each other; only the
	// aggregation pass needs all of them populated.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		stops, diag.MalformedStops, err = LoadStopIndex(p.tablePath(StopsFile))
		return err
	})
	g.Go(func() error {
		var err error
		routes, diag.MalformedRoutes, err = LoadRouteCatalog(p.tablePath(RoutesFile))
		return err
	})
	g.Go(func() error {
		var err error
		trips, diag.MalformedTrips, err = LoadTripIndex(p.tablePath(TripsFile))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, p.fail(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, p.fail(err)
	}

	p.setStage(StageAggregating)
	acc, err := AggregateStopTimes(ctx, p.tablePath(StopTimesFile), trips, stops, routes, p.opts.SubwayOnly, p.opts.Modes, diag)
	if err != nil {
		return nil, p.fail(err)
	}

	p.setStage(StageAssembling)
	result.Stations = Assemble(acc, stops, routes)

	p.setStage(StageDone)
	if p.logger != nil {
		logging.LogOperation(p.logger, "pipeline_summary",
			slog.Int("stations", len(result.Stations)),
			slog.Int("stops", stops.Len()),
			slog.Int("routes", routes.Len()),
			slog.Int("trips", trips.Len()),
			slog.Int64("stop_time_rows", diag.StopTimeRows),
			slog.Int64("malformed_stops", diag.MalformedStops),
			slog.Int64("malformed_routes", diag.MalformedRoutes),
			slog.Int64("malformed_trips", diag.MalformedTrips),
			slog.Int64("malformed_stop_times", diag.MalformedStopTimes),
			slog.Int64("orphan_trips", diag.OrphanTrips),
			slog.Int64("orphan_stops", diag.OrphanStops),
			slog.Int64("filtered_events", diag.FilteredEvents),
			slog.Duration("duration", time.Since(start)),
		)
	}

	return &result, nil
}

// preflight verifies all four source tables exist before any of them is
// streamed, so a run can never do partial work against an incomplete feed.
func (p *Pipeline) preflight() error {
	for _, name := range []string{StopsFile, RoutesFile, TripsFile, StopTimesFile} {
		path := p.tablePath(name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return &gtfscsv.MissingFileError{Path: path}
			}
			return err
		}
	}
	return nil
}

func (p *Pipeline) tablePath(name string) string {
	return filepath.Join(p.opts.GTFSDir, name)
}
