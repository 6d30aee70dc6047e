package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/catalog"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/csvfile"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/elevation"
	"github.com/couchcryptid/climate-risk-engine/internal/adapter/power"
	"github.com/couchcryptid/climate-risk-engine/internal/assess"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/ingest"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand.
type options struct {
	lat, lon    float64
	csvPath     string
	catalogPath string
	slope       float64
	elevation   float64
	normalTemp  float64
	lookback    int
	timeout     time.Duration
	verbose     bool
}

// staticTerrain serves fixed terrain for offline runs.
type staticTerrain domain.Terrain

func (t staticTerrain) Terrain(context.Context, domain.Location) (domain.Terrain, error) {
	return domain.Terrain(t), nil
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "riskctl",
		Short:         "Query flood, drought and landslide risk for a location",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.Float64Var(&opts.lat, "lat", 0, "latitude in decimal degrees")
	flags.Float64Var(&opts.lon, "lon", 0, "longitude in decimal degrees")
	flags.StringVar(&opts.csvPath, "csv", "", "read daily series from a single-site CSV file instead of NASA POWER")
	flags.StringVar(&opts.catalogPath, "catalog", "", "JSON hazard catalog for landslide history")
	flags.Float64Var(&opts.slope, "slope", -1, "terrain slope in degrees for offline runs (negative: unknown)")
	flags.Float64Var(&opts.elevation, "elevation", 0, "terrain elevation in metres for offline runs")
	flags.Float64Var(&opts.normalTemp, "normal-temp", assess.DefaultRegionalNormal, "regional normal temperature in °C")
	flags.IntVar(&opts.lookback, "lookback", assess.DefaultLookbackDays, "days of recent data to read")
	flags.DurationVar(&opts.timeout, "timeout", assess.DefaultFetchTimeout, "per-fetch timeout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log fetches to stderr")

	root.AddCommand(
		assessCommand(opts),
		eventsCommand(opts),
		indicesCommand(opts),
		historyCommand(opts),
	)
	return root
}

func assessCommand(opts *options) *cobra.Command {
	var hazard string
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score current risk for one hazard, or all hazards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			loc := opts.location()
			if hazard == "" {
				out, err := svc.AssessAll(cmd.Context(), loc)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			h, err := domain.ParseHazard(hazard)
			if err != nil {
				return fmt.Errorf("%w: %q", err, hazard)
			}
			out, err := svc.Assess(cmd.Context(), h, loc)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&hazard, "hazard", "", "flood, drought or landslide (default: all)")
	return cmd
}

func eventsCommand(opts *options) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Detect heat waves, cold waves, droughts, floods and storms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Events(cmd.Context(), opts.location(), start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "window start, YYYY-MM-DD (default: lookback start)")
	cmd.Flags().StringVar(&end, "end", "", "window end, YYYY-MM-DD (default: today)")
	return cmd
}

func indicesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "indices",
		Short: "Compute SPI, SPEI, PDSI, heat index and wind chill",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.Indices(cmd.Context(), opts.location())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func historyCommand(opts *options) *cobra.Command {
	var (
		hazard string
		years  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Aggregate monthly hazard history with seasonality and trend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := domain.ParseHazard(hazard)
			if err != nil {
				return fmt.Errorf("%w: %q", err, hazard)
			}
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			out, err := svc.History(cmd.Context(), h, opts.location(), years)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&hazard, "hazard", string(domain.HazardFlood), "flood, drought or landslide")
	cmd.Flags().IntVar(&years, "years", assess.DefaultHistoryYears, "years of history")
	return cmd
}

func (o *options) location() domain.Location {
	return domain.Location{Lat: o.lat, Lon: o.lon}
}

// service builds an uncached assessment service. Offline runs pin the clock
// to the last date in the file so "today" falls inside the data.
func (o *options) service(cmd *cobra.Command) (*assess.Service, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	hazards, err := catalog.Load(o.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	svcOpts := assess.Options{
		Catalog:            hazards,
		Logger:             logger,
		FetchTimeout:       o.timeout,
		LookbackDays:       o.lookback,
		RegionalNormalTemp: o.normalTemp,
	}

	var fetcher ingest.Fetcher
	if o.csvPath != "" {
		f, err := csvfile.Load(o.csvPath)
		if err != nil {
			return nil, fmt.Errorf("load csv: %w", err)
		}
		last, err := time.Parse(domain.DateLayout, f.LastDate())
		if err != nil {
			return nil, fmt.Errorf("load csv: %w", err)
		}
		fetcher = f
		svcOpts.Clock = clockwork.NewFakeClockAt(last.Add(12 * time.Hour))
		if o.slope >= 0 {
			svcOpts.Terrain = staticTerrain{Elevation: o.elevation, Slope: o.slope}
		}
	} else {
		fetcher = power.NewClient(power.DefaultBaseURL, o.timeout, 1, logger)
		svcOpts.Terrain = elevation.NewClient(elevation.DefaultBaseURL, o.timeout, logger)
	}

	return assess.New(fetcher, svcOpts), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
