package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/hazard-cli/internal/export"
	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/model"
	"github.com/sells-group/hazard-cli/internal/store"
)

var (
	rupturesLat     float64
	rupturesLon     float64
	rupturesMaxDist float64
	rupturesExport  bool
)

var rupturesCmd = &cobra.Command{
	Use:   "ruptures <model.yaml>",
	Short: "Enumerate ruptures near a site",
	Long:  "Loads a source model, filters sources by distance to the site, and enumerates every rupture with its magnitude and annual rate. The run is recorded in the local run log.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("ruptures"); err != nil {
			return err
		}
		if rupturesExport {
			if err := cfg.Validate("export"); err != nil {
				return err
			}
		}

		site, err := geo.NewLocation(rupturesLat, rupturesLon, 0)
		if err != nil {
			return err
		}
		maxDist := rupturesMaxDist
		if maxDist <= 0 {
			maxDist = cfg.Calc.MaxDistance
		}

		m, err := model.LoadModel(args[0], &cfg.Calc, zap.L())
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.CreateRun(ctx, &store.Run{
			Command:     "ruptures",
			ModelName:   m.Name(),
			SiteLat:     rupturesLat,
			SiteLon:     rupturesLon,
			MaxDistance: maxDist,
		})
		if err != nil {
			return err
		}

		stats, err := enumerateRuptures(ctx, m, site, maxDist, cfg.Calc.Workers)
		if err != nil {
			_ = st.FailRun(ctx, run.ID, err)
			return err
		}

		if err := st.CompleteRun(ctx, run.ID, &store.RunResult{
			SourceSets: stats.Sets,
			Sources:    stats.Sources,
			Ruptures:   stats.Ruptures,
		}); err != nil {
			return err
		}

		formatRuptureStats(os.Stdout, run.ID, stats)

		if rupturesExport {
			return exportModel(ctx, m, run.ID)
		}
		return nil
	},
}

// ruptureStats aggregates the enumeration across source sets.
type ruptureStats struct {
	Sets      int
	Sources   int
	Joint     int
	Ruptures  int
	TotalRate float64
	MinMag    float64
	MaxMag    float64
}

// enumerateRuptures walks every source within maxDist of the site,
// fanning sources out over workers goroutines.
func enumerateRuptures(ctx context.Context, m *model.HazardModel, site geo.Location,
	maxDist float64, workers int) (*ruptureStats, error) {

	stats := &ruptureStats{MinMag: math.Inf(1), MaxMag: math.Inf(-1)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, set := range m.All() {
		near := set.Near(site, maxDist)
		if len(near) == 0 {
			continue
		}
		stats.Sets++
		stats.Sources += len(near)

		for _, src := range near {
			src := src
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				var n int
				var rate, minMag, maxMag float64
				minMag, maxMag = math.Inf(1), math.Inf(-1)

				it, err := src.Ruptures()
				if errors.Is(err, model.ErrRuptureIteration) {
					mu.Lock()
					stats.Joint++
					mu.Unlock()
					return nil
				}
				if err != nil {
					return eris.Wrapf(err, "source %q", src.Name())
				}
				for it.Next() {
					r := it.Rupture()
					n++
					rate += r.Rate
					minMag = math.Min(minMag, r.Mag)
					maxMag = math.Max(maxMag, r.Mag)
				}

				mu.Lock()
				stats.Ruptures += n
				stats.TotalRate += rate
				stats.MinMag = math.Min(stats.MinMag, minMag)
				stats.MaxMag = math.Max(stats.MaxMag, maxMag)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func formatRuptureStats(out io.Writer, runID string, s *ruptureStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", truncateID(runID))
	_, _ = fmt.Fprintf(w, "Source sets in range:\t%d\n", s.Sets)
	_, _ = fmt.Fprintf(w, "Sources in range:\t%d\n", s.Sources)
	if s.Joint > 0 {
		_, _ = fmt.Fprintf(w, "Jointly-defined sources:\t%d\n", s.Joint)
	}
	_, _ = fmt.Fprintf(w, "Ruptures:\t%d\n", s.Ruptures)
	if s.Ruptures > 0 {
		_, _ = fmt.Fprintf(w, "Total annual rate:\t%.6g\n", s.TotalRate)
		_, _ = fmt.Fprintf(w, "Magnitude range:\t[%.2f, %.2f]\n", s.MinMag, s.MaxMag)
	}
	_ = w.Flush()
}

// exportModel pushes the full model's source sets and ruptures to postgres.
func exportModel(ctx context.Context, m *model.HazardModel, runID string) error {
	exp, err := export.New(ctx, cfg.Export.DatabaseURL,
		export.WithBatchSize(cfg.Export.BatchSize),
		export.WithLogger(zap.L()))
	if err != nil {
		return err
	}
	defer exp.Close()

	if err := exp.Migrate(ctx); err != nil {
		return err
	}
	n, err := exp.ExportModel(ctx, m, runID)
	if err != nil {
		return err
	}
	zap.L().Info("exported ruptures", zap.Int64("rows", n), zap.String("run_id", runID))
	return nil
}

func init() {
	rupturesCmd.Flags().Float64Var(&rupturesLat, "lat", 0, "site latitude in degrees")
	rupturesCmd.Flags().Float64Var(&rupturesLon, "lon", 0, "site longitude in degrees")
	rupturesCmd.Flags().Float64Var(&rupturesMaxDist, "max-distance", 0, "source cutoff distance in km (default from config)")
	rupturesCmd.Flags().BoolVar(&rupturesExport, "export", false, "export source sets and ruptures to postgres")
	_ = rupturesCmd.MarkFlagRequired("lat")
	_ = rupturesCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(rupturesCmd)
}
