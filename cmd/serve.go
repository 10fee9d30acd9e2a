package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/hazard-cli/internal/geo"
	"github.com/sells-group/hazard-cli/internal/model"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve <model.yaml>",
	Short: "Serve a source model over HTTP",
	Long:  "Loads a source model and exposes its source sets and rupture enumerations as a JSON API.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		m, err := model.LoadModel(args[0], &cfg.Calc, zap.L())
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(m, limiter),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("model", m.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newRouter builds the API routes over a loaded model.
func newRouter(m *model.HazardModel, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))
	r.Use(rateLimit(limiter))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": m.Name()})
	})
	r.Get("/v1/sourcesets", handleSourceSets(m))
	r.Get("/v1/ruptures", handleRuptures(m))
	return r
}

// rateLimit rejects requests beyond the shared token bucket.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sourceSetJSON struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	ID      int     `json:"id"`
	Weight  float64 `json:"weight"`
	Sources int     `json:"sources"`
}

func handleSourceSets(m *model.HazardModel) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		sets := make([]sourceSetJSON, 0, len(m.All()))
		for _, set := range m.All() {
			sets = append(sets, sourceSetJSON{
				Type:    set.Type().String(),
				Name:    set.Name(),
				ID:      set.ID(),
				Weight:  set.Weight(),
				Sources: set.Size(),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"model":       m.Name(),
			"source_sets": sets,
		})
	}
}

type ruptureJSON struct {
	SourceSet string  `json:"source_set"`
	Source    string  `json:"source"`
	Mag       float64 `json:"mag"`
	Rate      float64 `json:"rate"`
	Rake      float64 `json:"rake"`
}

func handleRuptures(m *model.HazardModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, err := queryFloat(r, "lat")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		lon, err := queryFloat(r, "lon")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		site, err := geo.NewLocation(lat, lon, 0)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		maxDist := cfg.Calc.MaxDistance
		if s := r.URL.Query().Get("max_distance"); s != "" {
			if maxDist, err = strconv.ParseFloat(s, 64); err != nil || maxDist <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid max_distance"})
				return
			}
		}
		limit := 1000
		if s := r.URL.Query().Get("limit"); s != "" {
			if limit, err = strconv.Atoi(s); err != nil || limit <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
				return
			}
		}

		var rups []ruptureJSON
		truncated := false
	sets:
		for _, set := range m.All() {
			for _, src := range set.Near(site, maxDist) {
				it, err := src.Ruptures()
				if errors.Is(err, model.ErrRuptureIteration) {
					continue
				}
				if err != nil {
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
					return
				}
				for it.Next() {
					if len(rups) >= limit {
						truncated = true
						break sets
					}
					rup := it.Rupture()
					rups = append(rups, ruptureJSON{
						SourceSet: set.Name(),
						Source:    src.Name(),
						Mag:       roundMag(rup.Mag),
						Rate:      rup.Rate,
						Rake:      rup.Rake,
					})
				}
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"site":      map[string]float64{"lat": lat, "lon": lon},
			"count":     len(rups),
			"truncated": truncated,
			"ruptures":  rups,
		})
	}
}

func queryFloat(r *http.Request, key string) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, eris.Errorf("missing query parameter %q", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Errorf("invalid query parameter %q", key)
	}
	return v, nil
}

func roundMag(m float64) float64 {
	return math.Round(m*1000) / 1000
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
