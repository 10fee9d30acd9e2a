package store

import (
	"context"
	"time"
)

// RunStatus tracks the lifecycle of a recorded run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one rupture-enumeration invocation: the model and site it
// ran against and what it produced.
type Run struct {
	ID           string     `json:"id"`
	Command      string     `json:"command"`
	ModelName    string     `json:"model_name"`
	SiteLat      float64    `json:"site_lat"`
	SiteLon      float64    `json:"site_lon"`
	MaxDistance  float64    `json:"max_distance"`
	SourceSets   int        `json:"source_sets"`
	Sources      int        `json:"sources"`
	Ruptures     int        `json:"ruptures"`
	Status       RunStatus  `json:"status"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMSec int64      `json:"duration_msec"`
}

// RunResult carries the counts recorded when a run completes.
type RunResult struct {
	SourceSets int `json:"source_sets"`
	Sources    int `json:"sources"`
	Ruptures   int `json:"ruptures"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status    RunStatus `json:"status,omitempty"`
	ModelName string    `json:"model_name,omitempty"`
	Limit     int       `json:"limit,omitempty"`
	Offset    int       `json:"offset,omitempty"`
}

// Store defines the run log persistence interface.
type Store interface {
	CreateRun(ctx context.Context, run *Run) (*Run, error)
	CompleteRun(ctx context.Context, runID string, result *RunResult) error
	FailRun(ctx context.Context, runID string, runErr error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
