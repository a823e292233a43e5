package storage

import (
	"context"
	"time"
)

// Run is one recorded pipeline stage execution.
type Run struct {
	ID         int64
	Stage      string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Details    map[string]any
}

// GateRecord is one gate evaluation attached to a run.
type GateRecord struct {
	RunID    int64
	Artifact string
	Mode     string
	Pass     bool
	Summary  string
}

// Artifact is one file produced by a run.
type Artifact struct {
	RunID int64
	Name  string
	Path  string
}

// Run statuses.
const (
	RunRunning = "running"
	RunOK      = "ok"
	RunFailed  = "failed"
)

// Store persists the verification run ledger.
type Store interface {
	// BeginRun inserts a running row for a stage and returns its id.
	BeginRun(ctx context.Context, stage string) (int64, error)

	// FinishRun closes the run with a terminal status and stage metrics.
	FinishRun(ctx context.Context, id int64, status string, details map[string]any) error

	// RecordArtifact attaches one produced file to a run.
	RecordArtifact(ctx context.Context, runID int64, name, path string) error

	// RecordGate attaches one gate verdict to a run.
	RecordGate(ctx context.Context, rec GateRecord) error

	// LastRuns lists the most recent runs of a stage, newest first.
	LastRuns(ctx context.Context, stage string, limit int) ([]Run, error)

	// LastGate returns the most recent verdict for an artifact/mode pair.
	LastGate(ctx context.Context, artifact, mode string) (*GateRecord, error)

	Close() error
}
