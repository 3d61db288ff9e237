// Package graphstore persists accepted architecture graphs for later
// inspection and cross-run queries.
package graphstore

import (
	"context"
	"time"

	"github.com/vishalvkulkarni-tech/MBD-Designer/internal/schema"
)

// StoredRun is one persisted conversion result.
type StoredRun struct {
	RunID      string
	SystemName string
	CreatedAt  time.Time
	Graph      *schema.ArchitectureGraph
}

// Repository stores and retrieves architecture graphs keyed by run ID.
type Repository interface {
	// StoreRun persists the graph of one accepted run.
	StoreRun(ctx context.Context, run *StoredRun) error

	// LoadRun retrieves a previously stored graph by run ID.
	LoadRun(ctx context.Context, runID string) (*StoredRun, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
