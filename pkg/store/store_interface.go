package store

import (
	"context"
	"time"

	"github.com/timeplus-io/processviz/pkg/models"
)

// ProcessStore defines the interface for the process table.
// This allows us to mock the store for testing
type ProcessStore interface {
	ReplaceProcessTable(ctx context.Context, ds models.Dataset) (int64, error)
	QueryProcessRange(ctx context.Context, from, to time.Time) (models.Dataset, error)
	CountRows(ctx context.Context) (int64, error)
}

// Ensure Store implements ProcessStore
var _ ProcessStore = (*Store)(nil)
