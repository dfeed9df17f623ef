package storage

import (
	"context"

	"greenwave/internal/model"
)

// Store defines persistence operations for run summaries and histories.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveHistory(ctx context.Context, runID string, history model.RunHistory) error
	GetHistory(ctx context.Context, runID string) (model.RunHistory, bool, error)
}
