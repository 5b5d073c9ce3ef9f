package store

import (
	"context"
	"errors"

	"krakenreport/internal/store/model"
	"krakenreport/internal/types"
)

var ErrNotFound = errors.New("store: record not found")

// RunRepository persists one summary row per execution.
type RunRepository interface {
	Record(ctx context.Context, executionID string, r *types.ConsolidatedReport) error
	FindByExecution(ctx context.Context, executionID string) (*model.ReportRunModel, error)
	ListRecent(ctx context.Context, limit int) ([]model.ReportRunModel, error)
	Close() error
}

// StepIndex indexes the merged steps of each execution.
type StepIndex interface {
	Record(ctx context.Context, executionID string, r *types.ConsolidatedReport) error
	Failures(ctx context.Context, executionID string) ([]model.StepRow, error)
	Steps(ctx context.Context, executionID, featureID string) ([]model.StepRow, error)
	Close() error
}
