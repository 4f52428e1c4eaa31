package cron

import (
	"context"
	"fmt"

	"github.com/floramayor/floramayor-backend/internal/consolidation"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/floramayor/floramayor-backend/pkg/logger"
)

type consolidator interface {
	Consolidate(ctx context.Context) (*consolidation.Result, error)
}

// ConsolidationJob runs the nightly supplier consolidation pass.
type ConsolidationJob struct {
	service consolidator
	logg    *logger.Logger
}

// NewConsolidationJob builds the scheduled consolidation job.
func NewConsolidationJob(service consolidator, logg *logger.Logger) (*ConsolidationJob, error) {
	if service == nil {
		return nil, fmt.Errorf("consolidation service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &ConsolidationJob{service: service, logg: logg}, nil
}

// Name identifies the job in logs and metrics.
func (j *ConsolidationJob) Name() string {
	return "supplier_consolidation"
}

// Run executes one consolidation pass. An empty selection is a clean no-op
// at the job level, not a failure.
func (j *ConsolidationJob) Run(ctx context.Context) error {
	result, err := j.service.Consolidate(ctx)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
			j.logg.Info(ctx, "no validated orders to consolidate")
			return nil
		}
		return fmt.Errorf("consolidate: %w", err)
	}

	ctx = j.logg.WithField(ctx, "orders_processed", result.OrdersProcessed)
	ctx = j.logg.WithField(ctx, "consolidated_orders", len(result.ConsolidatedOrders))
	j.logg.Info(ctx, "consolidation pass complete")
	return nil
}
