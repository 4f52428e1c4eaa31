package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/floramayor/floramayor-backend/internal/consolidation"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/floramayor/floramayor-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConsolidator struct {
	result *consolidation.Result
	err    error
	calls  int
}

func (s *stubConsolidator) Consolidate(context.Context) (*consolidation.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestConsolidationJobRunsPass(t *testing.T) {
	svc := &stubConsolidator{result: &consolidation.Result{OrdersProcessed: 3}}
	job, err := NewConsolidationJob(svc, logger.New(logger.Options{ServiceName: "cron-test"}))
	require.NoError(t, err)

	assert.Equal(t, "supplier_consolidation", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, svc.calls)
}

func TestConsolidationJobTreatsEmptySelectionAsNoop(t *testing.T) {
	svc := &stubConsolidator{err: pkgerrors.New(pkgerrors.CodeStateConflict, "nothing to consolidate")}
	job, err := NewConsolidationJob(svc, logger.New(logger.Options{ServiceName: "cron-test"}))
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
}

func TestConsolidationJobSurfacesRealFailures(t *testing.T) {
	svc := &stubConsolidator{err: pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("boom"), "consolidate")}
	job, err := NewConsolidationJob(svc, logger.New(logger.Options{ServiceName: "cron-test"}))
	require.NoError(t, err)

	require.Error(t, job.Run(context.Background()))
}
