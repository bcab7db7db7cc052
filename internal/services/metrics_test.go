package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"alfredoptarigan/applicant-review/internal/models"
)

func TestMetrics_EvaluationSaves(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	okBefore := testutil.ToFloat64(evaluationSaves.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(evaluationSaves.WithLabelValues("error"))

	if _, err := f.svc.ChangeStatus(ctx, f.id, 101, models.DisplayPassed); err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	f.client.saveErr = errors.New("upstream down")
	f.svc.ChangeStatus(ctx, f.id, 102, models.DisplayFailed)

	if got := testutil.ToFloat64(evaluationSaves.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(evaluationSaves.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("failed saves = %v, want 1", got)
	}
}

func TestMetrics_StaleEvaluations(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	before := testutil.ToFloat64(staleEvaluations)

	f.svc.Select(ctx, f.id, 101)
	f.svc.Select(ctx, f.id, 102)
	f.svc.ApplyEvaluation(f.id, 101, &models.EvaluationFetch{}, nil)

	if got := testutil.ToFloat64(staleEvaluations) - before; got != 1 {
		t.Errorf("stale evaluations = %v, want 1", got)
	}
}
