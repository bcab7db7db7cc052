package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"alfredoptarigan/applicant-review/internal/models"
)

func TestComputeStatistics(t *testing.T) {
	posting := samplePosting()
	snap := &Snapshot{
		JobPostingID: posting.ID,
		Posting:      posting,
		Overrides:    models.OverrideMap{3: {Status: models.DisplayPassed}},
	}

	stats := ComputeStatistics(snap, defaultScores())

	if stats.Total != 4 {
		t.Fatalf("total = %d", stats.Total)
	}
	wantFinal := map[Bucket]int{BucketPassed: 2, BucketFailed: 1, BucketPending: 1}
	if diff := cmp.Diff(wantFinal, stats.Final); diff != "" {
		t.Errorf("final mismatch (-want +got):\n%s", diff)
	}
	wantReview := map[Bucket]int{
		BucketBeforeEvaluation: 0,
		BucketInProgress:       0,
		BucketAccepted:         2,
		BucketRejected:         1,
		BucketOnHold:           1,
	}
	if diff := cmp.Diff(wantReview, stats.Review); diff != "" {
		t.Errorf("review mismatch (-want +got):\n%s", diff)
	}

	if stats.Evaluated != 3 || stats.PassRate != 50 || stats.CompletionRate != 75 {
		t.Errorf("evaluated %d, pass %v, completion %v", stats.Evaluated, stats.PassRate, stats.CompletionRate)
	}

	// 박민재 45, 김유성 42, 오나래 48, 이나은 50
	if stats.AverageScore != 46.3 || stats.MinScore != 42 || stats.MaxScore != 50 {
		t.Errorf("average %v, min %v, max %v", stats.AverageScore, stats.MinScore, stats.MaxScore)
	}
	counts := map[string]int{}
	for _, band := range stats.Distribution {
		counts[band.Label] = band.Count
	}
	want := map[string]int{"70+": 0, "60-69": 0, "50-59": 1, "40-49": 3, "0-39": 0}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	snap := &Snapshot{Posting: &models.JobPosting{}}
	stats := ComputeStatistics(snap, defaultScores())
	if stats.Total != 0 || stats.PassRate != 0 || stats.MinScore != 0 || stats.MaxScore != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.Distribution) != 5 || stats.Distribution[4].Min != 0 {
		t.Errorf("distribution = %+v", stats.Distribution)
	}
}
