package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/applicant-review/internal/models"
)

type sessionFixture struct {
	svc    SessionService
	repo   *fakeSessionRepo
	client *fakeRecruitClient
	queue  *recordingQueue
	id     uuid.UUID
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	repo := newFakeSessionRepo()
	client := &fakeRecruitClient{
		posting: samplePosting(),
		fetches: map[int64]*models.EvaluationFetch{},
	}
	scores := defaultScores()
	svc := NewSessionService(repo, client, scores, NewViewBuilder(scores), 5*time.Second)
	queue := &recordingQueue{}
	svc.AttachQueue(queue)

	snap, err := svc.Create(context.Background(), 7)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return &sessionFixture{svc: svc, repo: repo, client: client, queue: queue, id: snap.ID}
}

func TestSessionService_SelectStartsFetch(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	view, err := f.svc.Select(ctx, f.id, 101)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if view.FetchState != FetchLoading || view.AI.State != AILoading {
		t.Errorf("view after select = %s / %s", view.FetchState, view.AI.State)
	}
	if view.Essay.Total != 3 || view.Essay.Index != 1 {
		t.Errorf("essay = %d/%d", view.Essay.Index, view.Essay.Total)
	}

	jobs := f.queue.Jobs()
	if len(jobs) != 1 || jobs[0].Kind != JobFetchEvaluation || jobs[0].ApplicationID != 101 {
		t.Errorf("jobs = %+v", jobs)
	}

	if _, err := f.svc.Select(ctx, f.id, 999); !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("Select(999) error = %v, want ErrApplicationNotFound", err)
	}
}

func TestSessionService_NavigationResetsOnNewApplicant(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	if _, err := f.svc.NextQuestion(ctx, f.id); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("NextQuestion() without selection error = %v", err)
	}

	f.svc.Select(ctx, f.id, 101)
	f.svc.NextQuestion(ctx, f.id)
	f.svc.NextQuestion(ctx, f.id)
	view, _ := f.svc.NextQuestion(ctx, f.id)
	if view.Essay.Index != 3 {
		t.Errorf("index after three Next = %d, want 3", view.Essay.Index)
	}
	f.svc.ToggleScoreDetails(ctx, f.id)
	f.svc.SetTab(ctx, f.id, TabEssay)

	view, _ = f.svc.Select(ctx, f.id, 102)
	if view.Essay.Index != 1 || view.Panel.ScoreDetailsOpen || view.Panel.Tab != TabEssay {
		t.Errorf("view after switching applicant = essay %d, panel %+v", view.Essay.Index, view.Panel)
	}

	view, _ = f.svc.PrevQuestion(ctx, f.id)
	if view.Essay.Index != 1 {
		t.Errorf("Prev on first question moved to %d", view.Essay.Index)
	}
}

func TestSessionService_DiscardsStaleEvaluation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	f.svc.Select(ctx, f.id, 101)
	f.svc.Select(ctx, f.id, 102)

	stale := &models.EvaluationFetch{EvaluationResult: &models.EvaluationResult{TotalScore: ptr(90)}}
	if f.svc.ApplyEvaluation(f.id, 101, stale, nil) {
		t.Fatal("result for a deselected application was applied")
	}

	view, _ := f.svc.View(ctx, f.id)
	if view.ApplicationID != 102 || view.FetchState != FetchLoading {
		t.Errorf("view = %d / %s, want 102 still loading", view.ApplicationID, view.FetchState)
	}

	fresh := &models.EvaluationFetch{EvaluationResult: &models.EvaluationResult{
		OverallAnalysis: &models.OverallAnalysis{OverallEvaluation: "좋음"},
	}}
	if !f.svc.ApplyEvaluation(f.id, 102, fresh, nil) {
		t.Fatal("result for the selected application was dropped")
	}
	view, _ = f.svc.View(ctx, f.id)
	if view.FetchState != FetchReady || view.AI.State != AIReady {
		t.Errorf("view = %s / %s", view.FetchState, view.AI.State)
	}
}

func TestSessionService_FetchError(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.client.fetchErr = errors.New("boom")

	f.svc.Select(ctx, f.id, 101)
	if err := f.svc.HandleJob(ctx, Job{Kind: JobFetchEvaluation, SessionID: f.id, ApplicationID: 101}); err == nil {
		t.Fatal("HandleJob() should surface the fetch error")
	}

	view, _ := f.svc.View(ctx, f.id)
	if view.FetchState != FetchError || view.AI.State != AIError {
		t.Errorf("view = %s / %s", view.FetchState, view.AI.State)
	}
	if len(f.svc.PendingJobs()) != 0 {
		t.Error("failed fetches should not be polled")
	}
}

func TestSessionService_ChangeStatusSavesAndReconciles(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	f.svc.SetMemo(ctx, f.id, 101, "재검토 완료")
	override, err := f.svc.ChangeStatus(ctx, f.id, 101, models.DisplayPassed)
	if err != nil {
		t.Fatalf("ChangeStatus() error = %v", err)
	}
	if override.Status != models.DisplayPassed || override.Memo != "재검토 완료" {
		t.Errorf("override = %+v", override)
	}

	if len(f.client.saved) != 1 {
		t.Fatalf("saved %d evaluations, want 1", len(f.client.saved))
	}
	want := SaveEvaluationRequest{Comment: "재검토 완료", Status: models.RemoteAccepted, FinalScore: 45}
	if f.client.saved[0] != want {
		t.Errorf("saved %+v, want %+v", f.client.saved[0], want)
	}

	jobs := f.queue.Jobs()
	last := jobs[len(jobs)-1]
	if last.Kind != JobReconcile || last.Delay != 5*time.Second || last.ApplicationID != 101 {
		t.Errorf("last job = %+v, want delayed reconcile", last)
	}

	stored := f.repo.overrides[f.id][1]
	if stored.Status != models.DisplayPassed || stored.Memo != "재검토 완료" {
		t.Errorf("persisted override = %+v", stored)
	}

	snap, _ := f.svc.Get(ctx, f.id)
	list := BuildApplicantList(snap, defaultScores(), ScreenFinal, "")
	for _, g := range list.Groups {
		if g.Bucket == BucketPassed && g.Count != 2 {
			t.Errorf("passed group = %+v, want the override and the accepted applicant", g)
		}
	}
}

func TestSessionService_FailedSaveKeepsOverride(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.client.saveErr = errors.New("upstream down")

	override, err := f.svc.ChangeStatus(ctx, f.id, 101, models.DisplayPending)

	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("ChangeStatus() error = %v, want SaveError", err)
	}
	if saveErr.Override.Status != models.DisplayPending || override.Status != models.DisplayPending {
		t.Errorf("override = %+v", override)
	}

	snap, _ := f.svc.Get(ctx, f.id)
	if got := snap.Overrides[1].Status; got != models.DisplayPending {
		t.Errorf("local override after failed save = %q, want pending", got)
	}
	for _, job := range f.queue.Jobs() {
		if job.Kind == JobReconcile {
			t.Errorf("reconcile enqueued after failed save: %+v", job)
		}
	}
}

func TestSessionService_ChangeStatusValidates(t *testing.T) {
	f := newSessionFixture(t)
	if _, err := f.svc.ChangeStatus(context.Background(), f.id, 101, "maybe"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("error = %v, want ErrInvalidStatus", err)
	}
	if _, err := f.svc.ChangeStatus(context.Background(), f.id, 999, models.DisplayPassed); !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("error = %v, want ErrApplicationNotFound", err)
	}
}

func TestSessionService_RestoresFromRepository(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.svc.ChangeStatus(ctx, f.id, 101, models.DisplayPassed)

	scores := defaultScores()
	restarted := NewSessionService(f.repo, f.client, scores, NewViewBuilder(scores), time.Second)
	snap, err := restarted.Get(ctx, f.id)
	if err != nil {
		t.Fatalf("Get() after restart error = %v", err)
	}
	if snap.Overrides[1].Status != models.DisplayPassed {
		t.Errorf("restored overrides = %+v", snap.Overrides)
	}
	if snap.JobPostingID != 7 {
		t.Errorf("job posting = %d", snap.JobPostingID)
	}

	if _, err := restarted.Get(ctx, uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session error = %v", err)
	}
}

func TestSessionService_Reset(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	if err := f.svc.Reset(ctx, f.id); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, err := f.svc.Get(ctx, f.id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after reset error = %v", err)
	}
	if err := f.svc.Reset(ctx, f.id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Reset() error = %v", err)
	}
}

func TestSessionService_CompleteEvaluation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	if err := f.svc.CompleteEvaluation(ctx, f.id); err != nil {
		t.Fatalf("CompleteEvaluation() error = %v", err)
	}
	if f.client.postingStatus != models.PostingStatusEvaluationComplete {
		t.Errorf("posting status sent = %q", f.client.postingStatus)
	}
	snap, _ := f.svc.Get(ctx, f.id)
	if snap.Posting.PostingStatus != models.PostingStatusEvaluationComplete {
		t.Errorf("local posting status = %q", snap.Posting.PostingStatus)
	}
}

func TestSessionService_ReconcileRefetchesSelected(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	f.client.fetches[101] = &models.EvaluationFetch{EvaluationResult: &models.EvaluationResult{
		ResumeEvaluations: []models.ResumeEvaluation{{ItemName: "학력", Score: 20}},
	}}

	f.svc.Select(ctx, f.id, 101)
	loads := f.client.postingLoads
	if err := f.svc.HandleJob(ctx, Job{Kind: JobReconcile, SessionID: f.id, ApplicationID: 101}); err != nil {
		t.Fatalf("HandleJob() error = %v", err)
	}
	if f.client.postingLoads != loads+1 {
		t.Errorf("posting loads = %d, want %d", f.client.postingLoads, loads+1)
	}

	view, _ := f.svc.View(ctx, f.id)
	if view.FetchState != FetchReady || view.Resume.ResolvedTotal != 20 {
		t.Errorf("view = %s, total %v", view.FetchState, view.Resume.ResolvedTotal)
	}
}

func TestSessionService_PendingJobs(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	if jobs := f.svc.PendingJobs(); len(jobs) != 0 {
		t.Fatalf("pending jobs without selection = %+v", jobs)
	}

	f.svc.Select(ctx, f.id, 101)
	if jobs := f.svc.PendingJobs(); len(jobs) != 0 {
		t.Errorf("pending while the select fetch is queued = %+v", jobs)
	}

	f.svc.ApplyEvaluation(f.id, 101, &models.EvaluationFetch{Success: true}, nil)
	if jobs := f.svc.PendingJobs(); len(jobs) != 1 {
		t.Errorf("pending while upstream has nothing = %+v", jobs)
	}
	if jobs := f.svc.PendingJobs(); len(jobs) != 0 {
		t.Errorf("polled again before the last fetch answered = %+v", jobs)
	}

	f.svc.ApplyEvaluation(f.id, 101, &models.EvaluationFetch{EvaluationResult: &models.EvaluationResult{TotalScore: ptr(50)}}, nil)
	if jobs := f.svc.PendingJobs(); len(jobs) != 0 {
		t.Errorf("pending after result arrived = %+v", jobs)
	}
}

func TestSessionService_PendingJobsRetriesDroppedFetch(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	svc := f.svc.(*sessionService)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	f.svc.Select(ctx, f.id, 101)
	if jobs := f.svc.PendingJobs(); len(jobs) != 0 {
		t.Fatalf("pending while in flight = %+v", jobs)
	}

	// the queued job never answered
	clock = clock.Add(fetchInFlightTTL)
	jobs := f.svc.PendingJobs()
	if len(jobs) != 1 || jobs[0].ApplicationID != 101 {
		t.Fatalf("pending after timeout = %+v, want fetch for 101", jobs)
	}

	// a stale answer does not release the current selection
	f.svc.Select(ctx, f.id, 102)
	f.svc.ApplyEvaluation(f.id, 101, &models.EvaluationFetch{Success: true}, nil)
	if jobs := f.svc.PendingJobs(); len(jobs) != 0 {
		t.Errorf("pending after stale answer = %+v", jobs)
	}
}
