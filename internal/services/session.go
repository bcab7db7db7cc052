package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/applicant-review/internal/models"
	"alfredoptarigan/applicant-review/internal/repositories"
)

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID                    uuid.UUID          `json:"id"`
	JobPostingID          int64              `json:"jobPostingId"`
	Posting               *models.JobPosting `json:"-"`
	Overrides             models.OverrideMap `json:"overrides"`
	SelectedApplicationID int64              `json:"selectedApplicationId,omitempty"`
	Cursor                QuestionCursor     `json:"cursor"`
	Panel                 PanelState         `json:"panel"`
	FetchState            FetchState         `json:"fetchState,omitempty"`
	Fetched               *FetchedEvaluation `json:"-"`
}

// ResultFor returns the best evaluation result known for an application.
func (s *Snapshot) ResultFor(app *models.Application) *models.EvaluationResult {
	var fetched *FetchedEvaluation
	if app.ID == s.SelectedApplicationID {
		fetched = s.Fetched
	}
	return effectiveResult(app, fetched)
}

type SessionService interface {
	JobHandler
	AttachQueue(queue JobQueue)

	Create(ctx context.Context, jobPostingID int64) (*Snapshot, error)
	Get(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	Refresh(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	Reset(ctx context.Context, id uuid.UUID) error

	Select(ctx context.Context, id uuid.UUID, applicationID int64) (*View, error)
	View(ctx context.Context, id uuid.UUID) (*View, error)
	NextQuestion(ctx context.Context, id uuid.UUID) (*View, error)
	PrevQuestion(ctx context.Context, id uuid.UUID) (*View, error)
	SetTab(ctx context.Context, id uuid.UUID, tab Tab) (*View, error)
	ToggleScoreDetails(ctx context.Context, id uuid.UUID) (*View, error)

	ChangeStatus(ctx context.Context, id uuid.UUID, applicationID int64, status models.DisplayStatus) (models.LocalOverride, error)
	SetMemo(ctx context.Context, id uuid.UUID, applicationID int64, memo string) (models.LocalOverride, error)
	SaveEvaluation(ctx context.Context, id uuid.UUID, applicationID int64) (models.LocalOverride, error)
	CompleteEvaluation(ctx context.Context, id uuid.UUID) error

	ApplyEvaluation(id uuid.UUID, applicationID int64, fetch *models.EvaluationFetch, fetchErr error) bool
}

type sessionState struct {
	mu           sync.RWMutex
	id           uuid.UUID
	jobPostingID int64
	posting      *models.JobPosting
	overrides    models.OverrideMap
	selectedID   int64
	cursor       QuestionCursor
	panel        PanelState
	fetchState   FetchState
	fetched      *FetchedEvaluation
	// fetchDue is set while a fetch job for selectedID is queued or running.
	// A dropped job stops counting once it passes.
	fetchDue time.Time
}

// fetchInFlightTTL bounds how long an unanswered fetch job holds off the poller.
const fetchInFlightTTL = 30 * time.Second

type sessionService struct {
	repo           repositories.SessionRepository
	client         RecruitClient
	scores         ScoreResolver
	views          ViewBuilder
	reconcileDelay time.Duration
	now            func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*sessionState
	queue    JobQueue
}

func NewSessionService(
	repo repositories.SessionRepository,
	client RecruitClient,
	scores ScoreResolver,
	views ViewBuilder,
	reconcileDelay time.Duration,
) SessionService {
	return &sessionService{
		repo:           repo,
		client:         client,
		scores:         scores,
		views:          views,
		reconcileDelay: reconcileDelay,
		now:            time.Now,
		sessions:       make(map[uuid.UUID]*sessionState),
	}
}

// AttachQueue sets where fetch and reconcile jobs go.
func (s *sessionService) AttachQueue(queue JobQueue) {
	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()
}

func (s *sessionService) enqueue(job Job) {
	s.mu.RLock()
	queue := s.queue
	s.mu.RUnlock()
	if queue == nil {
		log.Printf("⚠️  No job queue attached, skipping %s for application %d\n", job.Kind, job.ApplicationID)
		return
	}
	queue.EnqueueJob(job)
}

func (s *sessionService) Create(ctx context.Context, jobPostingID int64) (*Snapshot, error) {
	posting, err := s.client.FetchJobPostingWithApplications(ctx, jobPostingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job posting %d: %w", jobPostingID, err)
	}

	record := &models.ReviewSession{
		ID:           uuid.New(),
		JobPostingID: jobPostingID,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.repo.Create(record); err != nil {
		return nil, err
	}

	state := &sessionState{
		id:           record.ID,
		jobPostingID: jobPostingID,
		posting:      posting,
		overrides:    make(models.OverrideMap),
		panel:        NewPanelState(),
		cursor:       NewQuestionCursor(0),
	}

	s.mu.Lock()
	s.sessions[record.ID] = state
	activeSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	log.Printf("✅ Review session %s opened for job posting %d (%d applications)\n", record.ID, jobPostingID, len(posting.Applications))
	return state.snapshot(), nil
}

// state returns the in-memory session, rebuilding it from the repository and
// upstream when the process restarted since it was created.
func (s *sessionService) state(ctx context.Context, id uuid.UUID) (*sessionState, error) {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return state, nil
	}

	record, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, err
	}

	posting, err := s.client.FetchJobPostingWithApplications(ctx, record.JobPostingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job posting %d: %w", record.JobPostingID, err)
	}

	records, err := s.repo.FindOverrides(id)
	if err != nil {
		return nil, err
	}

	state = &sessionState{
		id:           id,
		jobPostingID: record.JobPostingID,
		posting:      posting,
		overrides:    models.OverridesFromRecords(records),
		panel:        NewPanelState(),
		cursor:       NewQuestionCursor(0),
	}

	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		state = existing
	} else {
		s.sessions[id] = state
		activeSessions.Set(float64(len(s.sessions)))
	}
	s.mu.Unlock()

	log.Printf("🔄 Review session %s restored with %d overrides\n", id, len(records))
	return state, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	state, err := s.state(ctx, id)
	if err != nil {
		return nil, err
	}
	return state.snapshot(), nil
}

func (s *sessionService) Refresh(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	state, err := s.state(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.reloadPosting(ctx, state); err != nil {
		return nil, err
	}
	return state.snapshot(), nil
}

func (s *sessionService) reloadPosting(ctx context.Context, state *sessionState) error {
	jobPostingID := state.jobPostingID

	posting, err := s.client.FetchJobPostingWithApplications(ctx, jobPostingID)
	if err != nil {
		return fmt.Errorf("failed to reload job posting %d: %w", jobPostingID, err)
	}

	state.mu.Lock()
	state.posting = posting
	if _, ok := posting.FindApplication(state.selectedID); !ok && state.selectedID != 0 {
		state.selectedID = 0
		state.fetched = nil
		state.fetchState = ""
		state.cursor = NewQuestionCursor(0)
	}
	state.mu.Unlock()

	if err := s.repo.Touch(state.id); err != nil {
		log.Printf("⚠️  Failed to touch session %s: %v\n", state.id, err)
	}
	return nil
}

// Reset drops the session and every override it held.
func (s *sessionService) Reset(ctx context.Context, id uuid.UUID) error {
	s.mu.RLock()
	_, live := s.sessions[id]
	s.mu.RUnlock()
	if !live {
		if _, err := s.repo.FindByID(id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
			}
			return err
		}
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, id)
	activeSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	log.Printf("🗑️  Review session %s reset\n", id)
	return nil
}

// Select makes applicationID the current applicant, rewinds the essay cursor
// and starts loading its evaluation result.
func (s *sessionService) Select(ctx context.Context, id uuid.UUID, applicationID int64) (*View, error) {
	state, err := s.state(ctx, id)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	app, ok := state.posting.FindApplication(applicationID)
	if !ok {
		state.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrApplicationNotFound, applicationID)
	}
	changed := state.selectedID != applicationID
	state.selectedID = applicationID
	state.fetchState = FetchLoading
	state.fetched = nil
	state.fetchDue = s.now().Add(fetchInFlightTTL)
	if changed {
		state.cursor = NewQuestionCursor(len(app.CoverLetterQuestionAnswers))
		state.panel = state.panel.ForNewApplicant()
	}
	view := s.buildLocked(state)
	state.mu.Unlock()

	s.enqueue(Job{Kind: JobFetchEvaluation, SessionID: id, ApplicationID: applicationID})
	return view, nil
}

func (s *sessionService) View(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutateView(ctx, id, func(*sessionState) {})
}

func (s *sessionService) NextQuestion(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutateView(ctx, id, func(st *sessionState) { st.cursor = st.cursor.Next() })
}

func (s *sessionService) PrevQuestion(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutateView(ctx, id, func(st *sessionState) { st.cursor = st.cursor.Prev() })
}

func (s *sessionService) SetTab(ctx context.Context, id uuid.UUID, tab Tab) (*View, error) {
	return s.mutateView(ctx, id, func(st *sessionState) { st.panel = st.panel.WithTab(tab) })
}

func (s *sessionService) ToggleScoreDetails(ctx context.Context, id uuid.UUID) (*View, error) {
	return s.mutateView(ctx, id, func(st *sessionState) { st.panel = st.panel.ToggleScoreDetails() })
}

func (s *sessionService) mutateView(ctx context.Context, id uuid.UUID, mutate func(*sessionState)) (*View, error) {
	state, err := s.state(ctx, id)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.selectedID == 0 {
		return nil, ErrNoSelection
	}
	mutate(state)
	return s.buildLocked(state), nil
}

// buildLocked requires state.mu to be held.
func (s *sessionService) buildLocked(state *sessionState) *View {
	app, ok := state.posting.FindApplication(state.selectedID)
	if !ok {
		view := s.views.Build(ViewInput{FetchState: state.fetchState, Panel: state.panel})
		return &view
	}

	override := state.overrides[app.Applicant.ID]
	view := s.views.Build(ViewInput{
		Application: app,
		Posting:     state.posting,
		Override:    override,
		Status:      ResolveStatus(state.overrides, app.Applicant.ID, app.Status, ScreenReview),
		FetchState:  state.fetchState,
		Fetched:     state.fetched,
		Cursor:      state.cursor,
		Panel:       state.panel,
	})
	return &view
}

// ApplyEvaluation stores a finished fetch only if its application is still
// selected. Stale results are dropped.
func (s *sessionService) ApplyEvaluation(id uuid.UUID, applicationID int64, fetch *models.EvaluationFetch, fetchErr error) bool {
	s.mu.RLock()
	state, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.selectedID != applicationID {
		log.Printf("⚠️  Discarding stale evaluation for application %d (selected %d)\n", applicationID, state.selectedID)
		staleEvaluations.Inc()
		return false
	}
	state.fetchDue = time.Time{}

	if fetchErr != nil {
		state.fetchState = FetchError
		state.fetched = nil
		return true
	}

	decoded, warnings := DecodeFetch(fetch)
	for _, w := range warnings {
		log.Printf("⚠️  Malformed evaluation payload for application %d: %s\n", applicationID, w)
	}
	state.fetchState = FetchReady
	state.fetched = decoded
	return true
}

func (s *sessionService) ChangeStatus(ctx context.Context, id uuid.UUID, applicationID int64, status models.DisplayStatus) (models.LocalOverride, error) {
	if !status.Valid() {
		return models.LocalOverride{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.applyAndSave(ctx, id, applicationID, func(o *models.LocalOverride) { o.Status = status })
}

func (s *sessionService) SaveEvaluation(ctx context.Context, id uuid.UUID, applicationID int64) (models.LocalOverride, error) {
	return s.applyAndSave(ctx, id, applicationID, func(*models.LocalOverride) {})
}

// applyAndSave mutates the local override first and then saves upstream. A
// failed save leaves the override in place.
func (s *sessionService) applyAndSave(ctx context.Context, id uuid.UUID, applicationID int64, mutate func(*models.LocalOverride)) (models.LocalOverride, error) {
	state, err := s.state(ctx, id)
	if err != nil {
		return models.LocalOverride{}, err
	}

	state.mu.Lock()
	app, ok := state.posting.FindApplication(applicationID)
	if !ok {
		state.mu.Unlock()
		return models.LocalOverride{}, fmt.Errorf("%w: %d", ErrApplicationNotFound, applicationID)
	}
	override := state.overrides[app.Applicant.ID]
	mutate(&override)
	state.overrides[app.Applicant.ID] = override

	display := ResolveStatus(state.overrides, app.Applicant.ID, app.Status, ScreenReview).Display
	var fetched *FetchedEvaluation
	if state.selectedID == applicationID {
		fetched = state.fetched
	}
	score := s.scores.ResolveTotalScore(app.Applicant.Name, effectiveResult(app, fetched))
	applicantID := app.Applicant.ID
	state.mu.Unlock()

	s.persistOverride(id, applicantID, override)

	req := SaveEvaluationRequest{
		Comment:    override.Memo,
		Status:     DisplayToRemote(display),
		FinalScore: score,
	}
	err = s.client.SaveEvaluation(ctx, applicationID, req)
	evaluationSaves.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		log.Printf("❌ Failed to save evaluation for application %d: %v\n", applicationID, err)
		return override, &SaveError{ApplicationID: applicationID, Override: override, Err: err}
	}

	log.Printf("✅ Evaluation saved for application %d (%s, %.0f)\n", applicationID, req.Status, req.FinalScore)
	s.enqueue(Job{Kind: JobReconcile, SessionID: id, ApplicationID: applicationID, Delay: s.reconcileDelay})
	return override, nil
}

// SetMemo only touches console state; the memo reaches upstream on the next save.
func (s *sessionService) SetMemo(ctx context.Context, id uuid.UUID, applicationID int64, memo string) (models.LocalOverride, error) {
	state, err := s.state(ctx, id)
	if err != nil {
		return models.LocalOverride{}, err
	}

	state.mu.Lock()
	app, ok := state.posting.FindApplication(applicationID)
	if !ok {
		state.mu.Unlock()
		return models.LocalOverride{}, fmt.Errorf("%w: %d", ErrApplicationNotFound, applicationID)
	}
	override := state.overrides[app.Applicant.ID]
	override.Memo = memo
	state.overrides[app.Applicant.ID] = override
	applicantID := app.Applicant.ID
	state.mu.Unlock()

	s.persistOverride(id, applicantID, override)
	return override, nil
}

func (s *sessionService) persistOverride(id uuid.UUID, applicantID int64, override models.LocalOverride) {
	record := &models.ReviewOverride{
		SessionID:   id,
		ApplicantID: applicantID,
		Status:      override.Status,
		Memo:        override.Memo,
	}
	if err := s.repo.UpsertOverride(record); err != nil {
		log.Printf("⚠️  Failed to persist override for applicant %d: %v\n", applicantID, err)
	}
}

func (s *sessionService) CompleteEvaluation(ctx context.Context, id uuid.UUID) error {
	state, err := s.state(ctx, id)
	if err != nil {
		return err
	}

	jobPostingID := state.jobPostingID

	if err := s.client.UpdateJobPostingStatus(ctx, jobPostingID, models.PostingStatusEvaluationComplete); err != nil {
		return fmt.Errorf("failed to complete evaluation for job posting %d: %w", jobPostingID, err)
	}

	state.mu.Lock()
	state.posting.PostingStatus = models.PostingStatusEvaluationComplete
	state.mu.Unlock()

	log.Printf("✅ Job posting %d marked %s\n", jobPostingID, models.PostingStatusEvaluationComplete)
	return nil
}

// HandleJob implements JobHandler.
func (s *sessionService) HandleJob(ctx context.Context, job Job) error {
	switch job.Kind {
	case JobFetchEvaluation:
		return s.fetchEvaluation(ctx, job.SessionID, job.ApplicationID)
	case JobReconcile:
		s.mu.RLock()
		state, ok := s.sessions[job.SessionID]
		s.mu.RUnlock()
		if !ok {
			return nil
		}
		if err := s.reloadPosting(ctx, state); err != nil {
			return err
		}
		state.mu.RLock()
		selected := state.selectedID
		state.mu.RUnlock()
		if selected == job.ApplicationID {
			return s.fetchEvaluation(ctx, job.SessionID, job.ApplicationID)
		}
		return nil
	default:
		return fmt.Errorf("unknown job kind: %s", job.Kind)
	}
}

func (s *sessionService) fetchEvaluation(ctx context.Context, id uuid.UUID, applicationID int64) error {
	fetch, err := s.client.FetchEvaluationResult(ctx, applicationID)
	s.ApplyEvaluation(id, applicationID, fetch, err)
	return err
}

// PendingJobs implements JobHandler: selected applicants whose evaluation is
// still loading or missing upstream. Failed fetches are not retried, and a
// selection with a fetch already outstanding is skipped.
func (s *sessionService) PendingJobs() []Job {
	s.mu.RLock()
	states := make([]*sessionState, 0, len(s.sessions))
	for _, st := range s.sessions {
		states = append(states, st)
	}
	s.mu.RUnlock()

	now := s.now()
	var jobs []Job
	for _, st := range states {
		st.mu.Lock()
		waiting := st.fetchState == FetchLoading || (st.fetchState == FetchReady && !st.fetched.Present())
		if st.selectedID != 0 && waiting && !now.Before(st.fetchDue) {
			jobs = append(jobs, Job{Kind: JobFetchEvaluation, SessionID: st.id, ApplicationID: st.selectedID})
			st.fetchDue = now.Add(fetchInFlightTTL)
		}
		st.mu.Unlock()
	}
	return jobs
}

func (st *sessionState) snapshot() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()

	posting := *st.posting
	posting.Applications = append([]models.Application(nil), st.posting.Applications...)

	return &Snapshot{
		ID:                    st.id,
		JobPostingID:          st.jobPostingID,
		Posting:               &posting,
		Overrides:             st.overrides.Clone(),
		SelectedApplicationID: st.selectedID,
		Cursor:                st.cursor,
		Panel:                 st.panel,
		FetchState:            st.fetchState,
		Fetched:               st.fetched,
	}
}
