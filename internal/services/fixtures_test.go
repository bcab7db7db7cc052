package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/applicant-review/internal/config"
	"alfredoptarigan/applicant-review/internal/models"
	"alfredoptarigan/applicant-review/internal/repositories"
)

func ptr(v float64) *float64 { return &v }

func application(id, applicantID int64, name string, status models.RemoteStatus) models.Application {
	return models.Application{
		ID:        id,
		Status:    status,
		Applicant: models.Applicant{ID: applicantID, Name: name, Email: name + "@example.com"},
	}
}

func samplePosting() *models.JobPosting {
	first := application(101, 1, "박민재", models.RemoteRejected)
	first.ResumeItemAnswers = []models.ResumeAnswer{
		{ResumeItemID: 1, ItemName: "학력", Content: "서울대학교"},
		{ResumeItemID: 2, ItemName: "경력", Content: "3년"},
	}
	first.CoverLetterQuestionAnswers = []models.EssayAnswer{
		{ID: 11, CoverLetterQuestionID: 1, QuestionText: "지원 동기", AnswerText: "백엔드 개발자로 성장하고 싶습니다", MaxCharacters: 500},
		{ID: 12, CoverLetterQuestionID: 2, QuestionText: "협업 경험", AnswerText: "팀 프로젝트를 이끌었습니다", MaxCharacters: 500},
		{ID: 13, CoverLetterQuestionID: 3, QuestionText: "목표", AnswerText: "꾸준히 배우겠습니다", MaxCharacters: 300},
	}

	return &models.JobPosting{
		ID:    7,
		Title: "백엔드 개발자",
		Applications: []models.Application{
			first,
			application(102, 2, "김유성", models.RemoteAccepted),
			application(103, 3, "오나래", models.RemoteBeforeEvaluation),
			application(104, 4, "이나은", models.RemoteOnHold),
		},
	}
}

func defaultScores() ScoreResolver {
	return NewScoreResolver(config.DefaultScoreTable())
}

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]models.ReviewSession
	overrides map[uuid.UUID]map[int64]models.ReviewOverride
	upsertErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:  make(map[uuid.UUID]models.ReviewSession),
		overrides: make(map[uuid.UUID]map[int64]models.ReviewOverride),
	}
}

func (r *fakeSessionRepo) Create(session *models.ReviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) FindByID(id uuid.UUID) (*models.ReviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (r *fakeSessionRepo) Touch(id uuid.UUID) error { return nil }

func (r *fakeSessionRepo) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.overrides, id)
	return nil
}

func (r *fakeSessionRepo) UpsertOverride(o *models.ReviewOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if r.overrides[o.SessionID] == nil {
		r.overrides[o.SessionID] = make(map[int64]models.ReviewOverride)
	}
	r.overrides[o.SessionID][o.ApplicantID] = *o
	return nil
}

func (r *fakeSessionRepo) FindOverrides(sessionID uuid.UUID) ([]models.ReviewOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ReviewOverride
	for _, o := range r.overrides[sessionID] {
		out = append(out, o)
	}
	return out, nil
}

type fakeRecruitClient struct {
	mu            sync.Mutex
	posting       *models.JobPosting
	fetches       map[int64]*models.EvaluationFetch
	fetchErr      error
	saveErr       error
	completeErr   error
	saved         []SaveEvaluationRequest
	postingLoads  int
	postingStatus string
}

func (c *fakeRecruitClient) FetchJobPostingWithApplications(ctx context.Context, jobPostingID int64) (*models.JobPosting, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.postingLoads++
	p := *c.posting
	p.Applications = append([]models.Application(nil), c.posting.Applications...)
	return &p, nil
}

func (c *fakeRecruitClient) FetchEvaluationResult(ctx context.Context, applicationID int64) (*models.EvaluationFetch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.fetches[applicationID], nil
}

func (c *fakeRecruitClient) SaveEvaluation(ctx context.Context, applicationID int64, req SaveEvaluationRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved = append(c.saved, req)
	return nil
}

func (c *fakeRecruitClient) UpdateJobPostingStatus(ctx context.Context, jobPostingID int64, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completeErr != nil {
		return c.completeErr
	}
	c.postingStatus = status
	return nil
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []Job
}

func (q *recordingQueue) EnqueueJob(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *recordingQueue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Job(nil), q.jobs...)
}
