package services

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"alfredoptarigan/applicant-review/internal/models"
)

func TestViewBuilder_LoadingView(t *testing.T) {
	posting := samplePosting()
	app := &posting.Applications[0]
	builder := NewViewBuilder(defaultScores())

	view := builder.Build(ViewInput{
		Application: app,
		Override:    models.LocalOverride{Memo: "면접 추천"},
		Status:      ResolveStatus(nil, app.Applicant.ID, app.Status, ScreenReview),
		FetchState:  FetchLoading,
		Cursor:      NewQuestionCursor(len(app.CoverLetterQuestionAnswers)),
		Panel:       NewPanelState(),
	})

	if view.ApplicationID != 101 || view.Memo != "면접 추천" {
		t.Errorf("view header = %d, %q", view.ApplicationID, view.Memo)
	}
	if view.Status.Display != models.DisplayFailed {
		t.Errorf("status = %s, want failed", view.Status.Display)
	}

	wantResume := ResumeBreakdown{
		Items: []ResumeLine{
			{ResolvedItem: ResolvedItem{Name: "학력", Score: 8, MaxScore: 20, Source: SourceTable}, Content: "서울대학교"},
			{ResolvedItem: ResolvedItem{Name: "경력", Score: 7, MaxScore: 15, Source: SourceTable}, Content: "3년"},
		},
		TotalScore:    15,
		TotalMaxScore: 35,
		ResolvedTotal: 45,
	}
	if diff := cmp.Diff(wantResume, view.Resume); diff != "" {
		t.Errorf("resume mismatch (-want +got):\n%s", diff)
	}

	essay := view.Essay
	if essay.Index != 1 || essay.Total != 3 || essay.HasPrev || !essay.HasNext {
		t.Errorf("essay position = %+v", essay)
	}
	if diff := cmp.Diff([]string{"#백엔드", "#개발", "#기술"}, essay.Keywords); diff != "" {
		t.Errorf("heuristic keywords mismatch (-want +got):\n%s", diff)
	}
	if essay.CharCount != len([]rune(essay.Answer)) {
		t.Errorf("char count = %d", essay.CharCount)
	}
	if len(essay.Criteria) != 1 || essay.Criteria[0].Name != "기본 평가" {
		t.Errorf("criteria = %+v", essay.Criteria)
	}
	if len(essay.Segments) != 1 || essay.Segments[0].Highlighted {
		t.Errorf("segments = %+v", essay.Segments)
	}

	if view.AI.State != AILoading {
		t.Errorf("ai state = %s, want loading", view.AI.State)
	}
}

func TestViewBuilder_FetchedEssay(t *testing.T) {
	posting := samplePosting()
	app := &posting.Applications[0]

	result := &models.EvaluationResult{
		CoverLetterQuestionEvaluations: []models.QuestionEvaluation{
			{
				CoverLetterQuestionID: 2,
				Keywords:              models.KeywordList{"리더십"},
				Summary:               "평가 요약",
				AnswerEvaluations: []models.AnswerEvaluation{
					{CriteriaName: "협업", Grade: "긍정", EvaluatedContent: "팀 프로젝트", EvaluationReason: "구체적"},
				},
			},
		},
		OverallAnalysis: &models.OverallAnalysis{
			OverallEvaluation: "우수한 지원자",
			Strengths:         []string{"협업"},
			Reliability:       ptr(0.92),
		},
	}
	fetched := &FetchedEvaluation{Result: result}

	builder := NewViewBuilder(defaultScores())
	cursor := NewQuestionCursor(3).Next()
	view := builder.Build(ViewInput{
		Application: app,
		FetchState:  FetchReady,
		Fetched:     fetched,
		Cursor:      cursor,
		Panel:       NewPanelState(),
	})

	essay := view.Essay
	if essay.Index != 2 || !essay.HasPrev || !essay.HasNext {
		t.Errorf("essay position = %+v", essay)
	}
	if diff := cmp.Diff([]string{"#리더십"}, essay.Keywords); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
	if essay.Summary != "평가 요약" {
		t.Errorf("summary = %q", essay.Summary)
	}
	if len(essay.Segments) != 2 || !essay.Segments[0].Highlighted || essay.Segments[0].Text != "팀 프로젝트" {
		t.Errorf("segments = %+v", essay.Segments)
	}
	if essay.Criteria[0].Verdict != models.GradePositive {
		t.Errorf("criterion verdict = %s", essay.Criteria[0].Verdict)
	}

	ai := view.AI
	if ai.State != AIReady || ai.ConfidencePercent != 92 || ai.OverallAssessment != "우수한 지원자" {
		t.Errorf("ai = %+v", ai)
	}
	if diff := cmp.Diff([]string{"개선점 분석을 진행 중입니다."}, ai.Weaknesses); diff != "" {
		t.Errorf("weaknesses mismatch (-want +got):\n%s", diff)
	}
}

func TestViewBuilder_QuestionScoresWinForKeywordsAndSummary(t *testing.T) {
	posting := samplePosting()
	app := &posting.Applications[0]
	app.CoverLetterQuestionAnswers[0].Keywords = models.KeywordList{"답변키워드"}

	scores, err := DecodeQuestionScores(json.RawMessage(`{"question1": {"keywords": ["성장", "#도전"], "summary": "점수 요약"}}`))
	if err != nil {
		t.Fatalf("DecodeQuestionScores() error = %v", err)
	}

	view := NewViewBuilder(defaultScores()).Build(ViewInput{
		Application: app,
		FetchState:  FetchReady,
		Fetched:     &FetchedEvaluation{QuestionScores: scores},
		Cursor:      NewQuestionCursor(3),
	})

	if diff := cmp.Diff([]string{"#성장", "#도전"}, view.Essay.Keywords); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
	if view.Essay.Summary != "점수 요약" {
		t.Errorf("summary = %q", view.Essay.Summary)
	}
}

func TestViewBuilder_AIStates(t *testing.T) {
	posting := samplePosting()
	app := &posting.Applications[1]

	tests := []struct {
		name    string
		state   FetchState
		fetched *FetchedEvaluation
		want    AIState
		percent int
	}{
		{name: "loading", state: FetchLoading, want: AILoading},
		{name: "error", state: FetchError, want: AIError},
		{name: "absent", state: FetchReady, fetched: &FetchedEvaluation{}, want: AIAbsent},
		{
			name:    "generic",
			state:   FetchReady,
			fetched: &FetchedEvaluation{Result: &models.EvaluationResult{TotalScore: ptr(70)}},
			want:    AIGeneric,
			percent: 85,
		},
	}

	builder := NewViewBuilder(defaultScores())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := builder.Build(ViewInput{Application: app, FetchState: tt.state, Fetched: tt.fetched})
			if view.AI.State != tt.want || view.AI.ConfidencePercent != tt.percent {
				t.Errorf("ai = %+v, want state %s and %d%%", view.AI, tt.want, tt.percent)
			}
			if view.Essay.Total != 0 || view.Essay.Index != 1 {
				t.Errorf("essay without questions = %+v", view.Essay)
			}
		})
	}
}

func TestViewBuilder_NoApplication(t *testing.T) {
	view := NewViewBuilder(defaultScores()).Build(ViewInput{FetchState: FetchError})
	if view.ApplicationID != 0 || view.AI.State != AIError {
		t.Errorf("view = %+v", view)
	}
}

func TestConfidencePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.85, 85},
		{0.923, 92},
		{1, 100},
		{0, 0},
		{-0.5, 0},
		{87, 87},
		{250, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ConfidencePercent(tt.in); got != tt.want {
			t.Errorf("ConfidencePercent(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHeuristicKeywords(t *testing.T) {
	tests := []struct {
		answer string
		want   []string
	}{
		{"Backend 경험이 있습니다", []string{"#백엔드", "#개발", "#기술"}},
		{"인공지능에 관심이 많습니다", []string{"#AI", "#인공지능", "#기술"}},
		{"팀원들과 함께", []string{"#협업", "#팀워크", "#소통"}},
		{"Frontend 개발", []string{"#프론트엔드", "#UI/UX", "#개발"}},
		{"열심히 하겠습니다", []string{"#지원동기", "#경험", "#목표"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, HeuristicKeywords(tt.answer)); diff != "" {
			t.Errorf("HeuristicKeywords(%q) mismatch (-want +got):\n%s", tt.answer, diff)
		}
	}
}

func TestViewBuilder_ResumeUsesPostingMaxima(t *testing.T) {
	posting := samplePosting()
	posting.ResumeItems = []models.ResumeItem{{Name: "학력", MaxScore: 30}, {Name: "경력", MaxScore: 15}}
	app := &posting.Applications[0]
	fetched := &FetchedEvaluation{Result: &models.EvaluationResult{ResumeEvaluations: []models.ResumeEvaluation{
		{ItemName: "학력", Score: 25},
		{ItemName: "경력", Score: 10},
	}}}

	view := NewViewBuilder(defaultScores()).Build(ViewInput{
		Application: app,
		Posting:     posting,
		FetchState:  FetchReady,
		Fetched:     fetched,
		Cursor:      NewQuestionCursor(len(app.CoverLetterQuestionAnswers)),
	})

	if view.Resume.TotalMaxScore != 45 || view.Resume.TotalScore != 35 {
		t.Errorf("resume totals = %v / %v, want 35 / 45", view.Resume.TotalScore, view.Resume.TotalMaxScore)
	}
	for _, line := range view.Resume.Items {
		if line.OverMax {
			t.Errorf("%s flagged over max: %+v", line.Name, line.ResolvedItem)
		}
	}
}
