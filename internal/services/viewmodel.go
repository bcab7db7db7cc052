package services

import (
	"math"
	"strings"

	"alfredoptarigan/applicant-review/internal/models"
)

// FetchState tracks the evaluation-result request for the selected applicant.
type FetchState string

const (
	FetchLoading FetchState = "loading"
	FetchError   FetchState = "error"
	FetchReady   FetchState = "ready"
)

type AIState string

const (
	AILoading AIState = "loading"
	AIError   AIState = "error"
	AIAbsent  AIState = "absent"
	AIGeneric AIState = "generic"
	AIReady   AIState = "ready"
)

// ViewInput carries everything Build reads. Posting may be nil; it supplies
// the configured resume item maxima.
type ViewInput struct {
	Application *models.Application
	Posting     *models.JobPosting
	Override    models.LocalOverride
	Status      Resolution
	FetchState  FetchState
	Fetched     *FetchedEvaluation
	Cursor      QuestionCursor
	Panel       PanelState
}

type View struct {
	ApplicationID int64            `json:"applicationId"`
	Applicant     models.Applicant `json:"applicant"`
	Status        Resolution       `json:"status"`
	Memo          string           `json:"memo"`
	Panel         PanelState       `json:"panel"`
	FetchState    FetchState       `json:"fetchState"`
	Resume        ResumeBreakdown  `json:"resume"`
	Essay         EssayView        `json:"essay"`
	AI            AIView           `json:"ai"`
}

type ResumeLine struct {
	ResolvedItem
	Content string `json:"content"`
}

type ResumeBreakdown struct {
	Items         []ResumeLine `json:"items"`
	TotalScore    float64      `json:"totalScore"`
	TotalMaxScore float64      `json:"totalMaxScore"`
	// ResolvedTotal is the headline score used for lists, saves and statistics.
	ResolvedTotal float64 `json:"resolvedTotal"`
}

type Criterion struct {
	Name    string       `json:"name"`
	Grade   string       `json:"grade"`
	Verdict models.Grade `json:"verdict"`
	Content string       `json:"content"`
	Reason  string       `json:"reason"`
}

type EssayView struct {
	Index         int         `json:"index"`
	Total         int         `json:"total"`
	HasPrev       bool        `json:"hasPrev"`
	HasNext       bool        `json:"hasNext"`
	Question      string      `json:"question"`
	Answer        string      `json:"answer"`
	CharCount     int         `json:"charCount"`
	MaxCharacters int         `json:"maxCharacters"`
	Keywords      []string    `json:"keywords"`
	Summary       string      `json:"summary"`
	Criteria      []Criterion `json:"criteria"`
	Segments      []Segment   `json:"segments"`
}

type AIView struct {
	State             AIState  `json:"state"`
	OverallAssessment string   `json:"overallAssessment"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	KeyInsights       []string `json:"keyInsights"`
	Recommendation    string   `json:"recommendation"`
	ConfidencePercent int      `json:"confidencePercent"`
}

type topicRule struct {
	needles  []string
	keywords []string
}

var topicVocabulary = []topicRule{
	{needles: []string{"백엔드", "Backend"}, keywords: []string{"#백엔드", "#개발", "#기술"}},
	{needles: []string{"AI", "인공지능"}, keywords: []string{"#AI", "#인공지능", "#기술"}},
	{needles: []string{"협업", "팀"}, keywords: []string{"#협업", "#팀워크", "#소통"}},
	{needles: []string{"프론트엔드", "Frontend"}, keywords: []string{"#프론트엔드", "#UI/UX", "#개발"}},
}

var genericKeywords = []string{"#지원동기", "#경험", "#목표"}

type ViewBuilder interface {
	Build(in ViewInput) View
}

type viewBuilder struct {
	scores ScoreResolver
}

func NewViewBuilder(scores ScoreResolver) ViewBuilder {
	return &viewBuilder{scores: scores}
}

// Build composes the three detail tabs. Inputs are not modified.
func (b *viewBuilder) Build(in ViewInput) View {
	view := View{
		Status:     in.Status,
		Memo:       in.Override.Memo,
		Panel:      in.Panel,
		FetchState: in.FetchState,
	}
	if in.Application == nil {
		view.Essay = EssayView{Index: 1, Keywords: []string{}, Criteria: []Criterion{}, Segments: []Segment{}}
		view.AI = aiPlaceholder(in.FetchState)
		return view
	}

	app := in.Application
	result := effectiveResult(app, in.Fetched)

	view.ApplicationID = app.ID
	view.Applicant = app.Applicant
	view.Resume = b.resumeBreakdown(app, in.Posting, result)
	view.Essay = essayView(app, result, in.Fetched, in.Cursor)
	view.AI = aiView(in.FetchState, result)
	return view
}

// effectiveResult prefers a freshly fetched result over the one embedded in the listing.
func effectiveResult(app *models.Application, fetched *FetchedEvaluation) *models.EvaluationResult {
	if fetched != nil && fetched.Result.Present() {
		return fetched.Result
	}
	if app.EvaluationResult.Present() {
		return app.EvaluationResult
	}
	return nil
}

func (b *viewBuilder) resumeBreakdown(app *models.Application, posting *models.JobPosting, result *models.EvaluationResult) ResumeBreakdown {
	content := make(map[string]string, len(app.ResumeItemAnswers))
	for _, a := range app.ResumeItemAnswers {
		if _, ok := content[a.ItemName]; !ok {
			content[a.ItemName] = a.Content
		}
	}

	items := b.scores.ResolveItemScores(app.Applicant.Name, posting, app.ResumeItemAnswers, result)
	out := ResumeBreakdown{
		Items:         make([]ResumeLine, 0, len(items)),
		ResolvedTotal: b.scores.ResolveTotalScore(app.Applicant.Name, result),
	}
	for _, item := range items {
		out.Items = append(out.Items, ResumeLine{ResolvedItem: item, Content: content[item.Name]})
		out.TotalScore += item.Score
		out.TotalMaxScore += item.MaxScore
	}
	return out
}

func essayView(app *models.Application, result *models.EvaluationResult, fetched *FetchedEvaluation, cursor QuestionCursor) EssayView {
	total := len(app.CoverLetterQuestionAnswers)
	if cursor.Total != total || cursor.Index < 1 || cursor.Index > max(total, 1) {
		cursor = NewQuestionCursor(total)
	}

	view := EssayView{
		Index:    cursor.Index,
		Total:    total,
		HasPrev:  cursor.HasPrev(),
		HasNext:  cursor.HasNext(),
		Keywords: []string{},
		Criteria: []Criterion{},
		Segments: []Segment{},
	}
	if total == 0 {
		return view
	}

	answer := app.CoverLetterQuestionAnswers[cursor.Index-1]
	evaluation := questionEvaluation(result, answer, cursor.Index)

	var scores QuestionScores
	if fetched != nil {
		scores = fetched.QuestionScores
	} else if result != nil {
		scores, _ = DecodeQuestionScores(result.CoverLetterScores)
	}
	score, _ := scores.Lookup(cursor.Index)

	view.Question = answer.QuestionText
	view.Answer = answer.AnswerText
	view.CharCount = answer.CharCount()
	view.MaxCharacters = answer.MaxCharacters
	view.Keywords = resolveKeywords(answer, evaluation, score)
	view.Summary = firstText(score.Summary, evalSummary(evaluation), answer.Summary)

	var evals []models.AnswerEvaluation
	if evaluation != nil {
		evals = evaluation.AnswerEvaluations
	}
	view.Criteria = criteria(evals)
	view.Segments = RenderHighlights(answer.AnswerText, evals)
	return view
}

// questionEvaluation matches by question ID first, then by position.
func questionEvaluation(result *models.EvaluationResult, answer models.EssayAnswer, index int) *models.QuestionEvaluation {
	if result == nil {
		return nil
	}
	if answer.CoverLetterQuestionID != 0 {
		for i := range result.CoverLetterQuestionEvaluations {
			if result.CoverLetterQuestionEvaluations[i].CoverLetterQuestionID == answer.CoverLetterQuestionID {
				return &result.CoverLetterQuestionEvaluations[i]
			}
		}
	}
	if index >= 1 && index <= len(result.CoverLetterQuestionEvaluations) {
		q := &result.CoverLetterQuestionEvaluations[index-1]
		if q.CoverLetterQuestionID == 0 || answer.CoverLetterQuestionID == 0 {
			return q
		}
	}
	return nil
}

func resolveKeywords(answer models.EssayAnswer, evaluation *models.QuestionEvaluation, score QuestionScore) []string {
	candidates := [][]string{score.Keywords}
	if evaluation != nil {
		candidates = append(candidates, evaluation.Keywords)
	}
	candidates = append(candidates, answer.Keywords)

	for _, c := range candidates {
		if tags := hashTags(c); len(tags) > 0 {
			return tags
		}
	}
	return HeuristicKeywords(answer.AnswerText)
}

// HeuristicKeywords matches the answer against a small topic vocabulary.
func HeuristicKeywords(answer string) []string {
	for _, rule := range topicVocabulary {
		for _, needle := range rule.needles {
			if strings.Contains(answer, needle) {
				return append([]string(nil), rule.keywords...)
			}
		}
	}
	return append([]string(nil), genericKeywords...)
}

func hashTags(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if !strings.HasPrefix(k, "#") {
			k = "#" + k
		}
		out = append(out, k)
	}
	return out
}

func criteria(evals []models.AnswerEvaluation) []Criterion {
	if len(evals) == 0 {
		return []Criterion{{
			Name:    "기본 평가",
			Verdict: models.GradeNeutral,
			Content: "평가 결과를 기다려주세요.",
			Reason:  "평가 데이터를 불러오는 중입니다.",
		}}
	}

	out := make([]Criterion, 0, len(evals))
	for _, e := range evals {
		out = append(out, Criterion{
			Name:    firstText(e.CriteriaName, "평가"),
			Grade:   e.Grade,
			Verdict: e.ParsedGrade(),
			Content: e.EvaluatedContent,
			Reason:  e.EvaluationReason,
		})
	}
	return out
}

func aiView(state FetchState, result *models.EvaluationResult) AIView {
	if state == FetchLoading || state == FetchError {
		return aiPlaceholder(state)
	}
	if result == nil {
		return aiPlaceholder(state)
	}

	analysis := result.OverallAnalysis
	if analysis == nil {
		return AIView{
			State:             AIGeneric,
			OverallAssessment: "AI가 이력서와 자기소개서를 종합 분석한 결과입니다.",
			Strengths:         []string{"전반적으로 우수한 역량을 보여줍니다."},
			Weaknesses:        []string{"지속적인 성장 가능성이 있습니다."},
			KeyInsights: []string{
				"이력서와 자기소개서를 종합한 역량 분석",
				"지원자별 맞춤형 평가 기준 적용",
				"AI 기반 객관적 평가 결과",
			},
			Recommendation:    "지원자의 강점을 바탕으로 한 맞춤형 추천 결과입니다.",
			ConfidencePercent: ConfidencePercent(0.85),
		}
	}

	var reliability float64
	if analysis.Reliability != nil {
		reliability = *analysis.Reliability
	}
	return AIView{
		State:             AIReady,
		OverallAssessment: firstText(analysis.OverallEvaluation, "종합 평가를 진행 중입니다."),
		Strengths:         orDefault(analysis.Strengths, "강점 분석을 진행 중입니다."),
		Weaknesses:        orDefault(analysis.Improvements, "개선점 분석을 진행 중입니다."),
		KeyInsights: []string{
			"AI 분석을 통한 종합적인 평가 결과",
			"이력서와 자기소개서를 종합한 역량 분석",
			"지원자별 맞춤형 평가 기준 적용",
		},
		Recommendation:    firstText(analysis.Recommendation, "AI 추천 결과를 생성 중입니다."),
		ConfidencePercent: ConfidencePercent(reliability),
	}
}

func aiPlaceholder(state FetchState) AIView {
	if state == FetchError {
		return AIView{
			State:             AIError,
			OverallAssessment: "평가 데이터를 불러오는 중 오류가 발생했습니다.",
			Strengths:         []string{"오류로 인해 데이터를 불러올 수 없습니다."},
			Weaknesses:        []string{"오류로 인해 데이터를 불러올 수 없습니다."},
			KeyInsights:       []string{"평가 결과를 불러오는 중 오류가 발생했습니다."},
			Recommendation:    "오류 발생",
		}
	}

	view := AIView{
		State:             AIAbsent,
		OverallAssessment: "평가 데이터를 불러오는 중입니다.",
		Strengths:         []string{"데이터를 불러오는 중입니다."},
		Weaknesses:        []string{"데이터를 불러오는 중입니다."},
		KeyInsights:       []string{"평가 결과를 기다려주세요."},
		Recommendation:    "평가 중",
	}
	if state == FetchLoading {
		view.State = AILoading
	}
	return view
}

// ConfidencePercent turns a 0-1 ratio into a 0-100 percentage. Values above
// 1 are taken as already being percentages.
func ConfidencePercent(ratio float64) int {
	if math.IsNaN(ratio) || ratio <= 0 {
		return 0
	}
	if ratio > 1 {
		return int(math.Min(math.Round(ratio), 100))
	}
	return int(math.Round(ratio * 100))
}

func evalSummary(q *models.QuestionEvaluation) string {
	if q == nil {
		return ""
	}
	return q.Summary
}

func firstText(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func orDefault(values []string, fallback string) []string {
	if len(values) == 0 {
		return []string{fallback}
	}
	return append([]string(nil), values...)
}
