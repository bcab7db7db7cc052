package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

type Grade string

const (
	GradePositive Grade = "positive"
	GradeNegative Grade = "negative"
	GradeNeutral  Grade = "neutral"
)

// ParseGrade folds the grade spellings seen in evaluation payloads.
func ParseGrade(label string) Grade {
	l := strings.TrimSpace(label)
	switch {
	case l == "긍정" || strings.EqualFold(l, "POSITIVE"):
		return GradePositive
	case l == "부정" || strings.EqualFold(l, "NEGATIVE"):
		return GradeNegative
	default:
		return GradeNeutral
	}
}

type AnswerEvaluation struct {
	CriteriaName     string `json:"evaluationCriteriaName"`
	Grade            string `json:"grade"`
	EvaluatedContent string `json:"evaluatedContent"`
	EvaluationReason string `json:"evaluationReason"`
}

func (a *AnswerEvaluation) UnmarshalJSON(data []byte) error {
	var raw struct {
		CriteriaName     string `json:"evaluationCriteriaName"`
		AltCriteriaName  string `json:"criteriaName"`
		Grade            string `json:"grade"`
		EvaluatedContent string `json:"evaluatedContent"`
		AltContent       string `json:"content"`
		EvaluationReason string `json:"evaluationReason"`
		AltReason        string `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = AnswerEvaluation{
		CriteriaName:     firstNonEmpty(raw.CriteriaName, raw.AltCriteriaName),
		Grade:            raw.Grade,
		EvaluatedContent: firstNonEmpty(raw.EvaluatedContent, raw.AltContent),
		EvaluationReason: firstNonEmpty(raw.EvaluationReason, raw.AltReason),
	}
	return nil
}

func (a AnswerEvaluation) ParsedGrade() Grade {
	return ParseGrade(a.Grade)
}

type ResumeEvaluation struct {
	ResumeItemID int64    `json:"resumeItemId,omitempty"`
	ItemName     string   `json:"resumeItemName"`
	Content      string   `json:"resumeContent,omitempty"`
	Score        float64  `json:"score"`
	MaxScore     *float64 `json:"maxScore,omitempty"`
}

type QuestionEvaluation struct {
	CoverLetterQuestionID int64              `json:"coverLetterQuestionId,omitempty"`
	Keywords              KeywordList        `json:"keywords,omitempty"`
	Summary               string             `json:"summary,omitempty"`
	AnswerEvaluations     []AnswerEvaluation `json:"answerEvaluations,omitempty"`
}

type OverallAnalysis struct {
	OverallEvaluation string   `json:"overallEvaluation,omitempty"`
	Strengths         []string `json:"strengths,omitempty"`
	Improvements      []string `json:"improvements,omitempty"`
	Recommendation    string   `json:"aiRecommendation,omitempty"`
	Reliability       *float64 `json:"aiReliability,omitempty"`
}

// EvaluationResult is the AI evaluation attached to an application. Upstream
// sends it in two shapes: the detailed one (resumeEvaluations, overallAnalysis)
// and the stored one where every section is a JSON string. Both decode here.
type EvaluationResult struct {
	TotalScore                     *float64             `json:"totalScore,omitempty"`
	ResumeEvaluations              []ResumeEvaluation   `json:"resumeEvaluations,omitempty"`
	CoverLetterQuestionEvaluations []QuestionEvaluation `json:"coverLetterQuestionEvaluations,omitempty"`
	OverallAnalysis                *OverallAnalysis     `json:"overallAnalysis,omitempty"`
	CoverLetterScores              json.RawMessage      `json:"coverLetterScores,omitempty"`

	// DecodeWarnings lists nested sections that were malformed and dropped.
	DecodeWarnings []string `json:"-"`
}

// Present reports whether any section of the result carries data.
func (r *EvaluationResult) Present() bool {
	if r == nil {
		return false
	}
	return r.TotalScore != nil ||
		len(r.ResumeEvaluations) > 0 ||
		len(r.CoverLetterQuestionEvaluations) > 0 ||
		r.OverallAnalysis != nil ||
		len(r.CoverLetterScores) > 0
}

func (r *EvaluationResult) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner EvaluationResult
		ok, err := UnmarshalNested(trimmed, &inner)
		if err != nil {
			*r = EvaluationResult{DecodeWarnings: []string{"evaluationResult: " + err.Error()}}
			return nil
		}
		if ok {
			*r = inner
		}
		return nil
	}

	var aux struct {
		TotalScore                     json.RawMessage `json:"totalScore"`
		TotalScoreSnake                json.RawMessage `json:"total_score"`
		ResumeEvaluations              json.RawMessage `json:"resumeEvaluations"`
		ResumeScores                   json.RawMessage `json:"resumeScores"`
		ResumeScoresSnake              json.RawMessage `json:"resume_scores"`
		CoverLetterQuestionEvaluations json.RawMessage `json:"coverLetterQuestionEvaluations"`
		OverallAnalysis                json.RawMessage `json:"overallAnalysis"`
		OverallEvaluation              json.RawMessage `json:"overallEvaluation"`
		OverallEvaluationSnake         json.RawMessage `json:"overall_evaluation"`
		CoverLetterScores              json.RawMessage `json:"coverLetterScores"`
		CoverLetterScoresSnake         json.RawMessage `json:"cover_letter_scores"`
	}
	if err := json.Unmarshal(trimmed, &aux); err != nil {
		// A result that is not an object never blocks the enclosing payload.
		*r = EvaluationResult{DecodeWarnings: []string{"evaluationResult: " + err.Error()}}
		return nil
	}

	var result EvaluationResult
	if raw := firstRaw(aux.TotalScore, aux.TotalScoreSnake); raw != nil {
		var total float64
		if err := json.Unmarshal(raw, &total); err != nil {
			result.DecodeWarnings = append(result.DecodeWarnings, "totalScore: "+err.Error())
		} else {
			result.TotalScore = &total
		}
	}

	resumeRaw := firstRaw(aux.ResumeEvaluations, aux.ResumeScores, aux.ResumeScoresSnake)
	if evals, err := decodeResumeEvaluations(resumeRaw); err != nil {
		result.DecodeWarnings = append(result.DecodeWarnings, "resumeEvaluations: "+err.Error())
	} else {
		result.ResumeEvaluations = evals
	}

	var questions []QuestionEvaluation
	if _, err := UnmarshalNested(aux.CoverLetterQuestionEvaluations, &questions); err != nil {
		result.DecodeWarnings = append(result.DecodeWarnings, "coverLetterQuestionEvaluations: "+err.Error())
	} else {
		result.CoverLetterQuestionEvaluations = questions
	}

	if analysis, err := decodeOverallAnalysis(aux.OverallAnalysis, firstRaw(aux.OverallEvaluation, aux.OverallEvaluationSnake)); err != nil {
		result.DecodeWarnings = append(result.DecodeWarnings, "overallAnalysis: "+err.Error())
	} else {
		result.OverallAnalysis = analysis
	}

	if scores := firstRaw(aux.CoverLetterScores, aux.CoverLetterScoresSnake); len(scores) > 0 {
		result.CoverLetterScores = append(json.RawMessage(nil), scores...)
	}

	*r = result
	return nil
}

func decodeResumeEvaluations(raw json.RawMessage) ([]ResumeEvaluation, error) {
	var list []ResumeEvaluation
	_, listErr := UnmarshalNested(raw, &list)
	if listErr == nil {
		return list, nil
	}

	// Stored results keep resume scores as {"itemName": score}.
	var byName map[string]float64
	if _, err := UnmarshalNested(raw, &byName); err != nil {
		return nil, listErr
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		list = append(list, ResumeEvaluation{ItemName: name, Score: byName[name]})
	}
	return list, nil
}

func decodeOverallAnalysis(analysisRaw, evaluationRaw json.RawMessage) (*OverallAnalysis, error) {
	var analysis OverallAnalysis
	ok, err := UnmarshalNested(analysisRaw, &analysis)
	if err != nil {
		return nil, err
	}
	if ok {
		return &analysis, nil
	}

	if len(bytes.TrimSpace(evaluationRaw)) == 0 {
		return nil, nil
	}
	if ok, err := UnmarshalNested(evaluationRaw, &analysis); err == nil {
		if ok {
			return &analysis, nil
		}
		return nil, nil
	}

	// Plain prose in overallEvaluation is the assessment itself.
	var text string
	if err := json.Unmarshal(evaluationRaw, &text); err != nil || strings.TrimSpace(text) == "" {
		return nil, err
	}
	return &OverallAnalysis{OverallEvaluation: text}, nil
}

func firstRaw(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		t := bytes.TrimSpace(v)
		if len(t) > 0 && !bytes.Equal(t, []byte("null")) {
			return v
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// EvaluationFetch is the body of GET /applications/{id}/evaluation-result.
type EvaluationFetch struct {
	Success           bool              `json:"success"`
	Saved             bool              `json:"saved"`
	Message           string            `json:"message,omitempty"`
	EvaluationResult  *EvaluationResult `json:"evaluationResult,omitempty"`
	CoverLetterScores json.RawMessage   `json:"coverLetterScores,omitempty"`
}

// Scores returns the per-question payload, preferring the top-level copy.
func (f *EvaluationFetch) Scores() json.RawMessage {
	if f == nil {
		return nil
	}
	if raw := firstRaw(f.CoverLetterScores); raw != nil {
		return raw
	}
	if f.EvaluationResult != nil {
		return firstRaw(f.EvaluationResult.CoverLetterScores)
	}
	return nil
}
