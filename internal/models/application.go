package models

import (
	"encoding/json"
	"strings"
)

// RemoteStatus is the application status owned by the recruitment API.
type RemoteStatus string

const (
	RemoteBeforeEvaluation RemoteStatus = "BEFORE_EVALUATION"
	RemoteInProgress       RemoteStatus = "IN_PROGRESS"
	RemoteOnHold           RemoteStatus = "ON_HOLD"
	RemoteAccepted         RemoteStatus = "ACCEPTED"
	RemoteRejected         RemoteStatus = "REJECTED"
)

// DisplayStatus is what the evaluator sees after local overrides are applied.
type DisplayStatus string

const (
	DisplayPassed       DisplayStatus = "passed"
	DisplayFailed       DisplayStatus = "failed"
	DisplayPending      DisplayStatus = "pending"
	DisplayNotEvaluated DisplayStatus = "not-evaluated"
	DisplayUnqualified  DisplayStatus = "unqualified"
)

func (s DisplayStatus) Valid() bool {
	switch s {
	case DisplayPassed, DisplayFailed, DisplayPending, DisplayNotEvaluated, DisplayUnqualified:
		return true
	}
	return false
}

const PostingStatusEvaluationComplete = "EVALUATION_COMPLETE"

type Applicant struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Application struct {
	ID                         int64             `json:"id"`
	Status                     RemoteStatus      `json:"status"`
	Applicant                  Applicant         `json:"applicant"`
	ResumeItemAnswers          []ResumeAnswer    `json:"resumeItemAnswers"`
	CoverLetterQuestionAnswers []EssayAnswer     `json:"coverLetterQuestionAnswers"`
	EvaluationResult           *EvaluationResult `json:"evaluationResult,omitempty"`
}

type ResumeAnswer struct {
	ResumeItemID int64    `json:"resumeItemId"`
	ItemName     string   `json:"resumeItemName"`
	Content      string   `json:"resumeContent"`
	Score        *float64 `json:"score,omitempty"`
	MaxScore     *float64 `json:"maxScore,omitempty"`
}

type EssayAnswer struct {
	ID                    int64       `json:"id"`
	CoverLetterQuestionID int64       `json:"coverLetterQuestionId"`
	QuestionText          string      `json:"questionContent"`
	AnswerText            string      `json:"answerContent"`
	MaxCharacters         int         `json:"maxCharacters"`
	Keywords              KeywordList `json:"answerKeywords,omitempty"`
	Summary               string      `json:"answerSummary,omitempty"`
}

// CharCount counts characters, not bytes, so Hangul answers report their visible length.
func (e EssayAnswer) CharCount() int {
	return len([]rune(e.AnswerText))
}

// KeywordList accepts a JSON array, a JSON array encoded as a string, or a bare
// string. Anything else decodes as no keywords.
type KeywordList []string

func (k *KeywordList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*k = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*k = list
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*k = nil
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*k = nil
		return nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		*k = list
		return nil
	}
	*k = KeywordList{raw}
	return nil
}

type ResumeItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type,omitempty"`
	MaxScore float64 `json:"maxScore"`
}

type CoverLetterQuestion struct {
	ID            int64  `json:"id"`
	Content       string `json:"content"`
	MaxCharacters int    `json:"maxCharacters"`
}

// JobPosting mirrors GET /job-postings/{id}/with-applications.
type JobPosting struct {
	ID                   int64                 `json:"id"`
	Title                string                `json:"title"`
	TeamDepartment       string                `json:"teamDepartment,omitempty"`
	JobRole              string                `json:"jobRole,omitempty"`
	PassingScore         *float64              `json:"passingScore,omitempty"`
	PostingStatus        string                `json:"postingStatus,omitempty"`
	CompanyName          string                `json:"companyName,omitempty"`
	ResumeItems          []ResumeItem          `json:"resumeItems"`
	CoverLetterQuestions []CoverLetterQuestion `json:"coverLetterQuestions"`
	Applications         []Application         `json:"applications"`
}

// ItemMaxScore returns the posting's configured maximum for a resume item.
func (p *JobPosting) ItemMaxScore(name string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	for _, item := range p.ResumeItems {
		if item.Name == name && item.MaxScore > 0 {
			return item.MaxScore, true
		}
	}
	return 0, false
}

func (p *JobPosting) FindApplication(id int64) (*Application, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Applications {
		if p.Applications[i].ID == id {
			return &p.Applications[i], true
		}
	}
	return nil, false
}
