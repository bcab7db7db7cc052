package models

type CreateSessionRequest struct {
	JobPostingID int64 `json:"jobPostingId"`
}

type SelectionRequest struct {
	ApplicationID int64 `json:"applicationId"`
}

type StatusRequest struct {
	Status DisplayStatus `json:"status"`
}

type MemoRequest struct {
	Memo string `json:"memo"`
}

type TabRequest struct {
	Tab string `json:"tab"`
}

type HighlightRequest struct {
	AnswerText  string             `json:"answerText"`
	Evaluations []AnswerEvaluation `json:"evaluations"`
}

// OverrideResponse is returned by status, memo and evaluation writes.
type OverrideResponse struct {
	ApplicationID int64         `json:"applicationId"`
	Status        DisplayStatus `json:"status,omitempty"`
	Memo          string        `json:"memo"`
	Saved         bool          `json:"saved"`
	Error         string        `json:"error,omitempty"`
}
