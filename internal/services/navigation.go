package services

import "fmt"

// QuestionCursor is the essay question position, 1-based and clamped to [1, Total].
type QuestionCursor struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

func NewQuestionCursor(total int) QuestionCursor {
	if total < 0 {
		total = 0
	}
	return QuestionCursor{Index: 1, Total: total}
}

// Next is a no-op on the last question.
func (c QuestionCursor) Next() QuestionCursor {
	if c.Index < c.Total {
		c.Index++
	}
	return c
}

// Prev is a no-op on the first question.
func (c QuestionCursor) Prev() QuestionCursor {
	if c.Index > 1 {
		c.Index--
	}
	return c
}

func (c QuestionCursor) Reset(total int) QuestionCursor {
	return NewQuestionCursor(total)
}

func (c QuestionCursor) HasNext() bool { return c.Index < c.Total }
func (c QuestionCursor) HasPrev() bool { return c.Index > 1 }

type Tab string

const (
	TabInfo  Tab = "info"
	TabEssay Tab = "essay"
	TabAI    Tab = "ai"
)

func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabInfo, TabEssay, TabAI:
		return Tab(s), nil
	}
	return "", fmt.Errorf("unknown tab: %q", s)
}

// PanelState is the detail panel of the review screen.
type PanelState struct {
	Tab              Tab  `json:"tab"`
	ScoreDetailsOpen bool `json:"scoreDetailsOpen"`
}

func NewPanelState() PanelState {
	return PanelState{Tab: TabInfo}
}

func (p PanelState) WithTab(tab Tab) PanelState {
	p.Tab = tab
	return p
}

func (p PanelState) ToggleScoreDetails() PanelState {
	p.ScoreDetailsOpen = !p.ScoreDetailsOpen
	return p
}

// ForNewApplicant keeps the tab and closes score details.
func (p PanelState) ForNewApplicant() PanelState {
	p.ScoreDetailsOpen = false
	return p
}
