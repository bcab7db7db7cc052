package services

import (
	"alfredoptarigan/applicant-review/internal/models"
)

type ScoreSource string

const (
	SourceEvaluation ScoreSource = "evaluation"
	SourceTable      ScoreSource = "table"
	SourceDefault    ScoreSource = "default"
	SourceUnmatched  ScoreSource = "unmatched"
)

type ResolvedItem struct {
	Name     string      `json:"name"`
	Score    float64     `json:"score"`
	MaxScore float64     `json:"maxScore"`
	Source   ScoreSource `json:"source"`
	// OverMax is informational; scores are never clamped.
	OverMax bool `json:"overMax"`
}

type ScoreResolver interface {
	ResolveTotalScore(applicantName string, result *models.EvaluationResult) float64
	ResolveItemScores(applicantName string, posting *models.JobPosting, answers []models.ResumeAnswer, result *models.EvaluationResult) []ResolvedItem
	Table() *models.ScoreTable
}

type scoreResolver struct {
	table *models.ScoreTable
}

func NewScoreResolver(table *models.ScoreTable) ScoreResolver {
	if table == nil {
		table = &models.ScoreTable{}
	}
	return &scoreResolver{table: table}
}

func (s *scoreResolver) Table() *models.ScoreTable {
	return s.table
}

// ResolveTotalScore walks evaluation data, then the name-keyed table, then the default.
func (s *scoreResolver) ResolveTotalScore(applicantName string, result *models.EvaluationResult) float64 {
	if result != nil && len(result.ResumeEvaluations) > 0 {
		var total float64
		for _, e := range result.ResumeEvaluations {
			total += e.Score
		}
		return total
	}

	if total, ok := s.table.Total(applicantName); ok {
		return total
	}

	return s.table.DefaultTotal
}

// ResolveItemScores resolves each resume item independently. When the
// application has no resume answers the table's item order is used. posting
// may be nil; its configured item maxima bound evaluated scores.
func (s *scoreResolver) ResolveItemScores(applicantName string, posting *models.JobPosting, answers []models.ResumeAnswer, result *models.EvaluationResult) []ResolvedItem {
	names := make([]string, 0, len(answers))
	answerMax := make(map[string]float64, len(answers))
	seen := make(map[string]bool, len(answers))
	for _, a := range answers {
		if a.MaxScore != nil && *a.MaxScore > 0 {
			answerMax[a.ItemName] = *a.MaxScore
		}
		if seen[a.ItemName] {
			continue
		}
		seen[a.ItemName] = true
		names = append(names, a.ItemName)
	}
	if len(names) == 0 {
		names = append(names, s.table.ItemOrder...)
	}

	evaluated := make(map[string]models.ResumeEvaluation)
	if result != nil {
		for _, e := range result.ResumeEvaluations {
			if _, dup := evaluated[e.ItemName]; !dup {
				evaluated[e.ItemName] = e
			}
		}
	}

	items := make([]ResolvedItem, 0, len(names))
	for _, name := range names {
		item := s.resolveItem(applicantName, name, posting, evaluated, answerMax)
		item.OverMax = item.MaxScore > 0 && item.Score > item.MaxScore
		items = append(items, item)
	}
	return items
}

func (s *scoreResolver) resolveItem(applicantName, name string, posting *models.JobPosting, evaluated map[string]models.ResumeEvaluation, answerMax map[string]float64) ResolvedItem {
	if e, ok := evaluated[name]; ok {
		return ResolvedItem{
			Name:     name,
			Score:    e.Score,
			MaxScore: s.maxFor(applicantName, name, e.MaxScore, posting, answerMax),
			Source:   SourceEvaluation,
		}
	}

	if row, ok := s.table.Breakdown(applicantName, name); ok {
		return ResolvedItem{Name: name, Score: row.Score, MaxScore: row.MaxScore, Source: SourceTable}
	}

	if row, ok := s.table.DefaultItem(name); ok {
		return ResolvedItem{Name: name, Score: row.Score, MaxScore: row.MaxScore, Source: SourceDefault}
	}

	return ResolvedItem{
		Name:     name,
		Score:    s.table.Unmatched.Score,
		MaxScore: s.table.Unmatched.MaxScore,
		Source:   SourceUnmatched,
	}
}

// maxFor picks the maximum for an evaluated item: the evaluation's own, then
// the posting's configuration, then the answer, then the table.
func (s *scoreResolver) maxFor(applicantName, name string, evaluationMax *float64, posting *models.JobPosting, answerMax map[string]float64) float64 {
	if evaluationMax != nil && *evaluationMax > 0 {
		return *evaluationMax
	}
	if m, ok := posting.ItemMaxScore(name); ok {
		return m
	}
	if m, ok := answerMax[name]; ok {
		return m
	}
	if row, ok := s.table.Breakdown(applicantName, name); ok {
		return row.MaxScore
	}
	if row, ok := s.table.DefaultItem(name); ok {
		return row.MaxScore
	}
	return s.table.Unmatched.MaxScore
}
