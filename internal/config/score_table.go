package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/applicant-review/internal/models"
)

var resumeItemMax = map[string]float64{
	"학력":   20,
	"학점":   10,
	"자격증":  10,
	"어학":   10,
	"수상경력": 10,
	"경력":   15,
	"봉사시간": 5,
}

var resumeItemOrder = []string{"학력", "학점", "자격증", "어학", "수상경력", "경력", "봉사시간"}

// LoadScoreTable reads a YAML score table. An empty path yields the built-in table.
func LoadScoreTable(path string) (*models.ScoreTable, error) {
	if path == "" {
		return DefaultScoreTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read score table: %w", err)
	}

	var table models.ScoreTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score table: %w", err)
	}

	// Defaults apply only to keys the file leaves out; an explicit zero stands.
	var present struct {
		DefaultTotal *float64          `yaml:"default_total"`
		Unmatched    *models.ItemScore `yaml:"unmatched"`
	}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score table: %w", err)
	}
	if present.DefaultTotal == nil {
		table.DefaultTotal = 65
	}
	if present.Unmatched == nil {
		table.Unmatched = models.ItemScore{Score: 0, MaxScore: 10}
	}
	if len(table.ItemOrder) == 0 {
		table.ItemOrder = append([]string(nil), resumeItemOrder...)
	}

	return &table, nil
}

// DefaultScoreTable is the office placeholder data.
func DefaultScoreTable() *models.ScoreTable {
	return &models.ScoreTable{
		DefaultTotal: 65,
		Totals: map[string]float64{
			"박민재":  45,
			"김유성":  42,
			"오나래":  48,
			"김하늘":  40,
			"이나은":  50,
			"134":  68,
			"장영욱":  70,
			"ASDF": 65,
			"김철수":  72,
			"이영희":  60,
			"박민수":  75,
			"정수진":  62,
			"박지민":  75,
			"김태우":  25,
		},
		DefaultBreakdown: breakdown(11, 8, 8, 8, 8, 16, 6),
		Breakdowns: map[string]map[string]models.ItemScore{
			"박민재": breakdown(8, 6, 7, 6, 8, 7, 3),
			"김유성": breakdown(7, 5, 6, 5, 7, 8, 4),
			"오나래": breakdown(9, 7, 8, 7, 8, 6, 3),
			"김하늘": breakdown(6, 5, 5, 5, 6, 9, 4),
			"이나은": breakdown(8, 6, 7, 6, 8, 11, 4),
			"장영욱": breakdown(12, 8, 9, 8, 9, 18, 6),
			"김철수": breakdown(13, 9, 9, 8, 9, 18, 6),
			"박민수": breakdown(14, 9, 10, 9, 10, 18, 5),
			"박지민": breakdown(14, 9, 10, 9, 10, 18, 5),
		},
		Unmatched: models.ItemScore{Score: 0, MaxScore: 10},
		ItemOrder: append([]string(nil), resumeItemOrder...),
	}
}

// breakdown takes scores in resumeItemOrder.
func breakdown(scores ...float64) map[string]models.ItemScore {
	out := make(map[string]models.ItemScore, len(scores))
	for i, s := range scores {
		name := resumeItemOrder[i]
		out[name] = models.ItemScore{Score: s, MaxScore: resumeItemMax[name]}
	}
	return out
}
