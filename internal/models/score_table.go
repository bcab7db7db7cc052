package models

// ItemScore is one resume item score against its nominal maximum.
type ItemScore struct {
	Score    float64 `yaml:"score" json:"score"`
	MaxScore float64 `yaml:"max_score" json:"maxScore"`
}

// ScoreTable is the name-keyed placeholder scoring data used until upstream
// computes resume scores itself. Keys are applicant display names, so two
// applicants sharing a name share a row.
type ScoreTable struct {
	DefaultTotal     float64                         `yaml:"default_total"`
	Totals           map[string]float64              `yaml:"totals"`
	DefaultBreakdown map[string]ItemScore            `yaml:"default_breakdown"`
	Breakdowns       map[string]map[string]ItemScore `yaml:"breakdowns"`
	Unmatched        ItemScore                       `yaml:"unmatched"`
	// ItemOrder fixes the display order of breakdown items.
	ItemOrder []string `yaml:"item_order"`
}

func (t *ScoreTable) Total(name string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.Totals[name]
	return v, ok
}

func (t *ScoreTable) Breakdown(name, item string) (ItemScore, bool) {
	if t == nil {
		return ItemScore{}, false
	}
	if rows, ok := t.Breakdowns[name]; ok {
		if s, ok := rows[item]; ok {
			return s, true
		}
	}
	return ItemScore{}, false
}

func (t *ScoreTable) DefaultItem(item string) (ItemScore, bool) {
	if t == nil {
		return ItemScore{}, false
	}
	s, ok := t.DefaultBreakdown[item]
	return s, ok
}
