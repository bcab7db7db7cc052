package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"alfredoptarigan/applicant-review/internal/models"
)

// QuestionScore is the per-question entry of a coverLetterScores payload.
type QuestionScore struct {
	Keywords models.KeywordList `json:"keywords"`
	Summary  string             `json:"summary"`
}

// QuestionScores keeps coverLetterScores entries in lookup order: integer
// keys ascending, then the remaining keys as they appeared.
type QuestionScores struct {
	keys   []string
	values map[string]json.RawMessage
}

func (q QuestionScores) Len() int {
	return len(q.keys)
}

// DecodeQuestionScores accepts an object, an array, or either encoded as a
// JSON string. Array entries are keyed from 1 like question numbers. Absent
// input yields an empty set.
func DecodeQuestionScores(raw json.RawMessage) (QuestionScores, error) {
	var body json.RawMessage
	ok, err := models.UnmarshalNested(raw, &body)
	if err != nil || !ok {
		return QuestionScores{}, err
	}

	body = bytes.TrimSpace(body)
	switch {
	case len(body) > 0 && body[0] == '[':
		var list []json.RawMessage
		if err := json.Unmarshal(body, &list); err != nil {
			return QuestionScores{}, fmt.Errorf("failed to parse question scores: %w", err)
		}
		q := QuestionScores{values: make(map[string]json.RawMessage, len(list))}
		for i, v := range list {
			key := strconv.Itoa(i + 1)
			q.keys = append(q.keys, key)
			q.values[key] = v
		}
		return q, nil
	case len(body) > 0 && body[0] == '{':
		return decodeOrderedObject(body)
	default:
		return QuestionScores{}, fmt.Errorf("failed to parse question scores: unexpected %.20q", body)
	}
}

func decodeOrderedObject(body []byte) (QuestionScores, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return QuestionScores{}, fmt.Errorf("failed to parse question scores: %w", err)
	}

	q := QuestionScores{values: make(map[string]json.RawMessage)}
	var numeric, named []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return QuestionScores{}, fmt.Errorf("failed to parse question scores: %w", err)
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return QuestionScores{}, fmt.Errorf("failed to parse question score %q: %w", key, err)
		}
		if _, dup := q.values[key]; !dup {
			if n, err := strconv.Atoi(key); err == nil && n >= 0 && strconv.Itoa(n) == key {
				numeric = append(numeric, key)
			} else {
				named = append(named, key)
			}
		}
		q.values[key] = value
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return QuestionScores{}, fmt.Errorf("failed to parse question scores: %w", err)
	}

	sort.SliceStable(numeric, func(i, j int) bool {
		a, _ := strconv.Atoi(numeric[i])
		b, _ := strconv.Atoi(numeric[j])
		return a < b
	})
	q.keys = append(numeric, named...)
	return q, nil
}

// Lookup finds question n (1-based) under "question<n>", then "<n>", then
// the n-th entry.
func (q QuestionScores) Lookup(n int) (QuestionScore, bool) {
	if len(q.keys) == 0 || n < 1 {
		return QuestionScore{}, false
	}

	raw, ok := q.values[fmt.Sprintf("question%d", n)]
	if !ok {
		raw, ok = q.values[strconv.Itoa(n)]
	}
	if !ok && n <= len(q.keys) {
		raw, ok = q.values[q.keys[n-1]], true
	}
	if !ok {
		return QuestionScore{}, false
	}

	var score QuestionScore
	if _, err := models.UnmarshalNested(raw, &score); err != nil {
		return QuestionScore{}, false
	}
	return score, true
}

// FetchedEvaluation is a decoded evaluation-result response.
type FetchedEvaluation struct {
	Result         *models.EvaluationResult
	QuestionScores QuestionScores
	Saved          bool
}

// Present reports whether upstream has produced any evaluation yet.
func (f *FetchedEvaluation) Present() bool {
	return f != nil && (f.Result.Present() || f.QuestionScores.Len() > 0)
}

// DecodeFetch turns a raw fetch into view input. Malformed sections are
// reported through warnings and dropped.
func DecodeFetch(fetch *models.EvaluationFetch) (*FetchedEvaluation, []string) {
	if fetch == nil {
		return &FetchedEvaluation{}, nil
	}

	out := &FetchedEvaluation{Saved: fetch.Saved}
	var warnings []string

	if fetch.EvaluationResult != nil {
		warnings = append(warnings, fetch.EvaluationResult.DecodeWarnings...)
		if fetch.EvaluationResult.Present() {
			out.Result = fetch.EvaluationResult
		}
	}

	scores, err := DecodeQuestionScores(fetch.Scores())
	if err != nil {
		warnings = append(warnings, "coverLetterScores: "+err.Error())
	} else {
		out.QuestionScores = scores
	}

	return out, warnings
}
