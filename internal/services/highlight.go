package services

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"alfredoptarigan/applicant-review/internal/models"
)

// Span is a highlighted byte range of an answer and the evaluations behind it.
type Span struct {
	Start       int
	End         int
	Evaluations []models.AnswerEvaluation
}

// Segment is one piece of rendered answer text. Offsets are in characters.
type Segment struct {
	Text        string                    `json:"text"`
	Highlighted bool                      `json:"highlighted"`
	Start       int                       `json:"start"`
	End         int                       `json:"end"`
	Verdict     models.Grade              `json:"verdict,omitempty"`
	Evaluations []models.AnswerEvaluation `json:"evaluations,omitempty"`
	Tooltip     string                    `json:"tooltip,omitempty"`
}

// FindSpans returns every occurrence of every evaluated content in text,
// including overlapping occurrences of the same needle, sorted by start.
// Content that does not occur contributes nothing.
func FindSpans(text string, evaluations []models.AnswerEvaluation) []Span {
	var spans []Span
	for _, e := range evaluations {
		needle := e.EvaluatedContent
		if needle == "" {
			continue
		}
		from := 0
		for from <= len(text)-len(needle) {
			idx := strings.Index(text[from:], needle)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, Span{
				Start:       start,
				End:         start + len(needle),
				Evaluations: []models.AnswerEvaluation{e},
			})
			_, size := utf8.DecodeRuneInString(text[start:])
			from = start + size
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})
	return spans
}

// MergeSpans groups sorted spans into clusters. A span joins the current
// cluster while it starts before the furthest end seen so far.
func MergeSpans(spans []Span) []Span {
	var clusters []Span
	for _, s := range spans {
		n := len(clusters)
		if n > 0 && s.Start < clusters[n-1].End {
			cur := &clusters[n-1]
			if s.End > cur.End {
				cur.End = s.End
			}
			cur.Evaluations = append(cur.Evaluations, s.Evaluations...)
			continue
		}
		clusters = append(clusters, Span{
			Start:       s.Start,
			End:         s.End,
			Evaluations: append([]models.AnswerEvaluation(nil), s.Evaluations...),
		})
	}
	return clusters
}

// CombineVerdict uses the grade of a lone evaluation directly and a
// positive/negative majority otherwise. Ties are neutral.
func CombineVerdict(evaluations []models.AnswerEvaluation) models.Grade {
	if len(evaluations) == 1 {
		return evaluations[0].ParsedGrade()
	}

	var positive, negative int
	for _, e := range evaluations {
		switch e.ParsedGrade() {
		case models.GradePositive:
			positive++
		case models.GradeNegative:
			negative++
		}
	}

	switch {
	case positive > negative:
		return models.GradePositive
	case negative > positive:
		return models.GradeNegative
	default:
		return models.GradeNeutral
	}
}

// Tooltip renders one "criteria: grade - reason" line per evaluation.
func Tooltip(evaluations []models.AnswerEvaluation) string {
	lines := make([]string, 0, len(evaluations))
	for _, e := range evaluations {
		name := e.CriteriaName
		if name == "" {
			name = "평가 기준"
		}
		lines = append(lines, fmt.Sprintf("%s: %s - %s", name, e.Grade, e.EvaluationReason))
	}
	return strings.Join(lines, "\n")
}

// RenderHighlights splits answerText into plain and highlighted segments whose
// concatenation is exactly answerText.
func RenderHighlights(answerText string, evaluations []models.AnswerEvaluation) []Segment {
	clusters := MergeSpans(FindSpans(answerText, evaluations))
	if len(clusters) == 0 {
		return []Segment{{
			Text: answerText,
			End:  utf8.RuneCountInString(answerText),
		}}
	}

	segments := make([]Segment, 0, 2*len(clusters)+1)
	bytePos, runePos := 0, 0

	emit := func(end int, cluster *Span) {
		text := answerText[bytePos:end]
		n := utf8.RuneCountInString(text)
		seg := Segment{Text: text, Start: runePos, End: runePos + n}
		if cluster != nil {
			seg.Highlighted = true
			seg.Evaluations = cluster.Evaluations
			seg.Verdict = CombineVerdict(cluster.Evaluations)
			seg.Tooltip = Tooltip(cluster.Evaluations)
		}
		segments = append(segments, seg)
		bytePos, runePos = end, runePos+n
	}

	for i := range clusters {
		c := &clusters[i]
		if c.Start > bytePos {
			emit(c.Start, nil)
		}
		emit(c.End, c)
	}
	if bytePos < len(answerText) {
		emit(len(answerText), nil)
	}

	return segments
}
