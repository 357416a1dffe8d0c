// Package scoring grades submitted answers against the answer key stored on
// each question. Every function here is pure: wrong answers are never
// errors, and degenerate keys (no categories, no blanks, no follow-ups)
// score zero instead of failing.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/formforge/formbuilder-service/internal/models"
)

// Result holds the aggregated outcome for one submission.
type Result struct {
	Score    float64
	MaxScore float64
}

// ScoreQuestion returns the fractional credit in [0,1] for a single
// question. An error is returned only for undecodable content or an
// unknown question type, never for an incorrect answer.
func ScoreQuestion(q *models.Question, raw json.RawMessage) (float64, error) {
	switch q.Type {
	case models.Categorize:
		var content models.CategorizeContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return 0, fmt.Errorf("invalid categorize content: %w", err)
		}
		var answer models.CategorizeAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return 0, fmt.Errorf("invalid categorize answer: %w", err)
		}
		return scoreCategorize(content, answer), nil

	case models.Cloze:
		var content models.ClozeContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return 0, fmt.Errorf("invalid cloze content: %w", err)
		}
		var answer models.ClozeAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return 0, fmt.Errorf("invalid cloze answer: %w", err)
		}
		return scoreCloze(content, answer), nil

	case models.Comprehension:
		var content models.ComprehensionContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return 0, fmt.Errorf("invalid comprehension content: %w", err)
		}
		var answer models.ComprehensionAnswer
		if err := json.Unmarshal(raw, &answer); err != nil {
			return 0, fmt.Errorf("invalid comprehension answer: %w", err)
		}
		return scoreComprehension(content, answer), nil

	default:
		return 0, fmt.Errorf("unsupported question type: %s", q.Type)
	}
}

// ScoreSubmission aggregates per-question credit over a submission. Only
// questions whose index appears in the answers map contribute: each adds
// its points to MaxScore and fraction*points to Score. Unattempted
// questions are skipped from both sums, so MaxScore can be less than the
// form's nominal total points.
func ScoreSubmission(questions []models.Question, answers models.SubmittedAnswers) (Result, error) {
	var result Result
	for i := range questions {
		q := &questions[i]
		raw, attempted := answers[q.Position]
		if !attempted {
			continue
		}
		fraction, err := ScoreQuestion(q, raw)
		if err != nil {
			return Result{}, fmt.Errorf("question %d: %w", q.Position, err)
		}
		result.Score += fraction * float64(q.Points)
		result.MaxScore += float64(q.Points)
	}
	return result, nil
}

// Percentage returns the rounded score percentage, or nil when maxScore is
// zero (nothing gradable was attempted).
func Percentage(score, maxScore float64) *int {
	if maxScore == 0 {
		return nil
	}
	p := int(math.Round(score / maxScore * 100))
	return &p
}

// A category is correct when the placed items equal the key items as
// multisets: order does not matter, duplicate counts do. Correctly-empty
// categories count as correct.
func scoreCategorize(content models.CategorizeContent, answer models.CategorizeAnswer) float64 {
	if len(content.Categories) == 0 {
		return 0
	}
	correct := 0
	for i, category := range content.Categories {
		var placed []string
		if i < len(answer.Categories) {
			placed = answer.Categories[i]
		}
		if equalMultiset(placed, category.Items) {
			correct++
		}
	}
	return float64(correct) / float64(len(content.Categories))
}

// Blanks compare case-insensitively with surrounding whitespace trimmed.
// Extra submitted blanks beyond the key are ignored; missing ones count
// as wrong because the denominator is the key length.
func scoreCloze(content models.ClozeContent, answer models.ClozeAnswer) float64 {
	if len(content.CorrectAnswer) == 0 {
		return 0
	}
	correct := 0
	for i, key := range content.CorrectAnswer {
		if i >= len(answer.Blanks) {
			break
		}
		if strings.EqualFold(strings.TrimSpace(answer.Blanks[i]), strings.TrimSpace(key)) {
			correct++
		}
	}
	return float64(correct) / float64(len(content.CorrectAnswer))
}

// Follow-up options are closed-choice values, so the comparison is exact
// and case-sensitive.
func scoreComprehension(content models.ComprehensionContent, answer models.ComprehensionAnswer) float64 {
	if len(content.FollowUps) == 0 {
		return 0
	}
	correct := 0
	for i, followUp := range content.FollowUps {
		if i >= len(answer.FollowUpAnswers) {
			break
		}
		if answer.FollowUpAnswers[i] == followUp.CorrectAnswer {
			correct++
		}
	}
	return float64(correct) / float64(len(content.FollowUps))
}

func equalMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
