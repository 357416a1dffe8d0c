package validator

import (
	"encoding/json"
	"fmt"

	"github.com/formforge/formbuilder-service/internal/models"
)

// AnswerValidator checks that a submitted answer has the shape its
// question variant requires before any scoring happens. It rejects
// structural malformation only; a wrong answer is not a validation
// failure.
type AnswerValidator struct{}

// NewAnswerValidator creates a new answer validator
func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// ValidateAnswer validates a raw answer payload against its question.
func (v *AnswerValidator) ValidateAnswer(question *models.Question, raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("answer payload is empty")
	}

	switch question.Type {
	case models.Categorize:
		return v.validateCategorizeAnswer(question, raw)
	case models.Cloze:
		return v.validateClozeAnswer(raw)
	case models.Comprehension:
		return v.validateComprehensionAnswer(question, raw)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

// A categorize answer must mirror the question's category list in length,
// place only items from the question's pool, and place no item twice.
func (v *AnswerValidator) validateCategorizeAnswer(question *models.Question, raw json.RawMessage) error {
	var content models.CategorizeContent
	if err := json.Unmarshal(question.Content, &content); err != nil {
		return fmt.Errorf("invalid categorize content: %w", err)
	}

	var answer models.CategorizeAnswer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return fmt.Errorf("malformed categorize answer: %w", err)
	}

	if len(answer.Categories) != len(content.Categories) {
		return fmt.Errorf("expected %d category slots, got %d", len(content.Categories), len(answer.Categories))
	}

	pool := make(map[string]bool, len(content.Items))
	for _, item := range content.Items {
		pool[item] = true
	}

	placed := make(map[string]bool)
	for _, slot := range answer.Categories {
		for _, item := range slot {
			if !pool[item] {
				return fmt.Errorf("item %q is not part of this question", item)
			}
			if placed[item] {
				return fmt.Errorf("item %q is placed in more than one category", item)
			}
			placed[item] = true
		}
	}

	return nil
}

// A cloze answer needs at least one blank entry; empty strings are
// allowed and simply score as wrong.
func (v *AnswerValidator) validateClozeAnswer(raw json.RawMessage) error {
	var answer models.ClozeAnswer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return fmt.Errorf("malformed cloze answer: %w", err)
	}

	if len(answer.Blanks) < 1 {
		return fmt.Errorf("at least one blank entry is required")
	}

	return nil
}

// A comprehension answer must carry exactly one entry per follow-up; each
// non-empty entry must be one of that follow-up's options. Empty entries
// mean unanswered and are allowed.
func (v *AnswerValidator) validateComprehensionAnswer(question *models.Question, raw json.RawMessage) error {
	var content models.ComprehensionContent
	if err := json.Unmarshal(question.Content, &content); err != nil {
		return fmt.Errorf("invalid comprehension content: %w", err)
	}

	var answer models.ComprehensionAnswer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return fmt.Errorf("malformed comprehension answer: %w", err)
	}

	if len(answer.FollowUpAnswers) != len(content.FollowUps) {
		return fmt.Errorf("expected %d follow-up answers, got %d", len(content.FollowUps), len(answer.FollowUpAnswers))
	}

	for i, selected := range answer.FollowUpAnswers {
		if selected == "" {
			continue
		}
		if !containsString(content.FollowUps[i].Options, selected) {
			return fmt.Errorf("follow-up %d: %q is not one of the options", i, selected)
		}
	}

	return nil
}
