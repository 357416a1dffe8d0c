package validator

import (
	"encoding/json"
	"fmt"

	"github.com/formforge/formbuilder-service/internal/models"
)

// QuestionValidator checks author-supplied question content. It is
// deliberately permissive about draft states (empty categories, empty key
// strings, a cloze key shorter than the blank count) and only rejects
// content that is structurally broken.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateContent validates question content based on question type
func (v *QuestionValidator) ValidateContent(questionType models.QuestionType, content json.RawMessage) error {
	if len(content) == 0 {
		return fmt.Errorf("content cannot be empty")
	}

	switch questionType {
	case models.Categorize:
		return v.validateCategorizeContent(content)
	case models.Cloze:
		return v.validateClozeContent(content)
	case models.Comprehension:
		return v.validateComprehensionContent(content)
	default:
		return fmt.Errorf("unsupported question type: %s", questionType)
	}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Title == "" {
		return fmt.Errorf("question title is required")
	}

	if question.Points < 1 || question.Points > 100 {
		return fmt.Errorf("question points must be between 1 and 100")
	}

	return v.ValidateContent(question.Type, json.RawMessage(question.Content))
}

func (v *QuestionValidator) validateCategorizeContent(content json.RawMessage) error {
	var c models.CategorizeContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid categorize content: %w", err)
	}

	pool := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		pool[item] = true
	}

	// Each key item must come from the pool, and no item may be assigned
	// to more than one category. Items excluded from every category are
	// fine.
	assigned := make(map[string]bool)
	for _, category := range c.Categories {
		for _, item := range category.Items {
			if !pool[item] {
				return fmt.Errorf("category %q references item %q not in the item pool", category.Name, item)
			}
			if assigned[item] {
				return fmt.Errorf("item %q is assigned to more than one category", item)
			}
			assigned[item] = true
		}
	}

	return nil
}

func (v *QuestionValidator) validateClozeContent(content json.RawMessage) error {
	var c models.ClozeContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid cloze content: %w", err)
	}

	if c.Text == "" {
		return fmt.Errorf("cloze text is required")
	}

	// The key may be shorter or longer than the blank count while the
	// question is still being drafted; only the text itself is required.
	return nil
}

func (v *QuestionValidator) validateComprehensionContent(content json.RawMessage) error {
	var c models.ComprehensionContent
	if err := json.Unmarshal(content, &c); err != nil {
		return fmt.Errorf("invalid comprehension content: %w", err)
	}

	for i, followUp := range c.FollowUps {
		if followUp.Question == "" {
			return fmt.Errorf("follow-up %d: question text is required", i)
		}
		if len(followUp.Options) < 2 {
			return fmt.Errorf("follow-up %d: must have at least 2 options", i)
		}
		if followUp.CorrectAnswer != "" && !containsString(followUp.Options, followUp.CorrectAnswer) {
			return fmt.Errorf("follow-up %d: correct answer %q does not match any option", i, followUp.CorrectAnswer)
		}
	}

	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
