package services

import (
	"errors"
	"fmt"

	apperrors "github.com/formforge/formbuilder-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Form specific errors
	ErrFormNotFound    = errors.New("form not found")
	ErrFormInactive    = errors.New("form is not accepting responses")
	ErrFormNotEditable = errors.New("form cannot be edited while published")
	ErrFormNotOwned    = errors.New("form does not belong to this user")

	// Submission specific errors
	ErrAnswersRequired   = errors.New("answers are required")
	ErrAnonymousDisabled = errors.New("anonymous submissions are disabled for this form")

	// Response specific errors
	ErrResponseNotFound = errors.New("response not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// AnswerError identifies the question whose submitted answer failed
// structural validation. One bad answer fails the whole submission.
type AnswerError struct {
	QuestionIndex int    `json:"question_index"`
	Reason        string `json:"reason"`
}

func (ae *AnswerError) Error() string {
	return fmt.Sprintf("invalid answer for question %d: %s", ae.QuestionIndex, ae.Reason)
}

func NewAnswerError(questionIndex int, reason string) *AnswerError {
	return &AnswerError{
		QuestionIndex: questionIndex,
		Reason:        reason,
	}
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFormNotFound) ||
		errors.Is(err, ErrResponseNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrAnswersRequired) {
		return true
	}
	var ae *AnswerError
	if errors.As(err, &ae) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrFormNotEditable)
}
