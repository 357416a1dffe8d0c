package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/formforge/formbuilder-service/internal/models"
)

// Validator combines struct-tag validation with the question and answer
// validators used by the services.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
	answerValidator   *AnswerValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
		answerValidator:   NewAnswerValidator(),
	}
}

// Validate validates struct tags on a request DTO.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// Answer returns the answer validator
func (v *Validator) Answer() *AnswerValidator {
	return v.answerValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("form_mode", validateFormMode)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.Categorize,
		models.Cloze,
		models.Comprehension,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateFormMode(fl validator.FieldLevel) bool {
	validModes := []models.FormMode{
		models.ModeSurvey,
		models.ModeTest,
	}

	value := fl.Field().String()
	for _, validMode := range validModes {
		if string(validMode) == value {
			return true
		}
	}
	return false
}
