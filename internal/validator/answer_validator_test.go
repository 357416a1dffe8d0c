package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/formforge/formbuilder-service/internal/models"
)

func questionWith(t *testing.T, qType models.QuestionType, content interface{}) *models.Question {
	t.Helper()
	b, err := json.Marshal(content)
	require.NoError(t, err)
	return &models.Question{Type: qType, Title: "q", Points: 1, Content: datatypes.JSON(b)}
}

func TestValidateAnswer_Categorize(t *testing.T) {
	v := NewAnswerValidator()
	question := questionWith(t, models.Categorize, models.CategorizeContent{
		Items: []string{"Apple", "Car", "Banana"},
		Categories: []models.CategoryKey{
			{Name: "Fruit", Items: []string{"Apple", "Banana"}},
			{Name: "Vehicle", Items: []string{"Car"}},
		},
	})

	tests := []struct {
		name    string
		answer  models.CategorizeAnswer
		wantErr bool
	}{
		{
			name:   "well-formed placement",
			answer: models.CategorizeAnswer{Categories: [][]string{{"Apple"}, {"Car"}}},
		},
		{
			name:   "wrong placement is still structurally valid",
			answer: models.CategorizeAnswer{Categories: [][]string{{"Car"}, {"Apple"}}},
		},
		{
			name:   "empty slots are valid",
			answer: models.CategorizeAnswer{Categories: [][]string{{}, {}}},
		},
		{
			name:    "slot count mismatch",
			answer:  models.CategorizeAnswer{Categories: [][]string{{"Apple"}}},
			wantErr: true,
		},
		{
			name:    "fabricated item",
			answer:  models.CategorizeAnswer{Categories: [][]string{{"Truck"}, {}}},
			wantErr: true,
		},
		{
			name:    "same item in two categories",
			answer:  models.CategorizeAnswer{Categories: [][]string{{"Apple"}, {"Apple"}}},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.answer)
			require.NoError(t, err)
			err = v.ValidateAnswer(question, b)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAnswer_Cloze(t *testing.T) {
	v := NewAnswerValidator()
	content := models.ClozeContent{Text: "The capital of ___ is ___.", CorrectAnswer: []string{"France", "Paris"}}
	content.Normalize()
	question := questionWith(t, models.Cloze, content)

	assert.NoError(t, v.ValidateAnswer(question, json.RawMessage(`{"blanks":["france","Paris"]}`)))
	assert.NoError(t, v.ValidateAnswer(question, json.RawMessage(`{"blanks":[""]}`)), "empty strings are wrong, not invalid")
	assert.Error(t, v.ValidateAnswer(question, json.RawMessage(`{"blanks":[]}`)))
	assert.Error(t, v.ValidateAnswer(question, json.RawMessage(`{}`)))
	assert.Error(t, v.ValidateAnswer(question, json.RawMessage(`{"blanks":`)))
}

func TestValidateAnswer_Comprehension(t *testing.T) {
	v := NewAnswerValidator()
	question := questionWith(t, models.Comprehension, models.ComprehensionContent{
		Passage: "passage",
		FollowUps: []models.FollowUpQuestion{
			{Question: "Q1", Options: []string{"A", "B"}, CorrectAnswer: "B"},
			{Question: "Q2", Options: []string{"X", "Y"}, CorrectAnswer: "X"},
		},
	})

	assert.NoError(t, v.ValidateAnswer(question, json.RawMessage(`{"follow_up_answers":["A","Y"]}`)))
	assert.NoError(t, v.ValidateAnswer(question, json.RawMessage(`{"follow_up_answers":["","X"]}`)), "empty entry means unanswered")
	assert.Error(t, v.ValidateAnswer(question, json.RawMessage(`{"follow_up_answers":["A"]}`)), "length must match follow-ups")
	assert.Error(t, v.ValidateAnswer(question, json.RawMessage(`{"follow_up_answers":["C","X"]}`)), "entry must be a listed option")
}

func TestValidateAnswer_UnknownType(t *testing.T) {
	v := NewAnswerValidator()
	question := &models.Question{Type: "essay", Content: datatypes.JSON(`{}`)}
	assert.Error(t, v.ValidateAnswer(question, json.RawMessage(`{}`)))
}

func TestValidateAnswer_EmptyPayload(t *testing.T) {
	v := NewAnswerValidator()
	question := questionWith(t, models.Cloze, models.ClozeContent{Text: "___"})
	assert.Error(t, v.ValidateAnswer(question, nil))
}
