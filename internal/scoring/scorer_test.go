package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/formforge/formbuilder-service/internal/models"
)

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func categorizeQuestion(t *testing.T, position, points int, content models.CategorizeContent) models.Question {
	t.Helper()
	return models.Question{
		Type:     models.Categorize,
		Position: position,
		Points:   points,
		Content:  datatypes.JSON(mustJSON(t, content)),
	}
}

func clozeQuestion(t *testing.T, position, points int, text string, key []string) models.Question {
	t.Helper()
	content := models.ClozeContent{Text: text, CorrectAnswer: key}
	content.Normalize()
	return models.Question{
		Type:     models.Cloze,
		Position: position,
		Points:   points,
		Content:  datatypes.JSON(mustJSON(t, content)),
	}
}

func comprehensionQuestion(t *testing.T, position, points int, followUps []models.FollowUpQuestion) models.Question {
	t.Helper()
	content := models.ComprehensionContent{Passage: "passage", FollowUps: followUps}
	return models.Question{
		Type:     models.Comprehension,
		Position: position,
		Points:   points,
		Content:  datatypes.JSON(mustJSON(t, content)),
	}
}

func TestScoreQuestion_Categorize(t *testing.T) {
	content := models.CategorizeContent{
		Items: []string{"Apple", "Car"},
		Categories: []models.CategoryKey{
			{Name: "Fruit", Items: []string{"Apple"}},
			{Name: "Vehicle", Items: []string{"Car"}},
		},
	}

	tests := []struct {
		name     string
		content  models.CategorizeContent
		answer   models.CategorizeAnswer
		expected float64
	}{
		{
			name:     "all categories placed correctly",
			content:  content,
			answer:   models.CategorizeAnswer{Categories: [][]string{{"Apple"}, {"Car"}}},
			expected: 1.0,
		},
		{
			name:     "one category wrong",
			content:  content,
			answer:   models.CategorizeAnswer{Categories: [][]string{{"Apple"}, {"Apple"}}},
			expected: 0.5,
		},
		{
			name:     "order within a category does not matter",
			content:  models.CategorizeContent{Items: []string{"A", "B"}, Categories: []models.CategoryKey{{Name: "X", Items: []string{"A", "B"}}}},
			answer:   models.CategorizeAnswer{Categories: [][]string{{"B", "A"}}},
			expected: 1.0,
		},
		{
			name:     "duplicate counts must match the key",
			content:  models.CategorizeContent{Items: []string{"A"}, Categories: []models.CategoryKey{{Name: "X", Items: []string{"A"}}}},
			answer:   models.CategorizeAnswer{Categories: [][]string{{"A", "A"}}},
			expected: 0,
		},
		{
			name:     "correctly empty category counts as correct",
			content:  models.CategorizeContent{Items: []string{"A"}, Categories: []models.CategoryKey{{Name: "X", Items: []string{"A"}}, {Name: "Y", Items: nil}}},
			answer:   models.CategorizeAnswer{Categories: [][]string{{"A"}, {}}},
			expected: 1.0,
		},
		{
			name:     "missing category slots score as empty placements",
			content:  content,
			answer:   models.CategorizeAnswer{Categories: [][]string{{"Apple"}}},
			expected: 0.5,
		},
		{
			name:     "zero categories guard",
			content:  models.CategorizeContent{Items: []string{"A"}},
			answer:   models.CategorizeAnswer{Categories: [][]string{}},
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := categorizeQuestion(t, 0, 1, tc.content)
			fraction, err := ScoreQuestion(&q, mustJSON(t, tc.answer))
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, fraction, 1e-9)
		})
	}
}

func TestScoreQuestion_Cloze(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		key      []string
		blanks   []string
		expected float64
	}{
		{
			name:     "case-insensitive full credit",
			text:     "The capital of ___ is ___.",
			key:      []string{"France", "Paris"},
			blanks:   []string{"france", "Paris"},
			expected: 1.0,
		},
		{
			name:     "whitespace trimmed before compare",
			text:     "___ and ___",
			key:      []string{"salt", "pepper"},
			blanks:   []string{"  salt ", "PEPPER"},
			expected: 1.0,
		},
		{
			name:     "partial credit per blank",
			text:     "___ and ___",
			key:      []string{"salt", "pepper"},
			blanks:   []string{"salt", "sugar"},
			expected: 0.5,
		},
		{
			name:     "empty blank counts as wrong",
			text:     "___ and ___",
			key:      []string{"salt", "pepper"},
			blanks:   []string{"", "pepper"},
			expected: 0.5,
		},
		{
			name:     "fewer blanks than key",
			text:     "___ and ___",
			key:      []string{"salt", "pepper"},
			blanks:   []string{"salt"},
			expected: 0.5,
		},
		{
			name:     "extra blanks beyond key are ignored",
			text:     "___",
			key:      []string{"salt"},
			blanks:   []string{"salt", "pepper"},
			expected: 1.0,
		},
		{
			name:     "empty key guard",
			text:     "no markers here",
			key:      nil,
			blanks:   []string{"anything"},
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := clozeQuestion(t, 0, 1, tc.text, tc.key)
			fraction, err := ScoreQuestion(&q, mustJSON(t, models.ClozeAnswer{Blanks: tc.blanks}))
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, fraction, 1e-9)
		})
	}
}

func TestScoreQuestion_Comprehension(t *testing.T) {
	followUps := []models.FollowUpQuestion{
		{Question: "Q1", Options: []string{"A", "B"}, CorrectAnswer: "B"},
		{Question: "Q2", Options: []string{"X", "Y"}, CorrectAnswer: "X"},
	}

	tests := []struct {
		name     string
		answers  []string
		expected float64
	}{
		{name: "all correct", answers: []string{"B", "X"}, expected: 1.0},
		{name: "one wrong", answers: []string{"A", "X"}, expected: 0.5},
		{name: "match is case-sensitive", answers: []string{"b", "x"}, expected: 0},
		{name: "unanswered entries score zero", answers: []string{"", ""}, expected: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := comprehensionQuestion(t, 0, 1, followUps)
			fraction, err := ScoreQuestion(&q, mustJSON(t, models.ComprehensionAnswer{FollowUpAnswers: tc.answers}))
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, fraction, 1e-9)
		})
	}

	t.Run("zero follow-ups guard", func(t *testing.T) {
		q := comprehensionQuestion(t, 0, 1, nil)
		fraction, err := ScoreQuestion(&q, mustJSON(t, models.ComprehensionAnswer{FollowUpAnswers: nil}))
		require.NoError(t, err)
		assert.Zero(t, fraction)
	})
}

func TestScoreQuestion_UnknownType(t *testing.T) {
	q := models.Question{Type: "essay", Content: datatypes.JSON(`{}`)}
	_, err := ScoreQuestion(&q, json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestScoreQuestion_Deterministic(t *testing.T) {
	q := clozeQuestion(t, 0, 2, "The capital of ___ is ___.", []string{"France", "Paris"})
	answer := mustJSON(t, models.ClozeAnswer{Blanks: []string{"france", "Paris"}})

	first, err := ScoreQuestion(&q, answer)
	require.NoError(t, err)
	second, err := ScoreQuestion(&q, answer)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScoreSubmission(t *testing.T) {
	questions := []models.Question{
		clozeQuestion(t, 0, 2, "The capital of ___ is ___.", []string{"France", "Paris"}),
		comprehensionQuestion(t, 1, 3, []models.FollowUpQuestion{
			{Question: "Q", Options: []string{"A", "B"}, CorrectAnswer: "B"},
		}),
		categorizeQuestion(t, 2, 5, models.CategorizeContent{
			Items:      []string{"Apple", "Car"},
			Categories: []models.CategoryKey{{Name: "Fruit", Items: []string{"Apple"}}, {Name: "Vehicle", Items: []string{"Car"}}},
		}),
	}

	t.Run("attempted wrong answer still counts toward max score", func(t *testing.T) {
		answers := models.SubmittedAnswers{
			0: mustJSON(t, models.ClozeAnswer{Blanks: []string{"france", "Paris"}}),
			1: mustJSON(t, models.ComprehensionAnswer{FollowUpAnswers: []string{"A"}}),
		}
		result, err := ScoreSubmission(questions, answers)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, result.Score, 1e-9)
		assert.InDelta(t, 5.0, result.MaxScore, 1e-9)
	})

	t.Run("unattempted questions excluded from both sums", func(t *testing.T) {
		answers := models.SubmittedAnswers{
			2: mustJSON(t, models.CategorizeAnswer{Categories: [][]string{{"Apple"}, {"Car"}}}),
		}
		result, err := ScoreSubmission(questions, answers)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, result.Score, 1e-9)
		assert.InDelta(t, 5.0, result.MaxScore, 1e-9)
	})

	t.Run("max score equals sum of attempted points", func(t *testing.T) {
		answers := models.SubmittedAnswers{
			0: mustJSON(t, models.ClozeAnswer{Blanks: []string{"", ""}}),
			1: mustJSON(t, models.ComprehensionAnswer{FollowUpAnswers: []string{""}}),
			2: mustJSON(t, models.CategorizeAnswer{Categories: [][]string{{}, {}}}),
		}
		result, err := ScoreSubmission(questions, answers)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, result.MaxScore, 1e-9)
		assert.Zero(t, result.Score)
	})

	t.Run("empty answers map scores nothing", func(t *testing.T) {
		result, err := ScoreSubmission(questions, models.SubmittedAnswers{})
		require.NoError(t, err)
		assert.Zero(t, result.Score)
		assert.Zero(t, result.MaxScore)
	})
}

func TestPercentage(t *testing.T) {
	p := Percentage(2.5, 5)
	if assert.NotNil(t, p) {
		assert.Equal(t, 50, *p)
	}

	p = Percentage(2, 3)
	if assert.NotNil(t, p) {
		assert.Equal(t, 67, *p)
	}

	assert.Nil(t, Percentage(0, 0))
}
