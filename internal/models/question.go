package models

import (
	"regexp"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	Categorize    QuestionType = "categorize"
	Cloze         QuestionType = "cloze"
	Comprehension QuestionType = "comprehension"
)

var blankMarker = regexp.MustCompile(`_{2,}`)

// CountBlanks returns the number of blank markers (runs of two or more
// underscores) in a cloze text. The stored blank count is always derived
// from the text with this function, never authored directly.
func CountBlanks(text string) int {
	return len(blankMarker.FindAllStringIndex(text, -1))
}

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	FormID uint         `json:"form_id" gorm:"not null;index"`
	Type   QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`

	Title       string  `json:"title" gorm:"not null;size:300" validate:"required,min=1,max=300"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Points      int     `json:"points" gorm:"default:1" validate:"min=1,max=100"`

	// Position within the form's question list. Submitted answers are keyed
	// by this index, so order is significant and stable once published.
	Position int `json:"position" gorm:"not null;index"`

	// Variant payload stored as JSONB, one schema per question type
	Content datatypes.JSON `json:"content" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// ===== QUESTION CONTENT SCHEMAS =====

// CategorizeContent holds the item pool and the answer key: each category
// lists the subset of Items that belongs to it. An item may appear in at
// most one category's key; items left out of every category are allowed.
type CategorizeContent struct {
	Items      []string      `json:"items"`
	Categories []CategoryKey `json:"categories"`
}

type CategoryKey struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// ClozeContent holds the cloze text and its key. Blanks is derived from
// Text (see CountBlanks) and recomputed on every text change.
type ClozeContent struct {
	Text          string   `json:"text"`
	Blanks        int      `json:"blanks"`
	CorrectAnswer []string `json:"correct_answer"`
}

// Normalize recomputes the derived blank count from the text.
func (c *ClozeContent) Normalize() {
	c.Blanks = CountBlanks(c.Text)
}

type ComprehensionContent struct {
	Passage   string             `json:"passage"`
	FollowUps []FollowUpQuestion `json:"follow_up_questions"`
}

type FollowUpQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}
