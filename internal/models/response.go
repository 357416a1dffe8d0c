package models

import (
	"time"

	"gorm.io/datatypes"
)

// Response is an append-only record of a single submission. It is created
// exactly once and never updated; deleting one is an explicit admin action.
type Response struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	FormID uint `json:"form_id" gorm:"not null;index"`

	// The submitted answers map exactly as received, keyed by question
	// position index (SubmittedAnswers shape)
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	// Present only for test-mode forms. Score is the sum of fractional
	// credit times points; MaxScore sums points over attempted questions
	// only, so it can be below the form's nominal total.
	Score    *float64 `json:"score,omitempty"`
	MaxScore *float64 `json:"max_score,omitempty"`

	// Submitter metadata
	RespondentName  *string `json:"respondent_name" gorm:"size:200"`
	RespondentEmail *string `json:"respondent_email" gorm:"size:255"`
	ClientIP        string  `json:"client_ip" gorm:"size:45"`
	UserAgent       string  `json:"user_agent" gorm:"size:500"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Form Form `json:"-" gorm:"foreignKey:FormID"`
}

func (Response) TableName() string {
	return "responses"
}
