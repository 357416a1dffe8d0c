package models

import (
	"time"

	"gorm.io/gorm"
)

type FormMode string

const (
	ModeSurvey FormMode = "survey"
	ModeTest   FormMode = "test"
)

type Form struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Title       string   `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string  `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Mode        FormMode `json:"mode" gorm:"default:survey;index" validate:"omitempty,form_mode"`

	// Only active forms accept submissions. Grading always re-reads the
	// question list as persisted, so a published form's questions must not
	// be reordered or removed while responses reference them.
	IsActive bool `json:"is_active" gorm:"default:false;index"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Settings  FormSettings `json:"settings" gorm:"foreignKey:FormID"`
	Questions []Question   `json:"questions" gorm:"foreignKey:FormID"`

	// Computed fields (not stored)
	QuestionsCount int     `json:"questions_count" gorm:"-"`
	ResponseCount  int     `json:"response_count" gorm:"-"`
	TotalPoints    int     `json:"total_points" gorm:"-"`
	AvgScore       float64 `json:"avg_score" gorm:"-"`
}

type FormSettings struct {
	FormID uint `json:"form_id" gorm:"primaryKey"`

	// Submission settings
	AllowAnonymous bool `json:"allow_anonymous" gorm:"default:true"`

	// Result settings: when true, a graded result includes the answer key
	// so the respondent can review per-question correctness client-side.
	ShowResults bool `json:"show_results" gorm:"default:false"`
}

func (Form) TableName() string {
	return "forms"
}

// NominalTotalPoints sums the points of every question on the form. Note
// this is not the same as a response's max score, which only counts the
// questions the respondent attempted.
func (f *Form) NominalTotalPoints() int {
	total := 0
	for _, q := range f.Questions {
		total += q.Points
	}
	return total
}
