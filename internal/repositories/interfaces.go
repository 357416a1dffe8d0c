package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/formforge/formbuilder-service/internal/models"
)

// FormRepository is the storage collaborator for form definitions. GetByID
// implementations must return questions in stable persisted position order;
// grading relies on the question list being exactly as it was when the
// form was published.
type FormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	GetByID(ctx context.Context, id uint) (*models.Form, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Form, error)
	Update(ctx context.Context, form *models.Form) error
	SetActive(ctx context.Context, id uint, active bool) error
	Delete(ctx context.Context, id uint) error // Soft delete

	GetByCreator(ctx context.Context, creatorID string, filters FormFilters) ([]*models.Form, int64, error)

	// UpdateWithQuestions persists the form row and, when questions is
	// non-nil, replaces the question list in the same transaction. Either
	// both writes commit or neither does.
	UpdateWithQuestions(ctx context.Context, form *models.Form, questions *[]models.Question) error
}

// ResponseRepository is append-only: responses are created exactly once
// and never updated. Counts and averages are computed on demand by
// aggregation, never maintained incrementally.
type ResponseRepository interface {
	Create(ctx context.Context, response *models.Response) error
	GetByID(ctx context.Context, id uint) (*models.Response, error)
	ListByForm(ctx context.Context, formID uint, filters ResponseFilters) ([]*models.Response, int64, error)
	CountByForm(ctx context.Context, formID uint) (int64, error)
	GetFormStats(ctx context.Context, formID uint) (*FormResponseStats, error)
	Delete(ctx context.Context, id uint) error
}

// Repository aggregates all repositories behind one handle.
type Repository interface {
	Form() FormRepository
	Response() ResponseRepository
}

// ===== SHARED FILTER STRUCTS =====

type FormFilters struct {
	Mode      *models.FormMode `json:"mode"`
	IsActive  *bool            `json:"is_active"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "title"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// FormResponseStats is aggregated on demand from the responses table.
type FormResponseStats struct {
	ResponseCount   int64    `json:"response_count"`
	AverageScore    *float64 `json:"average_score,omitempty"`
	AverageMaxScore *float64 `json:"average_max_score,omitempty"`
}

// IsNotFoundError reports whether err is the storage layer's record-not-found
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
