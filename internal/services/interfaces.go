package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/formforge/formbuilder-service/internal/cache"
	"github.com/formforge/formbuilder-service/internal/events"
	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
	"github.com/formforge/formbuilder-service/internal/validator"
)

// ===== REQUEST / RESPONSE DTOS =====

type QuestionInput struct {
	Type        models.QuestionType `json:"type" validate:"required,question_type"`
	Title       string              `json:"title" validate:"required,min=1,max=300"`
	Description *string             `json:"description" validate:"omitempty,max=1000"`
	Points      int                 `json:"points" validate:"omitempty,min=1,max=100"`
	Content     json.RawMessage     `json:"content" validate:"required"`
}

type FormSettingsInput struct {
	AllowAnonymous *bool `json:"allow_anonymous"`
	ShowResults    *bool `json:"show_results"`
}

type CreateFormRequest struct {
	Title       string             `json:"title" validate:"required,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Mode        models.FormMode    `json:"mode" validate:"omitempty,form_mode"`
	Settings    *FormSettingsInput `json:"settings"`
	Questions   []QuestionInput    `json:"questions" validate:"omitempty,dive"`
}

type UpdateFormRequest struct {
	Title       *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Mode        *models.FormMode   `json:"mode" validate:"omitempty,form_mode"`
	Settings    *FormSettingsInput `json:"settings"`
	Questions   *[]QuestionInput   `json:"questions" validate:"omitempty,dive"`
}

// SubmitRequest carries the respondent's answers keyed by question
// position index, plus optional self-identification.
type SubmitRequest struct {
	Answers         models.SubmittedAnswers `json:"answers"`
	RespondentName  *string                 `json:"respondent_name" validate:"omitempty,max=200"`
	RespondentEmail *string                 `json:"respondent_email" validate:"omitempty,email"`
}

// SubmitMeta is request metadata supplied by the transport layer.
type SubmitMeta struct {
	ClientIP  string
	UserAgent string
}

// AnswerKey is the per-question key disclosed to a respondent when the
// form allows result review. Exactly one of the variant fields is set.
type AnswerKey struct {
	Type       models.QuestionType `json:"type"`
	Categories [][]string          `json:"categories,omitempty"`
	Blanks     []string            `json:"blanks,omitempty"`
	FollowUps  []string            `json:"follow_ups,omitempty"`
}

// SubmitResult is the respondent-facing outcome. Score fields are present
// only for test-mode forms; Percentage is omitted when nothing gradable
// was attempted; CorrectAnswers only when the form discloses its key.
type SubmitResult struct {
	Submitted      bool               `json:"submitted"`
	ResponseID     uint               `json:"response_id"`
	Score          *float64           `json:"score,omitempty"`
	MaxScore       *float64           `json:"max_score,omitempty"`
	Percentage     *int               `json:"percentage,omitempty"`
	CorrectAnswers map[int]*AnswerKey `json:"correct_answers,omitempty"`
}

// FormStatsResult pairs a form with on-demand response aggregates.
type FormStatsResult struct {
	FormID        uint     `json:"form_id"`
	ResponseCount int64    `json:"response_count"`
	AverageScore  *float64 `json:"average_score,omitempty"`
	TotalPoints   int      `json:"total_points"`
}

// ===== SERVICE INTERFACES =====

type FormService interface {
	Create(ctx context.Context, req *CreateFormRequest, creatorID string) (*models.Form, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.Form, error)
	GetForRespondent(ctx context.Context, id uint) (*models.Form, error)
	Update(ctx context.Context, id uint, req *UpdateFormRequest, userID string) (*models.Form, error)
	Publish(ctx context.Context, id uint, userID string) error
	Close(ctx context.Context, id uint, userID string) error
	GetByCreator(ctx context.Context, creatorID string, filters repositories.FormFilters) ([]*models.Form, int64, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, formID uint, req *SubmitRequest, meta SubmitMeta) (*SubmitResult, error)
}

type ResponseService interface {
	ListByForm(ctx context.Context, formID uint, userID string, filters repositories.ResponseFilters) ([]*models.Response, int64, error)
	GetFormStats(ctx context.Context, formID uint, userID string) (*FormStatsResult, error)
	Delete(ctx context.Context, responseID uint, userID string) error
}

type ExportService interface {
	ExportXLSX(ctx context.Context, formID uint, userID string) ([]byte, error)
	ExportCSV(ctx context.Context, formID uint, userID string) ([]byte, error)
}

// ServiceManager wires all services over shared collaborators.
type ServiceManager interface {
	Form() FormService
	Submission() SubmissionService
	Response() ResponseService
	Export() ExportService
}

type serviceManager struct {
	form       FormService
	submission SubmissionService
	response   ResponseService
	export     ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	formCache cache.FormCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ServiceManager {
	formService := NewFormService(repo, formCache, publisher, logger, v)
	return &serviceManager{
		form:       formService,
		submission: NewSubmissionService(repo, formCache, publisher, logger, v),
		response:   NewResponseService(repo, logger),
		export:     NewExportService(repo, logger),
	}
}

func (m *serviceManager) Form() FormService             { return m.form }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Response() ResponseService     { return m.response }
func (m *serviceManager) Export() ExportService         { return m.export }
