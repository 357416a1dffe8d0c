package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/formforge/formbuilder-service/internal/cache"
	"github.com/formforge/formbuilder-service/internal/events"
	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
	"github.com/formforge/formbuilder-service/internal/validator"
)

type formService struct {
	repo      repositories.Repository
	cache     cache.FormCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewFormService(
	repo repositories.Repository,
	formCache cache.FormCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) FormService {
	return &formService{
		repo:      repo,
		cache:     formCache,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== CORE FORM OPERATIONS =====

func (s *formService) Create(ctx context.Context, req *CreateFormRequest, creatorID string) (*models.Form, error) {
	s.logger.Info("Creating form",
		"title", req.Title,
		"creator_id", creatorID,
		"questions_count", len(req.Questions))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	questions, err := s.buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeSurvey
	}

	form := &models.Form{
		Title:       req.Title,
		Description: req.Description,
		Mode:        mode,
		CreatedBy:   creatorID,
		Questions:   questions,
		Settings: models.FormSettings{
			AllowAnonymous: true,
			ShowResults:    false,
		},
	}
	applySettings(&form.Settings, req.Settings)

	if err := s.repo.Form().Create(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to create form: %w", err)
	}

	s.logger.Info("Form created successfully", "form_id", form.ID, "creator_id", creatorID)
	return form, nil
}

func (s *formService) GetByID(ctx context.Context, id uint, userID string) (*models.Form, error) {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	if form.CreatedBy != userID {
		return nil, ErrFormNotOwned
	}

	form.QuestionsCount = len(form.Questions)
	form.TotalPoints = form.NominalTotalPoints()
	return form, nil
}

// GetForRespondent returns an active form with every answer key stripped
// from its question content. Survey and test forms alike never leak keys
// to respondents.
func (s *formService) GetForRespondent(ctx context.Context, id uint) (*models.Form, error) {
	form, err := s.loadForm(ctx, id)
	if err != nil {
		return nil, err
	}

	if !form.IsActive {
		return nil, ErrFormInactive
	}

	sanitized := *form
	sanitized.Questions = make([]models.Question, len(form.Questions))
	for i, q := range form.Questions {
		stripped, err := stripAnswerKey(&q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", q.Position, err)
		}
		sanitized.Questions[i] = *stripped
	}
	sanitized.QuestionsCount = len(sanitized.Questions)

	return &sanitized, nil
}

func (s *formService) Update(ctx context.Context, id uint, req *UpdateFormRequest, userID string) (*models.Form, error) {
	s.logger.Info("Updating form", "form_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	form, err := s.repo.Form().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	if form.CreatedBy != userID {
		return nil, ErrFormNotOwned
	}

	// Responses reference questions by position, so a published form's
	// definition is frozen until it is closed again.
	if form.IsActive {
		return nil, ErrFormNotEditable
	}

	if req.Title != nil {
		form.Title = *req.Title
	}
	if req.Description != nil {
		form.Description = req.Description
	}
	if req.Mode != nil {
		form.Mode = *req.Mode
	}
	applySettings(&form.Settings, req.Settings)

	var questions *[]models.Question
	if req.Questions != nil {
		built, err := s.buildQuestions(*req.Questions)
		if err != nil {
			return nil, err
		}
		questions = &built
	}

	// Both writes commit together; a failed question replacement must not
	// leave the updated form row behind.
	if err := s.repo.Form().UpdateWithQuestions(ctx, form, questions); err != nil {
		return nil, fmt.Errorf("failed to update form: %w", err)
	}

	if err := s.cache.InvalidateForm(ctx, form.ID); err != nil {
		s.logger.Warn("Failed to invalidate form cache", "form_id", form.ID, "error", err)
	}

	return s.GetByID(ctx, id, userID)
}

func (s *formService) Publish(ctx context.Context, id uint, userID string) error {
	return s.setActive(ctx, id, userID, true, events.EventFormPublished)
}

func (s *formService) Close(ctx context.Context, id uint, userID string) error {
	return s.setActive(ctx, id, userID, false, events.EventFormClosed)
}

func (s *formService) GetByCreator(ctx context.Context, creatorID string, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	forms, total, err := s.repo.Form().GetByCreator(ctx, creatorID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list forms: %w", err)
	}
	return forms, total, nil
}

// ===== HELPERS =====

func (s *formService) setActive(ctx context.Context, id uint, userID string, active bool, eventType events.EventType) error {
	form, err := s.repo.Form().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFormNotFound
		}
		return fmt.Errorf("failed to get form: %w", err)
	}

	if form.CreatedBy != userID {
		return ErrFormNotOwned
	}

	if err := s.repo.Form().SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("failed to update form status: %w", err)
	}

	if err := s.cache.InvalidateForm(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate form cache", "form_id", id, "error", err)
	}

	if err := s.publisher.Publish(ctx, events.NewFormLifecycleEvent(eventType, form)); err != nil {
		s.logger.Error("Failed to publish form lifecycle event", "form_id", id, "error", err)
	}

	s.logger.Info("Form status updated", "form_id", id, "is_active", active)
	return nil
}

func (s *formService) loadForm(ctx context.Context, id uint) (*models.Form, error) {
	if form, err := s.cache.GetForm(ctx, id); err == nil {
		return form, nil
	}

	form, err := s.repo.Form().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	if err := s.cache.SetForm(ctx, form); err != nil {
		s.logger.Warn("Failed to cache form", "form_id", id, "error", err)
	}

	return form, nil
}

// buildQuestions validates author input and materializes question rows.
// Cloze blank counts are always rederived from the text here, never taken
// from the input.
func (s *formService) buildQuestions(inputs []QuestionInput) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(inputs))
	for i, input := range inputs {
		points := input.Points
		if points == 0 {
			points = 1
		}

		content := input.Content
		if input.Type == models.Cloze {
			normalized, err := normalizeClozeContent(content)
			if err != nil {
				return nil, fmt.Errorf("question %d: %w", i, err)
			}
			content = normalized
		}

		question := models.Question{
			Type:        input.Type,
			Title:       input.Title,
			Description: input.Description,
			Points:      points,
			Position:    i,
			Content:     datatypes.JSON(content),
		}

		if err := s.validator.Question().ValidateQuestion(&question); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}

		questions = append(questions, question)
	}
	return questions, nil
}

func normalizeClozeContent(raw json.RawMessage) (json.RawMessage, error) {
	var content models.ClozeContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("invalid cloze content: %w", err)
	}
	content.Normalize()
	return json.Marshal(content)
}

func applySettings(settings *models.FormSettings, input *FormSettingsInput) {
	if input == nil {
		return
	}
	if input.AllowAnonymous != nil {
		settings.AllowAnonymous = *input.AllowAnonymous
	}
	if input.ShowResults != nil {
		settings.ShowResults = *input.ShowResults
	}
}

// stripAnswerKey removes key material from a question's content for the
// respondent view.
func stripAnswerKey(q *models.Question) (*models.Question, error) {
	stripped := *q

	switch q.Type {
	case models.Categorize:
		var content models.CategorizeContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return nil, fmt.Errorf("invalid categorize content: %w", err)
		}
		for i := range content.Categories {
			content.Categories[i].Items = nil
		}
		return withContent(&stripped, content)

	case models.Cloze:
		var content models.ClozeContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return nil, fmt.Errorf("invalid cloze content: %w", err)
		}
		content.CorrectAnswer = nil
		return withContent(&stripped, content)

	case models.Comprehension:
		var content models.ComprehensionContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return nil, fmt.Errorf("invalid comprehension content: %w", err)
		}
		for i := range content.FollowUps {
			content.FollowUps[i].CorrectAnswer = ""
		}
		return withContent(&stripped, content)

	default:
		return nil, fmt.Errorf("unsupported question type: %s", q.Type)
	}
}

func withContent(q *models.Question, content interface{}) (*models.Question, error) {
	b, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	q.Content = datatypes.JSON(b)
	return q, nil
}
