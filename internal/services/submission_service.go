package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/formforge/formbuilder-service/internal/cache"
	"github.com/formforge/formbuilder-service/internal/events"
	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
	"github.com/formforge/formbuilder-service/internal/scoring"
	"github.com/formforge/formbuilder-service/internal/validator"
)

type submissionService struct {
	repo      repositories.Repository
	cache     cache.FormCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSubmissionService(
	repo repositories.Repository,
	formCache cache.FormCache,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		cache:     formCache,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Submit runs the submission pipeline: load the frozen question set,
// validate every answer, score when the form is a test, persist, and
// build the respondent-facing result. Nothing is persisted unless every
// submitted answer passes structural validation.
func (s *submissionService) Submit(ctx context.Context, formID uint, req *SubmitRequest, meta SubmitMeta) (*SubmitResult, error) {
	s.logger.Info("Processing submission",
		"form_id", formID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// LOAD_FORM
	form, err := s.loadForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.IsActive {
		return nil, ErrFormInactive
	}

	// A form that disallows anonymous submissions requires the respondent
	// to identify themselves in the payload.
	if !form.Settings.AllowAnonymous && req.RespondentName == nil && req.RespondentEmail == nil {
		return nil, ErrAnonymousDisabled
	}

	// VALIDATE_ANSWERS
	if len(req.Answers) == 0 {
		return nil, ErrAnswersRequired
	}
	if err := s.validateAnswers(form, req.Answers); err != nil {
		return nil, err
	}

	// SCORE (test mode only; survey keys are never consulted)
	var result scoring.Result
	scored := form.Mode == models.ModeTest
	if scored {
		result, err = scoring.ScoreSubmission(form.Questions, req.Answers)
		if err != nil {
			return nil, fmt.Errorf("scoring failed: %w", err)
		}
	}

	// PERSIST
	response, err := s.buildResponse(form, req, meta, result, scored)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Response().Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewResponseSubmittedEvent(form, response)); err != nil {
		s.logger.Error("Failed to publish submission event",
			"form_id", form.ID,
			"response_id", response.ID,
			"error", err)
	}

	s.logger.Info("Submission persisted",
		"form_id", form.ID,
		"response_id", response.ID,
		"scored", scored)

	// BUILD_RESULT
	return s.buildResult(form, response, req.Answers)
}

func (s *submissionService) loadForm(ctx context.Context, formID uint) (*models.Form, error) {
	if form, err := s.cache.GetForm(ctx, formID); err == nil {
		return form, nil
	}

	form, err := s.repo.Form().GetByIDWithQuestions(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}

	if err := s.cache.SetForm(ctx, form); err != nil {
		s.logger.Warn("Failed to cache form", "form_id", formID, "error", err)
	}

	return form, nil
}

// validateAnswers checks every submitted answer against its question's
// shape. Any single failure aborts the whole submission; answers keyed to
// question indexes the form does not have are rejected the same way.
func (s *submissionService) validateAnswers(form *models.Form, answers models.SubmittedAnswers) error {
	byPosition := make(map[int]*models.Question, len(form.Questions))
	for i := range form.Questions {
		q := &form.Questions[i]
		byPosition[q.Position] = q
	}

	indexes := make([]int, 0, len(answers))
	for index := range answers {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	for _, index := range indexes {
		question, ok := byPosition[index]
		if !ok {
			return NewAnswerError(index, "no such question on this form")
		}
		if err := s.validator.Answer().ValidateAnswer(question, answers[index]); err != nil {
			return NewAnswerError(index, err.Error())
		}
	}

	return nil
}

func (s *submissionService) buildResponse(form *models.Form, req *SubmitRequest, meta SubmitMeta, result scoring.Result, scored bool) (*models.Response, error) {
	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	response := &models.Response{
		FormID:          form.ID,
		Answers:         datatypes.JSON(answersJSON),
		RespondentName:  req.RespondentName,
		RespondentEmail: req.RespondentEmail,
		ClientIP:        meta.ClientIP,
		UserAgent:       meta.UserAgent,
		SubmittedAt:     time.Now().UTC(),
	}

	if scored {
		response.Score = &result.Score
		response.MaxScore = &result.MaxScore
	}

	return response, nil
}

func (s *submissionService) buildResult(form *models.Form, response *models.Response, answers models.SubmittedAnswers) (*SubmitResult, error) {
	result := &SubmitResult{
		Submitted:  true,
		ResponseID: response.ID,
	}

	if form.Mode != models.ModeTest {
		return result, nil
	}

	result.Score = response.Score
	result.MaxScore = response.MaxScore
	if response.Score != nil && response.MaxScore != nil {
		result.Percentage = scoring.Percentage(*response.Score, *response.MaxScore)
	}

	if !form.Settings.ShowResults {
		return result, nil
	}

	keys := make(map[int]*AnswerKey, len(form.Questions))
	for i := range form.Questions {
		q := &form.Questions[i]
		key, err := answerKeyFor(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", q.Position, err)
		}
		keys[q.Position] = key
	}
	result.CorrectAnswers = keys

	return result, nil
}

// answerKeyFor extracts the author's key from a question for disclosure
// in a graded result.
func answerKeyFor(q *models.Question) (*AnswerKey, error) {
	key := &AnswerKey{Type: q.Type}

	switch q.Type {
	case models.Categorize:
		var content models.CategorizeContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return nil, fmt.Errorf("invalid categorize content: %w", err)
		}
		key.Categories = make([][]string, len(content.Categories))
		for i, category := range content.Categories {
			key.Categories[i] = category.Items
		}

	case models.Cloze:
		var content models.ClozeContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return nil, fmt.Errorf("invalid cloze content: %w", err)
		}
		key.Blanks = content.CorrectAnswer

	case models.Comprehension:
		var content models.ComprehensionContent
		if err := json.Unmarshal(q.Content, &content); err != nil {
			return nil, fmt.Errorf("invalid comprehension content: %w", err)
		}
		key.FollowUps = make([]string, len(content.FollowUps))
		for i, followUp := range content.FollowUps {
			key.FollowUps[i] = followUp.CorrectAnswer
		}

	default:
		return nil, fmt.Errorf("unsupported question type: %s", q.Type)
	}

	return key, nil
}
