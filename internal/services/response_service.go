package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
)

type responseService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewResponseService(repo repositories.Repository, logger *slog.Logger) ResponseService {
	return &responseService{
		repo:   repo,
		logger: logger,
	}
}

func (s *responseService) ListByForm(ctx context.Context, formID uint, userID string, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	if _, err := s.ownedForm(ctx, formID, userID); err != nil {
		return nil, 0, err
	}

	responses, total, err := s.repo.Response().ListByForm(ctx, formID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, total, nil
}

func (s *responseService) GetFormStats(ctx context.Context, formID uint, userID string) (*FormStatsResult, error) {
	form, err := s.ownedFormWithQuestions(ctx, formID, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.Response().GetFormStats(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate form stats: %w", err)
	}

	return &FormStatsResult{
		FormID:        formID,
		ResponseCount: stats.ResponseCount,
		AverageScore:  stats.AverageScore,
		TotalPoints:   form.NominalTotalPoints(),
	}, nil
}

// Delete removes a single response. This is the only mutation the
// responses collection supports besides insertion.
func (s *responseService) Delete(ctx context.Context, responseID uint, userID string) error {
	response, err := s.repo.Response().GetByID(ctx, responseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrResponseNotFound
		}
		return fmt.Errorf("failed to get response: %w", err)
	}

	if _, err := s.ownedForm(ctx, response.FormID, userID); err != nil {
		return err
	}

	if err := s.repo.Response().Delete(ctx, responseID); err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}

	s.logger.Info("Response deleted", "response_id", responseID, "user_id", userID)
	return nil
}

func (s *responseService) ownedForm(ctx context.Context, formID uint, userID string) (*models.Form, error) {
	form, err := s.repo.Form().GetByID(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if form.CreatedBy != userID {
		return nil, ErrFormNotOwned
	}
	return form, nil
}

func (s *responseService) ownedFormWithQuestions(ctx context.Context, formID uint, userID string) (*models.Form, error) {
	form, err := s.repo.Form().GetByIDWithQuestions(ctx, formID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	if form.CreatedBy != userID {
		return nil, ErrFormNotOwned
	}
	return form, nil
}
