package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

// Create is the only write path: responses are append-only.
func (r ResponsePostgreSQL) Create(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Create(response).Error
}

func (r ResponsePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).First(&response, id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r ResponsePostgreSQL) ListByForm(ctx context.Context, formID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	var responses []*models.Response
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Response{}).Where("form_id = ?", formID)
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("submitted_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, err
	}

	return responses, total, nil
}

func (r ResponsePostgreSQL) CountByForm(ctx context.Context, formID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}

// GetFormStats aggregates on demand; nothing is maintained incrementally.
// Score averages only consider graded (test-mode) responses.
func (r ResponsePostgreSQL) GetFormStats(ctx context.Context, formID uint) (*repositories.FormResponseStats, error) {
	stats := &repositories.FormResponseStats{}

	if err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Where("form_id = ?", formID).
		Count(&stats.ResponseCount).Error; err != nil {
		return nil, err
	}

	var row struct {
		AvgScore    *float64
		AvgMaxScore *float64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Response{}).
		Select("AVG(score) AS avg_score, AVG(max_score) AS avg_max_score").
		Where("form_id = ? AND score IS NOT NULL", formID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	stats.AverageScore = row.AvgScore
	stats.AverageMaxScore = row.AvgMaxScore

	return stats, nil
}

func (r ResponsePostgreSQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Response{}, id).Error
}
