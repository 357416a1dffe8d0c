package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/formforge/formbuilder-service/internal/models"
	"github.com/formforge/formbuilder-service/internal/repositories"
)

type FormPostgreSQL struct {
	db *gorm.DB
}

func NewFormPostgreSQL(db *gorm.DB) repositories.FormRepository {
	return &FormPostgreSQL{db: db}
}

func (f FormPostgreSQL) Create(ctx context.Context, form *models.Form) error {
	return f.db.WithContext(ctx).Create(form).Error
}

func (f FormPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Form, error) {
	var form models.Form
	if err := f.db.WithContext(ctx).
		Preload("Settings").
		First(&form, id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

// GetByIDWithQuestions loads the form with its frozen question list in
// persisted position order.
func (f FormPostgreSQL) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Form, error) {
	var form models.Form
	if err := f.db.WithContext(ctx).
		Preload("Settings").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		First(&form, id).Error; err != nil {
		return nil, err
	}
	return &form, nil
}

func (f FormPostgreSQL) Update(ctx context.Context, form *models.Form) error {
	return f.db.WithContext(ctx).Save(form).Error
}

func (f FormPostgreSQL) SetActive(ctx context.Context, id uint, active bool) error {
	result := f.db.WithContext(ctx).
		Model(&models.Form{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (f FormPostgreSQL) Delete(ctx context.Context, id uint) error {
	return f.db.WithContext(ctx).Delete(&models.Form{}, id).Error
}

func (f FormPostgreSQL) GetByCreator(ctx context.Context, creatorID string, filters repositories.FormFilters) ([]*models.Form, int64, error) {
	var forms []*models.Form
	var total int64

	// apply filters first
	query := f.db.WithContext(ctx).Model(&models.Form{}).Where("created_by = ?", creatorID)
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = applyPaginationAndSort(query, filters.Limit, filters.Offset, filters.SortBy, filters.SortOrder)

	if err := query.Preload("Settings").Find(&forms).Error; err != nil {
		return nil, 0, err
	}

	return forms, total, nil
}

// UpdateWithQuestions persists the form row and, when questions is
// non-nil, swaps the question list in the same transaction so a failed
// replacement never leaves a half-applied edit. Published forms must
// never reach this path; the service layer guards it.
func (f FormPostgreSQL) UpdateWithQuestions(ctx context.Context, form *models.Form, questions *[]models.Question) error {
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The loaded question association must not be upserted alongside
		// the row; the replacement below owns the questions table.
		if err := tx.Omit("Questions").Save(form).Error; err != nil {
			return err
		}
		if questions == nil {
			return nil
		}
		if err := tx.Where("form_id = ?", form.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		replacement := *questions
		if len(replacement) == 0 {
			return nil
		}
		for i := range replacement {
			replacement[i].FormID = form.ID
			replacement[i].Position = i
		}
		return tx.Create(&replacement).Error
	})
}

func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string) *gorm.DB {
	switch sortBy {
	case "title", "created_at", "updated_at":
	default:
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
