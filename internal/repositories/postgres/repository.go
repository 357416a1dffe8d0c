package postgres

import (
	"gorm.io/gorm"

	"github.com/formforge/formbuilder-service/internal/repositories"
)

type repository struct {
	form     repositories.FormRepository
	response repositories.ResponseRepository
}

// NewRepository builds the PostgreSQL-backed repository aggregate.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		form:     NewFormPostgreSQL(db),
		response: NewResponsePostgreSQL(db),
	}
}

func (r *repository) Form() repositories.FormRepository {
	return r.form
}

func (r *repository) Response() repositories.ResponseRepository {
	return r.response
}
