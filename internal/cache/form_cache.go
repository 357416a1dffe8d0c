package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/formforge/formbuilder-service/internal/models"
)

const formTTL = 5 * time.Minute

// FormCache is a read-through cache for published form definitions,
// including their frozen question lists. Misses and backend failures are
// both reported as ErrCacheMiss so callers always fall back to storage.
type FormCache interface {
	GetForm(ctx context.Context, id uint) (*models.Form, error)
	SetForm(ctx context.Context, form *models.Form) error
	InvalidateForm(ctx context.Context, id uint) error
}

type formCache struct {
	cache  CacheService
	logger *slog.Logger
}

func NewFormCache(cache CacheService, logger *slog.Logger) FormCache {
	return &formCache{
		cache:  cache,
		logger: logger,
	}
}

func (c *formCache) GetForm(ctx context.Context, id uint) (*models.Form, error) {
	var form models.Form
	if err := c.cache.Get(ctx, formKey(id), &form); err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("form cache read failed", "form_id", id, "error", err)
		}
		return nil, ErrCacheMiss
	}
	return &form, nil
}

func (c *formCache) SetForm(ctx context.Context, form *models.Form) error {
	return c.cache.Set(ctx, formKey(form.ID), form, formTTL)
}

func (c *formCache) InvalidateForm(ctx context.Context, id uint) error {
	return c.cache.Delete(ctx, formKey(id))
}

func formKey(id uint) string {
	return fmt.Sprintf("form:%d", id)
}

// NoopFormCache always misses; used when Redis is not configured.
type NoopFormCache struct{}

func (NoopFormCache) GetForm(ctx context.Context, id uint) (*models.Form, error) {
	return nil, ErrCacheMiss
}

func (NoopFormCache) SetForm(ctx context.Context, form *models.Form) error { return nil }

func (NoopFormCache) InvalidateForm(ctx context.Context, id uint) error { return nil }
