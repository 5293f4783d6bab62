package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/quickdesk/helpdesk/internal/domain"
	"github.com/quickdesk/helpdesk/internal/repository"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

// CategoryService manages ticket categories. Admin only.
type CategoryService struct {
	store repository.Store
}

// NewCategoryService constructs the service.
func NewCategoryService(store repository.Store) *CategoryService {
	return &CategoryService{store: store}
}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, actor *domain.User, name string) (*domain.Category, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin role required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("category name cannot be empty", nil)
	}
	category := &domain.Category{Name: name}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	return category, nil
}

// Delete removes a category. Categories still referenced by tickets cannot
// be deleted; tickets are never cascade-deleted.
func (s *CategoryService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		count, err := tx.Tickets().CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewConflict("category has tickets", map[string]any{
				"category_id": id,
				"tickets":     count,
			})
		}
		if err := tx.Categories().Delete(ctx, id); err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("category", map[string]any{"category_id": id})
			}
			return err
		}
		return nil
	})
	return apperrors.MapError(err)
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.store.Categories().ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}
