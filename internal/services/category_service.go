package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harpaljob/harpaljob-api/internal/dtos"
	"github.com/harpaljob/harpaljob-api/internal/models"
	"github.com/harpaljob/harpaljob-api/internal/slugify"
)

type CategoryService struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewCategoryService(db *gorm.DB, log zerolog.Logger) *CategoryService {
	return &CategoryService{DB: db, log: log.With().Str("service", "category").Logger()}
}

// Create allocates the slug and inserts the category. Name uniqueness is a
// separate, user-facing invariant checked before any slug work.
func (s *CategoryService) Create(ctx context.Context, req *dtos.CategoryCreateRequest) (*models.Category, error) {
	if err := s.checkDuplicateName(ctx, req.Name, 0); err != nil {
		return nil, err
	}

	slug, err := slugify.Allocate(req.Name, slugTaken(ctx, s.DB, &models.Category{}, 0))
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := createWithSlugRetry(ctx, s.DB, category, slug, func(v string) { category.Slug = v }); err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", category.Slug).Msg("category created")
	return category, nil
}

// Update re-allocates the slug only when the name actually changed, with
// the existence check excluding the category's own row.
func (s *CategoryService) Update(ctx context.Context, id uint, req *dtos.CategoryUpdateRequest) (*models.Category, error) {
	category, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		if err := s.checkDuplicateName(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		slug, err := slugify.Allocate(*req.Name, slugTaken(ctx, s.DB, &models.Category{}, id))
		if err != nil {
			return nil, err
		}
		category.Name = *req.Name
		category.Slug = slug
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.DB.WithContext(ctx).Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	q := s.DB.WithContext(ctx).Order("name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.DB.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CategoryService) getByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := s.DB.WithContext(ctx).First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) checkDuplicateName(ctx context.Context, name string, excludeID uint) error {
	q := s.DB.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrDuplicateName
	}
	return nil
}
