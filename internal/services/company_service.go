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

type CompanyService struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewCompanyService(db *gorm.DB, log zerolog.Logger) *CompanyService {
	return &CompanyService{DB: db, log: log.With().Str("service", "company").Logger()}
}

func (s *CompanyService) Create(ctx context.Context, ownerID uint, req *dtos.CompanyCreateRequest) (*models.Company, error) {
	slug, err := slugify.Allocate(req.Name, slugTaken(ctx, s.DB, &models.Company{}, 0))
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		LogoURL:     req.LogoURL,
		Location:    req.Location,
		UserID:      ownerID,
	}
	if err := createWithSlugRetry(ctx, s.DB, company, slug, func(v string) { company.Slug = v }); err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", company.Slug).Uint("owner", ownerID).Msg("company created")
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id, callerID uint, req *dtos.CompanyUpdateRequest) (*models.Company, error) {
	company, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.UserID != callerID {
		return nil, ErrForbidden
	}

	if req.Name != nil && *req.Name != company.Name {
		slug, err := slugify.Allocate(*req.Name, slugTaken(ctx, s.DB, &models.Company{}, id))
		if err != nil {
			return nil, err
		}
		company.Name = *req.Name
		company.Slug = slug
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	if req.Website != nil {
		company.Website = *req.Website
	}
	if req.LogoURL != nil {
		company.LogoURL = *req.LogoURL
	}
	if req.Location != nil {
		company.Location = *req.Location
	}

	if err := s.DB.WithContext(ctx).Save(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := s.DB.WithContext(ctx).Order("name").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (s *CompanyService) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	var company models.Company
	err := s.DB.WithContext(ctx).
		Preload("Jobs", "status = ?", models.JobStatusActive).
		Where("slug = ?", slug).
		First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *CompanyService) getByID(ctx context.Context, id uint) (*models.Company, error) {
	var company models.Company
	err := s.DB.WithContext(ctx).First(&company, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}
