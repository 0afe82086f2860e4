package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harpaljob/harpaljob-api/internal/dtos"
	"github.com/harpaljob/harpaljob-api/internal/models"
	"github.com/harpaljob/harpaljob-api/internal/slugify"
)

type JobService struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewJobService(db *gorm.DB, log zerolog.Logger) *JobService {
	return &JobService{DB: db, log: log.With().Str("service", "job").Logger()}
}

// Create inserts a posting for the employer. The slug is derived from the
// title at creation time and never regenerated unless the title changes.
func (s *JobService) Create(ctx context.Context, employerID uint, req *dtos.JobCreateRequest) (*models.Job, error) {
	var company models.Company
	err := s.DB.WithContext(ctx).First(&company, req.CompanyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: company %d", ErrNotFound, req.CompanyID)
	}
	if err != nil {
		return nil, err
	}
	if company.UserID != employerID {
		return nil, ErrForbidden
	}

	categories, err := s.findCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	slug, err := slugify.Allocate(req.Title, slugTaken(ctx, s.DB, &models.Job{}, 0))
	if err != nil {
		return nil, err
	}

	job := &models.Job{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Salary:      req.Salary,
		JobType:     req.JobType,
		Experience:  req.Experience,
		Skills:      req.Skills,
		Status:      models.JobStatusActive,
		ApplyLink:   req.ApplyLink,
		Tags:        req.Tags,
		Country:     req.Country,
		IsFeatured:  req.IsFeatured,
		Vacancy:     req.Vacancy,
		EmployerID:  employerID,
		CompanyID:   company.ID,
		Categories:  categories,
	}
	if req.Status != "" {
		job.Status = req.Status
	}
	if job.Vacancy <= 0 {
		job.Vacancy = 1
	}

	if err := createWithSlugRetry(ctx, s.DB, job, slug, func(v string) { job.Slug = v }); err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", job.Slug).Uint("employer", employerID).Msg("job created")
	return job, nil
}

// Update patches a posting. The slug is re-allocated only when the title
// changed, with the existence check excluding the job's own row, so an
// update that collides with another posting's slug gets a suffix instead
// of stealing it.
func (s *JobService) Update(ctx context.Context, id, callerID uint, req *dtos.JobUpdateRequest) (*models.Job, error) {
	job, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != callerID {
		return nil, ErrForbidden
	}

	if req.Title != nil && *req.Title != job.Title {
		slug, err := slugify.Allocate(*req.Title, slugTaken(ctx, s.DB, &models.Job{}, id))
		if err != nil {
			return nil, err
		}
		job.Title = *req.Title
		job.Slug = slug
	}
	applyJobPatch(job, req)

	if err := s.DB.WithContext(ctx).Save(job).Error; err != nil {
		return nil, err
	}

	if req.CategoryIDs != nil {
		categories, err := s.findCategories(ctx, *req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.DB.WithContext(ctx).Model(job).Association("Categories").Replace(categories); err != nil {
			return nil, err
		}
		job.Categories = categories
	}
	return job, nil
}

func (s *JobService) Delete(ctx context.Context, id, callerID uint) error {
	job, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	if job.EmployerID != callerID {
		return ErrForbidden
	}
	return s.DB.WithContext(ctx).Delete(job).Error
}

// GetBySlug loads one posting and bumps its view counter.
func (s *JobService) GetBySlug(ctx context.Context, slug string) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).
		Preload("Company").
		Preload("Categories").
		Where("slug = ?", slug).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Model(&job).UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		s.log.Warn().Err(err).Str("slug", slug).Msg("view counter update failed")
	}
	return &job, nil
}

// List returns a filtered, paginated page of postings.
func (s *JobService) List(ctx context.Context, q *dtos.JobListQuery) ([]models.Job, int64, error) {
	query := s.DB.WithContext(ctx).Model(&models.Job{}).
		Preload("Company").
		Preload("Categories")

	status := q.Status
	if status == "" {
		status = models.JobStatusActive
	}
	query = query.Where("jobs.status = ?", status)

	if q.JobType != "" {
		query = query.Where("job_type = ?", q.JobType)
	}
	if q.Location != "" {
		query = query.Where("LOWER(location) LIKE LOWER(?)", "%"+q.Location+"%")
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}
	if q.Featured != nil {
		query = query.Where("is_featured = ?", *q.Featured)
	}
	if q.Category != "" {
		query = query.
			Joins("JOIN job_categories jc ON jc.job_id = jobs.id").
			Joins("JOIN categories c ON c.id = jc.category_id").
			Where("c.slug = ?", q.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	var jobs []models.Job
	err := query.
		Order("is_featured DESC, created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (s *JobService) getByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) findCategories(ctx context.Context, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []models.Category
	if err := s.DB.WithContext(ctx).Find(&categories, ids).Error; err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, fmt.Errorf("%w: one or more categories", ErrNotFound)
	}
	return categories, nil
}

func applyJobPatch(job *models.Job, req *dtos.JobUpdateRequest) {
	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.JobType != nil {
		job.JobType = *req.JobType
	}
	if req.Salary != nil {
		job.Salary = *req.Salary
	}
	if req.Experience != nil {
		job.Experience = *req.Experience
	}
	if req.Skills != nil {
		job.Skills = *req.Skills
	}
	if req.Status != nil {
		job.Status = *req.Status
	}
	if req.ApplyLink != nil {
		job.ApplyLink = *req.ApplyLink
	}
	if req.Tags != nil {
		job.Tags = *req.Tags
	}
	if req.Country != nil {
		job.Country = *req.Country
	}
	if req.IsFeatured != nil {
		job.IsFeatured = *req.IsFeatured
	}
	if req.Vacancy != nil && *req.Vacancy > 0 {
		job.Vacancy = *req.Vacancy
	}
}
