package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harpaljob/harpaljob-api/internal/dtos"
	"github.com/harpaljob/harpaljob-api/internal/models"
)

type ApplicationService struct {
	DB            *gorm.DB
	notifications *NotificationService
	log           zerolog.Logger
}

func NewApplicationService(db *gorm.DB, notifications *NotificationService, log zerolog.Logger) *ApplicationService {
	return &ApplicationService{
		DB:            db,
		notifications: notifications,
		log:           log.With().Str("service", "application").Logger(),
	}
}

// Apply files an application by the user for an active job. One application
// per (job, user) pair.
func (s *ApplicationService) Apply(ctx context.Context, jobID, userID uint, req *dtos.ApplicationCreateRequest) (*models.JobApplication, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusActive {
		return nil, fmt.Errorf("%w: job %d is not accepting applications", ErrNotFound, jobID)
	}

	application := &models.JobApplication{
		JobID:       jobID,
		UserID:      userID,
		CoverLetter: req.CoverLetter,
		ResumeLink:  req.ResumeLink,
		Status:      models.ApplicationPending,
	}
	if err := s.DB.WithContext(ctx).Create(application).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}
	return application, nil
}

func (s *ApplicationService) ListForUser(ctx context.Context, userID uint) ([]models.JobApplication, error) {
	var applications []models.JobApplication
	err := s.DB.WithContext(ctx).
		Preload("Job").
		Preload("Job.Company").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

// ListForJob returns all applications to a posting, restricted to the
// posting's employer.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID, callerID uint) ([]models.JobApplication, error) {
	var job models.Job
	err := s.DB.WithContext(ctx).First(&job, jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if job.EmployerID != callerID {
		return nil, ErrForbidden
	}

	var applications []models.JobApplication
	err = s.DB.WithContext(ctx).
		Preload("User").
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&applications).Error
	if err != nil {
		return nil, err
	}
	return applications, nil
}

// UpdateStatus moves an application through its lifecycle and pushes a
// status notification to the applicant. Delivery is best effort: a push
// failure never rolls back the status change.
func (s *ApplicationService) UpdateStatus(ctx context.Context, applicationID, callerID uint, status string) (*models.JobApplication, error) {
	var application models.JobApplication
	err := s.DB.WithContext(ctx).Preload("Job").First(&application, applicationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if application.Job.EmployerID != callerID {
		return nil, ErrForbidden
	}

	application.Status = status
	if err := s.DB.WithContext(ctx).Save(&application).Error; err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.SendApplicationStatusNotification(ctx, application.UserID, application.Job.Title, status)
	}
	return &application, nil
}
