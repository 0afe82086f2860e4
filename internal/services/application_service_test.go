package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpaljob/harpaljob-api/internal/dtos"
	"github.com/harpaljob/harpaljob-api/internal/models"
)

func newApplicationFixtures(t *testing.T, gw *fakeGateway) (*ApplicationService, *models.Job, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	notifications := NewNotificationService(db, gw, time.UTC, nopLogger())
	svc := NewApplicationService(db, notifications, nopLogger())

	employer := seedUser(t, db, models.RoleEmployer, nil)
	company := seedCompany(t, db, employer.ID, "Acme", "acme")
	job := &models.Job{Title: "Backend Engineer", Slug: "backend-engineer", Description: "d",
		Location: "remote", JobType: "full-time", Status: models.JobStatusActive,
		EmployerID: employer.ID, CompanyID: company.ID}
	require.NoError(t, db.Create(job).Error)

	seeker := seedUser(t, db, models.RoleJobseeker, strptr("seeker-tok"))
	return svc, job, employer, seeker
}

func TestApplyOncePerJob(t *testing.T) {
	svc, job, _, seeker := newApplicationFixtures(t, &fakeGateway{})
	ctx := context.Background()

	application, err := svc.Apply(ctx, job.ID, seeker.ID, &dtos.ApplicationCreateRequest{ResumeLink: "cv.pdf"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, application.Status)

	_, err = svc.Apply(ctx, job.ID, seeker.ID, &dtos.ApplicationCreateRequest{})
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestApplyInactiveJob(t *testing.T) {
	svc, job, _, seeker := newApplicationFixtures(t, &fakeGateway{})
	ctx := context.Background()

	require.NoError(t, svc.DB.Model(job).Update("status", models.JobStatusInactive).Error)
	_, err := svc.Apply(ctx, job.ID, seeker.ID, &dtos.ApplicationCreateRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListForJobRestrictedToEmployer(t *testing.T) {
	svc, job, employer, seeker := newApplicationFixtures(t, &fakeGateway{})
	ctx := context.Background()

	_, err := svc.Apply(ctx, job.ID, seeker.ID, &dtos.ApplicationCreateRequest{})
	require.NoError(t, err)

	applications, err := svc.ListForJob(ctx, job.ID, employer.ID)
	require.NoError(t, err)
	assert.Len(t, applications, 1)

	_, err = svc.ListForJob(ctx, job.ID, seeker.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateStatusNotifiesApplicant(t *testing.T) {
	gw := &fakeGateway{}
	svc, job, employer, seeker := newApplicationFixtures(t, gw)
	ctx := context.Background()

	application, err := svc.Apply(ctx, job.ID, seeker.ID, &dtos.ApplicationCreateRequest{})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, application.ID, employer.ID, models.ApplicationShortlisted)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationShortlisted, updated.Status)

	// The applicant got a push on their registered token.
	assert.Equal(t, []string{"seeker-tok"}, gw.sends)
}

func TestUpdateStatusForbiddenForNonOwner(t *testing.T) {
	svc, job, _, seeker := newApplicationFixtures(t, &fakeGateway{})
	ctx := context.Background()

	application, err := svc.Apply(ctx, job.ID, seeker.ID, &dtos.ApplicationCreateRequest{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, application.ID, seeker.ID, models.ApplicationHired)
	assert.ErrorIs(t, err, ErrForbidden)
}
