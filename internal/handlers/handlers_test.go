package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harpaljob/harpaljob-api/internal/auth"
	"github.com/harpaljob/harpaljob-api/internal/database"
	"github.com/harpaljob/harpaljob-api/internal/logging"
	"github.com/harpaljob/harpaljob-api/internal/models"
	"github.com/harpaljob/harpaljob-api/internal/services"
)

var (
	routerSeq atomic.Int64
	emailSeq  atomic.Int64
)

// newTestRouter wires the full route table against an in-memory database
// and a nil push gateway.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlers%d?mode=memory&cache=shared", routerSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := logging.Nop()
	tokens := auth.NewManager("handlers-test-secret")
	users := services.NewUserService(db, log)
	categories := services.NewCategoryService(db, log)
	companies := services.NewCompanyService(db, log)
	jobs := services.NewJobService(db, log)
	notifications := services.NewNotificationService(db, nil, time.UTC, log)
	applications := services.NewApplicationService(db, notifications, log)
	scheduler := services.NewSchedulerService(notifications, time.UTC, log)

	r := gin.New()
	Register(r, Deps{
		Tokens:        tokens,
		Auth:          NewAuthHandler(users, notifications, tokens),
		Jobs:          NewJobHandler(jobs),
		Categories:    NewCategoryHandler(categories),
		Companies:     NewCompanyHandler(companies),
		Applications:  NewApplicationHandler(applications),
		Notifications: NewNotificationHandler(scheduler),
	})
	return r, db, tokens
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     fmt.Sprintf("user%d@example.com", emailSeq.Add(1)),
		Password:  "x",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func bearer(t *testing.T, m *auth.Manager, user *models.User) string {
	t.Helper()
	token, err := m.Issue(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCategoryErrorMapping(t *testing.T) {
	r, db, m := newTestRouter(t)
	admin := bearer(t, m, seedUser(t, db, models.RoleAdmin))

	w := doJSON(t, r, http.MethodPost, "/api/v1/categories", admin, gin.H{"name": "Design"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/categories", admin, gin.H{"name": "Design"})
	assert.Equal(t, http.StatusConflict, w.Code, "duplicate name")

	w = doJSON(t, r, http.MethodGet, "/api/v1/categories/no-such-slug", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	jobseeker := bearer(t, m, seedUser(t, db, models.RoleJobseeker))
	w = doJSON(t, r, http.MethodPost, "/api/v1/categories", jobseeker, gin.H{"name": "Ops"})
	assert.Equal(t, http.StatusForbidden, w.Code, "admin-only route")
}

func TestJobRoutesAndOwnership(t *testing.T) {
	r, db, m := newTestRouter(t)

	owner := seedUser(t, db, models.RoleEmployer)
	company := &models.Company{Name: "Acme", Slug: "acme", UserID: owner.ID}
	require.NoError(t, db.Create(company).Error)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", bearer(t, m, owner), gin.H{
		"title":       "Senior Node.js Developer",
		"description": "Backend role",
		"location":    "Karachi",
		"job_type":    "full-time",
		"company_id":  company.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID   uint   `json:"id"`
		Slug string `json:"slug"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "senior-node-js-developer", created.Slug)

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs/"+created.Slug, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Mutations address the job by id under the /jobs/id/ prefix.
	intruder := bearer(t, m, seedUser(t, db, models.RoleEmployer))
	path := fmt.Sprintf("/api/v1/jobs/id/%d", created.ID)
	w = doJSON(t, r, http.MethodPut, path, intruder, gin.H{"location": "Remote"})
	assert.Equal(t, http.StatusForbidden, w.Code, "only the owning employer may edit")

	w = doJSON(t, r, http.MethodPut, path, bearer(t, m, owner), gin.H{"location": "Remote"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplyWithoutBody(t *testing.T) {
	r, db, m := newTestRouter(t)

	employer := seedUser(t, db, models.RoleEmployer)
	company := &models.Company{Name: "Acme", Slug: "acme", UserID: employer.ID}
	require.NoError(t, db.Create(company).Error)
	job := &models.Job{
		Title: "Tester", Slug: "tester", Description: "d", Location: "l",
		JobType: "full-time", Status: models.JobStatusActive,
		EmployerID: employer.ID, CompanyID: company.ID, Vacancy: 1,
	}
	require.NoError(t, db.Create(job).Error)

	jobseeker := bearer(t, m, seedUser(t, db, models.RoleJobseeker))
	path := fmt.Sprintf("/api/v1/jobs/id/%d/apply", job.ID)

	w := doJSON(t, r, http.MethodPost, path, jobseeker, nil)
	assert.Equal(t, http.StatusCreated, w.Code, "cover letter is optional")

	w = doJSON(t, r, http.MethodPost, path, jobseeker, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "one application per job")
}

func TestAdminNotificationEndpoints(t *testing.T) {
	r, db, m := newTestRouter(t)
	admin := bearer(t, m, seedUser(t, db, models.RoleAdmin))

	w := doJSON(t, r, http.MethodGet, "/api/v1/admin/notifications/status", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"initialized":false`)
	assert.Contains(t, w.Body.String(), "dailyJobs")

	w = doJSON(t, r, http.MethodPost, "/api/v1/admin/notifications/daily-jobs", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"job_count":0`)

	w = doJSON(t, r, http.MethodPost, "/api/v1/admin/notifications/token-cleanup", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleaned":0`)

	jobseeker := bearer(t, m, seedUser(t, db, models.RoleJobseeker))
	w = doJSON(t, r, http.MethodGet, "/api/v1/admin/notifications/status", jobseeker, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSendTestBodyHandling(t *testing.T) {
	r, db, m := newTestRouter(t)
	admin := bearer(t, m, seedUser(t, db, models.RoleAdmin))

	// No body: broadcast. Nobody holds a token, so the result is empty.
	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/notifications/test", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"failure_count":0`)

	// A chunked request carries no Content-Length; the supplied user_id
	// must still be honored. The target has no token, which shows as one
	// failure rather than an empty broadcast result.
	target := seedUser(t, db, models.RoleJobseeker)
	raw, err := json.Marshal(gin.H{"user_id": target.ID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/notifications/test", bytes.NewReader(raw))
	req.ContentLength = -1
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failure_count":1`)
}
