package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/harpaljob/harpaljob-api/internal/logging"
	"github.com/harpaljob/harpaljob-api/internal/models"
	"github.com/harpaljob/harpaljob-api/internal/push"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named shared-cache memory DB so every pooled connection sees the
	// same schema.
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Category{},
		&models.Job{},
		&models.JobApplication{},
	))
	return db
}

// fakeGateway records every call and fails the tokens listed in errs.
type fakeGateway struct {
	mu         sync.Mutex
	errs       map[string]error
	multicasts [][]string
	sends      []string
}

func (f *fakeGateway) SendMulticast(_ context.Context, _ push.Message, tokens []string) (*push.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.multicasts = append(f.multicasts, tokens)

	result := &push.Result{}
	for _, token := range tokens {
		if err := f.errs[token]; err != nil {
			result.FailureCount++
			result.Responses = append(result.Responses, push.SendResponse{Token: token, Error: err})
			continue
		}
		result.SuccessCount++
		result.Responses = append(result.Responses, push.SendResponse{Token: token, Success: true})
	}
	return result, nil
}

func (f *fakeGateway) Send(_ context.Context, _ push.Message, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, token)
	return f.errs[token]
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.multicasts) + len(f.sends)
}

func strptr(s string) *string { return &s }

func seedUser(t *testing.T, db *gorm.DB, role string, token *string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     uniqueEmail(t, db),
		Password:  "x",
		Role:      role,
		IsActive:  true,
		FCMToken:  token,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func uniqueEmail(t *testing.T, db *gorm.DB) string {
	var n int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Count(&n).Error)
	return fmt.Sprintf("user%d@example.com", n)
}

func seedCompany(t *testing.T, db *gorm.DB, ownerID uint, name, slug string) *models.Company {
	t.Helper()
	company := &models.Company{Name: name, Slug: slug, UserID: ownerID}
	require.NoError(t, db.Create(company).Error)
	return company
}

func nopLogger() zerolog.Logger { return logging.Nop() }
