package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/harpaljob/harpaljob-api/internal/models"
	"github.com/harpaljob/harpaljob-api/internal/push"
)

// NotificationService computes push audiences and dispatches through the
// gateway. A nil gateway means degraded mode: every send becomes a logged
// no-op with a zero result, never an error. The token-cleanup loop is not
// synchronized against concurrent token writes from login/logout; a fresh
// token written mid-cleanup can be cleared and is re-registered on the
// next app start.
type NotificationService struct {
	DB      *gorm.DB
	gateway push.Gateway
	loc     *time.Location
	log     zerolog.Logger
}

func NewNotificationService(db *gorm.DB, gateway push.Gateway, loc *time.Location, log zerolog.Logger) *NotificationService {
	if loc == nil {
		loc = time.Local
	}
	return &NotificationService{
		DB:      db,
		gateway: gateway,
		loc:     loc,
		log:     log.With().Str("service", "notification").Logger(),
	}
}

// DailySummary reports one run of the daily-jobs notification.
type DailySummary struct {
	JobCount   int            `json:"job_count"`
	Categories map[string]int `json:"categories"`
	Recipients int            `json:"recipients"`
	Result     *push.Result   `json:"result"`
}

// SendMulticast fails soft: an empty token list returns a zero result
// without contacting the gateway, and a missing or failing gateway is
// logged and absorbed into a zero result.
func (s *NotificationService) SendMulticast(ctx context.Context, msg push.Message, tokens []string) *push.Result {
	if len(tokens) == 0 {
		return &push.Result{}
	}
	if s.gateway == nil {
		s.log.Warn().Msg("push gateway not configured, skipping notification")
		return &push.Result{}
	}

	result, err := s.gateway.SendMulticast(ctx, msg, tokens)
	if err != nil {
		s.log.Warn().Err(err).Int("tokens", len(tokens)).Msg("multicast failed")
		return &push.Result{FailureCount: len(tokens)}
	}
	if result.FailureCount > 0 {
		s.log.Warn().
			Int("failed", result.FailureCount).
			Int("sent", result.SuccessCount).
			Msg("some notifications failed")
	} else {
		s.log.Info().Int("sent", result.SuccessCount).Msg("notification sent")
	}
	return result
}

// SendToUser pushes one notification to one user. Returns false (without
// error) when the user is missing or holds no token.
func (s *NotificationService) SendToUser(ctx context.Context, userID uint, msg push.Message) bool {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, userID).Error
	if err != nil || user.FCMToken == nil {
		s.log.Warn().Uint("user", userID).Msg("user not found or has no push token")
		return false
	}
	if s.gateway == nil {
		s.log.Warn().Msg("push gateway not configured, skipping notification")
		return false
	}
	if err := s.gateway.Send(ctx, msg, *user.FCMToken); err != nil {
		s.log.Warn().Err(err).Uint("user", userID).Msg("push delivery failed")
		return false
	}
	return true
}

// SendDailyJobsNotification summarizes the jobs posted since local midnight
// grouped by category and multicasts the summary to every jobseeker with a
// push token. A day with zero jobs returns early without touching the
// gateway.
func (s *NotificationService) SendDailyJobsNotification(ctx context.Context) (*DailySummary, error) {
	midnight := s.startOfToday()

	var jobs []models.Job
	err := s.DB.WithContext(ctx).
		Preload("Categories").
		Where("created_at >= ? AND status = ?", midnight, models.JobStatusActive).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("daily jobs query: %w", err)
	}

	summary := &DailySummary{
		JobCount:   len(jobs),
		Categories: map[string]int{},
		Result:     &push.Result{},
	}
	if len(jobs) == 0 {
		s.log.Info().Msg("no new jobs today, skipping daily notification")
		return summary, nil
	}

	for _, job := range jobs {
		if len(job.Categories) == 0 {
			summary.Categories["Other"]++
			continue
		}
		for _, category := range job.Categories {
			summary.Categories[category.Name]++
		}
	}

	tokens, err := s.jobseekerTokens(ctx)
	if err != nil {
		return nil, err
	}
	summary.Recipients = len(tokens)
	if len(tokens) == 0 {
		s.log.Info().Msg("no users with push tokens, skipping daily notification")
		return summary, nil
	}

	names := make([]string, 0, len(summary.Categories))
	for name := range summary.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%d %s", summary.Categories[name], name))
	}

	msg := push.Message{
		Notification: &push.Notification{
			Title: "New Jobs Available!",
			Body:  fmt.Sprintf("%d new jobs posted today: %s", len(jobs), strings.Join(parts, ", ")),
		},
		Data: map[string]string{
			"type":         "daily_jobs",
			"job_count":    strconv.Itoa(len(jobs)),
			"categories":   strings.Join(names, ","),
			"click_action": "OPEN_JOBS_LIST",
		},
	}

	summary.Result = s.SendMulticast(ctx, msg, tokens)
	s.log.Info().
		Int("jobs", summary.JobCount).
		Int("notified", summary.Result.SuccessCount).
		Int("failed", summary.Result.FailureCount).
		Msg("daily jobs notification done")
	return summary, nil
}

// SendCategoryNotification notifies jobseekers about fresh postings in one
// category.
func (s *NotificationService) SendCategoryNotification(ctx context.Context, categoryID uint, jobCount int) (*push.Result, error) {
	var category models.Category
	err := s.DB.WithContext(ctx).First(&category, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: category %d", ErrNotFound, categoryID)
	}
	if err != nil {
		return nil, err
	}

	tokens, err := s.jobseekerTokens(ctx)
	if err != nil {
		return nil, err
	}

	msg := push.Message{
		Notification: &push.Notification{
			Title: fmt.Sprintf("New %s Jobs!", category.Name),
			Body:  fmt.Sprintf("%d new %s jobs just posted.", jobCount, category.Name),
		},
		Data: map[string]string{
			"type":          "category_jobs",
			"category_id":   strconv.FormatUint(uint64(categoryID), 10),
			"category_name": category.Name,
			"job_count":     strconv.Itoa(jobCount),
			"click_action":  "OPEN_CATEGORY",
		},
	}
	return s.SendMulticast(ctx, msg, tokens), nil
}

// SendApplicationStatusNotification tells an applicant their application
// moved. Best effort.
func (s *NotificationService) SendApplicationStatusNotification(ctx context.Context, userID uint, jobTitle, status string) {
	bodies := map[string]string{
		models.ApplicationReviewing:   "Your application is being reviewed",
		models.ApplicationShortlisted: "Congratulations! You've been shortlisted",
		models.ApplicationRejected:    "Application status update",
		models.ApplicationHired:       "Congratulations! You've been hired!",
	}
	body, ok := bodies[status]
	if !ok {
		body = "Your application status has been updated"
	}

	s.SendToUser(ctx, userID, push.Message{
		Notification: &push.Notification{
			Title: "Application Update: " + jobTitle,
			Body:  body,
		},
		Data: map[string]string{
			"type":         "application_status",
			"status":       status,
			"click_action": "OPEN_APPLICATIONS",
		},
	})
}

// SendWelcomeNotification greets a freshly registered user.
func (s *NotificationService) SendWelcomeNotification(ctx context.Context, userID uint, firstName string) {
	s.SendToUser(ctx, userID, push.Message{
		Notification: &push.Notification{
			Title: "Welcome to HarPalJob!",
			Body:  fmt.Sprintf("Hi %s! Start exploring thousands of job opportunities.", firstName),
		},
		Data: map[string]string{"type": "welcome", "click_action": "OPEN_APP"},
	})
}

// SendTestNotification is the admin smoke test. With a user id it targets
// that user only and reports zero successes (without error) when they hold
// no token; without one it broadcasts to every user with a token.
func (s *NotificationService) SendTestNotification(ctx context.Context, userID *uint) (*push.Result, error) {
	msg := push.Message{
		Notification: &push.Notification{
			Title: "Test Notification",
			Body:  "This is a test notification from HarPalJob!",
		},
		Data: map[string]string{"type": "test", "click_action": "OPEN_APP"},
	}

	if userID != nil {
		if s.SendToUser(ctx, *userID, msg) {
			return &push.Result{SuccessCount: 1}, nil
		}
		return &push.Result{FailureCount: 1}, nil
	}

	tokens, err := s.allTokens(ctx)
	if err != nil {
		return nil, err
	}
	return s.SendMulticast(ctx, msg, tokens), nil
}

// CleanupInvalidTokens probes every stored token with a silent data-only
// push and clears exactly those the gateway reports as unregistered. Other
// delivery errors (quota, transient network) leave the token untouched.
// Returns the number of tokens cleared.
func (s *NotificationService) CleanupInvalidTokens(ctx context.Context) (int, error) {
	if s.gateway == nil {
		s.log.Warn().Msg("push gateway not configured, skipping token cleanup")
		return 0, nil
	}

	var users []models.User
	if err := s.DB.WithContext(ctx).Where("fcm_token IS NOT NULL").Find(&users).Error; err != nil {
		return 0, fmt.Errorf("token cleanup query: %w", err)
	}

	probe := push.Message{Data: map[string]string{"type": "token_probe"}}
	cleaned := 0
	for _, user := range users {
		err := s.gateway.Send(ctx, probe, *user.FCMToken)
		if err == nil {
			continue
		}
		if !errors.Is(err, push.ErrUnregistered) {
			s.log.Debug().Err(err).Uint("user", user.ID).Msg("token probe failed, keeping token")
			continue
		}
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("fcm_token", nil).Error; err != nil {
			s.log.Warn().Err(err).Uint("user", user.ID).Msg("failed to clear invalid token")
			continue
		}
		cleaned++
		s.log.Info().Uint("user", user.ID).Msg("removed unregistered push token")
	}

	if cleaned > 0 {
		s.log.Info().Int("cleaned", cleaned).Msg("token cleanup finished")
	}
	return cleaned, nil
}

func (s *NotificationService) jobseekerTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND fcm_token IS NOT NULL", models.RoleJobseeker).
		Pluck("fcm_token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("jobseeker tokens query: %w", err)
	}
	return tokens, nil
}

func (s *NotificationService) allTokens(ctx context.Context) ([]string, error) {
	var tokens []string
	err := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("fcm_token IS NOT NULL").
		Pluck("fcm_token", &tokens).Error
	if err != nil {
		return nil, fmt.Errorf("token query: %w", err)
	}
	return tokens, nil
}

// startOfToday is local midnight in the scheduler timezone.
func (s *NotificationService) startOfToday() time.Time {
	now := time.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}
