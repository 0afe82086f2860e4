package services

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/harpaljob/harpaljob-api/internal/push"
)

// Scheduled job names. Status() always reports an entry for each.
const (
	JobDailyJobs     = "dailyJobs"
	JobTokenCleanup  = "tokenCleanup"
	JobWeeklySummary = "weeklySummary"
)

// scheduledJob is one static recurring task definition. Definitions are
// code, not data: Restart re-registers from this table, so nothing added
// at runtime survives a restart.
type scheduledJob struct {
	name string
	spec string // five-field cron expression, evaluated in the scheduler's timezone
	run  func(ctx context.Context) error
}

// SchedulerService owns the recurring notification jobs. It is constructed
// once at startup and handed to whatever needs manual-trigger access; there
// is no package-level instance.
//
// Stop only prevents future firings; an in-flight handler runs to
// completion. Distinct jobs may overlap in flight; no mutual exclusion is
// enforced between handlers.
type SchedulerService struct {
	notifications *NotificationService
	loc           *time.Location
	log           zerolog.Logger

	mu          sync.Mutex
	c           *cron.Cron
	entries     map[string]cron.EntryID
	initialized bool
}

func NewSchedulerService(notifications *NotificationService, loc *time.Location, log zerolog.Logger) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	return &SchedulerService{
		notifications: notifications,
		loc:           loc,
		log:           log.With().Str("service", "scheduler").Logger(),
		entries:       map[string]cron.EntryID{},
	}
}

// jobs is the static definition table.
func (s *SchedulerService) jobs() []scheduledJob {
	return []scheduledJob{
		{
			name: JobDailyJobs,
			spec: "0 10 * * *", // 10:00 every day
			run:  s.runDailyJobs,
		},
		{
			name: JobTokenCleanup,
			spec: "0 2 * * 0", // 02:00 every Sunday
			run: func(ctx context.Context) error {
				_, err := s.notifications.CleanupInvalidTokens(ctx)
				return err
			},
		},
		{
			name: JobWeeklySummary,
			spec: "0 9 * * 1", // 09:00 every Monday
			run: func(ctx context.Context) error {
				// Reserved for weekly analytics; intentionally a no-op.
				return nil
			},
		},
	}
}

// runDailyJobs is the scheduled variant of the daily notification: the
// cron path skips weekends, the manual trigger does not.
func (s *SchedulerService) runDailyJobs(ctx context.Context) error {
	switch time.Now().In(s.loc).Weekday() {
	case time.Saturday, time.Sunday:
		s.log.Info().Msg("skipping daily jobs notification on weekend")
		return nil
	}
	_, err := s.notifications.SendDailyJobsNotification(ctx)
	return err
}

// Start registers every job from the static table and starts the timers.
// Idempotent: a second Start while running is a no-op.
func (s *SchedulerService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		s.log.Warn().Msg("scheduler already initialized")
		return nil
	}

	s.c = cron.New(cron.WithLocation(s.loc))
	s.entries = map[string]cron.EntryID{}
	for _, job := range s.jobs() {
		id, err := s.c.AddFunc(job.spec, s.wrap(job))
		if err != nil {
			return fmt.Errorf("scheduler: register %s (%q): %w", job.name, job.spec, err)
		}
		s.entries[job.name] = id
		s.log.Info().Str("job", job.name).Str("spec", job.spec).Msg("scheduled")
	}

	s.c.Start()
	s.initialized = true
	s.log.Info().Str("tz", s.loc.String()).Msg("scheduler started")
	return nil
}

// wrap guards a handler: errors and panics are logged at the scheduler
// boundary and the entry stays registered for its next natural tick. There
// is no retry before then.
func (s *SchedulerService) wrap(job scheduledJob) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().
					Str("job", job.name).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("scheduled job panicked")
			}
		}()

		s.log.Info().Str("job", job.name).Msg("running scheduled job")
		start := time.Now()
		if err := job.run(context.Background()); err != nil {
			s.log.Error().Err(err).Str("job", job.name).Msg("scheduled job failed")
			return
		}
		s.log.Info().Str("job", job.name).Dur("took", time.Since(start)).Msg("scheduled job done")
	}
}

// Stop halts future firings. Handlers already in flight are unaffected.
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.c.Stop()
	s.c = nil
	s.entries = map[string]cron.EntryID{}
	s.initialized = false
	s.log.Info().Msg("scheduler stopped")
}

// Restart re-registers everything from the static definition table.
func (s *SchedulerService) Restart() error {
	s.Stop()
	return s.Start()
}

// JobStatus describes one registered job. NextRun is advisory only: it is
// read from the timer entry while running and nil when stopped; nothing
// dispatches off this value.
type JobStatus struct {
	Running bool       `json:"running"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

type SchedulerStatus struct {
	Initialized bool                 `json:"initialized"`
	Jobs        map[string]JobStatus `json:"jobs"`
}

// Status reports every statically defined job, whether or not the
// scheduler is running.
func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{
		Initialized: s.initialized,
		Jobs:        map[string]JobStatus{},
	}
	for _, job := range s.jobs() {
		js := JobStatus{Running: s.initialized}
		if s.initialized {
			if id, ok := s.entries[job.name]; ok {
				if next := s.c.Entry(id).Next; !next.IsZero() {
					t := next.In(s.loc)
					js.NextRun = &t
				}
			}
		}
		status.Jobs[job.name] = js
	}
	return status
}

// TriggerDailyJobsNotification runs the daily-jobs handler immediately and
// synchronously, independent of the cron trigger (and without the
// weekend skip).
func (s *SchedulerService) TriggerDailyJobsNotification(ctx context.Context) (*DailySummary, error) {
	s.log.Info().Msg("manually triggering daily jobs notification")
	return s.notifications.SendDailyJobsNotification(ctx)
}

// TriggerTokenCleanup runs the token-cleanup handler immediately.
func (s *SchedulerService) TriggerTokenCleanup(ctx context.Context) (int, error) {
	s.log.Info().Msg("manually triggering token cleanup")
	return s.notifications.CleanupInvalidTokens(ctx)
}

// SendTestNotification forwards the admin smoke test.
func (s *SchedulerService) SendTestNotification(ctx context.Context, userID *uint) (*push.Result, error) {
	s.log.Info().Msg("sending test notification")
	return s.notifications.SendTestNotification(ctx, userID)
}
