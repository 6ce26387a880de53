// Package jobs runs periodic maintenance: purging expired idempotency records
// and delivered or failed notification outbox rows.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
)

// DefaultJobRetention keeps finished outbox rows for a week.
const DefaultJobRetention = 7 * 24 * time.Hour

// Result counts rows removed by one cleanup run.
type Result struct {
	Idempotency      int64
	NotificationJobs int64
}

// Cleanup deletes stale rows.
type Cleanup struct {
	DB           *gorm.DB
	JobRetention time.Duration
	Now          func() time.Time
}

// Run performs one cleanup pass.
func (j *Cleanup) Run(ctx context.Context) (Result, error) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	retention := j.JobRetention
	if retention <= 0 {
		retention = DefaultJobRetention
	}
	t := now().UTC()

	var res Result
	n, err := repo.PurgeExpiredIdempotency(ctx, j.DB, t)
	if err != nil {
		return res, fmt.Errorf("purge idempotency: %w", err)
	}
	res.Idempotency = n

	n, err = repo.PurgeNotificationJobs(ctx, j.DB, t.Add(-retention))
	if err != nil {
		return res, fmt.Errorf("purge notification jobs: %w", err)
	}
	res.NotificationJobs = n
	return res, nil
}

// Scheduler runs a Cleanup on a cron spec such as "@every 1h" or "0 3 * * *".
type Scheduler struct {
	job    *Cleanup
	parser cron.Parser
	log    zerolog.Logger

	mu sync.Mutex
	c  *cron.Cron
}

// NewScheduler returns a stopped Scheduler for job.
func NewScheduler(job *Cleanup, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		job:    job,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		log:    log,
	}
}

// Start validates schedule and begins running the job in the background. Runs
// use ctx, so cancelling it aborts an in-flight pass; call Stop to end the
// schedule. Overlapping runs are skipped.
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	sched, err := s.parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("cleanup schedule %q: %w", schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	s.c = cron.New(cron.WithParser(s.parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	s.c.Schedule(sched, cron.FuncJob(func() { s.runOnce(ctx) }))
	s.c.Start()
	s.log.Info().Str("schedule", schedule).Msg("cleanup scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	res, err := s.job.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup failed")
		return
	}
	s.log.Info().
		Int64("idempotency", res.Idempotency).
		Int64("notification_jobs", res.NotificationJobs).
		Dur("took", time.Since(start)).
		Msg("cleanup done")
}
