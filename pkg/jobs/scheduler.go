package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/propdocs/propdocs/pkg/observability"
	"github.com/propdocs/propdocs/pkg/ratelimit"
)

// TrialExpirer sweeps trial rows whose end date has passed.
type TrialExpirer interface {
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs periodic maintenance. None of it is load-bearing for
// correctness: entitlement is evaluated lazily and the rate limiter evicts
// lazily. The jobs keep reporting columns honest and memory bounded.
type Scheduler struct {
	cron    *cron.Cron
	logger  *observability.Logger
	expirer TrialExpirer
	limiter *ratelimit.Limiter
}

// NewScheduler creates a scheduler. Either dependency may be nil to skip
// its job.
func NewScheduler(expirer TrialExpirer, limiter *ratelimit.Limiter, logger *observability.Logger) *Scheduler {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		expirer: expirer,
		limiter: limiter,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.expirer != nil {
		if _, err := s.cron.AddFunc("@hourly", s.expireTrials); err != nil {
			return err
		}
	}
	if s.limiter != nil {
		if _, err := s.cron.AddFunc("@every 5m", s.limiter.Cleanup); err != nil {
			return err
		}
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) expireTrials() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.expirer.ExpireTrials(ctx, time.Now().UTC())
	if err != nil {
		s.logger.WithError(err).Error("trial expiry sweep failed")
		return
	}
	if n > 0 {
		s.logger.WithField("expired", n).Info("marked expired trials")
	}
}
