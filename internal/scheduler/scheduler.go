// Package scheduler runs every configured plugin once per interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job runs a single script to completion.
type Job func(ctx context.Context, script string) error

// Scheduler drives rounds over a fixed script list. A round that outlasts the
// interval is followed immediately by the next one; rounds are never skipped.
type Scheduler struct {
	scripts  []string
	interval time.Duration
	job      Job
	logger   *zap.SugaredLogger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithSleeper replaces the context-aware sleep between rounds.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) { s.sleep = sleep }
}

// New creates a scheduler running job for each of scripts every interval seconds.
func New(scripts []string, interval int, job Job, logger *zap.SugaredLogger, opts ...Option) *Scheduler {
	s := &Scheduler{
		scripts:  scripts,
		interval: time.Duration(interval) * time.Second,
		job:      job,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loops until ctx is cancelled and then returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		deadline := s.now().Add(s.interval)

		if err := s.Round(ctx); err != nil {
			return err
		}

		// sleep may wake early, so re-check against the deadline
		for wait := deadline.Sub(s.now()); wait > 0; wait = deadline.Sub(s.now()) {
			if err := s.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
}

// Round runs every script once, in order. Script failures are logged and do
// not stop the round; only cancellation does.
func (s *Scheduler) Round(ctx context.Context) error {
	for _, script := range s.scripts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.job(ctx, script); err != nil {
			s.logger.Error(err)
		}
	}
	return ctx.Err()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
