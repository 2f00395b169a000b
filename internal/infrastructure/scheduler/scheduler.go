// Package scheduler drives a background job from a cron schedule plus one
// warm-up run shortly after start. Runs never overlap.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"agriloan-backend/internal/infrastructure/cache"
)

type Job func(ctx context.Context) error

// Locker provides cross-process exclusion; see cache.Lock. The returned
// context is cancelled when exclusion can no longer be guaranteed.
type Locker interface {
	Acquire(ctx context.Context) (context.Context, func(context.Context) error, error)
}

type Config struct {
	Name     string
	Schedule string        // robfig/cron spec, e.g. "@every 5m"
	Warmup   time.Duration // <= 0 disables the warm-up run
}

type Scheduler struct {
	cfg    Config
	job    Job
	log    *logrus.Entry
	locker Locker
	cron   *cron.Cron

	running atomic.Bool

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	warm   *time.Timer
}

type Option func(*Scheduler)

func WithLocker(l Locker) Option { return func(s *Scheduler) { s.locker = l } }

func New(cfg Config, job Job, log *logrus.Logger, opts ...Option) *Scheduler {
	entry := log.WithField("job", cfg.Name)
	s := &Scheduler{
		cfg: cfg,
		job: job,
		log: entry,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(entry)),
		)),
		ctx: context.Background(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start registers the recurring run and arms the warm-up timer. Jobs receive
// a context derived from parent that Stop cancels.
func (s *Scheduler) Start(parent context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(parent)
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.Trigger("schedule") }); err != nil {
		s.cancel()
		return fmt.Errorf("scheduler %s: bad schedule %q: %w", s.cfg.Name, s.cfg.Schedule, err)
	}
	if s.cfg.Warmup > 0 {
		s.warm = time.AfterFunc(s.cfg.Warmup, func() { s.Trigger("warmup") })
	}
	s.cron.Start()
	s.log.WithFields(logrus.Fields{
		"schedule": s.cfg.Schedule,
		"warmup":   s.cfg.Warmup.String(),
	}).Info("scheduler: started")
	return nil
}

// Stop halts future runs and cancels an in-flight one without waiting for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warm != nil {
		s.warm.Stop()
	}
	s.cron.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info("scheduler: stopped")
}

func (s *Scheduler) runContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Trigger runs the job now unless a run is already active here or, with a
// Locker, on another replica. It reports whether the job ran. Errors and
// panics from the job are logged, never propagated.
func (s *Scheduler) Trigger(reason string) (ran bool) {
	log := s.log.WithField("trigger", reason)
	if !s.running.CompareAndSwap(false, true) {
		log.Info("scheduler: previous run still active, skipping")
		return false
	}
	defer s.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("scheduler: job panicked")
		}
	}()

	ctx := s.runContext()
	if s.locker != nil {
		held, release, err := s.locker.Acquire(ctx)
		if errors.Is(err, cache.ErrLockHeld) {
			log.Info("scheduler: run lock held elsewhere, skipping")
			return false
		}
		if err != nil {
			log.WithError(err).Warn("scheduler: run lock unavailable, skipping")
			return false
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				log.WithError(err).Warn("scheduler: release run lock")
			}
		}()
		ctx = held
	}

	start := time.Now()
	ran = true
	if err := s.job(ctx); err != nil {
		if errors.Is(context.Cause(ctx), cache.ErrLockLost) {
			err = context.Cause(ctx)
		}
		log.WithError(err).WithField("took", time.Since(start).String()).Error("scheduler: job failed")
		return ran
	}
	log.WithField("took", time.Since(start).String()).Info("scheduler: job finished")
	return ran
}
