// Package diagnostics runs provider self-tests and storage retention on a
// schedule and keeps a short history of self-test results per provider.
package diagnostics

import (
	"context"
	"sort"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 2 * time.Minute

type SelfTester interface {
	SelfTestAll(ctx context.Context) []models.MSelfTestResult
}

type Cleaner interface {
	CleanupOldData(ctx context.Context) (int64, error)
}

// -----------------------------------------------------------------------------

type Scheduler struct {
	Logger  *logger.Logger
	cron    *cron.Cron
	tests   SelfTester
	cleaner Cleaner

	mu      sync.Mutex
	history map[string]*utils.RingBuffer[models.MSelfTestResult]
}

// NewScheduler registers the self-test and cleanup jobs. An empty schedule
// disables its job; cleaner may be nil.
func NewScheduler(cfg models.MDiagnosticsConfig, tests SelfTester, cleaner Cleaner, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		Logger:  log,
		cron:    cron.New(),
		tests:   tests,
		cleaner: cleaner,
		history: make(map[string]*utils.RingBuffer[models.MSelfTestResult]),
	}

	if cfg.SelfTestSchedule != "" && tests != nil {
		if _, err := s.cron.AddFunc(cfg.SelfTestSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			s.RunSelfTests(ctx)
		}); err != nil {
			return nil, helpers.NewConfigurationError("invalid self-test schedule "+cfg.SelfTestSchedule, err)
		}
	}

	if cfg.CleanupSchedule != "" && cleaner != nil {
		if _, err := s.cron.AddFunc(cfg.CleanupSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			s.RunCleanup(ctx)
		}); err != nil {
			return nil, helpers.NewConfigurationError("invalid cleanup schedule "+cfg.CleanupSchedule, err)
		}
	}

	return s, nil
}

// -----------------------------------------------------------------------------

func (s *Scheduler) Start() {
	s.Logger.Info("Diagnostics scheduler started (%d jobs)", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.Logger.Warning("Diagnostics jobs still running at shutdown")
	}
}

// -----------------------------------------------------------------------------

// RunSelfTests tests every provider once and records the outcome.
func (s *Scheduler) RunSelfTests(ctx context.Context) []models.MSelfTestResult {
	results := s.tests.SelfTestAll(ctx)
	failed := 0
	for _, r := range results {
		s.Record(r)
		if !r.OK {
			failed++
		}
	}
	if failed > 0 {
		s.Logger.Warning("Self-tests: %d of %d providers failing", failed, len(results))
	} else {
		s.Logger.Debug("Self-tests: %d providers OK", len(results))
	}
	return results
}

// RunCleanup applies the storage retention policy.
func (s *Scheduler) RunCleanup(ctx context.Context) {
	n, err := s.cleaner.CleanupOldData(ctx)
	if err != nil {
		s.Logger.Error("Retention cleanup failed: %v", err)
		return
	}
	s.Logger.Debug("Retention cleanup removed %d snapshots", n)
}

// -----------------------------------------------------------------------------
// History
// -----------------------------------------------------------------------------

func (s *Scheduler) Record(result models.MSelfTestResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rb, ok := s.history[result.Provider]
	if !ok {
		rb = utils.NewRingBuffer[models.MSelfTestResult](utils.DefaultSelfTestHistory)
		s.history[result.Provider] = rb
	}
	rb.Append(result)
}

// Latest returns the newest result per provider.
func (s *Scheduler) Latest() map[string]models.MSelfTestResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.MSelfTestResult, len(s.history))
	for name, rb := range s.history {
		if last := rb.GetLatest(1); len(last) == 1 {
			out[name] = last[0]
		}
	}
	return out
}

// History returns the kept results of one provider, oldest first.
func (s *Scheduler) History(provider string) []models.MSelfTestResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	rb, ok := s.history[provider]
	if !ok {
		return []models.MSelfTestResult{}
	}
	return rb.GetAll()
}

// Providers lists the providers with recorded results.
func (s *Scheduler) Providers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.history))
	for name := range s.history {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
