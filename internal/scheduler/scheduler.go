// Package scheduler re-runs the configured scenario on a cron cadence so the
// recorder accumulates fresh result sets for dashboards.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// ReplayFunc executes one scenario replay. Each invocation records under a
// fresh run id.
type ReplayFunc func(ctx context.Context) error

// Scheduler manages the cron-driven replay task.
type Scheduler struct {
	cron    *cron.Cron
	replay  ReplayFunc
	ctx     context.Context
	running atomic.Bool
}

// New creates a scheduler around the replay function.
func New(ctx context.Context, replay ReplayFunc) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		replay: replay,
		ctx:    ctx,
	}
}

// Register adds the replay task under the given cron spec (with seconds).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.task); err != nil {
		return fmt.Errorf("register replay task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] replay scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] replay scheduler stopped")
}

// RunNow executes a replay immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.task()
}

func (s *Scheduler) task() {
	// Replays are deterministic and full-length; never overlap them.
	if !s.running.CompareAndSwap(false, true) {
		log.Println("[WARN] replay still in progress, skipping this tick")
		return
	}
	defer s.running.Store(false)

	log.Println("[INFO] running scheduled scenario replay")
	if err := s.replay(s.ctx); err != nil {
		log.Printf("[ERROR] scheduled replay: %v", err)
	}
}
