// Package scheduler runs the periodic store reaper. The in-memory TTL
// stores expire lazily on read; the reaper bounds their memory by
// sweeping entries nobody read again.
package scheduler

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/d23ai/sahay-gateway/internal/logging"
	"github.com/d23ai/sahay-gateway/internal/store"
)

// Scheduler manages the cron jobs of the gateway.
type Scheduler struct {
	cron     *cron.Cron
	sweepers []store.Sweeper
	logger   *slog.Logger
}

// NewScheduler creates a scheduler sweeping the given stores on the
// cron schedule (e.g. "@every 5m"). Redis-backed stores expire
// server-side and are not registered here.
func NewScheduler(schedule string, sweepers ...store.Sweeper) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		sweepers: sweepers,
		logger:   logging.WithComponent("scheduler"),
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweep() {
	dropped := 0
	for _, sw := range s.sweepers {
		dropped += sw.Sweep()
	}
	if dropped > 0 {
		s.logger.Info("store sweep", "dropped", dropped)
	}
}
