package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SessionSweeper removes expired sessions.
type SessionSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Scheduler runs periodic housekeeping jobs on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionSweeper
	timeout  time.Duration
}

// NewScheduler creates a scheduler that sweeps sessions on spec, a standard
// cron expression or descriptor such as "@every 10m".
func NewScheduler(spec string, sessions SessionSweeper) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
		timeout:  time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.sweepSessions); err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run starts the scheduler after one immediate sweep.
func (s *Scheduler) Run() {
	log.Info().Msg("Starting background scheduler...")
	s.sweepSessions()
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped background scheduler.")
}

func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	removed, err := s.sessions.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: failed to sweep sessions")
		return
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Scheduler: swept expired sessions")
	}
}
