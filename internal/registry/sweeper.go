package registry

import (
	"context"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"
)

// Sweeper periodically evicts expired records from both registries.
// The tick is jittered so multiple replicas behind the same clock do
// not sweep in lockstep.
type Sweeper struct {
	jobs     *JobRegistry
	sessions *SessionRegistry

	interval         time.Duration
	jobRetention     time.Duration
	sessionRetention time.Duration
}

func NewSweeper(jobs *JobRegistry, sessions *SessionRegistry, interval, jobRetention, sessionRetention time.Duration) *Sweeper {
	return &Sweeper{
		jobs:             jobs,
		sessions:         sessions,
		interval:         interval,
		jobRetention:     jobRetention,
		sessionRetention: sessionRetention,
	}
}

// Run sweeps on the jittered interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := jitterbug.New(s.interval, &jitterbug.Norm{Stdev: s.interval / 10})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.S().Named("sweeper").Info("retention sweeper stopped")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	removedJobs := s.jobs.Cleanup(s.jobRetention)
	removedSessions := s.sessions.Cleanup(s.sessionRetention)
	if removedJobs > 0 || removedSessions > 0 {
		zap.S().Named("sweeper").Infow("swept expired records",
			"jobs", removedJobs, "sessions", removedSessions)
	}
}
