package auth

import (
	"context"
	"time"

	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
	"github.com/kolschhq/kolsch-backend/pkg/metrics"
)

const sweeperJobName = "session-sweeper"

// Sweeper periodically removes expired sessions so the table does not grow
// without bound.
type Sweeper struct {
	store    storage.Storage
	interval time.Duration
	logg     *logger.Logger
	jobs     *metrics.JobMetrics
}

// NewSweeper builds a sweeper. A nil jobs metrics handle disables metrics.
func NewSweeper(store storage.Storage, interval time.Duration, logg *logger.Logger, jobs *metrics.JobMetrics) *Sweeper {
	return &Sweeper{store: store, interval: interval, logg: logg, jobs: jobs}
}

// Run blocks until the context is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	removed, err := s.store.DeleteExpiredSessions(ctx, start)
	s.jobs.ObserveDuration(sweeperJobName, time.Since(start))
	if err != nil {
		s.jobs.IncFailure(sweeperJobName)
		s.logg.Error(ctx, "session sweep failed", err)
		return
	}
	s.jobs.IncSuccess(sweeperJobName)
	if removed > 0 {
		s.logg.Info(s.logg.WithField(ctx, "removed", removed), "swept expired sessions")
	}
}
