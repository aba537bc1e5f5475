// Package jobs runs the portal's periodic housekeeping.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"hospital-portal/internal/session"
)

// Pruner drops idle per-session state. *store.Registry implements it.
type Pruner interface {
	PruneIdle(maxIdle time.Duration) int
}

// Janitor purges expired sessions and idle state containers on a schedule.
type Janitor struct {
	sessions session.Store
	stores   Pruner
	idle     time.Duration
	logger   zerolog.Logger
	now      func() time.Time
	cron     *cron.Cron
}

func NewJanitor(sessions session.Store, stores Pruner, idle time.Duration, logger zerolog.Logger) *Janitor {
	return &Janitor{
		sessions: sessions,
		stores:   stores,
		idle:     idle,
		logger:   logger,
		now:      time.Now,
	}
}

// Start schedules Sweep with a cron spec such as "@every 15m".
func (j *Janitor) Start(spec string) error {
	j.cron = cron.New()
	if _, err := j.cron.AddFunc(spec, func() { j.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("schedule janitor %q: %w", spec, err)
	}
	j.cron.Start()
	j.logger.Info().Str("schedule", spec).Msg("janitor started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// Sweep runs one housekeeping pass.
func (j *Janitor) Sweep(ctx context.Context) {
	if purger, ok := j.sessions.(session.Purger); ok {
		n, err := purger.PurgeExpired(ctx, j.now())
		if err != nil {
			j.logger.Error().Err(err).Msg("purge expired sessions")
		} else if n > 0 {
			j.logger.Info().Int64("count", n).Msg("purged expired sessions")
		}
	}
	if j.stores != nil {
		if n := j.stores.PruneIdle(j.idle); n > 0 {
			j.logger.Info().Int("count", n).Msg("dropped idle session state")
		}
	}
}
