package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/precolista/backend/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RefreshRunner re-fetches every cached snapshot.
type RefreshRunner interface {
	RefreshAll(ctx context.Context) (domain.RefreshResult, error)
}

// Scheduler runs the periodic full cache refresh.
type Scheduler struct {
	cron    *cron.Cron
	refresh RefreshRunner
	log     zerolog.Logger
}

// New creates a scheduler that runs refresh on the given cron expression
// (standard 5-field format) in the given timezone.
func New(spec, timezone string, refresh RefreshRunner, logger zerolog.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh timezone %q: %w", timezone, err)
	}

	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(location)),
		refresh: refresh,
		log:     logger.With().Str("component", "scheduler").Logger(),
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid refresh cron spec %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	s.log.Info().Msg("scheduled refresh starting")
	result, err := s.refresh.RefreshAll(context.Background())
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled refresh failed")
		return
	}
	s.log.Info().Int("updated", result.Updated).Msg("scheduled refresh finished")
}

// Start begins running scheduled refreshes in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
