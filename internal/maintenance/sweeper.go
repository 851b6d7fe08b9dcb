package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/weiawesome/wes-io-live/support-service/internal/audit"
	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/kafka"
	"github.com/weiawesome/wes-io-live/support-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/support-service/internal/repository"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

// Standard 5-field expressions plus descriptors such as "@every 1h".
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Sweeper marks threads inactive once nobody has written to them for
// IdleAfter. A new message re-activates the thread.
type Sweeper struct {
	repo      repository.ThreadRepository
	events    kafka.EventProducer
	metrics   *metrics.Metrics
	idleAfter time.Duration
	schedule  cron.Schedule
	now       func() time.Time
}

// NewSweeper validates cfg. events may be nil.
func NewSweeper(repo repository.ThreadRepository, events kafka.EventProducer, m *metrics.Metrics, cfg config.MaintenanceConfig) (*Sweeper, error) {
	if cfg.IdleAfter <= 0 {
		return nil, errors.New("maintenance: idle_after must be positive")
	}
	sched, err := scheduleParser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("maintenance: parse schedule %q: %w", cfg.Schedule, err)
	}
	if events == nil {
		events = kafka.NoopProducer{}
	}
	return &Sweeper{
		repo:      repo,
		events:    events,
		metrics:   m,
		idleAfter: cfg.IdleAfter,
		schedule:  sched,
		now:       time.Now,
	}, nil
}

// Sweep runs one pass and returns the number of threads deactivated.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	l := log.Ctx(ctx)

	cutoff := s.now().UTC().Add(-s.idleAfter)
	ids, err := s.repo.DeactivateIdle(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		l.Debug().Time("cutoff", cutoff).Msg("no idle threads")
		return 0, nil
	}

	s.metrics.IdleDeactivated(len(ids))
	for _, id := range ids {
		event := &domain.ChatEvent{
			EventID:   uuid.New().String(),
			Type:      domain.EventThreadIdled,
			ThreadID:  id,
			Timestamp: s.now().UTC(),
		}
		if err := s.events.ProduceEvent(ctx, event); err != nil {
			l.Warn().Err(err).Str(log.FieldThreadID, id).Msg("event not produced")
		}
	}

	audit.LogWithDetail(ctx, audit.ActionIdleSweep, "", strconv.Itoa(len(ids)), "idle threads deactivated")
	return len(ids), nil
}

// Run sweeps on every tick of the schedule until ctx is done. A failed pass
// is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	l := log.Ctx(ctx)
	l.Info().Dur("idle_after", s.idleAfter).Msg("idle sweeper started")

	for {
		wait := time.Until(s.schedule.Next(s.now()))
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			if _, err := s.Sweep(ctx); err != nil {
				l.Error().Err(err).Msg("idle sweep failed")
			}
		}
	}
}
