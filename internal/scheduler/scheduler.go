package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/config"
	"tender-scout/internal/cycle"
)

// Scheduler fires crawl cycles on the configured cron expression. An empty
// expression disables it; cycles then run only on demand.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.SugaredLogger
}

type NewSchedulerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	Orchestrator *cycle.Orchestrator
	Logger       *zap.SugaredLogger
}

func NewScheduler(p NewSchedulerParams) (*Scheduler, error) {
	s := &Scheduler{logger: p.Logger}

	expr := p.Cfg.Crawl.Schedule
	if expr == "" {
		p.Logger.Infow("scheduler_disabled")
		return s, nil
	}

	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if _, err := p.Orchestrator.Run(context.Background()); err != nil {
			if errors.Is(err, cycle.ErrCycleRunning) {
				p.Logger.Infow("cycle_skipped_already_running")
				return
			}
			p.Logger.Errorw("scheduled_cycle_failed", "err", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("bad crawl schedule %q: %w", expr, err)
	}
	s.cron = c

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			p.Logger.Infow("scheduler_started", "schedule", expr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := c.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})

	return s, nil
}
