package fx

import (
	"go.uber.org/fx"

	"tender-scout/internal/scheduler"
)

var Module = fx.Options(
	fx.Provide(scheduler.NewScheduler),
	fx.Invoke(func(*scheduler.Scheduler) {}),
)
