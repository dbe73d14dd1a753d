package fx

import (
	"go.uber.org/fx"

	"tender-scout/cache"
	"tender-scout/internal/cycle"
	notifyfx "tender-scout/internal/notify/fx"
	pipelinefx "tender-scout/internal/pipeline/fx"
	reconcilefx "tender-scout/internal/reconcile/fx"
)

// Module wires everything one crawl cycle needs.
var Module = fx.Options(
	pipelinefx.Module,
	reconcilefx.Module,
	notifyfx.Module,
	fx.Provide(
		cache.NewCycleLock,
		cache.NewSummaryCache,
		cycle.NewOrchestrator,
	),
)
