package fx

import (
	"go.uber.org/fx"

	"tender-scout/internal/app/tenders"
	"tender-scout/internal/router"
	daofx "tender-scout/internal/tender/dao/fx"
)

var Module = fx.Options(
	daofx.Module,
	fx.Provide(
		router.AsRoute(tenders.NewListHandler),
		router.AsRoute(tenders.NewGetByIDHandler),
		router.AsRoute(tenders.NewStatsHandler),
		router.AsRoute(tenders.NewUpdateStatusHandler),
		router.AsRoute(tenders.NewUpdateAnalysisHandler),
	),
)
