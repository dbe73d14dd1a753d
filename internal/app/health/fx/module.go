package fx

import (
	"go.uber.org/fx"

	"tender-scout/internal/app/health"
	"tender-scout/internal/router"
)

var Module = fx.Options(
	fx.Provide(router.AsRoute(health.NewHandler)),
)
