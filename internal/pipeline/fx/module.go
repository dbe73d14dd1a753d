package fx

import (
	"go.uber.org/fx"

	"tender-scout/internal/pipeline"
	portalfx "tender-scout/internal/portal/fx"
)

var Module = fx.Options(
	portalfx.Module,
	fx.Provide(pipeline.New),
)
