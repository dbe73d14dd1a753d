package fx

import (
	"go.uber.org/fx"

	"tender-scout/cache"
	"tender-scout/config"
	"tender-scout/internal/logs"
)

var Module = fx.Options(
	fx.Provide(
		config.NewViper,
		config.NewConfig,
		logs.NewLogger,
		logs.NewSugaredLogger,
		cache.NewRedis,
	),
	fx.Invoke(logs.RegisterLifecycle),
)
