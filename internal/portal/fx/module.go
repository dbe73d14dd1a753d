package fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/config"
	"tender-scout/internal/portal"
)

var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config) *portal.Fetcher {
			return portal.NewFetcher(cfg.Crawl)
		},
		func(fetcher *portal.Fetcher, logger *zap.SugaredLogger) *portal.Registry {
			return portal.NewRegistry(fetcher, logger)
		},
	),
)
