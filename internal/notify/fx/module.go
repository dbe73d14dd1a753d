package fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/config"
	"tender-scout/internal/notify"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config, logger *zap.SugaredLogger) *notify.Notifier {
		return notify.New(cfg.SMTP, logger)
	}),
)
