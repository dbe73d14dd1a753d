package fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/internal/app/amqp/cycleworker"
	"tender-scout/internal/pkg/amqpclient"
)

var Module = fx.Module(
	"amqp-cycleworker",
	fx.Provide(
		amqpclient.NewAMQP,
		fx.Annotate(
			cycleworker.NewCycleHandler,
			fx.As(new(cycleworker.Handler)),
		),
		cycleworker.NewConsumer,
	),
	fx.Invoke(registerLifecycleHooks),
)

type hooksParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Consumer  *cycleworker.Consumer
	Logger    *zap.SugaredLogger
}

func registerLifecycleHooks(p hooksParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Infow("cycleworker_starting")
			return p.Consumer.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Infow("cycleworker_stopping")
			return p.Consumer.Stop(ctx)
		},
	})
}
