package fx

import (
	"go.uber.org/fx"

	"tender-scout/internal/app/amqp/cycles"
	"tender-scout/internal/pkg/amqpclient"
	"tender-scout/internal/router"
)

var Module = fx.Options(
	fx.Provide(
		amqpclient.NewAMQP,
		router.AsRoute(cycles.NewTriggerHandler),
		router.AsRoute(cycles.NewLatestHandler),
	),
)
