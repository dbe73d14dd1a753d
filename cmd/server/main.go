package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	dbfx "tender-scout/db/fx"
	cyclesfx "tender-scout/internal/app/amqp/cycles/fx"
	appfx "tender-scout/internal/app/fx"
	healthfx "tender-scout/internal/app/health/fx"
	tendersfx "tender-scout/internal/app/tenders/fx"
	cyclefx "tender-scout/internal/cycle/fx"
	routerfx "tender-scout/internal/router/fx"
	schedulerfx "tender-scout/internal/scheduler/fx"
	serverfx "tender-scout/internal/server/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.Module,
		dbfx.Module,
		routerfx.CoreRouterOptions,
		serverfx.Module,
		healthfx.Module,
		tendersfx.Module,
		cyclefx.Module,
		cyclesfx.Module,
		schedulerfx.Module,
	)

	app.Run()
}
