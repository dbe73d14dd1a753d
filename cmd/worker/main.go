package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	dbfx "tender-scout/db/fx"
	cycleworkerfx "tender-scout/internal/app/amqp/cycleworker/fx"
	appfx "tender-scout/internal/app/fx"
	cyclefx "tender-scout/internal/cycle/fx"
)

func main() {
	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		appfx.Module,
		dbfx.Module,
		cyclefx.Module,
		cycleworkerfx.Module,
	)

	app.Run()
}
