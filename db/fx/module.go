package fx

import (
	"tender-scout/db"

	"go.uber.org/fx"
)

var Module = fx.Module(
	"sqlx-tender-db",
	fx.Provide(db.NewSQLXTenderDB),
)
