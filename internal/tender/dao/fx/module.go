package fx

import (
	"go.uber.org/fx"

	"tender-scout/internal/tender/dao"
)

var Module = fx.Options(
	fx.Provide(dao.NewStore),
)
