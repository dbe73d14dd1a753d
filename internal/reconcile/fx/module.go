package fx

import (
	"go.uber.org/fx"

	"tender-scout/internal/reconcile"
)

var Module = fx.Options(
	fx.Provide(reconcile.NewReconciler),
)
