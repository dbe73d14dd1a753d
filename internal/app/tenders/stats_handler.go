package tenders

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/internal/pkg/render"
	"tender-scout/internal/router"
	"tender-scout/internal/tender/dao"
)

type StatsHandler struct {
	store  *dao.Store
	logger *zap.SugaredLogger
}

type NewStatsHandlerParams struct {
	fx.In

	Store  *dao.Store
	Logger *zap.SugaredLogger
}

func NewStatsHandler(p NewStatsHandlerParams) *StatsHandler {
	return &StatsHandler{store: p.Store, logger: p.Logger}
}

func (h *StatsHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/tenders/stats", h.Handle)
}

func (h *StatsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.Errorw("tender_stats_failed", "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, errors.New("failed to compute stats"))
		return
	}

	render.ChiJSON(w, r, http.StatusOK, stats)
}

var _ router.Handler = (*StatsHandler)(nil)
