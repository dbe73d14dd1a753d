package cycles

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/cache"
	"tender-scout/internal/pkg/render"
	"tender-scout/internal/router"
)

// LatestHandler serves the summary of the most recently completed cycle.
type LatestHandler struct {
	summaries *cache.SummaryCache
	logger    *zap.SugaredLogger
}

type NewLatestHandlerParams struct {
	fx.In

	Summaries *cache.SummaryCache
	Logger    *zap.SugaredLogger
}

func NewLatestHandler(p NewLatestHandlerParams) *LatestHandler {
	return &LatestHandler{summaries: p.Summaries, logger: p.Logger}
}

var _ router.Handler = (*LatestHandler)(nil)

func (h *LatestHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/cycles/latest", h.Handle)
}

func (h *LatestHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, ok, err := h.summaries.Last(r.Context())
	if err != nil {
		h.logger.Errorw("cycle_summary_read_failed", "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, errors.New("failed to read cycle summary"))
		return
	}
	if !ok {
		render.ChiErr(w, r, http.StatusNotFound, errors.New("no cycle has completed yet"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
