package tenders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/internal/pkg/render"
	"tender-scout/internal/router"
	"tender-scout/internal/tender"
	"tender-scout/internal/tender/dao"
)

// UpdateAnalysisHandler stores the annotation an operator or an external
// analysis job attaches to a tender. PUT replaces the whole annotation.
type UpdateAnalysisHandler struct {
	store  *dao.Store
	logger *zap.SugaredLogger
}

type NewUpdateAnalysisHandlerParams struct {
	fx.In

	Store  *dao.Store
	Logger *zap.SugaredLogger
}

func NewUpdateAnalysisHandler(p NewUpdateAnalysisHandlerParams) *UpdateAnalysisHandler {
	return &UpdateAnalysisHandler{store: p.Store, logger: p.Logger}
}

func (h *UpdateAnalysisHandler) RegisterRoute(r *chi.Mux) {
	r.Put("/v1/tenders/{id}/analysis", h.Handle)
}

func (h *UpdateAnalysisHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, r, http.StatusBadRequest, errors.New("missing id"))
		return
	}

	var req tender.Analysis
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, r, http.StatusBadRequest, errors.New("invalid json"))
		return
	}

	err := h.store.UpdateAnalysis(r.Context(), id, req)
	if errors.Is(err, dao.ErrNotFound) {
		render.ChiErr(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.logger.Errorw("tender_update_analysis_failed", "id", id, "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, errors.New("failed to update analysis"))
		return
	}

	render.ChiJSON(w, r, http.StatusOK, map[string]any{"id": id, "analysis": req})
}

var _ router.Handler = (*UpdateAnalysisHandler)(nil)
