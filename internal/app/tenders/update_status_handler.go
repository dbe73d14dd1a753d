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

type UpdateStatusHandler struct {
	store  *dao.Store
	logger *zap.SugaredLogger
}

type NewUpdateStatusHandlerParams struct {
	fx.In

	Store  *dao.Store
	Logger *zap.SugaredLogger
}

func NewUpdateStatusHandler(p NewUpdateStatusHandlerParams) *UpdateStatusHandler {
	return &UpdateStatusHandler{store: p.Store, logger: p.Logger}
}

func (h *UpdateStatusHandler) RegisterRoute(r *chi.Mux) {
	r.Patch("/v1/tenders/{id}/status", h.Handle)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *UpdateStatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, r, http.StatusBadRequest, errors.New("missing id"))
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, r, http.StatusBadRequest, errors.New("invalid json"))
		return
	}

	status, err := tender.ParseStatus(req.Status)
	if err != nil {
		render.ChiErr(w, r, http.StatusBadRequest, err)
		return
	}

	err = h.store.UpdateStatus(r.Context(), id, status)
	if errors.Is(err, dao.ErrNotFound) {
		render.ChiErr(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.logger.Errorw("tender_update_status_failed", "id", id, "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, errors.New("failed to update tender"))
		return
	}

	render.ChiJSON(w, r, http.StatusOK, map[string]any{"id": id, "status": status})
}

var _ router.Handler = (*UpdateStatusHandler)(nil)
