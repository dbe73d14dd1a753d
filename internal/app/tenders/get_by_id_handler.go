package tenders

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/internal/pkg/render"
	"tender-scout/internal/router"
	"tender-scout/internal/tender/dao"
)

type GetByIDHandler struct {
	store  *dao.Store
	logger *zap.SugaredLogger
}

type NewGetByIDHandlerParams struct {
	fx.In

	Store  *dao.Store
	Logger *zap.SugaredLogger
}

func NewGetByIDHandler(p NewGetByIDHandlerParams) *GetByIDHandler {
	return &GetByIDHandler{store: p.Store, logger: p.Logger}
}

func (h *GetByIDHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/tenders/{id}", h.Handle)
}

func (h *GetByIDHandler) Handle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		render.ChiErr(w, r, http.StatusBadRequest, errors.New("missing id"))
		return
	}

	rec, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, dao.ErrNotFound) {
		render.ChiErr(w, r, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.logger.Errorw("tender_get_by_id_failed", "id", id, "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, errors.New("failed to fetch tender"))
		return
	}

	render.ChiJSON(w, r, http.StatusOK, toResponse(rec, h.logger))
}

var _ router.Handler = (*GetByIDHandler)(nil)
