package tenders

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tender-scout/internal/pkg/render"
	"tender-scout/internal/router"
	"tender-scout/internal/tender"
	"tender-scout/internal/tender/dao"
)

type ListHandler struct {
	store  *dao.Store
	logger *zap.SugaredLogger
}

type NewListHandlerParams struct {
	fx.In

	Store  *dao.Store
	Logger *zap.SugaredLogger
}

func NewListHandler(p NewListHandlerParams) *ListHandler {
	return &ListHandler{store: p.Store, logger: p.Logger}
}

func (h *ListHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/tenders", h.Handle)
}

func (h *ListHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var status tender.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, err := tender.ParseStatus(raw)
		if err != nil {
			render.ChiErr(w, r, http.StatusBadRequest, err)
			return
		}
		status = parsed
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			render.ChiErr(w, r, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.store.List(r.Context(), status, limit)
	if err != nil {
		h.logger.Errorw("tenders_list_failed", "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, errors.New("failed to list tenders"))
		return
	}

	render.ChiJSON(w, r, http.StatusOK, map[string]any{"tenders": toResponses(records, h.logger)})
}

var _ router.Handler = (*ListHandler)(nil)
