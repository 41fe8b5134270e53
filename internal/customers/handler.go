package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karvyapaar/karvyapaar/internal/platform/httpx"
	"github.com/karvyapaar/karvyapaar/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/stats", h.stats)
		r.Get("/{phone}", h.getByPhone)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	meta := shared.NewPagination(page, perPage, 0)

	customers, err := h.service.List(r.Context(), meta.PerPage, (meta.Page-1)*meta.PerPage)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":    customers,
		"page":     meta.Page,
		"per_page": meta.PerPage,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) getByPhone(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetByPhone(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	if err == ErrNotFound {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error("customers request failed", "error", err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
}
