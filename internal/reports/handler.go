package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karvyapaar/karvyapaar/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports", h.report)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed",
			"period must be one of week, month, quarter, year")
		return
	}
	report, err := h.service.Build(r.Context(), period)
	if err != nil {
		h.logger.Error("report build failed", "period", period, "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
