package assist

import (
	"errors"
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
	r.Route("/assist", func(r chi.Router) {
		r.Post("/scan-bill", h.scanBill)
		r.Post("/voice-command", h.voiceCommand)
		r.Post("/smart-reorder", h.smartReorder)
	})
}

func (h *Handler) scanBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"imageBase64"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	result, err := h.service.ScanBill(r.Context(), req.ImageBase64)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) voiceCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
		Language   string `json:"language"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	result, err := h.service.VoiceCommand(r.Context(), req.Transcript, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, ErrTranscriptRequired),
			errors.Is(err, ErrTranscriptTooLong),
			errors.Is(err, httpx.ErrRateLimited),
			errors.Is(err, httpx.ErrPaymentRequired):
			h.respondErr(w, err)
		default:
			// Gateway failures keep the command result shape.
			h.logger.Error("voice command failed", "error", err)
			httpx.JSON(w, http.StatusInternalServerError, VoiceCommandResult{
				Action: ActionError,
				Error:  "Failed to process the voice command.",
			})
		}
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) smartReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LowStockItems   []LowStockItem `json:"lowStockItems"`
		DistributorName string         `json:"distributorName"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	result, err := h.service.SmartReorder(r.Context(), req.LowStockItems, req.DistributorName)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrImageRequired),
		errors.Is(err, ErrTranscriptRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrImageTooLarge),
		errors.Is(err, ErrTranscriptTooLong),
		errors.Is(err, ErrTooManyItems):
		httpx.Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", err.Error())
	case errors.Is(err, httpx.ErrRateLimited), errors.Is(err, httpx.ErrPaymentRequired):
		httpx.RespondError(w, err)
	default:
		h.logger.Error("assist request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}
