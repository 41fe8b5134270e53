package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/karvyapaar/karvyapaar/internal/platform/httpx"
)

// Handler exposes the billing endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	repo     *Repository
	validate *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, repo *Repository) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		repo:     repo,
		validate: validator.New(),
	}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/registers", h.openRegister)
	r.Route("/registers/{register}", func(r chi.Router) {
		r.Delete("/", h.closeRegister)
		r.Get("/cart", h.showCart)
		r.Post("/cart/items", h.addItem)
		r.Patch("/cart/items/{productID}", h.updateQuantity)
		r.Delete("/cart/items/{productID}", h.removeItem)
		r.Delete("/cart", h.clearCart)
		r.Post("/checkout", h.startCheckout)
		r.Delete("/checkout", h.cancelCheckout)
		r.Get("/checkout/whatsapp", h.whatsappLink)
		r.Post("/checkout/complete", h.complete)
	})
	r.Get("/sales", h.listSales)
	r.Get("/sales/{id}", h.showSale)
}

func (h *Handler) openRegister(w http.ResponseWriter, r *http.Request) {
	id := h.service.OpenRegister()
	httpx.JSON(w, http.StatusCreated, map[string]any{"register_id": id})
}

func (h *Handler) closeRegister(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	h.service.CloseRegister(id)
	w.WriteHeader(http.StatusNoContent)
}

type cartResponse struct {
	Items    []LineItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	GST      float64    `json:"gst"`
	CGST     float64    `json:"cgst"`
	SGST     float64    `json:"sgst"`
	Total    float64    `json:"total"`
}

func (h *Handler) showCart(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	items, totals := h.service.CartView(id)
	cgst, sgst := totals.Split()
	httpx.JSON(w, http.StatusOK, cartResponse{
		Items:    items,
		Subtotal: Round2(totals.Subtotal),
		GST:      Round2(totals.GST),
		CGST:     Round2(cgst),
		SGST:     Round2(sgst),
		Total:    Round2(totals.Total),
	})
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	var req AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	outcome, err := h.service.AddItem(r.Context(), id, req.ProductID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"result": outcome})
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req UpdateQuantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	h.service.UpdateQuantity(id, productID, req.Quantity)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	h.service.RemoveItem(id, productID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	h.service.ClearCart(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	var req StartCheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	checkout, err := h.service.StartCheckout(id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	cgst, sgst := checkout.Totals.Split()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"state":          checkout.State,
		"invoice_number": checkout.InvoiceNumber,
		"payment_method": checkout.PaymentMethod,
		"store_name":     h.service.storeName,
		"store_gstin":    h.service.storeGSTIN,
		"subtotal":       Round2(checkout.Totals.Subtotal),
		"gst":            Round2(checkout.Totals.GST),
		"cgst":           Round2(cgst),
		"sgst":           Round2(sgst),
		"total":          Round2(checkout.Totals.Total),
	})
}

func (h *Handler) cancelCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	h.service.CancelCheckout(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) whatsappLink(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	link, err := h.service.WhatsAppLink(id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"link": link})
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, err := registerID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid register id")
		return
	}
	sale, err := h.service.Complete(r.Context(), id)
	if err != nil {
		h.logger.Error("complete sale", slog.Any("error", err))
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sales, err := h.repo.ListSales(r.Context(), limit)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func (h *Handler) showSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.repo.GetSale(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get sale", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

// respondErr maps billing sentinels onto the shared problem vocabulary.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrBannedProduct):
		httpx.Problem(w, http.StatusForbidden, "Banned Product", err.Error())
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrInvalidPhone):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNoActiveCheckout):
		httpx.Problem(w, http.StatusConflict, "No Active Checkout", err.Error())
	case errors.Is(err, ErrDuplicateInvoice):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func registerID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "register"))
}
