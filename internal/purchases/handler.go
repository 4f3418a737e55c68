package purchases

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// IdempotencyHeader carries the client's replay key for checkouts.
const IdempotencyHeader = "Idempotency-Key"

// Handler exposes purchase recording over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers purchase routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.record)
	r.Get("/", h.list)
}

type recordRequest struct {
	Customer Customer      `json:"customer"`
	Products []any         `json:"products"`
	Total    *float64      `json:"total" validate:"required"`
	Date     *checkoutDate `json:"date"`
}

type recordResponse struct {
	Message  string    `json:"message"`
	Purchase *Purchase `json:"purchase"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	purchase, err := h.service.Record(r.Context(), RecordInput{
		Customer:       req.Customer,
		Products:       req.Products,
		Total:          *req.Total,
		Date:           req.Date.timeOrNil(),
		IdempotencyKey: r.Header.Get(IdempotencyHeader),
	})
	if err != nil {
		if httpx.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("record purchase failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, recordResponse{Message: "Purchase recorded successfully", Purchase: purchase})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list purchases failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, purchases)
}
