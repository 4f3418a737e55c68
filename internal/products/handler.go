package products

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

// Handler exposes the product catalog over HTTP.
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

// MountRoutes registers product routes. PUT /{id} addresses a product by
// product_id, the other {id} routes by internal identifier.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/update/{id}", h.replace)
	r.Put("/{id}", h.reduceQuantity)
	r.Delete("/{id}", h.delete)
	r.Delete("/by-product-id/{id}", h.deleteByProductID)
}

type createRequest struct {
	ProductID     string   `json:"product_id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Type          string   `json:"type"`
	Price         *float64 `json:"price" validate:"required"`
	PurchasePrice *float64 `json:"purchasePrice"`
	Quantity      *int64   `json:"quantity" validate:"required"`
	Rack          string   `json:"rack"`
}

type replaceRequest struct {
	Quantity      *int64   `json:"quantity" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Price         *float64 `json:"price" validate:"required"`
	PurchasePrice *float64 `json:"purchasePrice"`
	Type          string   `json:"type"`
	Rack          string   `json:"rack"`
}

type reduceRequest struct {
	QuantityToReduce *int64 `json:"quantityToReduce" validate:"required,gt=0"`
}

type reduceResponse struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in := CreateInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Type:      req.Type,
		Price:     *req.Price,
		Quantity:  *req.Quantity,
		Rack:      req.Rack,
	}
	if req.PurchasePrice != nil {
		in.PurchasePrice = *req.PurchasePrice
	}
	if _, err := h.service.Create(r.Context(), in); err != nil {
		h.fail(w, "create product", err)
		return
	}
	httpx.Message(w, http.StatusCreated, "Product added successfully")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Replace(r.Context(), chi.URLParam(r, "id"), ReplaceInput{
		Name:          req.Name,
		Type:          req.Type,
		Price:         *req.Price,
		PurchasePrice: req.PurchasePrice,
		Quantity:      *req.Quantity,
		Rack:          req.Rack,
	})
	if err != nil {
		h.fail(w, "replace product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) reduceQuantity(w http.ResponseWriter, r *http.Request) {
	var req reduceRequest
	if err := httpx.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.ReduceQuantity(r.Context(), chi.URLParam(r, "id"), *req.QuantityToReduce)
	if err != nil {
		h.fail(w, "reduce quantity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, reduceResponse{Message: "Quantity reduced successfully", Product: product})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete product", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Product deleted successfully")
}

func (h *Handler) deleteByProductID(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteByProductID(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete product by product_id", err)
		return
	}
	httpx.Message(w, http.StatusOK, "Product deleted successfully")
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
