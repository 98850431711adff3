package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Valency12/el-xolito-storefront/internal/cart"
	"github.com/Valency12/el-xolito-storefront/internal/view"
	"github.com/go-chi/chi/v5"
)

// CartHandler exposes the cart ledger to the UI.
type CartHandler struct {
	ledger *cart.Ledger
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(ledger *cart.Ledger, logger *slog.Logger) *CartHandler {
	return &CartHandler{ledger: ledger, logger: logger}
}

// addRequest is the payload for adding an item to the cart.
type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// updateRequest is the payload for setting a line's quantity.
type updateRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.BuildCart(h.ledger), h.logger)
}

// AddItem handles POST /api/cart/items
// An unresolvable product id leaves the cart unchanged and still returns the
// current cart: transient backend trouble is not the shopper's problem.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId is required", h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.ledger.AddItem(r.Context(), req.ProductID, req.Quantity); err != nil {
		h.logger.Error("failed to add cart item", "product_id", req.ProductID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view.BuildCart(h.ledger), h.logger)
}

// UpdateItem handles PUT /api/cart/items/{productId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if err := h.ledger.UpdateQuantity(productID, req.Quantity); err != nil {
		h.logger.Error("failed to update cart item", "product_id", productID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view.BuildCart(h.ledger), h.logger)
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if err := h.ledger.RemoveItem(productID); err != nil {
		h.logger.Error("failed to remove cart item", "product_id", productID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view.BuildCart(h.ledger), h.logger)
}
