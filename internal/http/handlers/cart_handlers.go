package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/cart"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

// session returns the caller's cart session. Anonymous callers get a
// session that answers every operation with Unauthenticated.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*cart.Session, bool) {
	sess, err := s.carts.Acquire(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		s.logger.Warn("cart session unavailable", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "cart session unavailable")
		return nil, false
	}
	return sess, true
}

// cartError writes the response for a hard cart failure.
func (s *Server) cartError(w http.ResponseWriter, err error) {
	var ce *cart.Error
	if !errors.As(err, &ce) {
		s.logger.Error("cart operation failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "cart operation failed")
		return
	}

	resp := ErrorResponse{Error: ce.Error(), Kind: ce.Kind.String(), ProductID: ce.ProductID}
	if ce.Kind == cart.KindInsufficientStock || ce.Kind == cart.KindOutOfStock {
		maxAvailable := ce.MaxAvailable
		resp.MaxAvailable = &maxAvailable
	}
	s.writeJSON(w, ce.HTTPStatus(), resp)
}

func toWarning(e *cart.Error) *Warning {
	if e == nil {
		return nil
	}
	return &Warning{Kind: e.Kind.String(), Message: e.Error(), ProductID: e.ProductID}
}

func toCartResponse(c models.Cart, warning *cart.Error) CartResponse {
	return CartResponse{
		Cart:      c,
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal().StringFixed(2),
		Warning:   toWarning(warning),
	}
}

func (s *Server) writeCart(w http.ResponseWriter, res cart.Result, err error) {
	if err != nil {
		s.cartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCartResponse(res.Cart, res.Warning))
}

// GetCartHandler godoc
// @Summary Current cart
// @Tags cart
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Router /cart [get]
// @Security BearerAuth
func (s *Server) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.Current(r.Context())
	if err != nil {
		s.cartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCartResponse(res.Cart, res.Warning))
}

// AddToCartHandler godoc
// @Summary Add a product to the cart
// @Description Checks stock, writes the cart row and then decrements inventory. quantity defaults to 1.
// @Tags cart
// @Accept json
// @Produce json
// @Param item body AddToCartRequest true "Product and quantity"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Unknown product"
// @Failure 409 {object} ErrorResponse "Out of stock or insufficient stock, with max_available"
// @Failure 502 {object} ErrorResponse "Stock lookup failed"
// @Router /cart/items [post]
// @Security BearerAuth
func (s *Server) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	if !IdentityFrom(r.Context()).Authenticated() {
		s.cartError(w, cart.ErrUnauthenticated)
		return
	}

	var req AddToCartRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if errs := s.validator.Validate(req); errs != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: errs})
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.AddToCart(r.Context(), req.ProductID, qty)
	s.writeCart(w, res, err)
}

// UpdateCartItemHandler godoc
// @Summary Set the quantity of a cart line
// @Description A quantity of zero or less removes the line. Stock is not re-checked.
// @Tags cart
// @Accept json
// @Produce json
// @Param entryID path string true "Cart entry ID"
// @Param body body UpdateQuantityRequest true "New quantity"
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /cart/items/{entryID} [patch]
// @Security BearerAuth
func (s *Server) UpdateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	if !IdentityFrom(r.Context()).Authenticated() {
		s.cartError(w, cart.ErrUnauthenticated)
		return
	}

	var req UpdateQuantityRequest
	if err := readJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid input")
		return
	}
	if errs := s.validator.Validate(req); errs != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: errs})
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.UpdateQuantity(r.Context(), chi.URLParam(r, "entryID"), *req.Quantity)
	s.writeCart(w, res, err)
}

// RemoveCartItemHandler godoc
// @Summary Remove a cart line
// @Description Inventory is not restored. Removing a missing line succeeds.
// @Tags cart
// @Produce json
// @Param entryID path string true "Cart entry ID"
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Router /cart/items/{entryID} [delete]
// @Security BearerAuth
func (s *Server) RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.RemoveFromCart(r.Context(), chi.URLParam(r, "entryID"))
	s.writeCart(w, res, err)
}

// ClearCartHandler godoc
// @Summary Empty the cart
// @Tags cart
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Router /cart [delete]
// @Security BearerAuth
func (s *Server) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.ClearCart(r.Context())
	s.writeCart(w, res, err)
}

// RefreshCartHandler godoc
// @Summary Re-fetch the cart from the store
// @Description Falls back to the local cache with a remote_unavailable warning when the store cannot be reached.
// @Tags cart
// @Produce json
// @Success 200 {object} CartResponse
// @Failure 401 {object} ErrorResponse
// @Router /cart/refresh [post]
// @Security BearerAuth
func (s *Server) RefreshCartHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.Refresh(r.Context())
	s.writeCart(w, res, err)
}

// GetWishlistHandler godoc
// @Summary Current wishlist
// @Tags wishlist
// @Produce json
// @Success 200 {object} WishlistResponse
// @Failure 401 {object} ErrorResponse
// @Router /wishlist [get]
// @Security BearerAuth
func (s *Server) GetWishlistHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if !sess.Identity().Authenticated() {
		s.cartError(w, cart.ErrUnauthenticated)
		return
	}
	s.writeJSON(w, http.StatusOK, WishlistResponse{Items: sess.Wishlist()})
}

// AddToWishlistHandler godoc
// @Summary Save a product to the wishlist
// @Tags wishlist
// @Produce json
// @Param productID path int true "Product ID"
// @Success 200 {object} WishlistResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /wishlist/{productID} [post]
// @Security BearerAuth
func (s *Server) AddToWishlistHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt(r, "productID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.AddToWishlist(r.Context(), productID)
	if err != nil {
		s.cartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, WishlistResponse{Items: res.Wishlist, Warning: toWarning(res.Warning)})
}

// RemoveFromWishlistHandler godoc
// @Summary Remove a product from the wishlist
// @Tags wishlist
// @Produce json
// @Param productID path int true "Product ID"
// @Success 200 {object} WishlistResponse
// @Failure 401 {object} ErrorResponse
// @Router /wishlist/{productID} [delete]
// @Security BearerAuth
func (s *Server) RemoveFromWishlistHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathInt(r, "productID")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid product ID")
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.RemoveFromWishlist(r.Context(), productID)
	if err != nil {
		s.cartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, WishlistResponse{Items: res.Wishlist, Warning: toWarning(res.Warning)})
}

// CheckoutHandler godoc
// @Summary Place an order from the cart
// @Tags orders
// @Produce json
// @Success 201 {object} CheckoutResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Cart is empty"
// @Router /checkout [post]
// @Security BearerAuth
func (s *Server) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := sess.Checkout(r.Context())
	if err != nil {
		s.cartError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, CheckoutResponse{Order: res.Order, Warning: toWarning(res.Warning)})
}

// GetOrdersHandler godoc
// @Summary Order history of the caller
// @Tags orders
// @Produce json
// @Success 200 {array} models.Order
// @Failure 401 {object} ErrorResponse
// @Router /orders [get]
// @Security BearerAuth
func (s *Server) GetOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.GetByUser(r.Context(), IdentityFrom(r.Context()).UserID)
	if err != nil {
		s.logger.Error("list orders failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not fetch orders")
		return
	}
	s.writeJSON(w, http.StatusOK, orders)
}
