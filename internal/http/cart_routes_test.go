package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http/handlers"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

func intPtr(v int) *int { return &v }

func TestCartRequiresSignIn(t *testing.T) {
	a := newTestAPI(t)
	p := a.seedProduct(t, "Mug", 5)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"get cart", http.MethodGet, "/cart", nil},
		{"add item", http.MethodPost, "/cart/items", handlers.AddToCartRequest{ProductID: p.ID}},
		{"clear cart", http.MethodDelete, "/cart", nil},
		{"wishlist", http.MethodGet, "/wishlist", nil},
		{"add to wishlist", http.MethodPost, path("/wishlist/%d", p.ID), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(tt.method, tt.path, "", tt.body)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "unauthenticated", decode[handlers.ErrorResponse](t, w).Kind)
		})
	}

	assert.Equal(t, 5, a.stock(t, p.ID))
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/checkout", "", nil).Code)
}

func TestAddToCartStockChecks(t *testing.T) {
	a := newTestAPI(t)
	token := a.shopper(t, "kim@shop.test")
	p := a.seedProduct(t, "Teapot", 10)

	w := a.do(http.MethodPost, "/cart/items", token, handlers.AddToCartRequest{ProductID: p.ID, Quantity: intPtr(3)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[handlers.CartResponse](t, w)
	assert.Equal(t, 3, res.ItemCount)
	assert.Equal(t, "59.97", res.Subtotal)
	assert.Nil(t, res.Warning)
	assert.Equal(t, 7, a.stock(t, p.ID))

	w = a.do(http.MethodPost, "/cart/items", token, handlers.AddToCartRequest{ProductID: p.ID, Quantity: intPtr(8)})
	require.Equal(t, http.StatusConflict, w.Code)
	errRes := decode[handlers.ErrorResponse](t, w)
	assert.Equal(t, "insufficient_stock", errRes.Kind)
	require.NotNil(t, errRes.MaxAvailable)
	assert.Equal(t, 7, *errRes.MaxAvailable)
	assert.Equal(t, 7, a.stock(t, p.ID), "rejected additions leave inventory alone")

	w = a.do(http.MethodPost, "/cart/items", token, handlers.AddToCartRequest{ProductID: p.ID, Quantity: intPtr(7)})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[handlers.CartResponse](t, w)
	require.Len(t, res.Cart.Entries, 1, "same product merges into one line")
	assert.Equal(t, 10, res.Cart.Entries[0].Quantity)
	assert.Equal(t, 0, a.stock(t, p.ID))

	w = a.do(http.MethodPost, "/cart/items", token, handlers.AddToCartRequest{ProductID: p.ID})
	require.Equal(t, http.StatusConflict, w.Code)
	errRes = decode[handlers.ErrorResponse](t, w)
	assert.Equal(t, "out_of_stock", errRes.Kind)
	assert.Equal(t, p.ID, errRes.ProductID)
}

func TestAddToCartRejectsBadRequests(t *testing.T) {
	a := newTestAPI(t)
	token := a.shopper(t, "lee@shop.test")
	p := a.seedProduct(t, "Spoon", 4)

	tests := []struct {
		name       string
		body       handlers.AddToCartRequest
		wantStatus int
		wantKind   string
	}{
		{"unknown product", handlers.AddToCartRequest{ProductID: 9999}, http.StatusNotFound, "lookup_failed"},
		{"zero quantity", handlers.AddToCartRequest{ProductID: p.ID, Quantity: intPtr(0)}, http.StatusBadRequest, "invalid_quantity"},
		{"negative quantity", handlers.AddToCartRequest{ProductID: p.ID, Quantity: intPtr(-2)}, http.StatusBadRequest, "invalid_quantity"},
		{"missing product", handlers.AddToCartRequest{}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/cart/items", token, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantKind, decode[handlers.ErrorResponse](t, w).Kind)
		})
	}
	assert.Equal(t, 4, a.stock(t, p.ID))
}

func TestCartLineEditing(t *testing.T) {
	a := newTestAPI(t)
	token := a.shopper(t, "max@shop.test")
	mug := a.seedProduct(t, "Mug", 10)
	bowl := a.seedProduct(t, "Bowl", 10)

	a.do(http.MethodPost, "/cart/items", token, handlers.AddToCartRequest{ProductID: mug.ID, Quantity: intPtr(2)})
	w := a.do(http.MethodPost, "/cart/items", token, handlers.AddToCartRequest{ProductID: bowl.ID})
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[handlers.CartResponse](t, w).Cart
	require.Len(t, cart.Entries, 2)
	mugLine, ok := cart.ByProduct(mug.ID)
	require.True(t, ok)

	w = a.do(http.MethodPatch, "/cart/items/"+mugLine.ID, token, handlers.UpdateQuantityRequest{Quantity: intPtr(5)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[handlers.CartResponse](t, w)
	assert.Equal(t, 6, res.ItemCount)
	assert.Equal(t, 8, a.stock(t, mug.ID), "quantity edits do not touch inventory")

	w = a.do(http.MethodPatch, "/cart/items/missing", token, handlers.UpdateQuantityRequest{Quantity: intPtr(2)})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_in_cart", decode[handlers.ErrorResponse](t, w).Kind)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPatch, "/cart/items/"+mugLine.ID, token, map[string]any{}).Code)

	w = a.do(http.MethodPatch, "/cart/items/"+mugLine.ID, token, handlers.UpdateQuantityRequest{Quantity: intPtr(0)})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[handlers.CartResponse](t, w)
	require.Len(t, res.Cart.Entries, 1)
	assert.Equal(t, bowl.ID, res.Cart.Entries[0].ProductID)

	w = a.do(http.MethodDelete, "/cart/items/"+mugLine.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, "removing a missing line succeeds")
	assert.Len(t, decode[handlers.CartResponse](t, w).Cart.Entries, 1)

	w = a.do(http.MethodDelete, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[handlers.CartResponse](t, w).ItemCount)
	assert.Equal(t, 9, a.stock(t, bowl.ID), "clearing does not restore inventory")

	w = a.do(http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[handlers.CartResponse](t, w).Cart.Entries)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	a := newTestAPI(t)
	ann := a.shopper(t, "ann@shop.test")
	bob := a.shopper(t, "bob@shop.test")
	p := a.seedProduct(t, "Lamp", 5)

	w := a.do(http.MethodPost, "/cart/items", ann, handlers.AddToCartRequest{ProductID: p.ID, Quantity: intPtr(2)})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodGet, "/cart", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[handlers.CartResponse](t, w).Cart.Entries)

	w = a.do(http.MethodPost, "/cart/refresh", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[handlers.CartResponse](t, w)
	assert.Equal(t, 2, res.ItemCount)
	assert.Nil(t, res.Warning)
}

func TestWishlistRoutes(t *testing.T) {
	a := newTestAPI(t)
	token := a.shopper(t, "wes@shop.test")
	p := a.seedProduct(t, "Vase", 1)

	for range 2 {
		w := a.do(http.MethodPost, path("/wishlist/%d", p.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decode[handlers.WishlistResponse](t, w).Items, 1, "adding twice keeps one entry")
	}

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/wishlist/9999", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/wishlist/abc", token, nil).Code)

	w := a.do(http.MethodGet, "/wishlist", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[handlers.WishlistResponse](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, "Vase", items[0].Product.Name)

	for range 2 {
		w = a.do(http.MethodDelete, path("/wishlist/%d", p.ID), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[handlers.WishlistResponse](t, w).Items)
	}
	assert.Equal(t, 1, a.stock(t, p.ID), "wishlists never reserve stock")
}

func TestCheckoutPlacesOrder(t *testing.T) {
	a := newTestAPI(t)
	token := a.shopper(t, "oli@shop.test")
	p := a.seedProduct(t, "Chair", 3)

	w := a.do(http.MethodPost, "/checkout", token, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "empty_cart", decode[handlers.ErrorResponse](t, w).Kind)

	w = a.do(http.MethodPost, "/cart/items", token, handlers.AddToCartRequest{ProductID: p.ID, Quantity: intPtr(2)})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/checkout", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[handlers.CheckoutResponse](t, w)
	assert.NotEmpty(t, placed.Order.ID)
	assert.Equal(t, models.OrderStatusPlaced, placed.Order.Status)
	assert.Equal(t, "39.98", placed.Order.Total.StringFixed(2))
	require.Len(t, placed.Order.Items, 1)
	assert.Equal(t, 2, placed.Order.Items[0].Quantity)
	assert.Equal(t, 1, a.stock(t, p.ID), "stock was taken when the item was added")

	w = a.do(http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[handlers.CartResponse](t, w).Cart.Entries)

	w = a.do(http.MethodGet, "/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders := decode[[]models.Order](t, w)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.Order.ID, orders[0].ID)

	w = a.do(http.MethodGet, "/orders", a.shopper(t, "other@shop.test"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Order](t, w))
}

func TestLogoutDropsCartSession(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(http.MethodPost, "/auth/signup", "", handlers.CredentialsRequest{Email: "zed@shop.test", Password: "correct-horse"})
	require.Equal(t, http.StatusCreated, w.Code)
	auth := decode[handlers.AuthResult](t, w)
	p := a.seedProduct(t, "Clock", 4)

	w = a.do(http.MethodPost, "/cart/items", auth.Tokens.AccessToken, handlers.AddToCartRequest{ProductID: p.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(http.MethodPost, "/auth/logout", auth.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodPost, "/auth/login", "", handlers.CredentialsRequest{Email: "zed@shop.test", Password: "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	again := decode[handlers.AuthResult](t, w)

	w = a.do(http.MethodGet, "/cart", again.Tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[handlers.CartResponse](t, w)
	assert.Equal(t, 1, res.ItemCount, "the cart is reloaded from the store on the next sign-in")
}
