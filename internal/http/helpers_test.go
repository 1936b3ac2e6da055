package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/cart"
	api "github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http/handlers"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/inventory"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/localcache"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/search"
)

type testAPI struct {
	router     http.Handler
	products   repo.ProductRepository
	auth       *auth.Service
	adminToken string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hub := realtime.NewHub()
	products := realtime.NewPublishingProductRepository(repo.NewInMemoryProductRepository(), hub)
	movements := repo.NewInMemoryMovementRepository()
	carts := repo.NewInMemoryCartRepository()
	orders := repo.NewInMemoryOrderRepository()
	ledger := inventory.NewLedger(products, movements, logger)

	catalog, err := search.NewCatalog(products, logger)
	require.NoError(t, err)
	t.Cleanup(catalog.Watch(hub))
	t.Cleanup(func() { _ = catalog.Close() })

	tokens, err := auth.NewTokenService("test-secret-of-sufficient-length", 15*time.Minute)
	require.NoError(t, err)
	authSvc := auth.NewService(repo.NewInMemoryUserRepository(), tokens, auth.NewMemoryRefreshStore(), time.Hour, logger)

	registry := cart.NewRegistry(cart.Deps{
		Ledger:   ledger,
		Store:    carts,
		Wishlist: repo.NewInMemoryWishlistRepository(),
		Orders:   orders,
		Cache:    localcache.NewMemoryCache(),
		Feed:     hub,
		Logger:   logger,
	}, time.Hour)
	t.Cleanup(authSvc.OnIdentityChange(registry.HandleIdentityChange))
	t.Cleanup(func() { _ = registry.Shutdown() })

	server := handlers.NewServer(handlers.Deps{
		Products:  products,
		Movements: movements,
		Metrics:   repo.NewInMemoryMetricsRepository(products, movements, carts),
		Orders:    orders,
		Ledger:    ledger,
		Catalog:   catalog,
		Auth:      authSvc,
		Carts:     registry,
		Logger:    logger,
	})

	a := &testAPI{
		router:   api.NewRouter(server, authSvc, api.RouterConfig{CORSOrigins: []string{"*"}, Logger: logger}),
		products: products,
		auth:     authSvc,
	}

	_, adminTokens, err := authSvc.SignUp(context.Background(), "admin@shop.test", "admin-password", models.RoleAdmin)
	require.NoError(t, err)
	a.adminToken = adminTokens.AccessToken
	return a
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// shopper signs up a regular user and returns its access token.
func (a *testAPI) shopper(t *testing.T, email string) string {
	t.Helper()
	w := a.do(http.MethodPost, "/auth/signup", "", handlers.CredentialsRequest{Email: email, Password: "correct-horse"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res handlers.AuthResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res.Tokens.AccessToken
}

func (a *testAPI) seedProduct(t *testing.T, name string, stock int) models.Product {
	t.Helper()
	p, err := a.products.Create(context.Background(), models.Product{
		Name:           name,
		Category:       "home",
		Price:          decimal.RequireFromString("19.99"),
		InventoryCount: stock,
		Threshold:      1,
	})
	require.NoError(t, err)
	return p
}

func (a *testAPI) stock(t *testing.T, productID int) int {
	t.Helper()
	p, err := a.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.InventoryCount
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func multipartCSV(csvContent string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "products.csv")
	_, _ = part.Write([]byte(csvContent))
	_ = writer.Close()
	return &buf, writer.FormDataContentType()
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
