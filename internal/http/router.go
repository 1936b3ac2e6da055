package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/aayushirajput1602/Shop-Mart-Cart-sub000/docs"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http/handlers"
	rl "github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http/rate_limiter"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type RouterConfig struct {
	CORSOrigins []string
	// Limiter is optional; nil disables rate limiting.
	Limiter *rl.Limiter
	// Events serves the server-sent event stream at /events.
	Events http.Handler
	Logger *slog.Logger
}

func NewRouter(s *handlers.Server, verifier TokenVerifier, cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware(cfg.Logger))
	}

	r.Get("/healthz", s.HealthHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.SignUpHandler)
		r.Post("/login", s.LoginHandler)
		r.Post("/refresh", s.RefreshHandler)
		r.Group(func(r chi.Router) {
			r.Use(Authenticate(verifier), RequireAuth)
			r.Post("/logout", s.LogoutHandler)
			r.Get("/me", s.MeHandler)
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.GetProductsHandler)
		r.Get("/search", s.FilterProductsHandler)
		r.Get("/find", s.FindProductsHandler)
		r.Get("/{id}", s.GetProductByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(verifier), RequireRole(models.RoleAdmin))
			r.Post("/", s.CreateProductHandler)
			r.Post("/import", s.ImportProductsHandler)
			r.Put("/{id}", s.UpdateProductHandler)
			r.Delete("/{id}", s.DeleteProductHandler)
			r.Post("/{id}/adjust", s.AdjustQuantityHandler)
			r.Get("/{id}/movements", s.GetMovementsHandler)
			r.Get("/{id}/movements/export", s.ExportMovementsHandler)
		})
	})

	r.With(Authenticate(verifier), RequireRole(models.RoleAdmin)).
		Get("/metrics/dashboard", s.GetDashboardMetricsHandler)

	// Cart and wishlist accept anonymous callers and answer them with an
	// Unauthenticated error from the cart layer.
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(verifier))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.GetCartHandler)
			r.Delete("/", s.ClearCartHandler)
			r.Post("/items", s.AddToCartHandler)
			r.Patch("/items/{entryID}", s.UpdateCartItemHandler)
			r.Delete("/items/{entryID}", s.RemoveCartItemHandler)
			r.Post("/refresh", s.RefreshCartHandler)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", s.GetWishlistHandler)
			r.Post("/{productID}", s.AddToWishlistHandler)
			r.Delete("/{productID}", s.RemoveFromWishlistHandler)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(verifier), RequireAuth)
		r.Post("/checkout", s.CheckoutHandler)
		r.Get("/orders", s.GetOrdersHandler)
		if cfg.Events != nil {
			r.Get("/events", cfg.Events.ServeHTTP)
		}
	})

	return r
}
