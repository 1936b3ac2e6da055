package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/config"
	api "github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http/handlers"
	rl "github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http/rate_limiter"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/inventory"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/logger"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/sse"
)

// LimiterHandle wraps the per-client rate limiter and its cleanup loop.
type LimiterHandle struct {
	*rl.Limiter
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *LimiterHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideRateLimiter provides the request rate limiter.
func ProvideRateLimiter(i do.Injector) (*LimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := rl.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	ctx, cancel := context.WithCancel(context.Background())
	go limiter.Run(ctx)

	return &LimiterHandle{Limiter: limiter, cancel: cancel}, nil
}

// ProvideAPIServer provides the HTTP handlers.
func ProvideAPIServer(i do.Injector) (*handlers.Server, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*StorageHandle](i)
	ledger := do.MustInvoke[*inventory.Ledger](i)
	catalog := do.MustInvoke[*CatalogHandle](i)
	authService := do.MustInvoke[*auth.Service](i)
	registry := do.MustInvoke[*RegistryHandle](i)

	return handlers.NewServer(handlers.Deps{
		Products:  storage.Products,
		Movements: storage.Movements,
		Metrics:   storage.Metrics,
		Orders:    storage.Orders,
		Ledger:    ledger,
		Catalog:   catalog.Catalog,
		Auth:      authService,
		Carts:     registry.Registry,
		Logger:    log.WithComponent("api").Logger,
	}), nil
}

// RouterHandle is the fully wired HTTP handler.
type RouterHandle struct {
	http.Handler
}

// ProvideRouter mounts every route, the rate limiter and the event stream.
func ProvideRouter(i do.Injector) (*RouterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	server := do.MustInvoke[*handlers.Server](i)
	authService := do.MustInvoke[*auth.Service](i)
	limiter := do.MustInvoke[*LimiterHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	events := sse.NewHandler(sseHandle.Manager, func(r *http.Request) models.Identity {
		return handlers.IdentityFrom(r.Context())
	}, log.WithComponent("sse").Logger)

	return &RouterHandle{Handler: api.NewRouter(server, authService, api.RouterConfig{
		CORSOrigins: cfg.Server.CORSOrigins,
		Limiter:     limiter.Limiter,
		Events:      events,
		Logger:      log.Logger,
	})}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer starts the HTTP server in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	router := do.MustInvoke[*RouterHandle](i)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
