package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/cart"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/config"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/inventory"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/logger"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/search"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/sse"
)

// ProvideLedger provides the inventory ledger.
func ProvideLedger(i do.Injector) (*inventory.Ledger, error) {
	storage := do.MustInvoke[*StorageHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return inventory.NewLedger(storage.Products, storage.Movements, log.WithComponent("inventory").Logger), nil
}

// CatalogHandle wraps the search catalog and its change subscription.
type CatalogHandle struct {
	*search.Catalog
	unwatch func()
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.unwatch()
	return h.Close()
}

// ProvideCatalog builds the full-text index from the product table and keeps
// it current from the change feed.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	storage := do.MustInvoke[*StorageHandle](i)
	hub := do.MustInvoke[*realtime.Hub](i)
	log := do.MustInvoke[*logger.Logger](i)

	catalog, err := search.NewCatalog(storage.Products, log.WithComponent("search").Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := catalog.Rebuild(ctx); err != nil {
		_ = catalog.Close()
		return nil, fmt.Errorf("build catalog index: %w", err)
	}

	return &CatalogHandle{Catalog: catalog, unwatch: catalog.Watch(hub)}, nil
}

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.WithComponent("sse").Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")
	return &SSEManagerHandle{Manager: manager, cancel: cancel}, nil
}

// RegistryHandle owns the per-user cart sessions and the idle sweeper.
type RegistryHandle struct {
	*cart.Registry
	cancel      context.CancelFunc
	unsubscribe func()
}

// Shutdown implements do.Shutdownable.
func (h *RegistryHandle) Shutdown() error {
	h.unsubscribe()
	h.cancel()
	return h.Registry.Shutdown()
}

// ProvideCartRegistry wires cart sessions to the ledger, the stores, the
// local cache, the change feed and the SSE notifier, and follows sign-in
// and sign-out through the auth service.
func ProvideCartRegistry(i do.Injector) (*RegistryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*StorageHandle](i)
	ledger := do.MustInvoke[*inventory.Ledger](i)
	cache := do.MustInvoke[*CacheHandle](i)
	hub := do.MustInvoke[*realtime.Hub](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	authService := do.MustInvoke[*auth.Service](i)

	stockCheck, err := cart.ParseStockCheck(cfg.Cart.StockCheck)
	if err != nil {
		return nil, err
	}

	registry := cart.NewRegistry(cart.Deps{
		Ledger:     ledger,
		Store:      storage.Carts,
		Wishlist:   storage.Wishlist,
		Orders:     storage.Orders,
		Cache:      cache.Cache,
		Feed:       hub,
		Notifier:   sseHandle.Manager,
		StockCheck: stockCheck,
		Logger:     log.WithComponent("cart").Logger,
	}, cfg.Cart.SessionIdle)

	ctx, cancel := context.WithCancel(context.Background())
	go registry.Run(ctx)

	log.Info("Cart sessions ready", "stock_check", stockCheck, "idle_timeout", cfg.Cart.SessionIdle)
	return &RegistryHandle{
		Registry:    registry,
		cancel:      cancel,
		unsubscribe: authService.OnIdentityChange(registry.HandleIdentityChange),
	}, nil
}
