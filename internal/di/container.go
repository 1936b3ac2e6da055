// Package di provides dependency injection configuration for the shop server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/config"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/di/providers"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/http/handlers"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/inventory"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/logger"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideHub)
	do.Provide(injector, providers.ProvideStorage)
	do.Provide(injector, providers.ProvideChangeListener)
	do.Provide(injector, providers.ProvideRedis)
	do.Provide(injector, providers.ProvideCache)

	// Domain services
	do.Provide(injector, providers.ProvideLedger)
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideCartRegistry)

	// HTTP
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideRouter)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes every service up to the router. The HTTP server is
// started separately by StartServer so that tests can stop short of binding
// a port.
func Bootstrap(injector do.Injector) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*realtime.Hub](injector)

	if _, err := do.Invoke[*providers.StorageHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ChangeListenerHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.RedisHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*inventory.Ledger](injector)
	if _, err := do.Invoke[*providers.CatalogHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.Service](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	if _, err := do.Invoke[*providers.RegistryHandle](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*providers.LimiterHandle](injector)
	_ = do.MustInvoke[*handlers.Server](injector)
	_ = do.MustInvoke[*providers.RouterHandle](injector)
	return nil
}

// StartServer starts listening for HTTP requests.
func StartServer(injector do.Injector) (*providers.HTTPServerHandle, error) {
	return do.Invoke[*providers.HTTPServerHandle](injector)
}
