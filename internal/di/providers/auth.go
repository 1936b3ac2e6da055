package providers

import (
	"github.com/samber/do/v2"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/config"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/logger"
)

// ProvideTokenService provides the JWT access token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		log.Warn("Using the default JWT secret; set AUTH_JWT_SECRET outside development")
	}
	return auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
}

// ProvideAuthService provides sign-up, sign-in and token refresh. Refresh
// tokens live in Redis when it is configured.
func ProvideAuthService(i do.Injector) (*auth.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storage := do.MustInvoke[*StorageHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	rh := do.MustInvoke[*RedisHandle](i)

	var refresh auth.RefreshStore = auth.NewMemoryRefreshStore()
	if client := rh.Client(); client != nil {
		refresh = auth.NewRedisRefreshStore(client)
	}

	return auth.NewService(storage.Users, tokens, refresh, cfg.Auth.RefreshTTL, log.WithComponent("auth").Logger), nil
}
