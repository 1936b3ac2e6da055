package providers

import (
	"github.com/samber/do/v2"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/config"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/logger"
)

// EnvFile is the dotenv file read by ProvideConfig.
const EnvFile = ".env"

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load(EnvFile)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Log.Level),
		AddSource:   cfg.App.Env == config.EnvDevelopment,
		Environment: cfg.App.Env,
	})

	log.Info("Starting Shop Mart server",
		"environment", cfg.App.Env,
		"log_level", cfg.Log.Level,
		"storage", cfg.Storage.Driver,
		"cache", cfg.Cache.Driver,
		"stock_check", cfg.Cart.StockCheck,
	)
	return log, nil
}
