package providers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/config"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/db"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/logger"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

// ProvideHub provides the in-process change feed.
func ProvideHub(i do.Injector) (*realtime.Hub, error) {
	return realtime.NewHub(), nil
}

// StorageHandle groups the repositories of the selected storage driver.
type StorageHandle struct {
	Products  repo.ProductRepository
	Movements repo.MovementRepository
	Metrics   repo.MetricsRepository
	Carts     repo.CartRepository
	Wishlist  repo.WishlistRepository
	Orders    repo.OrderRepository
	Users     repo.UserRepository

	// DB is nil for the memory driver.
	DB *sql.DB
}

// Shutdown implements do.Shutdownable.
func (h *StorageHandle) Shutdown() error {
	if h.DB == nil {
		return nil
	}
	return h.DB.Close()
}

// ProvideStorage connects to Postgres, or builds in-memory repositories when
// storage.driver is memory. In memory mode product writes are published to
// the hub directly since there are no database triggers.
func ProvideStorage(i do.Injector) (*StorageHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	hub := do.MustInvoke[*realtime.Hub](i)

	if cfg.Storage.Driver != "postgres" {
		products := realtime.NewPublishingProductRepository(repo.NewInMemoryProductRepository(), hub)
		movements := repo.NewInMemoryMovementRepository()
		carts := repo.NewInMemoryCartRepository()

		log.Warn("Using in-memory storage; data is lost on restart")
		return &StorageHandle{
			Products:  products,
			Movements: movements,
			Metrics:   repo.NewInMemoryMetricsRepository(products, movements, carts),
			Carts:     carts,
			Wishlist:  repo.NewInMemoryWishlistRepository(),
			Orders:    repo.NewInMemoryOrderRepository(),
			Users:     repo.NewInMemoryUserRepository(),
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	conn, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		log.Info("Database migrations applied")
	}

	log.Info("Database connected")
	return &StorageHandle{
		Products:  repo.NewPostgresProductRepository(conn),
		Movements: repo.NewPostgresMovementRepository(conn),
		Metrics:   repo.NewPostgresMetricsRepository(conn),
		Carts:     repo.NewPostgresCartRepository(conn),
		Wishlist:  repo.NewPostgresWishlistRepository(conn),
		Orders:    repo.NewPostgresOrderRepository(conn),
		Users:     repo.NewPostgresUserRepository(conn),
		DB:        conn,
	}, nil
}

// ChangeListenerHandle runs the Postgres LISTEN loop feeding the hub.
type ChangeListenerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *ChangeListenerHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideChangeListener starts the listener for the postgres driver. With
// the memory driver it is a no-op handle.
func ProvideChangeListener(i do.Injector) (*ChangeListenerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	hub := do.MustInvoke[*realtime.Hub](i)

	ctx, cancel := context.WithCancel(context.Background())
	h := &ChangeListenerHandle{cancel: cancel, done: make(chan struct{})}

	if cfg.Storage.Driver != "postgres" {
		close(h.done)
		return h, nil
	}

	listener := realtime.NewPGListener(cfg.Database.URL, cfg.Database.NotifyChannel, hub, log.WithComponent("listener").Logger)
	go func() {
		defer close(h.done)
		if err := listener.Run(ctx); err != nil {
			log.Error("Change listener stopped", "error", err)
		}
	}()

	log.Info("Change listener started", "channel", cfg.Database.NotifyChannel)
	return h, nil
}
