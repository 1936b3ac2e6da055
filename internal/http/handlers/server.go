// Package handlers implements the storefront HTTP API.
package handlers

import (
	"log/slog"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/cart"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/inventory"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/search"
)

// Deps are the services the handlers call.
type Deps struct {
	Products  repo.ProductRepository
	Movements repo.MovementRepository
	Metrics   repo.MetricsRepository
	Orders    repo.OrderRepository
	Ledger    *inventory.Ledger
	Catalog   *search.Catalog
	Auth      *auth.Service
	Carts     *cart.Registry
	Logger    *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	products  repo.ProductRepository
	movements repo.MovementRepository
	metrics   repo.MetricsRepository
	orders    repo.OrderRepository
	ledger    *inventory.Ledger
	catalog   *search.Catalog
	auth      *auth.Service
	carts     *cart.Registry
	validator *Validator
	logger    *slog.Logger
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Server{
		products:  d.Products,
		movements: d.Movements,
		metrics:   d.Metrics,
		orders:    d.Orders,
		ledger:    d.Ledger,
		catalog:   d.Catalog,
		auth:      d.Auth,
		carts:     d.Carts,
		validator: NewValidator(),
		logger:    d.Logger,
	}
}
