package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/inventory"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/localcache"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

var errRemoteDown = errors.New("connection refused")

// flakyStore fails reads or writes on demand.
type flakyStore struct {
	*repo.InMemoryCartRepository
	failReads  atomic.Bool
	failWrites atomic.Bool
}

func (s *flakyStore) GetByUser(ctx context.Context, userID string) ([]models.CartEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failReads.Load() {
		return nil, errRemoteDown
	}
	return s.InMemoryCartRepository.GetByUser(ctx, userID)
}

func (s *flakyStore) Upsert(ctx context.Context, e models.CartEntry) (models.CartEntry, error) {
	if s.failWrites.Load() {
		return models.CartEntry{}, errRemoteDown
	}
	return s.InMemoryCartRepository.Upsert(ctx, e)
}

func (s *flakyStore) UpdateQuantity(ctx context.Context, userID, entryID string, q int) (models.CartEntry, error) {
	if s.failWrites.Load() {
		return models.CartEntry{}, errRemoteDown
	}
	return s.InMemoryCartRepository.UpdateQuantity(ctx, userID, entryID, q)
}

func (s *flakyStore) Delete(ctx context.Context, userID, entryID string) error {
	if s.failWrites.Load() {
		return errRemoteDown
	}
	return s.InMemoryCartRepository.Delete(ctx, userID, entryID)
}

func (s *flakyStore) Clear(ctx context.Context, userID string) error {
	if s.failWrites.Load() {
		return errRemoteDown
	}
	return s.InMemoryCartRepository.Clear(ctx, userID)
}

// countingLedger records reads and can fail reads or decrements.
type countingLedger struct {
	Ledger
	gets          atomic.Int32
	failGet       atomic.Bool
	failDecrement atomic.Bool
}

func (l *countingLedger) Get(ctx context.Context, productID int) (models.Product, error) {
	l.gets.Add(1)
	if l.failGet.Load() {
		return models.Product{}, errRemoteDown
	}
	return l.Ledger.Get(ctx, productID)
}

func (l *countingLedger) Decrement(ctx context.Context, productID, qty int, reason string) (models.Product, error) {
	if l.failDecrement.Load() {
		return models.Product{}, errRemoteDown
	}
	return l.Ledger.Decrement(ctx, productID, qty, reason)
}

// signOutOrders signs the session out while the order is being written.
type signOutOrders struct {
	OrderStore
	session *Session
}

func (o *signOutOrders) Create(ctx context.Context, order models.Order) (models.Order, error) {
	placed, err := o.OrderStore.Create(ctx, order)
	_, _ = o.session.SetIdentity(ctx, models.Identity{})
	return placed, err
}

type recorder struct {
	mu      sync.Mutex
	notices []Notice
	changed int
}

func (r *recorder) Notify(_ string, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) CartChanged(string, models.Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed++
}

func (r *recorder) last() Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}
	}
	return r.notices[len(r.notices)-1]
}

type fixture struct {
	products *repo.InMemoryProductRepository
	ledger   *countingLedger
	store    *flakyStore
	wishlist *repo.InMemoryWishlistRepository
	orders   *repo.InMemoryOrderRepository
	cache    *localcache.MemoryCache
	hub      *realtime.Hub
	notes    *recorder
	deps     Deps
}

func newFixture(t *testing.T, check StockCheck) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	products := repo.NewInMemoryProductRepository()

	f := &fixture{
		products: products,
		ledger:   &countingLedger{Ledger: inventory.NewLedger(products, repo.NewInMemoryMovementRepository(), logger)},
		store:    &flakyStore{InMemoryCartRepository: repo.NewInMemoryCartRepository()},
		wishlist: repo.NewInMemoryWishlistRepository(),
		orders:   repo.NewInMemoryOrderRepository(),
		cache:    localcache.NewMemoryCache(),
		hub:      realtime.NewHub(),
		notes:    &recorder{},
	}
	f.deps = Deps{
		Ledger:     f.ledger,
		Store:      f.store,
		Wishlist:   f.wishlist,
		Orders:     f.orders,
		Cache:      f.cache,
		Feed:       f.hub,
		Notifier:   f.notes,
		StockCheck: check,
		Logger:     logger,
	}
	return f
}

func (f *fixture) product(t *testing.T, name string, stock int) models.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), models.Product{
		Name: name, Price: decimal.RequireFromString("12.50"), InventoryCount: stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, productID int) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.InventoryCount
}

func (f *fixture) session(t *testing.T, userID string) *Session {
	t.Helper()
	s := NewSession(f.deps)
	t.Cleanup(s.Close)
	if userID != "" {
		_, err := s.SetIdentity(context.Background(), models.Identity{UserID: userID, Email: userID + "@example.com"})
		require.NoError(t, err)
	}
	return s
}

func (f *fixture) remoteQuantity(t *testing.T, userID string, productID int) int {
	t.Helper()
	entries, err := f.store.InMemoryCartRepository.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	for _, e := range entries {
		if e.ProductID == productID {
			return e.Quantity
		}
	}
	return 0
}

func quantityOf(c models.Cart, productID int) int {
	e, _ := c.ByProduct(productID)
	return e.Quantity
}
