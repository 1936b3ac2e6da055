package cart

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/localcache"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
)

func TestSetIdentity_FallsBackToLocalCache(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	ctx := context.Background()

	cached := models.NewCart("u1")
	cached.Upsert(models.CartEntry{ID: "e1", UserID: "u1", ProductID: 1, Quantity: 1, Product: models.ProductSnapshot{Name: "a", Price: decimal.NewFromInt(3)}})
	cached.Upsert(models.CartEntry{ID: "e2", UserID: "u1", ProductID: 2, Quantity: 2, Product: models.ProductSnapshot{Name: "b", Price: decimal.NewFromInt(4)}})
	require.NoError(t, localcache.SetJSON(ctx, f.cache, localcache.CartKey("u1"), cached))

	f.store.failReads.Store(true)
	s := NewSession(f.deps)
	defer s.Close()

	res, err := s.SetIdentity(ctx, models.Identity{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, KindRemoteUnavailable, res.Warning.Kind)
	assert.Len(t, res.Cart.Entries, 2)
	assert.True(t, decimal.NewFromInt(11).Equal(res.Cart.Subtotal()))
	assert.Equal(t, LevelWarning, f.notes.last().Level)
	assert.Equal(t, KindRemoteUnavailable.String(), f.notes.last().Kind)
}

func TestSetIdentity_NoCacheFallsBackToEmpty(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	f.store.failReads.Store(true)
	s := NewSession(f.deps)
	defer s.Close()

	res, err := s.SetIdentity(context.Background(), models.Identity{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Empty(t, res.Cart.Entries)
	assert.Equal(t, "u1", res.Cart.UserID)
}

func TestSetIdentity_Transitions(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 10)
	ctx := context.Background()
	s := f.session(t, "u1")

	_, err := s.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)

	// u1 -> u2 never carries u1's items over.
	res, err := s.SetIdentity(ctx, models.Identity{UserID: "u2"})
	require.NoError(t, err)
	assert.Empty(t, res.Cart.Entries)
	assert.Equal(t, "u2", s.Identity().UserID)

	_, err = s.AddToCart(ctx, p.ID, 1)
	require.NoError(t, err)

	// Signing out clears memory but keeps remote and cached data.
	res, err = s.SetIdentity(ctx, models.Identity{})
	require.NoError(t, err)
	assert.Empty(t, res.Cart.Entries)
	assert.False(t, s.Identity().Authenticated())
	assert.Equal(t, 0, f.hub.Len())

	cached, err := localcache.GetJSON[models.Cart](ctx, f.cache, localcache.CartKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, 2, quantityOf(cached, p.ID))

	res, err = s.SetIdentity(ctx, models.Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 2, quantityOf(res.Cart, p.ID))
	assert.Equal(t, 1, f.hub.Len())

	// Same user again is not a transition.
	_, err = s.SetIdentity(ctx, models.Identity{UserID: "u1", Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", s.Identity().Email)
	assert.Equal(t, 1, f.hub.Len())
}

func TestSession_RefetchesOnChange(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 10)
	s := f.session(t, "u1")
	ctx := context.Background()

	// Another device writes the same user's cart.
	_, err := f.store.InMemoryCartRepository.Upsert(ctx, models.CartEntry{UserID: "u1", ProductID: p.ID, Quantity: 4, Product: p.Snapshot()})
	require.NoError(t, err)

	// Changes for other users are ignored.
	f.hub.Publish(realtime.Change{Table: realtime.TableCartItems, Op: realtime.OpInsert, UserID: "u2", ProductID: p.ID})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, s.Cart().Entries)

	f.hub.Publish(realtime.Change{Table: realtime.TableCartItems, Op: realtime.OpInsert, UserID: "u1", ProductID: p.ID})
	assert.Eventually(t, func() bool {
		return quantityOf(s.Cart(), p.ID) == 4
	}, time.Second, 10*time.Millisecond)

	s.Close()
	assert.Equal(t, 0, f.hub.Len())
}

func TestRefresh_ConcurrentCallsShareResult(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 10)
	s := f.session(t, "u1")
	ctx := context.Background()
	_, err := s.AddToCart(ctx, p.ID, 1)
	require.NoError(t, err)

	results := make(chan Result, 8)
	for range 8 {
		go func() {
			res, _ := s.Refresh(ctx)
			results <- res
		}()
	}
	for range 8 {
		res := <-results
		assert.Equal(t, 1, quantityOf(res.Cart, p.ID))
	}
}

func TestWishlist(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Wool Scarf", 3)
	s := f.session(t, "u1")
	ctx := context.Background()

	res, err := s.AddToWishlist(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, res.Wishlist, 1)
	assert.Equal(t, "Wool Scarf", res.Wishlist[0].Product.Name)

	res, err = s.AddToWishlist(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, res.Wishlist, 1)
	assert.True(t, s.InWishlist(p.ID))
	assert.Equal(t, 3, f.stock(t, p.ID), "wishlist never reserves stock")

	cached, err := localcache.GetJSON[[]models.WishlistEntry](ctx, f.cache, localcache.WishlistKey("u1"))
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	for range 2 {
		res, err = s.RemoveFromWishlist(ctx, p.ID)
		require.NoError(t, err)
		assert.Empty(t, res.Wishlist)
		assert.Nil(t, res.Warning)
	}

	_, err = s.AddToWishlist(ctx, 999)
	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestCheckout(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	a := f.product(t, "a", 5)
	b := f.product(t, "b", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	_, err := s.Checkout(ctx)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = s.AddToCart(ctx, a.ID, 2)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, b.ID, 1)
	require.NoError(t, err)

	res, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Len(t, res.Order.Items, 2)
	assert.True(t, decimal.RequireFromString("37.50").Equal(res.Order.Total))
	assert.Equal(t, models.OrderStatusPlaced, res.Order.Status)

	assert.Empty(t, s.Cart().Entries)
	assert.Equal(t, 3, f.stock(t, a.ID))
	assert.Equal(t, 4, f.stock(t, b.ID))

	orders, err := f.orders.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestRegistry(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	r := NewRegistry(f.deps, time.Minute)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	anon, err := r.Acquire(ctx, models.Identity{})
	require.NoError(t, err)
	assert.False(t, anon.Identity().Authenticated())
	assert.Equal(t, 0, r.Len())

	s1, err := r.Acquire(ctx, models.Identity{UserID: "u1"})
	require.NoError(t, err)
	again, err := r.Acquire(ctx, models.Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.Same(t, s1, again)

	r.HandleIdentityChange(models.Identity{}, models.Identity{UserID: "u2"})
	assert.Equal(t, 2, r.Len())

	r.HandleIdentityChange(models.Identity{UserID: "u1"}, models.Identity{})
	assert.Equal(t, 1, r.Len())
	assert.False(t, s1.Identity().Authenticated())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, f.hub.Len())

	_, err = r.Acquire(ctx, models.Identity{UserID: "u3"})
	require.NoError(t, err)
	require.NoError(t, r.Shutdown())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SignInOutlivesCancelledRequest(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 10)
	_, err := f.store.Upsert(context.Background(), models.CartEntry{UserID: "u1", ProductID: p.ID, Quantity: 3, Product: p.Snapshot()})
	require.NoError(t, err)

	r := NewRegistry(f.deps, time.Minute)
	t.Cleanup(func() { _ = r.Shutdown() })

	gone, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := r.Acquire(gone, models.Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, s.Stale())

	again, err := r.Acquire(context.Background(), models.Identity{UserID: "u1"})
	require.NoError(t, err)
	require.Same(t, s, again)
	require.Len(t, again.Cart().Entries, 1)
	assert.Equal(t, 3, quantityOf(again.Cart(), p.ID))

	res, err := again.AddToCart(context.Background(), p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, quantityOf(res.Cart, p.ID))
	assert.Equal(t, 4, f.remoteQuantity(t, "u1", p.ID))
	assert.Equal(t, 9, f.stock(t, p.ID))
}

func TestSession_WriteAfterDegradedSignInRereadsRemote(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 10)
	ctx := context.Background()
	_, err := f.store.Upsert(ctx, models.CartEntry{UserID: "u1", ProductID: p.ID, Quantity: 3, Product: p.Snapshot()})
	require.NoError(t, err)

	f.store.failReads.Store(true)
	s := NewSession(f.deps)
	defer s.Close()
	res, err := s.SetIdentity(ctx, models.Identity{UserID: "u1"})
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Empty(t, res.Cart.Entries)
	assert.True(t, s.Stale())

	f.store.failReads.Store(false)
	res, err = s.AddToCart(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Equal(t, 4, quantityOf(res.Cart, p.ID))
	assert.Equal(t, 4, f.remoteQuantity(t, "u1", p.ID))
	assert.Equal(t, 9, f.stock(t, p.ID))
	assert.False(t, s.Stale())
}

func TestSession_CurrentRereadsAfterDegradedSignIn(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 10)
	ctx := context.Background()
	_, err := f.store.Upsert(ctx, models.CartEntry{UserID: "u1", ProductID: p.ID, Quantity: 2, Product: p.Snapshot()})
	require.NoError(t, err)

	f.store.failReads.Store(true)
	s := NewSession(f.deps)
	defer s.Close()
	_, err = s.SetIdentity(ctx, models.Identity{UserID: "u1"})
	require.NoError(t, err)

	res, err := s.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Empty(t, res.Cart.Entries)
	assert.True(t, s.Stale())

	f.store.failReads.Store(false)
	res, err = s.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Equal(t, 2, quantityOf(res.Cart, p.ID))
	assert.False(t, s.Stale())

	_, err = NewSession(f.deps).Current(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCheckout_LogsCartLeftBehind(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	ctx := context.Background()

	var logs bytes.Buffer
	orders := &signOutOrders{OrderStore: f.orders}
	f.deps.Orders = orders
	f.deps.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	s := f.session(t, "u1")
	orders.session = s

	_, err := s.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)

	res, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Order.ID)
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "cart not cleared after checkout")
	assert.Equal(t, 2, f.remoteQuantity(t, "u1", p.ID))
}
