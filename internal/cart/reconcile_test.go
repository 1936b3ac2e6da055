package cart

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/localcache"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

func TestAddToCart_Scenarios(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	// A: empty cart, stock 5, add 3.
	res, err := s.AddToCart(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Equal(t, 3, quantityOf(res.Cart, p.ID))
	assert.Equal(t, 2, f.stock(t, p.ID))

	// C: holding 3 with stock 2, add 5.
	_, err = s.AddToCart(ctx, p.ID, 5)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindInsufficientStock, cerr.Kind)
	assert.Equal(t, 2, cerr.MaxAvailable)
	assert.Equal(t, 3, quantityOf(s.Cart(), p.ID))
	assert.Equal(t, 2, f.stock(t, p.ID))
	assert.Equal(t, LevelError, f.notes.last().Level)

	// B: holding 3 with stock 2, add 1.
	res, err = s.AddToCart(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, quantityOf(res.Cart, p.ID))
	assert.Equal(t, 1, f.stock(t, p.ID))
	assert.Len(t, res.Cart.Entries, 1)

	stored, err := f.store.InMemoryCartRepository.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 4, stored[0].Quantity)

	cached, err := localcache.GetJSON[models.Cart](ctx, f.cache, localcache.CartKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, 4, quantityOf(cached, p.ID))
	assert.Equal(t, LevelInfo, f.notes.last().Level)
}

func TestAddToCart_CumulativeCheck(t *testing.T) {
	f := newFixture(t, StockCheckCumulative)
	p := f.product(t, "Wool Scarf", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	_, err := s.AddToCart(ctx, p.ID, 6)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 5, cerr.MaxAvailable)

	_, err = s.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, p.ID))

	_, err = s.AddToCart(ctx, p.ID, 2)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindInsufficientStock, cerr.Kind)
	assert.Equal(t, 1, cerr.MaxAvailable)

	_, err = s.AddToCart(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, quantityOf(s.Cart(), p.ID))
	assert.Equal(t, 2, f.stock(t, p.ID))

	// Holding 3 with stock 2: nothing more fits.
	_, err = s.AddToCart(ctx, p.ID, 1)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 0, cerr.MaxAvailable)
	assert.Equal(t, 3, quantityOf(s.Cart(), p.ID))
	assert.Equal(t, 2, f.stock(t, p.ID))
}

func TestAddToCart_OutOfStock(t *testing.T) {
	for _, check := range []StockCheck{StockCheckRemaining, StockCheckCumulative} {
		t.Run(string(check), func(t *testing.T) {
			f := newFixture(t, check)
			p := f.product(t, "Canvas Tote", 0)
			s := f.session(t, "u1")

			for _, q := range []int{1, 3, 100} {
				_, err := s.AddToCart(context.Background(), p.ID, q)
				assert.ErrorIs(t, err, ErrOutOfStock)
			}
			assert.Empty(t, s.Cart().Entries)
			assert.Equal(t, 0, f.stock(t, p.ID))
		})
	}
}

func TestAddToCart_Unauthenticated(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "")

	_, err := s.AddToCart(context.Background(), p.ID, 1)
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, int32(0), f.ledger.gets.Load(), "no remote read for anonymous callers")
	assert.Equal(t, 5, f.stock(t, p.ID))

	for _, op := range []func() error{
		func() error { _, err := s.UpdateQuantity(context.Background(), "e", 2); return err },
		func() error { _, err := s.RemoveFromCart(context.Background(), "e"); return err },
		func() error { _, err := s.ClearCart(context.Background()); return err },
		func() error { _, err := s.Refresh(context.Background()); return err },
		func() error { _, err := s.Checkout(context.Background()); return err },
		func() error { _, err := s.AddToWishlist(context.Background(), p.ID); return err },
	} {
		assert.ErrorIs(t, op(), ErrUnauthenticated)
	}
}

func TestAddToCart_LookupFailed(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	f.ledger.failGet.Store(true)
	_, err := s.AddToCart(ctx, p.ID, 1)
	var cerr *Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindLookupFailed, cerr.Kind)
	assert.Equal(t, http.StatusBadGateway, cerr.HTTPStatus())
	assert.Empty(t, s.Cart().Entries)
	assert.Equal(t, 5, f.stock(t, p.ID))

	f.ledger.failGet.Store(false)
	_, err = s.AddToCart(ctx, 999, 1)
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, repo.ErrProductNotFound)
	assert.Equal(t, http.StatusNotFound, cerr.HTTPStatus())

	_, err = s.AddToCart(ctx, p.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddToCart_WriteFailedKeepsLocalChange(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	f.store.failWrites.Store(true)
	res, err := s.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, KindWriteFailed, res.Warning.Kind)
	assert.Equal(t, 2, quantityOf(res.Cart, p.ID))
	assert.NotEmpty(t, res.Cart.Entries[0].ID)
	assert.Equal(t, 5, f.stock(t, p.ID), "inventory untouched when the cart write fails")
	assert.Equal(t, LevelWarning, f.notes.last().Level)

	cached, err := localcache.GetJSON[models.Cart](ctx, f.cache, localcache.CartKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, 2, quantityOf(cached, p.ID))
}

func TestAddToCart_DecrementFailureLeavesCartWritten(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	f.ledger.failDecrement.Store(true)
	res, err := s.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, KindWriteFailed, res.Warning.Kind)
	assert.Equal(t, 5, f.stock(t, p.ID))

	stored, err := f.store.InMemoryCartRepository.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].Quantity)
}

func TestAddToCart_InventoryNeverNegative(t *testing.T) {
	for _, check := range []StockCheck{StockCheckRemaining, StockCheckCumulative} {
		t.Run(string(check), func(t *testing.T) {
			f := newFixture(t, check)
			rng := rand.New(rand.NewPCG(1, 2))
			var products []models.Product
			for _, name := range []string{"a", "b", "c"} {
				products = append(products, f.product(t, name, rng.IntN(8)))
			}
			sessions := []*Session{f.session(t, "u1"), f.session(t, "u2")}
			ctx := context.Background()

			for range 200 {
				p := products[rng.IntN(len(products))]
				s := sessions[rng.IntN(len(sessions))]
				before := f.stock(t, p.ID)
				q := 1 + rng.IntN(4)

				_, err := s.AddToCart(ctx, p.ID, q)
				after := f.stock(t, p.ID)
				require.GreaterOrEqual(t, after, 0)
				if err != nil {
					var cerr *Error
					require.ErrorAs(t, err, &cerr)
					assert.Equal(t, before, after)
					continue
				}
				assert.Equal(t, before-q, after)
			}
		})
	}
}

func TestAddToCart_ConcurrentAddsNeverOversell(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")

	var (
		wg              sync.WaitGroup
		taken, unpaired atomic.Int32
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.AddToCart(context.Background(), p.ID, 1)
			switch {
			case err != nil:
				var cerr *Error
				assert.True(t, errors.As(err, &cerr))
			case res.Warning != nil:
				// Cart row written, decrement refused by the stock guard.
				assert.Equal(t, KindWriteFailed, res.Warning.Kind)
				unpaired.Add(1)
			default:
				taken.Add(1)
			}
		}()
	}
	wg.Wait()

	remaining := f.stock(t, p.ID)
	require.GreaterOrEqual(t, remaining, 0)
	assert.Equal(t, 5-remaining, int(taken.Load()), "every clean add took exactly one unit")

	// Adds racing on the same line read the same starting quantity and can
	// collapse into one write. The cart never holds more than was written.
	qty := f.remoteQuantity(t, "u1", p.ID)
	assert.Positive(t, qty)
	assert.LessOrEqual(t, qty, int(taken.Load()+unpaired.Load()))
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	res, err := s.AddToCart(ctx, p.ID, 1)
	require.NoError(t, err)
	entryID := res.Cart.Entries[0].ID

	// No stock re-check on quantity edits.
	res, err = s.UpdateQuantity(ctx, entryID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, quantityOf(res.Cart, p.ID))
	assert.Equal(t, 4, f.stock(t, p.ID))

	f.store.failWrites.Store(true)
	res, err = s.UpdateQuantity(ctx, entryID, 7)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, 7, quantityOf(res.Cart, p.ID))
	f.store.failWrites.Store(false)

	_, err = s.UpdateQuantity(ctx, "missing", 2)
	assert.ErrorIs(t, err, ErrNotInCart)

	res, err = s.UpdateQuantity(ctx, entryID, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Cart.Entries)
}

func TestRemoveFromCart_Idempotent(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	res, err := s.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)
	entryID := res.Cart.Entries[0].ID

	for range 2 {
		res, err = s.RemoveFromCart(ctx, entryID)
		require.NoError(t, err)
		assert.Nil(t, res.Warning)
		assert.Empty(t, res.Cart.Entries)
	}
	assert.Equal(t, 3, f.stock(t, p.ID), "removal does not restock")
}

func TestRemoveFromCart_RemoteFailureStillRemovesLocally(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	p := f.product(t, "Linen Shirt", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	res, err := s.AddToCart(ctx, p.ID, 2)
	require.NoError(t, err)

	f.store.failWrites.Store(true)
	res, err = s.RemoveFromCart(ctx, res.Cart.Entries[0].ID)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, KindWriteFailed, res.Warning.Kind)
	assert.Empty(t, s.Cart().Entries)

	// The next full refresh brings the remote row back.
	f.store.failWrites.Store(false)
	res, err = s.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, quantityOf(res.Cart, p.ID))
}

func TestClearCart_ThenRefreshIsEmpty(t *testing.T) {
	f := newFixture(t, StockCheckRemaining)
	a := f.product(t, "a", 5)
	b := f.product(t, "b", 5)
	s := f.session(t, "u1")
	ctx := context.Background()

	_, err := s.AddToCart(ctx, a.ID, 1)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, b.ID, 2)
	require.NoError(t, err)

	res, err := s.ClearCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Cart.Entries)

	res, err = s.Refresh(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Cart.Entries)
	assert.Nil(t, res.Warning)
}

func TestError_KindsAndStatus(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{&Error{Kind: KindLookupFailed, Err: errRemoteDown}, http.StatusBadGateway},
		{&Error{Kind: KindLookupFailed, Err: repo.ErrProductNotFound}, http.StatusNotFound},
		{&Error{Kind: KindOutOfStock}, http.StatusConflict},
		{&Error{Kind: KindInsufficientStock, MaxAvailable: 2}, http.StatusConflict},
		{ErrInvalidQuantity, http.StatusBadRequest},
		{ErrNotInCart, http.StatusNotFound},
		{ErrEmptyCart, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
			assert.ErrorIs(t, tt.err, &Error{Kind: tt.err.Kind})
		})
	}

	assert.NotErrorIs(t, ErrOutOfStock, ErrInsufficientStock)
	assert.Equal(t, "only 2 more can be added", (&Error{Kind: KindInsufficientStock, MaxAvailable: 2}).Error())
}
