// Package cart reconciles a signed-in user's cart and wishlist with the
// inventory ledger, falling back to a local cache when the remote store fails.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/localcache"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/realtime"
)

const refetchTimeout = 10 * time.Second

// Deps are the collaborators a Session talks to. Feed, Wishlist, Orders and
// Notifier are optional.
type Deps struct {
	Ledger     Ledger
	Store      Store
	Wishlist   WishlistStore
	Orders     OrderStore
	Cache      localcache.Cache
	Feed       ChangeFeed
	Notifier   Notifier
	StockCheck StockCheck
	Logger     *slog.Logger
}

// Result is the cart after an operation plus an optional soft failure.
type Result struct {
	Cart    models.Cart `json:"cart"`
	Warning *Error      `json:"-"`
}

// Session holds one identity's cart state. The mutex guards local state only
// and is never held across a remote call, so two concurrent additions for the
// same product both read stock before either writes.
type Session struct {
	deps  Deps
	group singleflight.Group

	mu          sync.Mutex
	identity    models.Identity
	cart        models.Cart
	wishlist    []models.WishlistEntry
	unsubscribe func()
	closed      bool
	// stale is set while the cart in memory came from the local cache
	// rather than the remote store.
	stale bool
}

func NewSession(deps Deps) *Session {
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.StockCheck == "" {
		deps.StockCheck = StockCheckRemaining
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Session{deps: deps, cart: models.NewCart("")}
}

func (s *Session) Identity() models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Cart returns a copy of the in-memory cart.
func (s *Session) Cart() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// SetIdentity moves the session to next. Switching between two users signs
// the first out before signing the second in, so carts are never merged.
func (s *Session) SetIdentity(ctx context.Context, next models.Identity) (Result, error) {
	s.mu.Lock()
	prev := s.identity
	if prev.UserID == next.UserID {
		s.identity = next
		cart := s.cart.Clone()
		s.mu.Unlock()
		return Result{Cart: cart}, nil
	}
	if prev.Authenticated() {
		s.signOutLocked()
	}
	if !next.Authenticated() {
		s.mu.Unlock()
		return Result{Cart: models.NewCart("")}, nil
	}
	s.identity = next
	s.cart = models.NewCart(next.UserID)
	s.wishlist = nil
	s.subscribeLocked(next.UserID)
	s.mu.Unlock()

	s.deps.Logger.Debug("session signed in", "user_id", next.UserID)
	return s.Refresh(ctx)
}

func (s *Session) signOutLocked() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.deps.Logger.Debug("session signed out", "user_id", s.identity.UserID)
	s.identity = models.Identity{}
	s.cart = models.NewCart("")
	s.wishlist = nil
	s.stale = false
}

func (s *Session) subscribeLocked(userID string) {
	if s.deps.Feed == nil || s.closed {
		return
	}
	f := realtime.Filter{
		Tables: []string{realtime.TableProducts, realtime.TableCartItems, realtime.TableWishlist},
		UserID: userID,
	}
	s.unsubscribe = s.deps.Feed.Subscribe(f, func(realtime.Change) {
		go s.refetch(userID)
	})
}

func (s *Session) refetch(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
	defer cancel()

	if s.Identity().UserID != userID {
		return
	}
	if _, err := s.Refresh(ctx); err != nil {
		s.deps.Logger.Debug("refetch skipped", "user_id", userID, "error", err)
	}
}

// Refresh re-reads the cart and wishlist from the remote store. Concurrent
// calls share one read. When the store is unreachable the last cached copy
// is used and a RemoteUnavailable warning is returned.
func (s *Session) Refresh(ctx context.Context) (Result, error) {
	id := s.Identity()
	if !id.Authenticated() {
		return Result{}, ErrUnauthenticated
	}

	v, _, _ := s.group.Do(id.UserID, func() (any, error) {
		return s.fetch(ctx, id.UserID), nil
	})
	return v.(Result), nil
}

// Current returns the cart, re-reading it first when the last read was
// served from the local cache.
func (s *Session) Current(ctx context.Context) (Result, error) {
	if !s.Identity().Authenticated() {
		return Result{}, ErrUnauthenticated
	}
	if s.Stale() {
		return s.Refresh(ctx)
	}
	return Result{Cart: s.Cart()}, nil
}

// Stale reports whether the cart in memory is a local fallback copy.
func (s *Session) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// resync retries the remote read before a write when the session is running
// on a fallback copy. Writes are absolute, so starting from the cached copy
// would overwrite rows the store still holds.
func (s *Session) resync(ctx context.Context) {
	if s.Stale() {
		_, _ = s.Refresh(ctx)
	}
}

func (s *Session) fetch(ctx context.Context, userID string) Result {
	var warning *Error

	cart := models.NewCart(userID)
	entries, err := s.deps.Store.GetByUser(ctx, userID)
	if err != nil {
		s.deps.Logger.Warn("cart fetch failed, using local cache", "user_id", userID, "error", err)
		warning = newError(KindRemoteUnavailable, 0, err)
		cart = s.cachedCart(ctx, userID)
	} else {
		cart.Entries = entries
		s.mirrorCart(ctx, cart)
	}

	var wishlist []models.WishlistEntry
	if s.deps.Wishlist != nil {
		wishlist, err = s.deps.Wishlist.GetByUser(ctx, userID)
		if err != nil {
			s.deps.Logger.Warn("wishlist fetch failed, using local cache", "user_id", userID, "error", err)
			if warning == nil {
				warning = newError(KindRemoteUnavailable, 0, err)
			}
			wishlist = s.cachedWishlist(ctx, userID)
		} else {
			s.mirrorWishlist(ctx, userID, wishlist)
		}
	}

	s.mu.Lock()
	if s.identity.UserID != userID {
		// Signed out while the read was in flight.
		s.mu.Unlock()
		return Result{Cart: models.NewCart("")}
	}
	s.cart = cart
	s.wishlist = wishlist
	s.stale = warning != nil
	out := s.cart.Clone()
	s.mu.Unlock()

	if warning != nil {
		s.deps.Notifier.Notify(userID, errorNotice(warning, LevelWarning))
	}
	s.deps.Notifier.CartChanged(userID, out)
	return Result{Cart: out, Warning: warning}
}

func (s *Session) cachedCart(ctx context.Context, userID string) models.Cart {
	if s.deps.Cache == nil {
		return models.NewCart(userID)
	}
	cart, err := localcache.GetJSON[models.Cart](ctx, s.deps.Cache, localcache.CartKey(userID))
	if err != nil {
		if !errors.Is(err, localcache.ErrMiss) {
			s.deps.Logger.Warn("local cart unreadable", "user_id", userID, "error", err)
		}
		return models.NewCart(userID)
	}
	cart.UserID = userID
	if cart.Entries == nil {
		cart.Entries = []models.CartEntry{}
	}
	return cart
}

func (s *Session) cachedWishlist(ctx context.Context, userID string) []models.WishlistEntry {
	if s.deps.Cache == nil {
		return nil
	}
	wl, err := localcache.GetJSON[[]models.WishlistEntry](ctx, s.deps.Cache, localcache.WishlistKey(userID))
	if err != nil {
		if !errors.Is(err, localcache.ErrMiss) {
			s.deps.Logger.Warn("local wishlist unreadable", "user_id", userID, "error", err)
		}
		return nil
	}
	return wl
}

func (s *Session) mirrorCart(ctx context.Context, cart models.Cart) {
	if s.deps.Cache == nil {
		return
	}
	if err := localcache.SetJSON(ctx, s.deps.Cache, localcache.CartKey(cart.UserID), cart); err != nil {
		s.deps.Logger.Warn("local cart mirror failed", "user_id", cart.UserID, "error", err)
	}
}

func (s *Session) mirrorWishlist(ctx context.Context, userID string, wl []models.WishlistEntry) {
	if s.deps.Cache == nil {
		return
	}
	if wl == nil {
		wl = []models.WishlistEntry{}
	}
	if err := localcache.SetJSON(ctx, s.deps.Cache, localcache.WishlistKey(userID), wl); err != nil {
		s.deps.Logger.Warn("local wishlist mirror failed", "user_id", userID, "error", err)
	}
}

// update applies fn to the cart if the session still belongs to userID,
// then mirrors and publishes the result.
func (s *Session) update(ctx context.Context, userID string, fn func(c *models.Cart)) models.Cart {
	s.mu.Lock()
	if s.identity.UserID != userID {
		s.mu.Unlock()
		return models.NewCart("")
	}
	fn(&s.cart)
	out := s.cart.Clone()
	s.mu.Unlock()

	s.mirrorCart(ctx, out)
	s.deps.Notifier.CartChanged(userID, out)
	return out
}

// Close drops the change subscription. The session must not be used afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.closed = true
}
