package cart

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

// WishlistResult is the wishlist after an operation plus an optional soft failure.
type WishlistResult struct {
	Wishlist []models.WishlistEntry `json:"wishlist"`
	Warning  *Error                 `json:"-"`
}

func (s *Session) Wishlist() []models.WishlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.wishlist)
}

func (s *Session) InWishlist(productID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.ContainsFunc(s.wishlist, func(e models.WishlistEntry) bool { return e.ProductID == productID })
}

// AddToWishlist adds a product once; adding it again changes nothing.
func (s *Session) AddToWishlist(ctx context.Context, productID int) (WishlistResult, error) {
	id := s.Identity()
	if !id.Authenticated() {
		return WishlistResult{}, ErrUnauthenticated
	}
	userID := id.UserID
	s.resync(ctx)

	if s.InWishlist(productID) {
		return WishlistResult{Wishlist: s.Wishlist()}, nil
	}

	product, err := s.deps.Ledger.Get(ctx, productID)
	if err != nil {
		e := newError(KindLookupFailed, productID, err)
		s.deps.Notifier.Notify(userID, errorNotice(e, LevelError))
		return WishlistResult{}, e
	}

	entry := models.WishlistEntry{ProductID: productID, Product: product.Snapshot(), AddedAt: time.Now().UTC()}

	var warning *Error
	if s.deps.Wishlist != nil {
		saved, err := s.deps.Wishlist.Add(ctx, userID, entry)
		if err != nil {
			s.deps.Logger.Warn("wishlist write failed, keeping change locally", "user_id", userID, "product_id", productID, "error", err)
			warning = s.warn(userID, newError(KindWriteFailed, productID, err))
		} else {
			entry = saved
		}
	}

	wl := s.updateWishlist(ctx, userID, func(wl []models.WishlistEntry) []models.WishlistEntry {
		if slices.ContainsFunc(wl, func(e models.WishlistEntry) bool { return e.ProductID == productID }) {
			return wl
		}
		return append(wl, entry)
	})
	if warning == nil {
		s.deps.Notifier.Notify(userID, infoNotice(product.Name+" added to wishlist", productID))
	}
	return WishlistResult{Wishlist: wl, Warning: warning}, nil
}

// RemoveFromWishlist is idempotent.
func (s *Session) RemoveFromWishlist(ctx context.Context, productID int) (WishlistResult, error) {
	id := s.Identity()
	if !id.Authenticated() {
		return WishlistResult{}, ErrUnauthenticated
	}
	userID := id.UserID
	s.resync(ctx)

	var warning *Error
	if s.deps.Wishlist != nil {
		err := s.deps.Wishlist.Remove(ctx, userID, productID)
		if err != nil && !errors.Is(err, repo.ErrWishlistEntryNotFound) {
			s.deps.Logger.Warn("wishlist delete failed, removing locally", "user_id", userID, "product_id", productID, "error", err)
			warning = s.warn(userID, newError(KindWriteFailed, productID, err))
		}
	}

	wl := s.updateWishlist(ctx, userID, func(wl []models.WishlistEntry) []models.WishlistEntry {
		return slices.DeleteFunc(wl, func(e models.WishlistEntry) bool { return e.ProductID == productID })
	})
	return WishlistResult{Wishlist: wl, Warning: warning}, nil
}

func (s *Session) updateWishlist(ctx context.Context, userID string, fn func([]models.WishlistEntry) []models.WishlistEntry) []models.WishlistEntry {
	s.mu.Lock()
	if s.identity.UserID != userID {
		s.mu.Unlock()
		return []models.WishlistEntry{}
	}
	s.wishlist = fn(s.wishlist)
	out := slices.Clone(s.wishlist)
	s.mu.Unlock()

	if out == nil {
		out = []models.WishlistEntry{}
	}
	s.mirrorWishlist(ctx, userID, out)
	return out
}
