package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

// fail reports a hard failure to the user and returns it.
func (s *Session) fail(userID string, e *Error) (Result, error) {
	if userID != "" {
		s.deps.Notifier.Notify(userID, errorNotice(e, LevelError))
	}
	return Result{}, e
}

func (s *Session) warn(userID string, e *Error) *Error {
	s.deps.Notifier.Notify(userID, errorNotice(e, LevelWarning))
	return e
}

// AddToCart adds qty units of a product. Stock is read first; if it allows
// the addition the cart row is written and only then inventory is
// decremented. A failed cart write keeps the change locally and skips the
// decrement. A failed decrement after a successful cart write is logged and
// reported as a warning; it is not compensated.
func (s *Session) AddToCart(ctx context.Context, productID, qty int) (Result, error) {
	id := s.Identity()
	if !id.Authenticated() {
		return Result{}, ErrUnauthenticated
	}
	userID := id.UserID
	if qty <= 0 {
		return s.fail(userID, newError(KindInvalidQuantity, productID, nil))
	}
	s.resync(ctx)

	product, err := s.deps.Ledger.Get(ctx, productID)
	if err != nil {
		s.deps.Logger.Warn("stock lookup failed", "user_id", userID, "product_id", productID, "error", err)
		return s.fail(userID, newError(KindLookupFailed, productID, err))
	}

	s.mu.Lock()
	existing, found := s.cart.ByProduct(productID)
	s.mu.Unlock()

	if e := s.deps.StockCheck.check(productID, product.InventoryCount, existing.Quantity, qty); e != nil {
		return s.fail(userID, e)
	}

	entry := models.CartEntry{
		UserID:    userID,
		ProductID: productID,
		Quantity:  existing.Quantity + qty,
		Product:   product.Snapshot(),
	}
	if found {
		entry.ID = existing.ID
		entry.Product = existing.Product
		entry.AddedAt = existing.AddedAt
	}

	var warning *Error
	saved, err := s.deps.Store.Upsert(ctx, entry)
	if err != nil {
		s.deps.Logger.Warn("cart write failed, keeping change locally",
			"user_id", userID, "product_id", productID, "error", err)
		warning = s.warn(userID, newError(KindWriteFailed, productID, err))
		saved = localEntry(entry)
	}

	cart := s.update(ctx, userID, func(c *models.Cart) { c.Upsert(saved) })
	if warning != nil {
		return Result{Cart: cart, Warning: warning}, nil
	}

	if _, err := s.deps.Ledger.Decrement(ctx, productID, qty, models.ReasonCartAdd); err != nil {
		s.deps.Logger.Warn("inventory decrement failed after cart write",
			"user_id", userID, "product_id", productID, "quantity", qty, "error", err)
		warning = s.warn(userID, newError(KindWriteFailed, productID, err))
		return Result{Cart: cart, Warning: warning}, nil
	}

	s.deps.Notifier.Notify(userID, infoNotice(product.Name+" added to cart", productID))
	return Result{Cart: cart}, nil
}

func localEntry(e models.CartEntry) models.CartEntry {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.AddedAt.IsZero() {
		e.AddedAt = now
	}
	e.UpdatedAt = now
	return e
}

// UpdateQuantity persists a new quantity without re-checking stock; callers
// bound it by the last known inventory. A quantity of zero or less removes
// the entry.
func (s *Session) UpdateQuantity(ctx context.Context, entryID string, quantity int) (Result, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, entryID)
	}

	id := s.Identity()
	if !id.Authenticated() {
		return Result{}, ErrUnauthenticated
	}
	userID := id.UserID
	s.resync(ctx)

	s.mu.Lock()
	entry, ok := s.cart.ByID(entryID)
	s.mu.Unlock()
	if !ok {
		return s.fail(userID, newError(KindNotInCart, 0, nil))
	}

	var warning *Error
	saved, err := s.deps.Store.UpdateQuantity(ctx, userID, entryID, quantity)
	if err != nil {
		s.deps.Logger.Warn("cart quantity write failed, keeping change locally",
			"user_id", userID, "entry_id", entryID, "error", err)
		warning = s.warn(userID, newError(KindWriteFailed, entry.ProductID, err))
		entry.Quantity = quantity
		saved = localEntry(entry)
	}

	cart := s.update(ctx, userID, func(c *models.Cart) { c.Upsert(saved) })
	if warning == nil {
		s.deps.Notifier.Notify(userID, infoNotice("Quantity updated", entry.ProductID))
	}
	return Result{Cart: cart, Warning: warning}, nil
}

// RemoveFromCart deletes one entry. Inventory is not restored. Removing an
// entry that is already gone is a silent no-op.
func (s *Session) RemoveFromCart(ctx context.Context, entryID string) (Result, error) {
	id := s.Identity()
	if !id.Authenticated() {
		return Result{}, ErrUnauthenticated
	}
	userID := id.UserID
	s.resync(ctx)

	var warning *Error
	err := s.deps.Store.Delete(ctx, userID, entryID)
	if err != nil && !errors.Is(err, repo.ErrCartEntryNotFound) {
		s.deps.Logger.Warn("cart delete failed, removing locally", "user_id", userID, "entry_id", entryID, "error", err)
		warning = s.warn(userID, newError(KindWriteFailed, 0, err))
	}

	removed := false
	cart := s.update(ctx, userID, func(c *models.Cart) { removed = c.Remove(entryID) })
	if removed && warning == nil {
		s.deps.Notifier.Notify(userID, infoNotice("Removed from cart", 0))
	}
	return Result{Cart: cart, Warning: warning}, nil
}

// ClearCart deletes every entry for the user. Inventory is not restored.
func (s *Session) ClearCart(ctx context.Context) (Result, error) {
	id := s.Identity()
	if !id.Authenticated() {
		return Result{}, ErrUnauthenticated
	}
	userID := id.UserID
	s.resync(ctx)

	var warning *Error
	if err := s.deps.Store.Clear(ctx, userID); err != nil {
		s.deps.Logger.Warn("cart clear failed, clearing locally", "user_id", userID, "error", err)
		warning = s.warn(userID, newError(KindWriteFailed, 0, err))
	}

	cart := s.update(ctx, userID, func(c *models.Cart) { c.Entries = []models.CartEntry{} })
	if warning == nil {
		s.deps.Notifier.Notify(userID, infoNotice("Cart cleared", 0))
	}
	return Result{Cart: cart, Warning: warning}, nil
}
