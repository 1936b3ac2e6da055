package cart

import (
	"context"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type CheckoutResult struct {
	Order   models.Order `json:"order"`
	Warning *Error       `json:"-"`
}

// Checkout turns the cart into an order and clears it. Stock was taken when
// items were added, so inventory is not touched here.
func (s *Session) Checkout(ctx context.Context) (CheckoutResult, error) {
	id := s.Identity()
	if !id.Authenticated() {
		return CheckoutResult{}, ErrUnauthenticated
	}
	userID := id.UserID
	s.resync(ctx)

	cart := s.Cart()
	if len(cart.Entries) == 0 {
		e := newError(KindEmptyCart, 0, nil)
		s.deps.Notifier.Notify(userID, errorNotice(e, LevelError))
		return CheckoutResult{}, e
	}
	if s.deps.Orders == nil {
		return CheckoutResult{}, newError(KindWriteFailed, 0, nil)
	}

	order := models.Order{
		UserID: userID,
		Items:  make([]models.OrderItem, 0, len(cart.Entries)),
		Total:  cart.Subtotal(),
		Status: models.OrderStatusPlaced,
	}
	for _, e := range cart.Entries {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: e.ProductID,
			Name:      e.Product.Name,
			Quantity:  e.Quantity,
			UnitPrice: e.Product.Price,
		})
	}

	placed, err := s.deps.Orders.Create(ctx, order)
	if err != nil {
		s.deps.Logger.Error("order write failed", "user_id", userID, "error", err)
		e := newError(KindWriteFailed, 0, err)
		s.deps.Notifier.Notify(userID, errorNotice(e, LevelError))
		return CheckoutResult{}, e
	}
	s.deps.Logger.Info("order placed", "user_id", userID, "order_id", placed.ID, "total", placed.Total.StringFixed(2))

	res, err := s.ClearCart(ctx)
	if err != nil {
		s.deps.Logger.Warn("cart not cleared after checkout", "user_id", userID, "order_id", placed.ID, "error", err)
		return CheckoutResult{Order: placed}, nil
	}
	s.deps.Notifier.Notify(userID, infoNotice("Order placed", 0))
	return CheckoutResult{Order: placed, Warning: res.Warning}, nil
}
