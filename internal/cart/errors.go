package cart

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/repo"
)

// Kind discriminates every failure a cart operation can report.
type Kind int

const (
	KindUnauthenticated Kind = iota + 1
	KindLookupFailed
	KindOutOfStock
	KindInsufficientStock
	KindWriteFailed
	KindRemoteUnavailable
	KindInvalidQuantity
	KindNotInCart
	KindEmptyCart
)

var kindNames = map[Kind]string{
	KindUnauthenticated:   "unauthenticated",
	KindLookupFailed:      "lookup_failed",
	KindOutOfStock:        "out_of_stock",
	KindInsufficientStock: "insufficient_stock",
	KindWriteFailed:       "write_failed",
	KindRemoteUnavailable: "remote_unavailable",
	KindInvalidQuantity:   "invalid_quantity",
	KindNotInCart:         "not_in_cart",
	KindEmptyCart:         "empty_cart",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Error is returned for hard failures and carried as Result.Warning for soft ones.
type Error struct {
	Kind         Kind
	ProductID    int
	MaxAvailable int
	Err          error
}

var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrLookupFailed      = &Error{Kind: KindLookupFailed}
	ErrOutOfStock        = &Error{Kind: KindOutOfStock}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrWriteFailed       = &Error{Kind: KindWriteFailed}
	ErrRemoteUnavailable = &Error{Kind: KindRemoteUnavailable}
	ErrInvalidQuantity   = &Error{Kind: KindInvalidQuantity}
	ErrNotInCart         = &Error{Kind: KindNotInCart}
	ErrEmptyCart         = &Error{Kind: KindEmptyCart}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindUnauthenticated:
		msg = "sign in to use the cart"
	case KindLookupFailed:
		msg = "could not read product stock"
	case KindOutOfStock:
		msg = "product is out of stock"
	case KindInsufficientStock:
		msg = fmt.Sprintf("only %d more can be added", e.MaxAvailable)
	case KindWriteFailed:
		msg = "change saved on this device only"
	case KindRemoteUnavailable:
		msg = "showing saved data; store unreachable"
	case KindInvalidQuantity:
		msg = "quantity must be positive"
	case KindNotInCart:
		msg = "item is not in the cart"
	case KindEmptyCart:
		msg = "cart is empty"
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// HTTPStatus maps the kind to a response code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindLookupFailed:
		if errors.Is(e.Err, repo.ErrProductNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case KindOutOfStock, KindInsufficientStock, KindEmptyCart:
		return http.StatusConflict
	case KindInvalidQuantity:
		return http.StatusBadRequest
	case KindNotInCart:
		return http.StatusNotFound
	case KindRemoteUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func newError(kind Kind, productID int, err error) *Error {
	return &Error{Kind: kind, ProductID: productID, Err: err}
}
