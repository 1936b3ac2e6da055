package cart

import "fmt"

// StockCheck selects how a requested addition is compared with inventory_count.
type StockCheck string

const (
	// StockCheckRemaining treats inventory_count as stock left after existing
	// cart holds, which were already decremented when added.
	StockCheckRemaining StockCheck = "remaining"
	// StockCheckCumulative compares existing plus requested quantity with
	// inventory_count.
	StockCheckCumulative StockCheck = "cumulative"
)

func ParseStockCheck(s string) (StockCheck, error) {
	switch StockCheck(s) {
	case "", StockCheckRemaining:
		return StockCheckRemaining, nil
	case StockCheckCumulative:
		return StockCheckCumulative, nil
	}
	return "", fmt.Errorf("unknown stock check %q", s)
}

// check returns nil when requested more units may join existing ones.
func (c StockCheck) check(productID, inventory, existing, requested int) *Error {
	if inventory <= 0 {
		return &Error{Kind: KindOutOfStock, ProductID: productID}
	}

	if c == StockCheckCumulative {
		if inventory < existing+requested {
			return &Error{Kind: KindInsufficientStock, ProductID: productID, MaxAvailable: max(inventory-existing, 0)}
		}
		return nil
	}

	if inventory < requested {
		return &Error{Kind: KindInsufficientStock, ProductID: productID, MaxAvailable: inventory}
	}
	return nil
}
