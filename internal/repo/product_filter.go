package repo

import "github.com/shopspring/decimal"

type ProductFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	MinQty   *int
	MaxQty   *int
	Offset   *int
	Limit    *int
}
