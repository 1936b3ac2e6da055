package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/auth"
	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResult struct {
	User   models.User `json:"user"`
	Tokens auth.Tokens `json:"tokens"`
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	Category    string          `json:"category" validate:"max=100"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Rating      *float64        `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Threshold   int             `json:"threshold" validate:"gte=0"`
}

type ProductResponse struct {
	models.Product
	LowStock bool `json:"low_stock,omitempty"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{Product: p, LowStock: p.LowStock()}
}

func toProductResponses(ps []models.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i, p := range ps {
		out[i] = toProductResponse(p)
	}
	return out
}

type Meta struct {
	TotalCount int `json:"total_count"`
}

type ProductsSearchResult struct {
	Data []ProductResponse `json:"data"`
	Meta Meta              `json:"meta"`
}

type QuantityAdjustmentRequest struct {
	Delta  int    `json:"delta" validate:"ne=0"` // can be positive or negative
	Reason string `json:"reason" validate:"max=100"`
}

type MovementsSearchResult struct {
	Data []models.Movement `json:"data"`
	Meta Meta              `json:"meta"`
}

type ImportProductsResult struct {
	ImportedProductsCount int               `json:"imported"`
	Errors                []ValidationError `json:"errors"`
}

type AddToCartRequest struct {
	ProductID int  `json:"product_id" validate:"required,gt=0"`
	Quantity  *int `json:"quantity,omitempty"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// Warning describes a soft failure: the request succeeded locally but the
// remote store lagged behind.
type Warning struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	ProductID int    `json:"product_id,omitempty"`
}

type CartResponse struct {
	Cart      models.Cart `json:"cart"`
	ItemCount int         `json:"item_count"`
	Subtotal  string      `json:"subtotal"`
	Warning   *Warning    `json:"warning,omitempty"`
}

type WishlistResponse struct {
	Items   []models.WishlistEntry `json:"items"`
	Warning *Warning               `json:"warning,omitempty"`
}

type CheckoutResponse struct {
	Order   models.Order `json:"order"`
	Warning *Warning     `json:"warning,omitempty"`
}

type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
