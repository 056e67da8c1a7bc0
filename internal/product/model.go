package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	// Quantity is the stock on hand; MaxQuantity is the last quantity that was
	// explicitly assigned and caps restocking when orders give units back.
	Quantity    int       `json:"quantity"`
	MaxQuantity int       `json:"max_quantity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InStock reports whether at least one unit is on hand.
func (p Product) InStock() bool { return p.Quantity > 0 }

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: product not found
	Error string `json:"error"`
}

// ListResponse wraps the product listing.
// swagger:model
type ListResponse struct {
	Items []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// Price travels as a string so the form value is validated as typed.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name     string `json:"name"     example:"Caneca pintada"`
	Price    string `json:"price"    example:"35.90"`
	Quantity *int   `json:"quantity" example:"10"`
}

// UpdateProductRequest payload of update. A nil Quantity leaves stock untouched.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name     string `json:"name"     example:"Caneca pintada"`
	Price    string `json:"price"    example:"39.90"`
	Quantity *int   `json:"quantity" example:"12"`
}
