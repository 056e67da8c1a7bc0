package finance

import "github.com/shopspring/decimal"

// Values holds the two cash positions typed in by hand: money in the bank
// account (banco) and money kept at the shop (casa).
type Values struct {
	ID    int             `json:"id,omitempty"`
	Banco decimal.Decimal `json:"banco"`
	Casa  decimal.Decimal `json:"casa"`
}

// UpdateRequest payload of the cash figures. Both fields accept JSON numbers
// or strings.
// swagger:model UpdateFinancialValuesRequest
type UpdateRequest struct {
	Banco decimal.Decimal `json:"banco" example:"1250.00"`
	Casa  decimal.Decimal `json:"casa"  example:"310.50"`
}
