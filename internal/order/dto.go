package order

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalid marks a draft rejected before any store call.
var ErrInvalid = errors.New("invalid order")

// MaxLineQuantity is the largest quantity a line may carry, before and after
// merging; order_products.quantity is a 32-bit INTEGER.
const MaxLineQuantity = math.MaxInt32

// LineRequest payload of a draft line.
// swagger:model LineRequest
type LineRequest struct {
	ProductID string `json:"product_id" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity  int    `json:"quantity"   example:"2"`
}

// OrderRequest payload used to create or edit an order. The same product may
// appear on several lines; they are merged before persistence.
// swagger:model OrderRequest
type OrderRequest struct {
	Name        string        `json:"name"        example:"Maria - encomenda de Natal"`
	Description string        `json:"description" example:"entregar sexta"`
	Status      Status        `json:"status"      example:"pendente"`
	Items       []LineRequest `json:"items"`
}

// StatusRequest payload of a status change.
// swagger:model StatusRequest
type StatusRequest struct {
	Status Status `json:"status" example:"concluida"`
}

// ItemStatusRequest payload of a line completion toggle.
// swagger:model ItemStatusRequest
type ItemStatusRequest struct {
	Completed bool `json:"completed" example:"true"`
}

// Validate rejects drafts that must never reach the store.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalid)
	}
	for i, l := range r.Items {
		if strings.TrimSpace(l.ProductID) == "" {
			return fmt.Errorf("%w: item %d has no product", ErrInvalid, i+1)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalid, i+1)
		}
		if l.Quantity > MaxLineQuantity {
			return fmt.Errorf("%w: item %d quantity must be at most %d", ErrInvalid, i+1, MaxLineQuantity)
		}
	}
	if r.Status != "" && !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, r.Status)
	}
	return nil
}

// MergeLines folds lines for the same product into one, summing quantities and
// keeping the order in which each product first appeared. Product ids are
// compared in canonical form. Lines must have passed Validate; the merged
// quantities still need checking against MaxLineQuantity.
func MergeLines(lines []LineRequest) []Item {
	idx := make(map[string]int, len(lines))
	out := make([]Item, 0, len(lines))
	for _, l := range lines {
		id := CanonicalID(l.ProductID)
		if i, ok := idx[id]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[id] = len(out)
		out = append(out, Item{ProductID: id, Quantity: l.Quantity})
	}
	return out
}

// CanonicalID returns the lowercase hyphenated form of a uuid, or the trimmed
// input when it is not one.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
