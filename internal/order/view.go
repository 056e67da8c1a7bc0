package order

import (
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// View is an order as the order list shows it. Money is rendered with two
// decimals here and nowhere earlier.
type View struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Items          []ItemView `json:"items"`
	OrderTotal     string     `json:"order_total"`
	PaidTotal      string     `json:"paid_total"`
	RemainingTotal string     `json:"remaining_total"`
}

type ItemView struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	LinePrice   string `json:"line_price"`
	Paid        bool   `json:"paid"`
	OutOfStock  bool   `json:"out_of_stock"`
	// Locked is set when the order is concluida and the line can no longer
	// be toggled.
	Locked bool `json:"locked"`
}

// Partition keeps the concluida orders when completed is true and every other
// order otherwise, sorted by name with Portuguese case-insensitive collation.
func Partition(orders []Order, completed bool) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if (o.Status == StatusCompleted) == completed {
			out = append(out, o)
		}
	}
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b Order) int {
		return col.CompareString(a.Name, b.Name)
	})
	return out
}

func NewView(o Order, c Catalog) View {
	v := View{
		ID:             o.ID,
		Name:           o.Name,
		Description:    o.Description,
		Status:         o.Status,
		CompletedAt:    o.CompletedAt,
		Items:          make([]ItemView, 0, len(o.Items)),
		OrderTotal:     OrderTotal(o, c).StringFixed(2),
		PaidTotal:      PaidTotal(o, c).StringFixed(2),
		RemainingTotal: RemainingTotal(o, c).StringFixed(2),
	}
	for _, it := range o.Items {
		// a product deleted from the catalog counts as out of stock
		iv := ItemView{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			LinePrice:  c.LinePrice(it).StringFixed(2),
			Paid:       o.Paid(it),
			Locked:     !o.Status.Active(),
			OutOfStock: true,
		}
		if p, ok := c[it.ProductID]; ok {
			iv.ProductName = p.Name
			iv.OutOfStock = !p.InStock()
		}
		v.Items = append(v.Items, iv)
	}
	return v
}
