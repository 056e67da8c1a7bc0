package order

import (
	"github.com/shopspring/decimal"

	"github.com/imaginarte/gestao/internal/product"
)

// Catalog indexes products by id for price and stock lookups.
type Catalog map[string]product.Product

func NewCatalog(products []product.Product) Catalog {
	c := make(Catalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

// LinePrice is price × quantity, or zero when the product no longer exists.
func (c Catalog) LinePrice(it Item) decimal.Decimal {
	p, ok := c[it.ProductID]
	if !ok {
		return decimal.Zero
	}
	return p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func OrderTotal(o Order, c Catalog) decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(c.LinePrice(it))
	}
	return total
}

func PaidTotal(o Order, c Catalog) decimal.Decimal {
	if o.Status == StatusCompleted {
		return OrderTotal(o, c)
	}
	paid := decimal.Zero
	for _, it := range o.Items {
		if it.Completed {
			paid = paid.Add(c.LinePrice(it))
		}
	}
	return paid
}

func RemainingTotal(o Order, c Catalog) decimal.Decimal {
	return OrderTotal(o, c).Sub(PaidTotal(o, c))
}
