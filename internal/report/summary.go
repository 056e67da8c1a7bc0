// Package report aggregates order totals and the manual cash figures into
// the grand totals panel.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/imaginarte/gestao/internal/finance"
	"github.com/imaginarte/gestao/internal/order"
	"github.com/imaginarte/gestao/internal/product"
)

// Summary holds unrounded sums; Render produces the two-decimal view.
type Summary struct {
	OrderTotal     decimal.Decimal
	PaidTotal      decimal.Decimal
	RemainingTotal decimal.Decimal
	Banco          decimal.Decimal
	Casa           decimal.Decimal
	// GrandTotal is what is still to be received plus the cash on hand.
	GrandTotal decimal.Decimal
	Orders     int
	Active     int
}

type SummaryView struct {
	OrderTotal     string `json:"order_total"`
	PaidTotal      string `json:"paid_total"`
	RemainingTotal string `json:"remaining_total"`
	Banco          string `json:"banco"`
	Casa           string `json:"casa"`
	GrandTotal     string `json:"grand_total"`
	Orders         int    `json:"orders"`
	ActiveOrders   int    `json:"active_orders"`
}

func Build(orders []order.Order, products []product.Product, fin finance.Values) Summary {
	cat := order.NewCatalog(products)
	s := Summary{
		OrderTotal:     decimal.Zero,
		PaidTotal:      decimal.Zero,
		RemainingTotal: decimal.Zero,
		Banco:          fin.Banco,
		Casa:           fin.Casa,
		Orders:         len(orders),
	}
	for _, o := range orders {
		s.OrderTotal = s.OrderTotal.Add(order.OrderTotal(o, cat))
		s.PaidTotal = s.PaidTotal.Add(order.PaidTotal(o, cat))
		s.RemainingTotal = s.RemainingTotal.Add(order.RemainingTotal(o, cat))
		if o.Status.Active() {
			s.Active++
		}
	}
	s.GrandTotal = s.RemainingTotal.Add(fin.Banco).Add(fin.Casa)
	return s
}

func (s Summary) Render() SummaryView {
	return SummaryView{
		OrderTotal:     s.OrderTotal.StringFixed(2),
		PaidTotal:      s.PaidTotal.StringFixed(2),
		RemainingTotal: s.RemainingTotal.StringFixed(2),
		Banco:          s.Banco.StringFixed(2),
		Casa:           s.Casa.StringFixed(2),
		GrandTotal:     s.GrandTotal.StringFixed(2),
		Orders:         s.Orders,
		ActiveOrders:   s.Active,
	}
}
