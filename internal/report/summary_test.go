package report

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaginarte/gestao/internal/finance"
	"github.com/imaginarte/gestao/internal/order"
	"github.com/imaginarte/gestao/internal/product"
)

var (
	products = []product.Product{
		{ID: "p", Name: "Caneca", Price: decimal.RequireFromString("10.00")},
		{ID: "q", Name: "Quadro", Price: decimal.RequireFromString("2.50")},
	}
	orders = []order.Order{
		{ID: "1", Status: order.StatusPending, Items: []order.Item{{ProductID: "p", Quantity: 2}, {ProductID: "q", Quantity: 2, Completed: true}}},
		{ID: "2", Status: order.StatusCompleted, Items: []order.Item{{ProductID: "p", Quantity: 1}}},
	}
	cash = finance.Values{ID: 1, Banco: decimal.RequireFromString("100.10"), Casa: decimal.RequireFromString("0.20")}
)

func TestBuild(t *testing.T) {
	s := Build(orders, products, cash)

	assert.Equal(t, "35.00", s.OrderTotal.StringFixed(2))
	assert.Equal(t, "15.00", s.PaidTotal.StringFixed(2))
	assert.Equal(t, "20.00", s.RemainingTotal.StringFixed(2))
	assert.Equal(t, "120.30", s.GrandTotal.StringFixed(2))
	assert.Equal(t, 2, s.Orders)
	assert.Equal(t, 1, s.Active)
	assert.True(t, s.PaidTotal.Add(s.RemainingTotal).Equal(s.OrderTotal))
}

func TestBuild_Empty(t *testing.T) {
	v := Build(nil, nil, finance.Values{}).Render()
	assert.Equal(t, SummaryView{
		OrderTotal:     "0.00",
		PaidTotal:      "0.00",
		RemainingTotal: "0.00",
		Banco:          "0.00",
		Casa:           "0.00",
		GrandTotal:     "0.00",
	}, v)
}

type stubOrders []order.Order

func (s stubOrders) List(context.Context) ([]order.Order, error) { return s, nil }

type stubProducts []product.Product

func (s stubProducts) List(context.Context) ([]product.Product, error) { return s, nil }

type stubFinance finance.Values

func (s stubFinance) Get(context.Context) (*finance.Values, error) {
	v := finance.Values(s)
	return &v, nil
}

func TestService_Summary(t *testing.T) {
	svc := NewService(stubOrders(orders), stubProducts(products), stubFinance(cash))

	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	v := s.Render()
	assert.Equal(t, "120.30", v.GrandTotal)
	assert.Equal(t, 1, v.ActiveOrders)
}
