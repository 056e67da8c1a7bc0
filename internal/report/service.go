package report

import (
	"context"

	"github.com/imaginarte/gestao/internal/finance"
	"github.com/imaginarte/gestao/internal/order"
	"github.com/imaginarte/gestao/internal/product"
)

type OrderLister interface {
	List(ctx context.Context) ([]order.Order, error)
}

type ProductLister interface {
	List(ctx context.Context) ([]product.Product, error)
}

type FinanceGetter interface {
	Get(ctx context.Context) (*finance.Values, error)
}

type Service struct {
	orders   OrderLister
	products ProductLister
	finance  FinanceGetter
}

func NewService(orders OrderLister, products ProductLister, fin FinanceGetter) *Service {
	return &Service{orders: orders, products: products, finance: fin}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	fin, err := s.finance.Get(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Build(orders, products, *fin), nil
}
