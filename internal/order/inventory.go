package order

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// StockAdjuster moves product stock on behalf of an order mutation.
//
// Consume lowers quantity by qty, flooring at zero, and returns how many units
// could not be covered. Restock raises quantity by qty, capped at the
// product's max quantity.
type StockAdjuster interface {
	Consume(ctx context.Context, productID string, qty int) (short int, err error)
	Restock(ctx context.Context, productID string, qty int) error
}

// ApplyCreate takes the stock for a new order. Orders are accepted even when
// stock runs short; the shortfall is only logged.
func ApplyCreate(ctx context.Context, s StockAdjuster, o *Order) error {
	return consume(ctx, s, o.ID, o.Items)
}

// ApplyUpdate gives back what prev held and takes what next needs. A
// concluida order's consumption is final, so nothing moves when prev was
// already concluida.
func ApplyUpdate(ctx context.Context, s StockAdjuster, prev, next *Order) error {
	if !prev.Status.Active() {
		return nil
	}
	if err := restock(ctx, s, prev.Items); err != nil {
		return err
	}
	return consume(ctx, s, next.ID, next.Items)
}

// ApplyDelete gives back the stock of an order about to be removed.
func ApplyDelete(ctx context.Context, s StockAdjuster, prev *Order) error {
	if !prev.Status.Active() {
		return nil
	}
	return restock(ctx, s, prev.Items)
}

func consume(ctx context.Context, s StockAdjuster, orderID string, items []Item) error {
	for _, it := range items {
		short, err := s.Consume(ctx, it.ProductID, it.Quantity)
		if err != nil {
			return fmt.Errorf("consume %d of %s: %w", it.Quantity, it.ProductID, err)
		}
		if short > 0 {
			log.Warn().
				Str("order_id", orderID).
				Str("product_id", it.ProductID).
				Int("requested", it.Quantity).
				Int("short", short).
				Msg("order: stock floored at zero")
		}
	}
	return nil
}

func restock(ctx context.Context, s StockAdjuster, items []Item) error {
	for _, it := range items {
		if err := s.Restock(ctx, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("restock %d of %s: %w", it.Quantity, it.ProductID, err)
		}
	}
	return nil
}
