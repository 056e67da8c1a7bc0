package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imaginarte/gestao/internal/product"
)

// ProductLister is the slice of the catalog the order service reads.
type ProductLister interface {
	List(ctx context.Context) ([]product.Product, error)
}

type Service struct {
	repo     Repository
	products ProductLister
}

func NewService(repo Repository, products ProductLister) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("order: list failed")
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

// ListView returns one partition of the order list (concluida or not) with
// computed totals.
func (s *Service) ListView(ctx context.Context, completed bool) ([]View, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	part := Partition(orders, completed)
	out := make([]View, 0, len(part))
	for _, o := range part {
		out = append(out, NewView(o, cat))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("order_id", id).Msg("order: get failed")
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) Create(ctx context.Context, req OrderRequest) (*Order, error) {
	items, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	o := &Order{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Status:      req.Status,
		Items:       items,
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Str("name", o.Name).Msg("order: create failed")
		return nil, fmt.Errorf("create order: %w", err)
	}
	log.Info().Str("order_id", o.ID).Str("status", o.Status.String()).Int("items", len(o.Items)).Msg("order created")
	return o, nil
}

// Update replaces name, description and items. The status is kept unless the
// request carries one; the repository resolves the kept status from the row
// it locks.
func (s *Service) Update(ctx context.Context, id string, req OrderRequest) (*Order, error) {
	items, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	o := &Order{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Status:      req.Status,
		Items:       items,
	}
	return o, s.save(ctx, o)
}

// SetStatus moves the order to status. Any status may follow any other.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := o.Status
	o.Status = status
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	log.Info().Str("order_id", o.ID).Str("old_status", prev.String()).Str("new_status", o.Status.String()).Msg("order status changed")
	return o, nil
}

func (s *Service) save(ctx context.Context, o *Order) error {
	if err := s.repo.Update(ctx, o); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		log.Error().Err(err).Str("order_id", o.ID).Msg("order: update failed")
		return fmt.Errorf("update order: %w", err)
	}
	log.Info().Str("order_id", o.ID).Str("status", o.Status.String()).Int("items", len(o.Items)).Msg("order updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("order_id", id).Msg("order: delete failed")
		return fmt.Errorf("delete order: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	log.Info().Str("order_id", id).Msg("order deleted")
	return nil
}

// SetItemCompleted flips the paid flag of one line. Stock is never touched.
func (s *Service) SetItemCompleted(ctx context.Context, orderID, productID string, completed bool) (*Order, error) {
	productID = CanonicalID(productID)
	if err := s.repo.SetItemCompleted(ctx, orderID, productID, completed); err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound), errors.Is(err, ErrOrderCompleted):
			return nil, err
		}
		log.Error().Err(err).Str("order_id", orderID).Str("product_id", productID).Msg("order: item status failed")
		return nil, fmt.Errorf("set item status: %w", err)
	}
	return s.Get(ctx, orderID)
}

// prepare validates the draft, merges duplicate lines and checks that every
// product exists.
func (s *Service) prepare(ctx context.Context, req OrderRequest) ([]Item, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	items := MergeLines(req.Items)
	cat, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Quantity > MaxLineQuantity {
			return nil, fmt.Errorf("%w: product %s quantity must be at most %d after merging", ErrInvalid, it.ProductID, MaxLineQuantity)
		}
		if _, ok := cat[it.ProductID]; !ok {
			return nil, fmt.Errorf("%w: product %s does not exist", ErrInvalid, it.ProductID)
		}
	}
	return items, nil
}

func (s *Service) catalog(ctx context.Context) (Catalog, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("order: product lookup failed")
		return nil, fmt.Errorf("list products: %w", err)
	}
	return NewCatalog(products), nil
}
