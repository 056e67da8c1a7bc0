package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrInvalid marks input rejected before reaching the store.
var ErrInvalid = errors.New("invalid product")

// maxPrice is the first value products.price NUMERIC(12,2) cannot hold.
var maxPrice = decimal.New(1, 10)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Validate checks a product form and returns the trimmed name and parsed price.
func Validate(name, price string, quantity *int) (string, decimal.Decimal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", decimal.Zero, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("%w: price must be a decimal number", ErrInvalid)
	}
	if !d.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("%w: price must be greater than zero", ErrInvalid)
	}
	if !d.Equal(d.Round(2)) {
		return "", decimal.Zero, fmt.Errorf("%w: price must have at most two decimal places", ErrInvalid)
	}
	if d.GreaterThanOrEqual(maxPrice) {
		return "", decimal.Zero, fmt.Errorf("%w: price must be less than %s", ErrInvalid, maxPrice)
	}
	if quantity != nil && *quantity < 0 {
		return "", decimal.Zero, fmt.Errorf("%w: quantity must be non-negative", ErrInvalid)
	}
	if quantity != nil && *quantity > math.MaxInt32 {
		return "", decimal.Zero, fmt.Errorf("%w: quantity must be at most %d", ErrInvalid, math.MaxInt32)
	}
	return name, d, nil
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("product: list failed")
		return nil, fmt.Errorf("list products: %w", err)
	}
	slices.SortStableFunc(items, func(a, b Product) int { return strings.Compare(a.Name, b.Name) })
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("product_id", id).Msg("product: get failed")
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in CreateProductRequest) (*Product, error) {
	name, price, err := Validate(in.Name, in.Price, in.Quantity)
	if err != nil {
		return nil, err
	}
	p := &Product{
		ID:    uuid.NewString(),
		Name:  name,
		Price: price,
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	p.MaxQuantity = p.Quantity
	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Str("name", name).Msg("product: create failed")
		return nil, fmt.Errorf("create product: %w", err)
	}
	log.Info().Str("product_id", p.ID).Str("name", p.Name).Int("quantity", p.Quantity).Msg("product created")
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateProductRequest) (*Product, error) {
	name, price, err := Validate(in.Name, in.Price, in.Quantity)
	if err != nil {
		return nil, err
	}
	p := &Product{ID: id, Name: name, Price: price}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
		p.MaxQuantity = *in.Quantity
	}
	if err := s.repo.Update(ctx, p, in.Quantity != nil); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Str("product_id", id).Msg("product: update failed")
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrInUse) {
			return err
		}
		log.Error().Err(err).Str("product_id", id).Msg("product: delete failed")
		return fmt.Errorf("delete product: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	log.Info().Str("product_id", id).Msg("product deleted")
	return nil
}
