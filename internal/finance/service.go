package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrInvalid marks figures rejected before reaching the store.
var ErrInvalid = errors.New("invalid financial values")

// maxAmount is the first magnitude a NUMERIC(14,2) column cannot hold.
var maxAmount = decimal.New(1, 12)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the cash figures, creating the zeroed record on first use.
func (s *Service) Get(ctx context.Context) (*Values, error) {
	v, err := s.repo.Get(ctx)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Msg("finance: get failed")
		return nil, fmt.Errorf("get financial values: %w", err)
	}
	if err := s.repo.Create(ctx); err != nil {
		log.Error().Err(err).Msg("finance: lazy create failed")
		return nil, fmt.Errorf("create financial values: %w", err)
	}
	log.Info().Msg("finance: created zeroed financial values")
	v, err = s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get financial values: %w", err)
	}
	return v, nil
}

// Validate checks both figures fit the stored precision. Negative figures are
// allowed.
func (in UpdateRequest) Validate() error {
	for _, f := range []struct {
		name string
		v    decimal.Decimal
	}{{"banco", in.Banco}, {"casa", in.Casa}} {
		if !f.v.Equal(f.v.Round(2)) {
			return fmt.Errorf("%w: %s must have at most two decimal places", ErrInvalid, f.name)
		}
		if f.v.Abs().GreaterThanOrEqual(maxAmount) {
			return fmt.Errorf("%w: %s must be less than %s in magnitude", ErrInvalid, f.name, maxAmount)
		}
	}
	return nil
}

func (s *Service) Update(ctx context.Context, in UpdateRequest) (*Values, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx); err != nil {
		return nil, err
	}
	v := &Values{Banco: in.Banco, Casa: in.Casa}
	if err := s.repo.Update(ctx, v); err != nil {
		log.Error().Err(err).Msg("finance: update failed")
		return nil, fmt.Errorf("update financial values: %w", err)
	}
	return v, nil
}
