// Package finance stores the singleton cash figures shown next to the order
// totals.
package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("financial values not found")

// singletonID is the only id the financial_values table accepts.
const singletonID = 1

type Repository interface {
	Get(ctx context.Context) (*Values, error)
	// Create inserts the zeroed record unless one already exists.
	Create(ctx context.Context) error
	Update(ctx context.Context, v *Values) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Get(ctx context.Context) (*Values, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var v Values
	var banco, casa string
	err := r.db.QueryRow(ctx, `
		SELECT id, banco::text, casa::text FROM financial_values WHERE id = $1
	`, singletonID).Scan(&v.ID, &banco, &casa)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if v.Banco, err = decimal.NewFromString(banco); err != nil {
		return nil, fmt.Errorf("bad banco %q: %w", banco, err)
	}
	if v.Casa, err = decimal.NewFromString(casa); err != nil {
		return nil, fmt.Errorf("bad casa %q: %w", casa, err)
	}
	return &v, nil
}

func (r *PGRepo) Create(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO financial_values (id, banco, casa) VALUES ($1, 0, 0)
		ON CONFLICT (id) DO NOTHING
	`, singletonID)
	return err
}

func (r *PGRepo) Update(ctx context.Context, v *Values) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE financial_values SET banco = $2, casa = $3 WHERE id = $1
	`, singletonID, v.Banco.String(), v.Casa.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	v.ID = singletonID
	return nil
}
