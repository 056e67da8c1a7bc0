// Package product provides the catalog: the repository interface, its
// PostgreSQL implementation and the validating service used by the handlers.
package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrInUse    = errors.New("product is referenced by orders")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	// Update writes name and price; when setQuantity is true it also assigns
	// quantity and moves max_quantity to the same value.
	Update(ctx context.Context, p *Product, setQuantity bool) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, price, quantity, max_quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$4,NOW(),NOW())
		RETURNING max_quantity, created_at, updated_at
	`, p.ID, p.Name, p.Price.String(), p.Quantity).Scan(&p.MaxQuantity, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT id, name, price::text, quantity, max_quantity, created_at, updated_at
		FROM products WHERE id=$1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, price::text, quantity, max_quantity, created_at, updated_at
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product, setQuantity bool) error {
	if !validID(p.ID) {
		return ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tag pgconn.CommandTag
	var err error
	if setQuantity {
		tag, err = r.db.Exec(ctx, `
			UPDATE products
			SET name = $2,
			    price = $3,
			    quantity = $4,
			    max_quantity = $4,
			    updated_at = NOW()
			WHERE id = $1
		`, p.ID, p.Name, p.Price.String(), p.Quantity)
	} else {
		tag, err = r.db.Exec(ctx, `
			UPDATE products
			SET name = $2,
			    price = $3,
			    updated_at = NOW()
			WHERE id = $1
		`, p.ID, p.Name, p.Price.String())
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return false, ErrInUse
		}
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p     Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Quantity, &p.MaxQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s: bad price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return &p, nil
}
