package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imaginarte/gestao/internal/product"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrItemNotFound   = errors.New("order item not found")
	ErrOrderCompleted = errors.New("order is concluida; items are already paid")
)

// Repository persists orders. Create, Update and Delete apply the stock
// policy (ApplyCreate, ApplyUpdate, ApplyDelete) atomically with the order
// change itself. Update keeps the stored status when o.Status is empty,
// reading it under the same lock that guards the stock change.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) (bool, error)
	SetItemCompleted(ctx context.Context, orderID, productID string, completed bool) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) withTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) List(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
    SELECT id, name, description, status, completed_at, created_at, updated_at
    FROM orders ORDER BY created_at
  `)
	if err != nil {
		return nil, err
	}
	var out []Order
	idx := map[string]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		idx[o.ID] = len(out)
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.db.Query(ctx, `
    SELECT order_id, product_id, quantity, completed
    FROM order_products ORDER BY order_id, position
  `)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var (
			orderID string
			it      Item
		)
		if err := items.Scan(&orderID, &it.ProductID, &it.Quantity, &it.Completed); err != nil {
			return nil, err
		}
		if i, ok := idx[orderID]; ok {
			out[i].Items = append(out[i].Items, it)
		}
	}
	return out, items.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return getOrder(ctx, r.db, id, false)
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	return r.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
      INSERT INTO orders (id, name, description, status, completed_at, created_at, updated_at)
      VALUES ($1,$2,$3,$4, CASE WHEN $4 = 'concluida' THEN NOW() END, NOW(), NOW())
      RETURNING completed_at, created_at, updated_at
    `, o.ID, o.Name, o.Description, string(o.Status)).Scan(&o.CompletedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
			return err
		}
		return ApplyCreate(ctx, txStock{tx: tx}, o)
	})
}

func (r *PGRepo) Update(ctx context.Context, o *Order) error {
	if !validID(o.ID) {
		return ErrNotFound
	}
	return r.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		prev, err := getOrder(ctx, tx, o.ID, true)
		if err != nil {
			return err
		}
		if o.Status == "" {
			o.Status = prev.Status
		}
		o.CarryCompleted(prev)
		if err := ApplyUpdate(ctx, txStock{tx: tx}, prev, o); err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, `
      UPDATE orders
      SET name = $2,
          description = $3,
          status = $4,
          completed_at = CASE WHEN $4 = 'concluida' THEN COALESCE(completed_at, NOW()) END,
          updated_at = NOW()
      WHERE id = $1
      RETURNING completed_at, created_at, updated_at
    `, o.ID, o.Name, o.Description, string(o.Status)).Scan(&o.CompletedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM order_products WHERE order_id = $1`, o.ID); err != nil {
			return err
		}
		return insertItems(ctx, tx, o.ID, o.Items)
	})
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var deleted bool
	err := r.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		prev, err := getOrder(ctx, tx, id, true)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := ApplyDelete(ctx, txStock{tx: tx}, prev); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	return deleted, err
}

func (r *PGRepo) SetItemCompleted(ctx context.Context, orderID, productID string, completed bool) error {
	if !validID(orderID) {
		return ErrNotFound
	}
	if !validID(productID) {
		return ErrItemNotFound
	}
	return r.withTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !Status(status).Active() {
			return ErrOrderCompleted
		}
		tag, err := tx.Exec(ctx, `
      UPDATE order_products SET completed = $3
      WHERE order_id = $1 AND product_id = $2
    `, orderID, productID, completed)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrItemNotFound
		}
		return nil
	})
}

// validID reports whether id can name a row. Malformed ids are reported as
// missing instead of reaching postgres as a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getOrder(ctx context.Context, q querier, id string, lock bool) (*Order, error) {
	sql := `
    SELECT id, name, description, status, completed_at, created_at, updated_at
    FROM orders WHERE id = $1`
	if lock {
		sql += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
    SELECT product_id, quantity, completed
    FROM order_products WHERE order_id = $1
    ORDER BY position
  `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Completed); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		status string
	)
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &status, &o.CompletedAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = Status(status)
	return &o, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID string, items []Item) error {
	for i, it := range items {
		if _, err := tx.Exec(ctx, `
      INSERT INTO order_products (order_id, product_id, position, quantity, completed)
      VALUES ($1,$2,$3,$4,$5)
    `, orderID, it.ProductID, i, it.Quantity, it.Completed); err != nil {
			return err
		}
	}
	return nil
}

// txStock adjusts product rows inside the order's transaction.
type txStock struct{ tx pgx.Tx }

func (s txStock) Consume(ctx context.Context, productID string, qty int) (int, error) {
	var cur int
	err := s.tx.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, product.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	next, short := cur-qty, 0
	if next < 0 {
		short, next = -next, 0
	}
	if _, err := s.tx.Exec(ctx, `
    UPDATE products SET quantity = $2, updated_at = NOW() WHERE id = $1
  `, productID, next); err != nil {
		return 0, err
	}
	return short, nil
}

func (s txStock) Restock(ctx context.Context, productID string, qty int) error {
	_, err := s.tx.Exec(ctx, `
    UPDATE products
    SET quantity = LEAST(max_quantity, quantity::bigint + $2), updated_at = NOW()
    WHERE id = $1
  `, productID, qty)
	return err
}
