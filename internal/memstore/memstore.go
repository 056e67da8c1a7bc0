// Package memstore keeps every repository in process memory. It backs the
// STORE=memory mode used for demos and the handler tests; one mutex
// serializes all operations, which stands in for the database transaction.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/imaginarte/gestao/internal/finance"
	"github.com/imaginarte/gestao/internal/order"
	"github.com/imaginarte/gestao/internal/product"
	"github.com/imaginarte/gestao/internal/user"
)

type Store struct {
	mu       sync.Mutex
	products map[string]*product.Product
	orders   map[string]*order.Order
	seq      []string // order ids in creation order
	finance  *finance.Values
	users    map[string]*user.User
	now      func() time.Time
}

func New() *Store {
	return &Store{
		products: map[string]*product.Product{},
		orders:   map[string]*order.Order{},
		users:    map[string]*user.User{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ping satisfies health.Pinger; memory is always reachable.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Products() *Products { return &Products{s: s} }
func (s *Store) Orders() *Orders     { return &Orders{s: s} }
func (s *Store) Finance() *Finance   { return &Finance{s: s} }
func (s *Store) Users() *Users       { return &Users{s: s} }

// Products implements product.Repository.
type Products struct{ s *Store }

func (r *Products) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p.MaxQuantity = p.Quantity
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *Products) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *Products) List(_ context.Context) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]product.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b product.Product) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *Products) Update(_ context.Context, p *product.Product, setQuantity bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.products[p.ID]
	if !ok {
		return product.ErrNotFound
	}
	cur.Name = p.Name
	cur.Price = p.Price
	if setQuantity {
		cur.Quantity = p.Quantity
		cur.MaxQuantity = p.Quantity
	}
	cur.UpdatedAt = r.s.now()
	return nil
}

func (r *Products) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return false, nil
	}
	for _, o := range r.s.orders {
		for _, it := range o.Items {
			if it.ProductID == id {
				return false, product.ErrInUse
			}
		}
	}
	delete(r.s.products, id)
	return true, nil
}

// Orders implements order.Repository.
type Orders struct{ s *Store }

func (r *Orders) List(_ context.Context) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]order.Order, 0, len(r.s.seq))
	for _, id := range r.s.seq {
		out = append(out, copyOrder(r.s.orders[id]))
	}
	return out, nil
}

func (r *Orders) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (r *Orders) Create(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, it := range o.Items {
		if _, ok := r.s.products[it.ProductID]; !ok {
			return product.ErrNotFound
		}
	}
	return r.s.atomically(func(st stock) error {
		if err := order.ApplyCreate(ctx, st, o); err != nil {
			return err
		}
		now := r.s.now()
		o.CreatedAt, o.UpdatedAt = now, now
		o.CompletedAt = nil
		if o.Status == order.StatusCompleted {
			o.CompletedAt = &now
		}
		cp := copyOrder(o)
		r.s.orders[o.ID] = &cp
		r.s.seq = append(r.s.seq, o.ID)
		return nil
	})
}

func (r *Orders) Update(ctx context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.orders[o.ID]
	if !ok {
		return order.ErrNotFound
	}
	if o.Status == "" {
		o.Status = prev.Status
	}
	return r.s.atomically(func(st stock) error {
		o.CarryCompleted(prev)
		if err := order.ApplyUpdate(ctx, st, prev, o); err != nil {
			return err
		}
		now := r.s.now()
		o.CreatedAt, o.UpdatedAt = prev.CreatedAt, now
		switch {
		case o.Status != order.StatusCompleted:
			o.CompletedAt = nil
		case prev.CompletedAt != nil:
			o.CompletedAt = prev.CompletedAt
		default:
			o.CompletedAt = &now
		}
		cp := copyOrder(o)
		r.s.orders[o.ID] = &cp
		return nil
	})
}

func (r *Orders) Delete(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, ok := r.s.orders[id]
	if !ok {
		return false, nil
	}
	err := r.s.atomically(func(st stock) error {
		if err := order.ApplyDelete(ctx, st, prev); err != nil {
			return err
		}
		delete(r.s.orders, id)
		r.s.seq = slices.DeleteFunc(r.s.seq, func(v string) bool { return v == id })
		return nil
	})
	return err == nil, err
}

func (r *Orders) SetItemCompleted(_ context.Context, orderID, productID string, completed bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	if !o.Status.Active() {
		return order.ErrOrderCompleted
	}
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			o.Items[i].Completed = completed
			return nil
		}
	}
	return order.ErrItemNotFound
}

// atomically runs fn against the product stock and puts every quantity back
// when fn fails. Callers hold s.mu.
func (s *Store) atomically(fn func(st stock) error) error {
	saved := make(map[string]int, len(s.products))
	for id, p := range s.products {
		saved[id] = p.Quantity
	}
	if err := fn(stock{s: s}); err != nil {
		for id, q := range saved {
			if p, ok := s.products[id]; ok {
				p.Quantity = q
			}
		}
		return err
	}
	return nil
}

// stock implements order.StockAdjuster over the in-memory products.
type stock struct{ s *Store }

func (st stock) Consume(_ context.Context, productID string, qty int) (int, error) {
	p, ok := st.s.products[productID]
	if !ok {
		return 0, product.ErrNotFound
	}
	next, short := p.Quantity-qty, 0
	if next < 0 {
		short, next = -next, 0
	}
	p.Quantity = next
	p.UpdatedAt = st.s.now()
	return short, nil
}

func (st stock) Restock(_ context.Context, productID string, qty int) error {
	p, ok := st.s.products[productID]
	if !ok {
		return nil
	}
	p.Quantity = min(p.MaxQuantity, p.Quantity+qty)
	p.UpdatedAt = st.s.now()
	return nil
}

func copyOrder(o *order.Order) order.Order {
	cp := *o
	cp.Items = slices.Clone(o.Items)
	return cp
}

// Finance implements finance.Repository.
type Finance struct{ s *Store }

func (r *Finance) Get(_ context.Context) (*finance.Values, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.finance == nil {
		return nil, finance.ErrNotFound
	}
	cp := *r.s.finance
	return &cp, nil
}

func (r *Finance) Create(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.finance == nil {
		r.s.finance = &finance.Values{ID: 1}
	}
	return nil
}

func (r *Finance) Update(_ context.Context, v *finance.Values) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.finance == nil {
		return finance.ErrNotFound
	}
	v.ID = r.s.finance.ID
	cp := *v
	r.s.finance = &cp
	return nil
}

// Users implements user.Repository.
type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[u.Username]; ok {
		return user.ErrAlreadyExist
	}
	u.CreatedAt = r.s.now()
	cp := *u
	r.s.users[u.Username] = &cp
	return nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[username]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
