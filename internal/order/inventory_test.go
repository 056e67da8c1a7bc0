package order

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

// fakeStock is a StockAdjuster over a map, with the same floor and cap rules
// as the database implementation.
type fakeStock struct {
	qty map[string]int
	max map[string]int
	err error
}

func newFakeStock() *fakeStock {
	return &fakeStock{qty: map[string]int{}, max: map[string]int{}}
}

func (f *fakeStock) add(id string, n int) { f.qty[id], f.max[id] = n, n }

func (f *fakeStock) Consume(_ context.Context, id string, n int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	next := f.qty[id] - n
	if next < 0 {
		f.qty[id] = 0
		return -next, nil
	}
	f.qty[id] = next
	return 0, nil
}

func (f *fakeStock) Restock(_ context.Context, id string, n int) error {
	if f.err != nil {
		return f.err
	}
	f.qty[id] = min(f.max[id], f.qty[id]+n)
	return nil
}

func TestInventory_CreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := newFakeStock()
	s.add("p", 5)

	o := &Order{ID: "o", Status: StatusPending, Items: []Item{{ProductID: "p", Quantity: 3}}}
	if err := ApplyCreate(ctx, s, o); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 2 {
		t.Fatalf("after create quantity=%d, want 2", s.qty["p"])
	}

	next := &Order{ID: "o", Status: StatusPending, Items: []Item{{ProductID: "p", Quantity: 5}}}
	if err := ApplyUpdate(ctx, s, o, next); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 0 {
		t.Fatalf("after update quantity=%d, want 0", s.qty["p"])
	}

	if err := ApplyDelete(ctx, s, next); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 5 {
		t.Fatalf("after delete quantity=%d, want 5", s.qty["p"])
	}
}

func TestInventory_ShortageFloorsAtZero(t *testing.T) {
	s := newFakeStock()
	s.add("p", 2)

	o := &Order{ID: "o", Status: StatusStarted, Items: []Item{{ProductID: "p", Quantity: 7}}}
	if err := ApplyCreate(context.Background(), s, o); err != nil {
		t.Fatalf("shortage must not reject the order: %v", err)
	}
	if s.qty["p"] != 0 {
		t.Fatalf("quantity=%d, want 0", s.qty["p"])
	}
}

func TestInventory_RestockCappedAtMax(t *testing.T) {
	s := newFakeStock()
	s.add("p", 4)

	// stock was later raised by hand but max stays at 4
	o := &Order{ID: "o", Status: StatusPending, Items: []Item{{ProductID: "p", Quantity: 3}}}
	if err := ApplyDelete(context.Background(), s, o); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 4 {
		t.Fatalf("quantity=%d, want 4", s.qty["p"])
	}
}

func TestInventory_CompletedOrdersDoNotMoveStock(t *testing.T) {
	ctx := context.Background()
	s := newFakeStock()
	s.add("p", 10)
	s.qty["p"] = 6

	done := &Order{ID: "o", Status: StatusCompleted, Items: []Item{{ProductID: "p", Quantity: 4}}}
	edited := &Order{ID: "o", Status: StatusCompleted, Items: []Item{{ProductID: "p", Quantity: 9}}}
	if err := ApplyUpdate(ctx, s, done, edited); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 6 {
		t.Fatalf("concluida edit moved stock: quantity=%d", s.qty["p"])
	}

	reopened := &Order{ID: "o", Status: StatusPending, Items: done.Items}
	if err := ApplyUpdate(ctx, s, done, reopened); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 6 {
		t.Fatalf("reopening a concluida order moved stock: quantity=%d", s.qty["p"])
	}

	if err := ApplyDelete(ctx, s, done); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 6 {
		t.Fatalf("deleting a concluida order moved stock: quantity=%d", s.qty["p"])
	}
}

func TestInventory_CompletingAnOrderKeepsItsConsumption(t *testing.T) {
	s := newFakeStock()
	s.add("p", 5)
	ctx := context.Background()

	o := &Order{ID: "o", Status: StatusAwaitingPayment, Items: []Item{{ProductID: "p", Quantity: 2}}}
	_ = ApplyCreate(ctx, s, o)
	done := &Order{ID: "o", Status: StatusCompleted, Items: o.Items}
	if err := ApplyUpdate(ctx, s, o, done); err != nil {
		t.Fatal(err)
	}
	if s.qty["p"] != 3 {
		t.Fatalf("quantity=%d, want 3", s.qty["p"])
	}
}

func TestInventory_QuantityStaysWithinBounds(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	s := newFakeStock()
	ids := []string{"a", "b", "c"}
	for _, id := range ids {
		s.add(id, 4)
	}

	randomItems := func() []Item {
		var items []Item
		for _, id := range ids {
			if rng.Intn(2) == 0 {
				items = append(items, Item{ProductID: id, Quantity: 1 + rng.Intn(6)})
			}
		}
		return items
	}

	var live []*Order
	for i := 0; i < 500; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			o := &Order{ID: "o", Status: Statuses[rng.Intn(len(Statuses))], Items: randomItems()}
			if err := ApplyCreate(ctx, s, o); err != nil {
				t.Fatal(err)
			}
			live = append(live, o)
		case op == 1:
			k := rng.Intn(len(live))
			next := &Order{ID: "o", Status: Statuses[rng.Intn(len(Statuses))], Items: randomItems()}
			if err := ApplyUpdate(ctx, s, live[k], next); err != nil {
				t.Fatal(err)
			}
			live[k] = next
		default:
			k := rng.Intn(len(live))
			if err := ApplyDelete(ctx, s, live[k]); err != nil {
				t.Fatal(err)
			}
			live = append(live[:k], live[k+1:]...)
		}
		for _, id := range ids {
			if q := s.qty[id]; q < 0 || q > s.max[id] {
				t.Fatalf("step %d: %s quantity=%d outside [0,%d]", i, id, q, s.max[id])
			}
		}
	}
}

func TestInventory_StoreErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	s := newFakeStock()
	s.err = boom

	o := &Order{ID: "o", Status: StatusPending, Items: []Item{{ProductID: "p", Quantity: 1}}}
	if err := ApplyCreate(context.Background(), s, o); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapped %v", err, boom)
	}
}
