package order_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imaginarte/gestao/internal/memstore"
	"github.com/imaginarte/gestao/internal/order"
	"github.com/imaginarte/gestao/internal/product"
)

type fixture struct {
	store    *memstore.Store
	products *memstore.Products
	svc      *order.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.New()
	return &fixture{
		store:    st,
		products: st.Products(),
		svc:      order.NewService(st.Orders(), st.Products()),
	}
}

func (f *fixture) addProduct(t *testing.T, id, price string, qty int) {
	t.Helper()
	p := &product.Product{ID: id, Name: "produto " + id, Price: decimal.RequireFromString(price), Quantity: qty}
	require.NoError(t, f.products.Create(context.Background(), p))
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func lines(pairs ...any) []order.LineRequest {
	var out []order.LineRequest
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, order.LineRequest{ProductID: pairs[i].(string), Quantity: pairs[i+1].(int)})
	}
	return out
}

func TestService_CreateUpdateDeleteMovesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Items: lines("P", 3)})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, 2, f.quantity(t, "P"))

	_, err = f.svc.Update(ctx, o.ID, order.OrderRequest{Name: "O", Items: lines("P", 5)})
	require.NoError(t, err)
	assert.Equal(t, 0, f.quantity(t, "P"))

	require.NoError(t, f.svc.Delete(ctx, o.ID))
	assert.Equal(t, 5, f.quantity(t, "P"))

	_, err = f.svc.Get(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestService_CreateMergesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "P", "10.00", 10)

	o, err := f.svc.Create(context.Background(), order.OrderRequest{Name: "O", Items: lines("P", 2, "P", 3)})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 5, o.Items[0].Quantity)
	assert.Equal(t, 5, f.quantity(t, "P"))
}

func TestService_InvalidDraftLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)

	drafts := []order.OrderRequest{
		{Name: "", Items: lines("P", 1)},
		{Name: "O"},
		{Name: "O", Items: lines("P", 0)},
		{Name: "O", Items: lines("nope", 1)},
		{Name: "O", Status: "arquivada", Items: lines("P", 1)},
	}
	for _, d := range drafts {
		_, err := f.svc.Create(ctx, d)
		assert.ErrorIs(t, err, order.ErrInvalid, "draft %+v", d)
	}

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 5, f.quantity(t, "P"))
}

func TestService_MergedQuantityAboveLimitRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)

	for _, items := range [][]order.LineRequest{
		lines("P", math.MaxInt32, "P", 1),
		lines("P", order.MaxLineQuantity, "P", order.MaxLineQuantity),
	} {
		_, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Items: items})
		assert.ErrorIs(t, err, order.ErrInvalid, "items %+v", items)
	}

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Items: lines("P", 1)})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, o.ID, order.OrderRequest{Name: "O", Items: lines("P", math.MaxInt32, "P", math.MaxInt32)})
	assert.ErrorIs(t, err, order.ErrInvalid)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].Items[0].Quantity)
	assert.Equal(t, 4, f.quantity(t, "P"))
}

func TestService_ProductIDsCompareCanonically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.NewString()
	f.addProduct(t, id, "10.00", 5)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Items: lines(strings.ToUpper(id), 2, id, 1)})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, id, o.Items[0].ProductID)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, 2, f.quantity(t, id))

	got, err := f.svc.SetItemCompleted(ctx, o.ID, strings.ToUpper(id), true)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Completed)
}

// statusRace flips the stored status right before the wrapped Update runs,
// as a concurrent status change would.
type statusRace struct {
	order.Repository
	flip func()
}

func (r *statusRace) Update(ctx context.Context, o *order.Order) error {
	if r.flip != nil {
		flip := r.flip
		r.flip = nil
		flip()
	}
	return r.Repository.Update(ctx, o)
}

func TestService_UpdateKeepsStatusWrittenConcurrently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Items: lines("P", 1)})
	require.NoError(t, err)

	repo := &statusRace{Repository: f.store.Orders()}
	svc := order.NewService(repo, f.products)
	repo.flip = func() {
		_, err := f.svc.SetStatus(ctx, o.ID, order.StatusAwaitingPayment)
		require.NoError(t, err)
	}

	got, err := svc.Update(ctx, o.ID, order.OrderRequest{Name: "O2", Items: lines("P", 2)})
	require.NoError(t, err)
	assert.Equal(t, order.StatusAwaitingPayment, got.Status)

	stored, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusAwaitingPayment, stored.Status)
	assert.Equal(t, "O2", stored.Name)
	assert.Equal(t, 3, f.quantity(t, "P"))
}

func TestService_UpdateKeepsStatusUnlessGiven(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Status: order.StatusStarted, Items: lines("P", 1)})
	require.NoError(t, err)

	o, err = f.svc.Update(ctx, o.ID, order.OrderRequest{Name: "O2", Items: lines("P", 1)})
	require.NoError(t, err)
	assert.Equal(t, order.StatusStarted, o.Status)
	assert.Equal(t, "O2", o.Name)

	_, err = f.svc.Update(ctx, "missing", order.OrderRequest{Name: "x", Items: lines("P", 1)})
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestService_SetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Items: lines("P", 2)})
	require.NoError(t, err)

	done, err := f.svc.SetStatus(ctx, o.ID, order.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.Equal(t, 3, f.quantity(t, "P"), "completing keeps the consumption")

	// concluida back to pendente is allowed and moves no stock
	back, err := f.svc.SetStatus(ctx, o.ID, order.StatusPending)
	require.NoError(t, err)
	assert.Nil(t, back.CompletedAt)
	assert.Equal(t, 3, f.quantity(t, "P"))

	_, err = f.svc.SetStatus(ctx, o.ID, "perdida")
	assert.ErrorIs(t, err, order.ErrInvalid)
}

func TestService_CompletedOrderEditMovesNoStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 10)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Status: order.StatusCompleted, Items: lines("P", 4)})
	require.NoError(t, err)
	assert.Equal(t, 6, f.quantity(t, "P"))

	_, err = f.svc.Update(ctx, o.ID, order.OrderRequest{Name: "O", Items: lines("P", 9)})
	require.NoError(t, err)
	assert.Equal(t, 6, f.quantity(t, "P"))

	require.NoError(t, f.svc.Delete(ctx, o.ID))
	assert.Equal(t, 6, f.quantity(t, "P"))
}

func TestService_SetItemCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)
	f.addProduct(t, "Q", "4.00", 5)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Items: lines("P", 1, "Q", 2)})
	require.NoError(t, err)

	got, err := f.svc.SetItemCompleted(ctx, o.ID, "Q", true)
	require.NoError(t, err)
	assert.True(t, got.Items[1].Completed)
	assert.Equal(t, 4, f.quantity(t, "P"), "toggling never moves stock")
	assert.Equal(t, 3, f.quantity(t, "Q"))

	_, err = f.svc.SetItemCompleted(ctx, o.ID, "Z", true)
	assert.ErrorIs(t, err, order.ErrItemNotFound)
	_, err = f.svc.SetItemCompleted(ctx, "missing", "P", true)
	assert.ErrorIs(t, err, order.ErrNotFound)

	// the completed flag survives an edit that keeps the product
	_, err = f.svc.Update(ctx, o.ID, order.OrderRequest{Name: "O", Items: lines("Q", 3)})
	require.NoError(t, err)
	got, err = f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Completed)
}

func TestService_SetItemCompletedRejectedWhenConcluida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 5)

	o, err := f.svc.Create(ctx, order.OrderRequest{Name: "O", Status: order.StatusCompleted, Items: lines("P", 2)})
	require.NoError(t, err)

	_, err = f.svc.SetItemCompleted(ctx, o.ID, "P", true)
	require.True(t, errors.Is(err, order.ErrOrderCompleted), "err=%v", err)

	views, err := f.svc.ListView(ctx, true)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "20.00", views[0].PaidTotal)
	assert.Equal(t, "0.00", views[0].RemainingTotal)
}

func TestService_ListView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "P", "10.00", 50)

	for _, name := range []string{"bruno", "Álvaro", "ana"} {
		_, err := f.svc.Create(ctx, order.OrderRequest{Name: name, Items: lines("P", 1)})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, order.OrderRequest{Name: "Zeca", Status: order.StatusCompleted, Items: lines("P", 1)})
	require.NoError(t, err)

	open, err := f.svc.ListView(ctx, false)
	require.NoError(t, err)
	var got []string
	for _, v := range open {
		got = append(got, v.Name)
		assert.Equal(t, "10.00", v.OrderTotal)
	}
	assert.Equal(t, []string{"Álvaro", "ana", "bruno"}, got)

	done, err := f.svc.ListView(ctx, true)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Zeca", done[0].Name)
}

func TestService_DeleteMissing(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, order.ErrNotFound)
}
