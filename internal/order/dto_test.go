package order

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	line := []LineRequest{{ProductID: "p", Quantity: 1}}
	cases := []struct {
		name string
		req  OrderRequest
		ok   bool
	}{
		{"valid", OrderRequest{Name: "Maria", Items: line}, true},
		{"valid with status", OrderRequest{Name: "Maria", Status: StatusAwaitingPayment, Items: line}, true},
		{"blank name", OrderRequest{Name: "   ", Items: line}, false},
		{"no items", OrderRequest{Name: "Maria"}, false},
		{"zero quantity", OrderRequest{Name: "Maria", Items: []LineRequest{{ProductID: "p"}}}, false},
		{"negative quantity", OrderRequest{Name: "Maria", Items: []LineRequest{{ProductID: "p", Quantity: -2}}}, false},
		{"missing product", OrderRequest{Name: "Maria", Items: []LineRequest{{Quantity: 1}}}, false},
		{"unknown status", OrderRequest{Name: "Maria", Status: "entregue", Items: line}, false},
		{"largest quantity", OrderRequest{Name: "Maria", Items: []LineRequest{{ProductID: "p", Quantity: MaxLineQuantity}}}, true},
		{"quantity above int32", OrderRequest{Name: "Maria", Items: []LineRequest{{ProductID: "p", Quantity: MaxLineQuantity + 1}}}, false},
		{"quantity at max int", OrderRequest{Name: "Maria", Items: []LineRequest{{ProductID: "p", Quantity: math.MaxInt}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalid) {
				t.Fatalf("err=%v, want ErrInvalid", err)
			}
		})
	}
}

func TestMergeLines(t *testing.T) {
	got := MergeLines([]LineRequest{
		{ProductID: "p", Quantity: 2},
		{ProductID: "q", Quantity: 1},
		{ProductID: " p", Quantity: 3},
	})
	want := []Item{
		{ProductID: "p", Quantity: 5},
		{ProductID: "q", Quantity: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MergeLines mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeLines_CanonicalIDs(t *testing.T) {
	id := "3f2a8c1e-5b7d-4e9a-a1c2-0d4e6f8b9a10"
	got := MergeLines([]LineRequest{
		{ProductID: id, Quantity: 1},
		{ProductID: "3F2A8C1E-5B7D-4E9A-A1C2-0D4E6F8B9A10", Quantity: 2},
		{ProductID: "{" + id + "}", Quantity: 3},
		{ProductID: " slug ", Quantity: 1},
	})
	want := []Item{
		{ProductID: id, Quantity: 6},
		{ProductID: "slug", Quantity: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MergeLines mismatch (-want +got):\n%s", diff)
	}
}

func TestCarryCompleted(t *testing.T) {
	prev := &Order{Items: []Item{
		{ProductID: "a", Quantity: 1, Completed: true},
		{ProductID: "b", Quantity: 1},
		{ProductID: "gone", Quantity: 1, Completed: true},
	}}
	next := &Order{Items: []Item{
		{ProductID: "b", Quantity: 2},
		{ProductID: "a", Quantity: 4},
		{ProductID: "new", Quantity: 1},
	}}
	next.CarryCompleted(prev)

	want := []Item{
		{ProductID: "b", Quantity: 2},
		{ProductID: "a", Quantity: 4, Completed: true},
		{ProductID: "new", Quantity: 1},
	}
	if diff := cmp.Diff(want, next.Items); diff != "" {
		t.Fatalf("CarryCompleted mismatch (-want +got):\n%s", diff)
	}
}
