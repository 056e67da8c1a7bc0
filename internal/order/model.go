package order

import "time"

type Status string

const (
	StatusPending         Status = "pendente"
	StatusStarted         Status = "iniciada"
	StatusAwaitingPayment Status = "falta_pagamento"
	StatusCompleted       Status = "concluida"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusStarted, StatusAwaitingPayment, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusStarted, StatusAwaitingPayment, StatusCompleted:
		return true
	}
	return false
}

// Active reports whether the order still holds stock that can be given back.
func (s Status) Active() bool { return s != StatusCompleted }

func (s Status) String() string { return string(s) }

type Order struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Items       []Item     `json:"items"`
}

type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	// Completed is per-line payment bookkeeping; it is ignored once the order
	// is concluida, where every line counts as paid.
	Completed bool `json:"completed"`
}

// Paid reports whether the line counts as paid within o.
func (o Order) Paid(it Item) bool {
	return o.Status == StatusCompleted || it.Completed
}

// CarryCompleted copies the completed flag of lines in prev onto the lines of
// o that reference the same product.
func (o *Order) CarryCompleted(prev *Order) {
	done := make(map[string]bool, len(prev.Items))
	for _, it := range prev.Items {
		done[it.ProductID] = it.Completed
	}
	for i := range o.Items {
		if done[o.Items[i].ProductID] {
			o.Items[i].Completed = true
		}
	}
}
