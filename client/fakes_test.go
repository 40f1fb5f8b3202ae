package client

import (
	"context"
	"sync"
)

// fakeHydrator serves products from a map. The result of each call is
// snapshotted before the call's optional gate, so tests can hold a
// response while the underlying data changes.
type fakeHydrator struct {
	mu       sync.Mutex
	products map[string]Product
	err      error
	calls    [][]string
	gates    []chan struct{}
}

func newFakeHydrator(products ...Product) *fakeHydrator {
	h := &fakeHydrator{products: map[string]Product{}}
	for _, p := range products {
		h.products[p.ID] = p
	}
	return h
}

func (h *fakeHydrator) set(p Product) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.products[p.ID] = p
}

func (h *fakeHydrator) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func (h *fakeHydrator) Products(ctx context.Context, ids []string) ([]Product, error) {
	h.mu.Lock()
	n := len(h.calls)
	h.calls = append(h.calls, append([]string(nil), ids...))
	var gate chan struct{}
	if n < len(h.gates) {
		gate = h.gates[n]
	}
	err := h.err
	var out []Product
	for _, id := range ids {
		if p, ok := h.products[id]; ok {
			out = append(out, p)
		}
	}
	h.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return out, err
}

func activeProduct(id, name string, price float64) Product {
	return Product{
		ID:           id,
		Name:         name,
		Price:        price,
		CategoryID:   "cat-1",
		CategoryName: "Shirts",
		Status:       ProductStatusActive,
	}
}
