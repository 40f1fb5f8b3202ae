package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// CartItem is one hydrated cart line.
type CartItem struct {
	Product   Product
	Quantity  int
	SizeID    string
	SizeName  string
	ColorID   string
	ColorName string
}

type cartKey struct {
	id      string
	sizeID  string
	colorID string
}

func (i CartItem) key() cartKey {
	return cartKey{id: i.Product.ID, sizeID: i.SizeID, colorID: i.ColorID}
}

// OptionChange describes a size/color change for a cart line. Nil fields
// keep the line's current value.
type OptionChange struct {
	SizeID    *string
	SizeName  *string
	ColorID   *string
	ColorName *string
}

// Cart is the cookie-backed cart store. Mutations apply immediately in
// memory and persist to the cart cookie, except while a Load is in
// flight: the cookie is only rewritten from hydrated state, so a failed
// hydration never wipes it.
type Cart struct {
	mu       sync.Mutex
	cookies  CookieStore
	hydrator Hydrator
	logger   *zap.Logger

	items   []CartItem
	loading bool
	loadSeq uint64
}

// NewCart creates a cart bound to the given cookie store and hydrator.
// A nil logger disables logging.
func NewCart(cookies CookieStore, hydrator Hydrator, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cart{cookies: cookies, hydrator: hydrator, logger: logger}
}

// Load reads the cart cookie, hydrates the ids against the backend and
// replaces the in-memory items. Entries whose product is gone or no
// longer active are dropped and the cookie is rewritten without them.
// If hydration fails the cart presents as empty but the cookie is left
// untouched for the next attempt. Concurrent loads are safe: a response
// belonging to a superseded Load is discarded.
func (c *Cart) Load(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.loadSeq++
	seq := c.loadSeq
	entries := DecodeCart(c.cookies.Get(CookieCart))
	c.mu.Unlock()

	var products []Product
	hydrated := true
	if len(entries) > 0 {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		var err error
		products, err = c.hydrator.Products(ctx, ids)
		if err != nil {
			c.logger.Warn("Cart hydration failed", zap.Error(err))
			hydrated = false
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		return
	}
	c.loading = false

	if !hydrated {
		c.items = nil
		return
	}

	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]CartItem, 0, len(entries))
	for _, e := range entries {
		p, ok := byID[e.ID]
		if !ok || !p.Active() {
			continue
		}
		item := CartItem{Product: p, Quantity: e.Quantity, SizeID: e.SizeID, ColorID: e.ColorID}
		for _, s := range p.Sizes {
			if s.ID == e.SizeID {
				item.SizeName = s.Name
			}
		}
		for _, col := range p.Colors {
			if col.ID == e.ColorID {
				item.ColorName = col.Name
			}
		}
		items = append(items, item)
	}
	c.items = items
	c.persistLocked()
}

// Add puts an item in the cart. Adding an item whose (product, size,
// color) triple is already present merges quantities instead of creating
// a duplicate line. Items missing an id or category data are rejected.
func (c *Cart) Add(item CartItem) bool {
	if item.Product.ID == "" || item.Product.CategoryID == "" || item.Product.CategoryName == "" {
		c.logger.Warn("Rejected cart item with incomplete product data",
			zap.String("product_id", item.Product.ID))
		return false
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := item.key()
	for i := range c.items {
		if c.items[i].key() == key {
			c.items[i].Quantity += item.Quantity
			c.persistLocked()
			return true
		}
	}
	c.items = append(c.items, item)
	c.persistLocked()
	return true
}

// Remove deletes the line identified by the full triple. Removing a line
// that is not present is a no-op.
func (c *Cart) Remove(productID, sizeID, colorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cartKey{id: productID, sizeID: sizeID, colorID: colorID}
	kept := c.items[:0]
	for _, item := range c.items {
		if item.key() != key {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(c.items) {
		return
	}
	c.items = kept
	c.persistLocked()
}

// UpdateQuantity sets the quantity of the line identified by the full
// triple. A quantity below 1 removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int, sizeID, colorID string) {
	if quantity < 1 {
		c.Remove(productID, sizeID, colorID)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cartKey{id: productID, sizeID: sizeID, colorID: colorID}
	for i := range c.items {
		if c.items[i].key() == key {
			c.items[i].Quantity = quantity
			c.persistLocked()
			return
		}
	}
}

// UpdateOptions re-keys the line identified by (productID, sizeID,
// colorID) to new size/color values; omitted fields keep their current
// value. If another line already has the resulting key the two merge and
// their quantities add up.
func (c *Cart) UpdateOptions(productID, sizeID, colorID string, change OptionChange) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cartKey{id: productID, sizeID: sizeID, colorID: colorID}
	cur := -1
	for i := range c.items {
		if c.items[i].key() == key {
			cur = i
			break
		}
	}
	if cur < 0 {
		return
	}

	next := c.items[cur]
	if change.SizeID != nil {
		next.SizeID = *change.SizeID
	}
	if change.SizeName != nil {
		next.SizeName = *change.SizeName
	}
	if change.ColorID != nil {
		next.ColorID = *change.ColorID
	}
	if change.ColorName != nil {
		next.ColorName = *change.ColorName
	}

	for i := range c.items {
		if i != cur && c.items[i].key() == next.key() {
			c.items[i].Quantity += next.Quantity
			c.items = append(c.items[:cur], c.items[cur+1:]...)
			c.persistLocked()
			return
		}
	}

	c.items[cur] = next
	c.persistLocked()
}

// Clear empties the cart and its cookie.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.cookies.Delete(CookieCart)
}

// Items returns a copy of the current cart lines.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Entries returns the cookie-form view of the cart, the shape checkout
// payloads are built from.
func (c *Cart) Entries() []CartEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entriesLocked()
}

// TotalPrice sums price*quantity over all lines.
func (c *Cart) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, item := range c.items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total
}

// TotalItems sums quantities over all lines.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// IsInCart reports whether any line references the product, in any size
// or color.
func (c *Cart) IsInCart(productID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

// Loading reports whether a Load is in flight.
func (c *Cart) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Cart) entriesLocked() []CartEntry {
	entries := make([]CartEntry, 0, len(c.items))
	for _, item := range c.items {
		entries = append(entries, CartEntry{
			ID:       item.Product.ID,
			SizeID:   item.SizeID,
			ColorID:  item.ColorID,
			Quantity: item.Quantity,
		})
	}
	return entries
}

// persistLocked rewrites the cart cookie. Suppressed while loading so a
// hydration in flight cannot race a stale write.
func (c *Cart) persistLocked() {
	if c.loading {
		return
	}
	c.cookies.Set(CookieCart, EncodeCart(c.entriesLocked()))
}
