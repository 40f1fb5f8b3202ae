package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LegacyFavoritesKey is the browser-storage key favorites lived under
// before the cookie format.
const LegacyFavoritesKey = "favorites"

const verifyTimeout = 10 * time.Second

// Favorites is the cookie-backed favorites store. Adds are optimistic:
// the product appears immediately and a background check against the
// backend rolls it back only if the product turns out to be gone or
// inactive. A transport failure during the check keeps the entry.
type Favorites struct {
	mu       sync.Mutex
	cookies  CookieStore
	storage  LegacyStorage
	hydrator Hydrator
	logger   *zap.Logger

	items   []Product
	loading bool
	loadSeq uint64

	// gens ties each entry to the Add call that created it, so a slow
	// verification cannot roll back an entry the user has since
	// removed and re-added.
	gens    map[string]uint64
	nextGen uint64

	onRemoved func(productID string)
}

// NewFavorites creates a favorites store. storage may be nil when there
// is no legacy blob to migrate; a nil logger disables logging.
func NewFavorites(cookies CookieStore, storage LegacyStorage, hydrator Hydrator, logger *zap.Logger) *Favorites {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Favorites{
		cookies:  cookies,
		storage:  storage,
		hydrator: hydrator,
		logger:   logger,
		gens:     map[string]uint64{},
	}
}

// OnRemoved registers a callback invoked after an explicit Remove (not
// after a verification rollback).
func (f *Favorites) OnRemoved(fn func(productID string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onRemoved = fn
}

// Load migrates the legacy blob if needed, hydrates the favorites cookie
// and replaces the in-memory items. Ids whose product is gone or
// inactive are dropped and the cookie rewritten without them. A failed
// hydration leaves the cookie untouched. Stale responses from superseded
// loads are discarded.
func (f *Favorites) Load(ctx context.Context) {
	f.mu.Lock()
	f.loading = true
	f.loadSeq++
	seq := f.loadSeq
	f.migrateLocked()
	ids := DecodeIDList(f.cookies.Get(CookieFavorites))
	f.mu.Unlock()

	var products []Product
	hydrated := true
	if len(ids) > 0 {
		var err error
		products, err = f.hydrator.Products(ctx, ids)
		if err != nil {
			f.logger.Warn("Favorites hydration failed", zap.Error(err))
			hydrated = false
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.loadSeq {
		return
	}
	f.loading = false

	if !hydrated {
		f.items = nil
		return
	}

	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok && p.Active() {
			items = append(items, p)
		}
	}
	f.items = items
	f.gens = map[string]uint64{}
	f.persistLocked()
}

// migrateLocked performs the one-time legacy-storage migration: if the
// favorites cookie is empty and the old JSON blob exists, its ids seed
// the cookie and the blob is deleted. A malformed blob is deleted
// without seeding anything.
func (f *Favorites) migrateLocked() {
	if f.storage == nil || f.cookies.Get(CookieFavorites) != "" {
		return
	}
	blob := f.storage.Get(LegacyFavoritesKey)
	if blob == "" {
		return
	}

	var legacy []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(blob), &legacy); err != nil {
		f.logger.Warn("Dropping malformed legacy favorites blob", zap.Error(err))
		f.storage.Delete(LegacyFavoritesKey)
		return
	}

	ids := make([]string, 0, len(legacy))
	for _, entry := range legacy {
		if entry.ID != "" {
			ids = append(ids, entry.ID)
		}
	}
	if len(ids) > 0 {
		f.cookies.Set(CookieFavorites, EncodeIDList(ids))
	}
	f.storage.Delete(LegacyFavoritesKey)
	f.logger.Info("Migrated legacy favorites", zap.Int("count", len(ids)))
}

// Add optimistically favorites the product and kicks off a background
// verification against the backend. Returns false if the product data is
// incomplete or the product is already a favorite.
func (f *Favorites) Add(p Product) bool {
	if p.ID == "" || p.CategoryID == "" || p.CategoryName == "" {
		f.logger.Warn("Rejected favorite with incomplete product data",
			zap.String("product_id", p.ID))
		return false
	}

	f.mu.Lock()
	for _, item := range f.items {
		if item.ID == p.ID {
			f.mu.Unlock()
			return false
		}
	}
	f.items = append(f.items, p)
	f.nextGen++
	gen := f.nextGen
	f.gens[p.ID] = gen
	f.persistLocked()
	f.mu.Unlock()

	go f.verify(p.ID, gen)
	return true
}

// verify is the compensating half of the optimistic Add: it re-fetches
// the product and removes the entry only on an authoritative
// gone-or-inactive answer, and only if the entry is still the one the
// matching Add created.
func (f *Favorites) verify(productID string, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	products, err := f.hydrator.Products(ctx, []string{productID})
	if err != nil {
		f.logger.Warn("Favorite verification failed, keeping entry",
			zap.String("product_id", productID), zap.Error(err))
		return
	}
	if len(products) > 0 && products[0].Active() {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gens[productID] != gen {
		return
	}
	f.removeLocked(productID)
	f.logger.Info("Rolled back unavailable favorite", zap.String("product_id", productID))
}

// Remove unfavorites the product. Removing an absent id is a no-op.
func (f *Favorites) Remove(productID string) {
	f.mu.Lock()
	removed := f.removeLocked(productID)
	cb := f.onRemoved
	f.mu.Unlock()

	if removed && cb != nil {
		cb(productID)
	}
}

func (f *Favorites) removeLocked(productID string) bool {
	kept := f.items[:0]
	for _, item := range f.items {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(f.items) {
		return false
	}
	f.items = kept
	delete(f.gens, productID)
	f.persistLocked()
	return true
}

// Toggle adds or removes the product and reports whether it is a
// favorite afterwards.
func (f *Favorites) Toggle(p Product) bool {
	if f.IsFavorite(p.ID) {
		f.Remove(p.ID)
		return false
	}
	return f.Add(p)
}

// IsFavorite reports whether the product is currently favorited.
func (f *Favorites) IsFavorite(productID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// Items returns a copy of the current favorites.
func (f *Favorites) Items() []Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Product, len(f.items))
	copy(out, f.items)
	return out
}

// Count returns the number of favorites.
func (f *Favorites) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Loading reports whether a Load is in flight.
func (f *Favorites) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Favorites) persistLocked() {
	if f.loading {
		return
	}
	f.cookies.Set(CookieFavorites, EncodeIDList(f.idsLocked()))
}

func (f *Favorites) idsLocked() []string {
	ids := make([]string, 0, len(f.items))
	for _, item := range f.items {
		ids = append(ids, item.ID)
	}
	return ids
}
