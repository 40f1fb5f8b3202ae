// Package client is the headless storefront client: the cookie-backed cart
// and favorites state layer used by browser sessions. State that matters
// (ids, chosen options, quantities) lives in compact cookies; display data
// is always re-fetched from the backend, never trusted from client storage.
package client

import (
	"fmt"
	"strconv"
	"strings"
)

// Cookie names used by the storefront.
const (
	CookieCart      = "cart"
	CookieFavorites = "favorites"
	CookieOrders    = "orders"
)

// CartEntry is the compact cookie form of one cart line. Identity is the
// (ID, SizeID, ColorID) triple; the same product in another size or color
// is a distinct entry.
type CartEntry struct {
	ID       string
	SizeID   string
	ColorID  string
	Quantity int
}

// EncodeCart renders entries as "id:sizeId:colorId:quantity" joined by ";".
// Ids are generated server-side and never contain ":" or ";".
func EncodeCart(entries []CartEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s:%s:%s:%d", e.ID, e.SizeID, e.ColorID, e.Quantity))
	}
	return strings.Join(parts, ";")
}

// DecodeCart parses the cart cookie. Empty segments and entries without an
// id are dropped; missing size/color default to empty; an unparseable or
// non-positive quantity falls back to 1.
func DecodeCart(raw string) []CartEntry {
	var entries []CartEntry
	for _, segment := range strings.Split(raw, ";") {
		if segment == "" {
			continue
		}
		fields := strings.Split(segment, ":")
		if fields[0] == "" {
			continue
		}

		entry := CartEntry{ID: fields[0], Quantity: 1}
		if len(fields) > 1 {
			entry.SizeID = fields[1]
		}
		if len(fields) > 2 {
			entry.ColorID = fields[2]
		}
		if len(fields) > 3 {
			if q, err := strconv.Atoi(fields[3]); err == nil && q > 0 {
				entry.Quantity = q
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// EncodeIDList renders an id list for the favorites and orders cookies.
func EncodeIDList(ids []string) string {
	return strings.Join(ids, ",")
}

// DecodeIDList parses an id-list cookie, dropping empty segments.
func DecodeIDList(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
