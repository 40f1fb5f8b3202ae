package client

// RememberOrder appends an order id to the orders cookie so the session
// can look its orders up later. Already-remembered ids are not repeated.
func RememberOrder(cookies CookieStore, orderID string) {
	if orderID == "" {
		return
	}
	ids := DecodeIDList(cookies.Get(CookieOrders))
	for _, id := range ids {
		if id == orderID {
			return
		}
	}
	cookies.Set(CookieOrders, EncodeIDList(append(ids, orderID)))
}

// OrderIDs returns the order ids remembered by this session.
func OrderIDs(cookies CookieStore) []string {
	return DecodeIDList(cookies.Get(CookieOrders))
}
