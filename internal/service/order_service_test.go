package service

import (
	"context"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeProduct(id string, price float64) models.Product {
	return models.Product{
		ID:     id,
		Name:   "Product " + id,
		Price:  price,
		Status: models.ProductStatusActive,
	}
}

func validOrderRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerName:    "Jane Doe",
		CustomerPhone:   "+10000000000",
		DeliveryAddress: "1 Main Street",
		CartItems: []CartItemRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1, SelectedSizeID: "s1"},
		},
	}
}

func TestCreateOrderSnapshotsPrice(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = activeProduct("p1", 100)
	fs.products["p2"] = activeProduct("p2", 50)
	pub := &fakePublisher{}

	svc := NewOrderService(fs, pub)

	detail, err := svc.Create(context.Background(), validOrderRequest())
	require.NoError(t, err)
	require.NotNil(t, detail)
	require.Len(t, detail.Items, 2)

	assert.Equal(t, models.OrderStatusCreated, detail.Status)
	assert.Equal(t, 250.0, detail.TotalAmount)

	// Prices come from the store's current product rows, never the client.
	priceByProduct := map[string]float64{}
	for _, item := range fs.createdItems {
		priceByProduct[item.ProductID] = item.Price
	}
	assert.Equal(t, 100.0, priceByProduct["p1"])
	assert.Equal(t, 50.0, priceByProduct["p2"])

	// Later price changes must not affect the stored snapshot.
	fs.products["p1"] = activeProduct("p1", 999)
	stored, err := svc.ByIDs(context.Background(), []string{detail.ID})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 100.0, stored[0].Items[0].Price)

	require.Len(t, pub.events, 1)
	assert.Equal(t, detail.ID, pub.events[0].OrderID)
	assert.Equal(t, 250.0, pub.events[0].TotalAmount)
}

func TestCreateOrderRejectsUnavailableProducts(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = activeProduct("p1", 100)
	fs.products["p2"] = models.Product{ID: "p2", Price: 50, Status: models.ProductStatusInactive}

	svc := NewOrderService(fs, nil)

	_, err := svc.Create(context.Background(), validOrderRequest())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	// No partial writes: the whole order is rejected before the transaction.
	assert.Equal(t, 0, fs.createOrderCalls)
	assert.Empty(t, fs.orders)
}

func TestCreateOrderValidation(t *testing.T) {
	fs := newFakeStore()
	svc := NewOrderService(fs, nil)

	cases := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"missing name", func(r *CreateOrderRequest) { r.CustomerName = "  " }},
		{"missing phone", func(r *CreateOrderRequest) { r.CustomerPhone = "" }},
		{"missing address", func(r *CreateOrderRequest) { r.DeliveryAddress = "" }},
		{"empty cart", func(r *CreateOrderRequest) { r.CartItems = nil }},
		{"zero quantity", func(r *CreateOrderRequest) { r.CartItems[0].Quantity = 0 }},
		{"missing product id", func(r *CreateOrderRequest) { r.CartItems[0].ProductID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validOrderRequest()
			tc.mutate(req)
			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, 0, fs.createOrderCalls)
		})
	}
}

func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = activeProduct("p1", 10)
	pub := &fakePublisher{failErr: assert.AnError}

	svc := NewOrderService(fs, pub)

	req := validOrderRequest()
	req.CartItems = req.CartItems[:1]

	detail, err := svc.Create(context.Background(), req)
	require.NoError(t, err, "notification failure must not fail the order")
	require.NotNil(t, detail)
	assert.Equal(t, 1, fs.createOrderCalls)
}

func TestByIDsPreservesCallerOrder(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = activeProduct("p1", 10)
	svc := NewOrderService(fs, nil)

	var ids []string
	for i := 0; i < 5; i++ {
		req := validOrderRequest()
		req.CartItems = req.CartItems[:1]
		detail, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		ids = append(ids, detail.ID)
	}

	// Reversed caller order, with one unknown id mixed in.
	want := []string{ids[4], ids[2], ids[0], ids[3], ids[1]}
	query := append([]string{}, want[:2]...)
	query = append(query, "no-such-order")
	query = append(query, want[2:]...)

	details, err := svc.ByIDs(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, details, 5)
	for i, d := range details {
		assert.Equal(t, want[i], d.ID)
	}
}

func TestUpdateStatus(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = activeProduct("p1", 10)
	svc := NewOrderService(fs, nil)

	req := validOrderRequest()
	req.CartItems = req.CartItems[:1]
	detail, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	err = svc.UpdateStatus(context.Background(), detail.ID, models.OrderStatusEnroute, "")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusEnroute, fs.statusUpdates[detail.ID])

	err = svc.UpdateStatus(context.Background(), detail.ID, "TELEPORTED", "")
	assert.True(t, IsValidation(err))

	err = svc.UpdateStatus(context.Background(), "ghost", models.OrderStatusEnroute, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
