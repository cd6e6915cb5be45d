package service

import (
	"encoding/json"
	"testing"
	"time"

	"go-printshop-ws/internal/model"
	"go-printshop-ws/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inventoryFixture struct {
	svc      InventoryService
	products *fakeProductRepo
	hub      *ws.Hub
	received chan []byte
}

func newInventoryFixture() *inventoryFixture {
	products := newFakeProductRepo()
	products.seed("A4 Bond Paper", 50)

	hub := ws.NewHub()
	received := make(chan []byte, 8)
	go func() {
		for msg := range hub.Broadcast {
			received <- msg
		}
	}()

	svc := NewInventoryService(products, &fakeTxRunner{}, hub)
	return &inventoryFixture{svc: svc, products: products, hub: hub, received: received}
}

func (fx *inventoryFixture) waitBroadcast(t *testing.T) map[string]interface{} {
	t.Helper()
	select {
	case msg := <-fx.received:
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &payload))
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("no stock broadcast received")
		return nil
	}
}

func (fx *inventoryFixture) assertNoBroadcast(t *testing.T) {
	t.Helper()
	select {
	case msg := <-fx.received:
		t.Fatalf("unexpected stock broadcast: %s", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRestockAddsSheets(t *testing.T) {
	fx := newInventoryFixture()

	updated, err := fx.svc.Restock(1, 25, "admin-id", "admin")
	require.NoError(t, err)

	assert.Equal(t, 75, updated.Quantity)
	assert.Equal(t, 75, fx.products.quantity("A4 Bond Paper"))
}

func TestRestockRejectsNonPositiveAmount(t *testing.T) {
	fx := newInventoryFixture()

	for _, sheets := range []int{0, -10} {
		_, err := fx.svc.Restock(1, sheets, "admin-id", "admin")
		require.Error(t, err, "sheets %d", sheets)
		assert.Equal(t, KindValidation, KindOf(err))
	}
	assert.Equal(t, 50, fx.products.quantity("A4 Bond Paper"))
}

func TestUpdateProductRejectsNegativeQuantity(t *testing.T) {
	fx := newInventoryFixture()

	_, err := fx.svc.UpdateProduct(1, &model.Product{
		ProductName: "A4 Bond Paper",
		Quantity:    -1,
	}, "admin-id", "admin")
	require.Error(t, err)

	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, 50, fx.products.quantity("A4 Bond Paper"))
	fx.assertNoBroadcast(t)
}

func TestUpdateProductMissing(t *testing.T) {
	fx := newInventoryFixture()

	_, err := fx.svc.UpdateProduct(999, &model.Product{ProductName: "Glossy"}, "admin-id", "admin")
	require.Error(t, err)
	assert.Equal(t, KindResource, KindOf(err))
}

// Stock events go out only once the transaction has committed. A rolled
// back update must stay invisible to connected clients.
func TestStockBroadcastOnlyAfterCommit(t *testing.T) {
	fx := newInventoryFixture()

	_, err := fx.svc.Restock(999, 10, "admin-id", "admin")
	require.Error(t, err)
	fx.assertNoBroadcast(t)

	updated, err := fx.svc.Restock(1, 10, "admin-id", "admin")
	require.NoError(t, err)

	payload := fx.waitBroadcast(t)
	assert.Equal(t, "stock_update", payload["type"])
	assert.Equal(t, "product_restocked", payload["action"])

	product, ok := payload["product"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(50), product["old_quantity"])
	assert.Equal(t, float64(updated.Quantity), product["new_quantity"])
}
