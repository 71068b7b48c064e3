package handler

import (
	"net/http"
	"testing"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
	"github.com/Castor6/dsx-erp/internal/erp/testutil"
)

func setupPurchaseTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewProcurementService(repos.Purchase, repos.Supplier, repos.Warehouse, repos.Product, db)
	h := NewPurchaseHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/purchase-orders", h.ListPOs)
	api.POST("/purchase-orders", h.CreatePO)
	api.GET("/purchase-orders/:id", h.GetPO)
	api.PUT("/purchase-orders/:id", h.UpdatePO)
	api.POST("/purchase-orders/:id/receive", h.ReceivePO)
	api.DELETE("/purchase-orders/:id", h.DeletePO)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// createTestPO posts a purchase order for the given product and returns the response data
func createTestPO(t *testing.T, env *testutil.TestEnv, token, supplierID, warehouseID, productID string, qty int64) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"supplier_id":  supplierID,
		"warehouse_id": warehouseID,
		"purchaser":    "测试采购员",
		"items": []map[string]interface{}{
			{"product_id": productID, "quantity": qty, "unit_price": 2.5},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

// TestPurchaseOrderCreate tests that creating a PO books in-transit inventory
func TestPurchaseOrderCreate(t *testing.T) {
	env := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	sup := testutil.SeedSupplier(t, env.DB, "供应商A")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)

	data := createTestPO(t, env, token, sup.ID, wh.ID, prod.ID, 100)

	orderNumber := data["order_number"].(string)
	if len(orderNumber) != 11 || orderNumber[:3] != "PO-" {
		t.Fatalf("unexpected order number %q", orderNumber)
	}
	if data["status"] != entity.POStatusPending {
		t.Fatalf("expected status pending, got %v", data["status"])
	}
	if data["total_amount"].(float64) != 250 {
		t.Fatalf("expected total 250, got %v", data["total_amount"])
	}

	// In-transit inventory is booked on creation
	var rec entity.InventoryRecord
	if err := env.DB.Where("product_id = ? AND warehouse_id = ?", prod.ID, wh.ID).First(&rec).Error; err != nil {
		t.Fatalf("expected inventory record: %v", err)
	}
	if rec.InTransit != 100 {
		t.Fatalf("expected in_transit 100, got %d", rec.InTransit)
	}

	// Purchase transaction is appended
	var txCount int64
	env.DB.Model(&entity.InventoryTransaction{}).
		Where("product_id = ? AND transaction_type = ?", prod.ID, entity.TxTypePurchase).
		Count(&txCount)
	if txCount != 1 {
		t.Fatalf("expected 1 purchase transaction, got %d", txCount)
	}
}

// TestPurchaseOrderCreateUnknownSupplier tests that referencing a missing supplier fails
func TestPurchaseOrderCreateUnknownSupplier(t *testing.T) {
	env := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)

	body := map[string]interface{}{
		"supplier_id":  "00000000-0000-0000-0000-000000000000",
		"warehouse_id": wh.ID,
		"items": []map[string]interface{}{
			{"product_id": prod.ID, "quantity": 10, "unit_price": 1.0},
		},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders", body, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

// TestPurchaseOrderReceiveFlow tests partial and full receipt with status transitions
func TestPurchaseOrderReceiveFlow(t *testing.T) {
	env := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	sup := testutil.SeedSupplier(t, env.DB, "供应商A")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)

	data := createTestPO(t, env, token, sup.ID, wh.ID, prod.ID, 100)
	poID := data["id"].(string)
	itemID := data["items"].([]interface{})[0].(map[string]interface{})["id"].(string)

	// Partial receipt: 40 of 100
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/receive",
		map[string]interface{}{
			"items": []map[string]interface{}{{"item_id": itemID, "received_quantity": 40}},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for partial receipt, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["status"] != entity.POStatusPartial {
		t.Fatalf("expected status partial, got %v", resp["data"].(map[string]interface{})["status"])
	}

	var rec entity.InventoryRecord
	env.DB.Where("product_id = ? AND warehouse_id = ?", prod.ID, wh.ID).First(&rec)
	if rec.InTransit != 60 || rec.SemiFinished != 40 {
		t.Fatalf("expected in_transit 60 / semi_finished 40, got %d / %d", rec.InTransit, rec.SemiFinished)
	}

	// Over-receipt: 40 received, 70 more would exceed 100
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/receive",
		map[string]interface{}{
			"items": []map[string]interface{}{{"item_id": itemID, "received_quantity": 70}},
		}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for over-receipt, got %d: %s", w2.Code, w2.Body.String())
	}

	// Remaining receipt completes the order
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/receive",
		map[string]interface{}{
			"items": []map[string]interface{}{{"item_id": itemID, "received_quantity": 60}},
		}, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200 for final receipt, got %d: %s", w3.Code, w3.Body.String())
	}
	resp3 := testutil.ParseResponse(w3)
	if resp3["data"].(map[string]interface{})["status"] != entity.POStatusCompleted {
		t.Fatalf("expected status completed, got %v", resp3["data"].(map[string]interface{})["status"])
	}

	env.DB.Where("product_id = ? AND warehouse_id = ?", prod.ID, wh.ID).First(&rec)
	if rec.InTransit != 0 || rec.SemiFinished != 100 {
		t.Fatalf("expected in_transit 0 / semi_finished 100, got %d / %d", rec.InTransit, rec.SemiFinished)
	}

	// Completed orders refuse further receipts
	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/receive",
		map[string]interface{}{
			"items": []map[string]interface{}{{"item_id": itemID, "received_quantity": 1}},
		}, token)
	if w4.Code != http.StatusConflict {
		t.Fatalf("expected 409 for receipt on completed order, got %d: %s", w4.Code, w4.Body.String())
	}
}

// TestPurchaseOrderDelete tests that deleting a pending PO rolls back in-transit stock
func TestPurchaseOrderDelete(t *testing.T) {
	env := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	sup := testutil.SeedSupplier(t, env.DB, "供应商A")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)

	data := createTestPO(t, env, token, sup.ID, wh.ID, prod.ID, 50)
	poID := data["id"].(string)

	w := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/purchase-orders/"+poID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// In-transit stock is rolled back
	var rec entity.InventoryRecord
	env.DB.Where("product_id = ? AND warehouse_id = ?", prod.ID, wh.ID).First(&rec)
	if rec.InTransit != 0 {
		t.Fatalf("expected in_transit rolled back to 0, got %d", rec.InTransit)
	}

	// Cancel transaction is appended
	var txCount int64
	env.DB.Model(&entity.InventoryTransaction{}).
		Where("product_id = ? AND transaction_type = ?", prod.ID, entity.TxTypeCancelPurchase).
		Count(&txCount)
	if txCount != 1 {
		t.Fatalf("expected 1 cancel transaction, got %d", txCount)
	}

	// Order and items are gone
	var poCount int64
	env.DB.Model(&entity.PurchaseOrder{}).Where("id = ?", poID).Count(&poCount)
	if poCount != 0 {
		t.Fatal("expected purchase order to be deleted")
	}
}

// TestPurchaseOrderDeleteNonPending tests that partially received orders cannot be deleted
func TestPurchaseOrderDeleteNonPending(t *testing.T) {
	env := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	sup := testutil.SeedSupplier(t, env.DB, "供应商A")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)

	data := createTestPO(t, env, token, sup.ID, wh.ID, prod.ID, 50)
	poID := data["id"].(string)
	itemID := data["items"].([]interface{})[0].(map[string]interface{})["id"].(string)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/purchase-orders/"+poID+"/receive",
		map[string]interface{}{
			"items": []map[string]interface{}{{"item_id": itemID, "received_quantity": 10}},
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w2 := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/purchase-orders/"+poID, nil, token)
	if w2.Code != http.StatusConflict {
		t.Fatalf("expected 409 for delete on partial order, got %d: %s", w2.Code, w2.Body.String())
	}
}

// TestPurchaseOrderList tests list filtering by status
func TestPurchaseOrderList(t *testing.T) {
	env := setupPurchaseTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	sup := testutil.SeedSupplier(t, env.DB, "供应商A")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)

	createTestPO(t, env, token, sup.ID, wh.ID, prod.ID, 10)
	createTestPO(t, env, token, sup.ID, wh.ID, prod.ID, 20)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders?status=pending", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(items))
	}
	pagination := data["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 2 {
		t.Fatalf("expected total 2, got %v", pagination["total"])
	}

	w2 := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/purchase-orders?status=completed", nil, token)
	resp2 := testutil.ParseResponse(w2)
	items2 := resp2["data"].(map[string]interface{})["items"].([]interface{})
	if len(items2) != 0 {
		t.Fatalf("expected 0 completed orders, got %d", len(items2))
	}
}
