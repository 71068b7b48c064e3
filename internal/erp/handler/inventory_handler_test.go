package handler

import (
	"net/http"
	"testing"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
	"github.com/Castor6/dsx-erp/internal/erp/testutil"
)

func setupInventoryTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewInventoryService(repos.Inventory, repos.Product, db)
	h := NewInventoryHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/inventory/records", h.ListRecords)
	api.GET("/inventory/summary", h.Summary)
	api.POST("/inventory/package", h.Pack)
	api.POST("/inventory/ship", h.Ship)
	api.GET("/inventory/transactions", h.ListTransactions)
	api.GET("/inventory/product/:productId/packaging", h.ProductPackagingStock)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

// seedPackagingRelation links a product to a packaging material with a per-unit quantity
func seedPackagingRelation(t *testing.T, env *testutil.TestEnv, productID, packagingID string, qty int64) {
	t.Helper()
	rel := &entity.ProductPackagingRelation{
		ProductID:   productID,
		PackagingID: packagingID,
		Quantity:    qty,
	}
	if err := env.DB.Create(rel).Error; err != nil {
		t.Fatalf("Failed to seed packaging relation: %v", err)
	}
}

// TestInventoryPackConsumesPackaging tests that packing a product consumes its packaging stock
func TestInventoryPackConsumesPackaging(t *testing.T) {
	env := setupInventoryTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)
	pkg := testutil.SeedProduct(t, env.DB, "纸箱", "PKG-BOX", entity.SaleTypePackaging, wh.ID)
	seedPackagingRelation(t, env, prod.ID, pkg.ID, 2) // 每件商品耗 2 个纸箱

	testutil.SeedInventory(t, env.DB, prod.ID, wh.ID, 0, 10, 0, 0)
	testutil.SeedInventory(t, env.DB, pkg.ID, wh.ID, 0, 20, 0, 0)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/inventory/package",
		map[string]interface{}{"product_id": prod.ID, "warehouse_id": wh.ID, "quantity": 5}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var prodRec, pkgRec entity.InventoryRecord
	env.DB.Where("product_id = ? AND warehouse_id = ?", prod.ID, wh.ID).First(&prodRec)
	env.DB.Where("product_id = ? AND warehouse_id = ?", pkg.ID, wh.ID).First(&pkgRec)

	if prodRec.SemiFinished != 5 || prodRec.Finished != 5 {
		t.Fatalf("expected product semi 5 / finished 5, got %d / %d", prodRec.SemiFinished, prodRec.Finished)
	}
	// 5 件 × 2 = 10 个纸箱被消耗
	if pkgRec.SemiFinished != 10 {
		t.Fatalf("expected packaging semi_finished 10, got %d", pkgRec.SemiFinished)
	}

	// Consumption transaction records a negative quantity
	var consumption entity.InventoryTransaction
	if err := env.DB.Where("product_id = ? AND transaction_type = ?",
		pkg.ID, entity.TxTypePackagingConsumption).First(&consumption).Error; err != nil {
		t.Fatalf("expected consumption transaction: %v", err)
	}
	if consumption.Quantity != -10 {
		t.Fatalf("expected consumption quantity -10, got %d", consumption.Quantity)
	}
}

// TestInventoryPackInsufficientPackaging tests that packing fails when packaging stock is short
func TestInventoryPackInsufficientPackaging(t *testing.T) {
	env := setupInventoryTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)
	pkg := testutil.SeedProduct(t, env.DB, "纸箱", "PKG-BOX", entity.SaleTypePackaging, wh.ID)
	seedPackagingRelation(t, env, prod.ID, pkg.ID, 2)

	testutil.SeedInventory(t, env.DB, prod.ID, wh.ID, 0, 10, 0, 0)
	testutil.SeedInventory(t, env.DB, pkg.ID, wh.ID, 0, 9, 0, 0) // 需要 10

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/inventory/package",
		map[string]interface{}{"product_id": prod.ID, "warehouse_id": wh.ID, "quantity": 5}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for insufficient packaging, got %d: %s", w.Code, w.Body.String())
	}

	// Transaction rolls back: nothing is consumed, nothing is packed
	var prodRec, pkgRec entity.InventoryRecord
	env.DB.Where("product_id = ? AND warehouse_id = ?", prod.ID, wh.ID).First(&prodRec)
	env.DB.Where("product_id = ? AND warehouse_id = ?", pkg.ID, wh.ID).First(&pkgRec)
	if prodRec.SemiFinished != 10 || prodRec.Finished != 0 || pkgRec.SemiFinished != 9 {
		t.Fatalf("expected rollback, got product %d/%d packaging %d",
			prodRec.SemiFinished, prodRec.Finished, pkgRec.SemiFinished)
	}
}

// TestInventoryPackPackagingType tests that packing a packaging product skips consumption
func TestInventoryPackPackagingType(t *testing.T) {
	env := setupInventoryTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	pkg := testutil.SeedProduct(t, env.DB, "纸箱", "PKG-BOX", entity.SaleTypePackaging, wh.ID)
	testutil.SeedInventory(t, env.DB, pkg.ID, wh.ID, 0, 8, 0, 0)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/inventory/package",
		map[string]interface{}{"product_id": pkg.ID, "warehouse_id": wh.ID, "quantity": 3}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec entity.InventoryRecord
	env.DB.Where("product_id = ? AND warehouse_id = ?", pkg.ID, wh.ID).First(&rec)
	if rec.SemiFinished != 5 || rec.Finished != 3 {
		t.Fatalf("expected semi 5 / finished 3, got %d / %d", rec.SemiFinished, rec.Finished)
	}
}

// TestInventoryShip tests finished → shipped transfer and insufficient stock rejection
func TestInventoryShip(t *testing.T) {
	env := setupInventoryTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)
	testutil.SeedInventory(t, env.DB, prod.ID, wh.ID, 0, 0, 6, 0)

	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/inventory/ship",
		map[string]interface{}{"product_id": prod.ID, "warehouse_id": wh.ID, "quantity": 4}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var rec entity.InventoryRecord
	env.DB.Where("product_id = ? AND warehouse_id = ?", prod.ID, wh.ID).First(&rec)
	if rec.Finished != 2 || rec.Shipped != 4 {
		t.Fatalf("expected finished 2 / shipped 4, got %d / %d", rec.Finished, rec.Shipped)
	}

	// Only 2 finished left, shipping 3 must fail
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/inventory/ship",
		map[string]interface{}{"product_id": prod.ID, "warehouse_id": wh.ID, "quantity": 3}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for insufficient finished stock, got %d: %s", w2.Code, w2.Body.String())
	}
}

// TestInventorySummary tests the per-product aggregation across warehouses
func TestInventorySummary(t *testing.T) {
	env := setupInventoryTest(t)
	token := testutil.DefaultTestToken()

	wh1 := testutil.SeedWarehouse(t, env.DB, "仓库一")
	wh2 := testutil.SeedWarehouse(t, env.DB, "仓库二")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh1.ID)

	testutil.SeedInventory(t, env.DB, prod.ID, wh1.ID, 10, 5, 3, 1)
	testutil.SeedInventory(t, env.DB, prod.ID, wh2.ID, 0, 7, 2, 0)

	w := testutil.DoRequest(env.Router, http.MethodGet, "/api/v1/inventory/summary", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 summary row, got %d", len(items))
	}
	row := items[0].(map[string]interface{})
	if row["in_transit"].(float64) != 10 {
		t.Fatalf("expected in_transit 10, got %v", row["in_transit"])
	}
	if row["semi_finished"].(float64) != 12 {
		t.Fatalf("expected semi_finished 12, got %v", row["semi_finished"])
	}
	if row["finished"].(float64) != 5 {
		t.Fatalf("expected finished 5, got %v", row["finished"])
	}
}

// TestProductPackagingStock tests the packaging stock view used before packing
func TestProductPackagingStock(t *testing.T) {
	env := setupInventoryTest(t)
	token := testutil.DefaultTestToken()

	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	prod := testutil.SeedProduct(t, env.DB, "商品A", "SKU-A", entity.SaleTypeProduct, wh.ID)
	pkg := testutil.SeedProduct(t, env.DB, "纸箱", "PKG-BOX", entity.SaleTypePackaging, wh.ID)
	seedPackagingRelation(t, env, prod.ID, pkg.ID, 2)
	testutil.SeedInventory(t, env.DB, pkg.ID, wh.ID, 0, 15, 0, 0)

	w := testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/inventory/product/"+prod.ID+"/packaging?warehouse_id="+wh.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	rows := resp["data"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("expected 1 packaging row, got %d", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["quantity_per_unit"].(float64) != 2 {
		t.Fatalf("expected quantity_per_unit 2, got %v", row["quantity_per_unit"])
	}
	if row["semi_finished"].(float64) != 15 {
		t.Fatalf("expected semi_finished 15, got %v", row["semi_finished"])
	}

	// warehouse_id is required
	w2 := testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/inventory/product/"+prod.ID+"/packaging", nil, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without warehouse_id, got %d: %s", w2.Code, w2.Body.String())
	}
}
