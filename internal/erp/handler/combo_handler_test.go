package handler

import (
	"net/http"
	"testing"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
	"github.com/Castor6/dsx-erp/internal/erp/testutil"
)

func setupComboTest(t *testing.T) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewComboService(repos.Combo, repos.Product, repos.Warehouse, repos.Inventory, db)
	h := NewComboHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/combo-products", h.ListCombos)
	api.POST("/combo-products", h.CreateCombo)
	api.GET("/combo-products/:id", h.GetCombo)
	api.PUT("/combo-products/:id", h.UpdateCombo)
	api.DELETE("/combo-products/:id", h.DeleteCombo)
	api.GET("/combo-products/:id/available", h.AvailableToAssemble)
	api.POST("/combo-products/assemble", h.Assemble)
	api.POST("/combo-products/ship", h.ShipCombo)
	api.GET("/inventory/combo/records", h.ListRecords)
	api.GET("/inventory/combo/summary", h.Summary)
	api.GET("/inventory/combo/transactions", h.ListTransactions)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

type comboFixture struct {
	Warehouse *entity.Warehouse
	Base      *entity.Product
	ItemPkg   *entity.Product
	ComboPkg  *entity.Product
}

func seedComboFixture(t *testing.T, env *testutil.TestEnv) comboFixture {
	t.Helper()
	wh := testutil.SeedWarehouse(t, env.DB, "主仓")
	return comboFixture{
		Warehouse: wh,
		Base:      testutil.SeedProduct(t, env.DB, "基础商品A", "SKU-BASE", entity.SaleTypeProduct, wh.ID),
		ItemPkg:   testutil.SeedProduct(t, env.DB, "内盒", "PKG-INNER", entity.SaleTypePackaging, wh.ID),
		ComboPkg:  testutil.SeedProduct(t, env.DB, "外箱", "PKG-OUTER", entity.SaleTypePackaging, wh.ID),
	}
}

// createTestCombo posts a combo: 2 base units per combo, inner box 3 per base unit,
// outer box 1 per combo.
func createTestCombo(t *testing.T, env *testutil.TestEnv, token string, fx comboFixture, sku string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{
		"name": "组合商品A",
		"sku":  sku,
		"items": []map[string]interface{}{
			{
				"base_product_id": fx.Base.ID,
				"quantity":        2,
				"packaging_relations": []map[string]interface{}{
					{"packaging_id": fx.ItemPkg.ID, "quantity": 3},
				},
			},
		},
		"packaging_relations": []map[string]interface{}{
			{"packaging_id": fx.ComboPkg.ID, "quantity": 1},
		},
		"warehouse_ids": []string{fx.Warehouse.ID},
	}
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseResponse(w)["data"].(map[string]interface{})
}

// TestComboCreate tests combo creation together with zero-stock records per warehouse
func TestComboCreate(t *testing.T) {
	env := setupComboTest(t)
	token := testutil.DefaultTestToken()
	fx := seedComboFixture(t, env)

	data := createTestCombo(t, env, token, fx, "SKU-COMBO")
	comboID := data["id"].(string)

	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 combo item, got %d", len(items))
	}

	// Inventory records are created for each selected warehouse
	var recCount int64
	env.DB.Model(&entity.ComboInventoryRecord{}).
		Where("combo_product_id = ? AND warehouse_id = ?", comboID, fx.Warehouse.ID).
		Count(&recCount)
	if recCount != 1 {
		t.Fatalf("expected 1 combo inventory record, got %d", recCount)
	}

	// SKU is unique across products and combos
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products",
		map[string]interface{}{
			"name": "重复SKU",
			"sku":  "SKU-BASE", // 已被基础商品占用
			"items": []map[string]interface{}{
				{"base_product_id": fx.Base.ID, "quantity": 1},
			},
			"packaging_relations": []map[string]interface{}{
				{"packaging_id": fx.ComboPkg.ID, "quantity": 1},
			},
			"warehouse_ids": []string{fx.Warehouse.ID},
		}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate SKU, got %d: %s", w.Code, w.Body.String())
	}
}

// TestComboCreateRejectsWrongTypes tests sale_type validation of referenced products
func TestComboCreateRejectsWrongTypes(t *testing.T) {
	env := setupComboTest(t)
	token := testutil.DefaultTestToken()
	fx := seedComboFixture(t, env)

	// Packaging product cannot be a base item
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products",
		map[string]interface{}{
			"name": "非法组合",
			"sku":  "SKU-BAD1",
			"items": []map[string]interface{}{
				{"base_product_id": fx.ItemPkg.ID, "quantity": 1},
			},
			"packaging_relations": []map[string]interface{}{
				{"packaging_id": fx.ComboPkg.ID, "quantity": 1},
			},
			"warehouse_ids": []string{fx.Warehouse.ID},
		}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for packaging as base item, got %d: %s", w.Code, w.Body.String())
	}

	// Normal product cannot be used as packaging
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products",
		map[string]interface{}{
			"name": "非法组合",
			"sku":  "SKU-BAD2",
			"items": []map[string]interface{}{
				{"base_product_id": fx.Base.ID, "quantity": 1},
			},
			"packaging_relations": []map[string]interface{}{
				{"packaging_id": fx.Base.ID, "quantity": 1},
			},
			"warehouse_ids": []string{fx.Warehouse.ID},
		}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for product as packaging, got %d: %s", w2.Code, w2.Body.String())
	}
}

// TestComboAvailability tests the min-over-constraints availability calculation
func TestComboAvailability(t *testing.T) {
	env := setupComboTest(t)
	token := testutil.DefaultTestToken()
	fx := seedComboFixture(t, env)

	data := createTestCombo(t, env, token, fx, "SKU-COMBO")
	comboID := data["id"].(string)

	// Before any stock exists, availability is 0 (missing records count as unconfigured)
	w := testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/combo-products/"+comboID+"/available?warehouse_id="+fx.Warehouse.ID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["available_quantity"].(float64) != 0 {
		t.Fatalf("expected 0 before stock, got %v", resp["data"])
	}

	// base 100/2 = 50, inner 13/3 = 4 base → 4/2 = 2 combos, outer 10/1 = 10 → min 2
	testutil.SeedInventory(t, env.DB, fx.Base.ID, fx.Warehouse.ID, 0, 100, 0, 0)
	testutil.SeedInventory(t, env.DB, fx.ItemPkg.ID, fx.Warehouse.ID, 0, 13, 0, 0)
	testutil.SeedInventory(t, env.DB, fx.ComboPkg.ID, fx.Warehouse.ID, 0, 10, 0, 0)

	w2 := testutil.DoRequest(env.Router, http.MethodGet,
		"/api/v1/combo-products/"+comboID+"/available?warehouse_id="+fx.Warehouse.ID, nil, token)
	resp2 := testutil.ParseResponse(w2)
	if resp2["data"].(map[string]interface{})["available_quantity"].(float64) != 2 {
		t.Fatalf("expected availability 2, got %v", resp2["data"])
	}
}

// TestComboAssembleAndShip tests assembly stock deduction and combo shipping
func TestComboAssembleAndShip(t *testing.T) {
	env := setupComboTest(t)
	token := testutil.DefaultTestToken()
	fx := seedComboFixture(t, env)

	data := createTestCombo(t, env, token, fx, "SKU-COMBO")
	comboID := data["id"].(string)

	testutil.SeedInventory(t, env.DB, fx.Base.ID, fx.Warehouse.ID, 0, 100, 0, 0)
	testutil.SeedInventory(t, env.DB, fx.ItemPkg.ID, fx.Warehouse.ID, 0, 13, 0, 0)
	testutil.SeedInventory(t, env.DB, fx.ComboPkg.ID, fx.Warehouse.ID, 0, 10, 0, 0)

	// Assemble 2: base 2×2=4, inner 3×4=12, outer 1×2=2
	w := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products/assemble",
		map[string]interface{}{
			"combo_product_id": comboID,
			"warehouse_id":     fx.Warehouse.ID,
			"quantity":         2,
		}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var baseRec, innerRec, outerRec entity.InventoryRecord
	env.DB.Where("product_id = ? AND warehouse_id = ?", fx.Base.ID, fx.Warehouse.ID).First(&baseRec)
	env.DB.Where("product_id = ? AND warehouse_id = ?", fx.ItemPkg.ID, fx.Warehouse.ID).First(&innerRec)
	env.DB.Where("product_id = ? AND warehouse_id = ?", fx.ComboPkg.ID, fx.Warehouse.ID).First(&outerRec)
	if baseRec.SemiFinished != 96 || innerRec.SemiFinished != 1 || outerRec.SemiFinished != 8 {
		t.Fatalf("unexpected deductions: base %d inner %d outer %d",
			baseRec.SemiFinished, innerRec.SemiFinished, outerRec.SemiFinished)
	}

	var comboRec entity.ComboInventoryRecord
	env.DB.Where("combo_product_id = ? AND warehouse_id = ?", comboID, fx.Warehouse.ID).First(&comboRec)
	if comboRec.Finished != 2 {
		t.Fatalf("expected combo finished 2, got %d", comboRec.Finished)
	}

	// Inner boxes are exhausted (1 left, need 12 per 2 combos), further assembly fails
	w2 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products/assemble",
		map[string]interface{}{
			"combo_product_id": comboID,
			"warehouse_id":     fx.Warehouse.ID,
			"quantity":         1,
		}, token)
	if w2.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for insufficient stock, got %d: %s", w2.Code, w2.Body.String())
	}

	// Ship 1 of 2 finished combos
	w3 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products/ship",
		map[string]interface{}{
			"combo_product_id": comboID,
			"warehouse_id":     fx.Warehouse.ID,
			"quantity":         1,
		}, token)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
	env.DB.Where("combo_product_id = ? AND warehouse_id = ?", comboID, fx.Warehouse.ID).First(&comboRec)
	if comboRec.Finished != 1 || comboRec.Shipped != 1 {
		t.Fatalf("expected finished 1 / shipped 1, got %d / %d", comboRec.Finished, comboRec.Shipped)
	}

	// Shipping more than finished stock fails
	w4 := testutil.DoRequest(env.Router, http.MethodPost, "/api/v1/combo-products/ship",
		map[string]interface{}{
			"combo_product_id": comboID,
			"warehouse_id":     fx.Warehouse.ID,
			"quantity":         5,
		}, token)
	if w4.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for over-shipping, got %d: %s", w4.Code, w4.Body.String())
	}

	// Assemble and ship leave an audit trail
	var txCount int64
	env.DB.Model(&entity.ComboInventoryTransaction{}).
		Where("combo_product_id = ?", comboID).Count(&txCount)
	if txCount != 2 {
		t.Fatalf("expected 2 combo transactions, got %d", txCount)
	}
}

// TestComboDelete tests that deleting a combo removes its items and inventory records
func TestComboDelete(t *testing.T) {
	env := setupComboTest(t)
	token := testutil.DefaultTestToken()
	fx := seedComboFixture(t, env)

	data := createTestCombo(t, env, token, fx, "SKU-COMBO")
	comboID := data["id"].(string)

	w := testutil.DoRequest(env.Router, http.MethodDelete, "/api/v1/combo-products/"+comboID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	env.DB.Model(&entity.ComboProduct{}).Where("id = ?", comboID).Count(&count)
	if count != 0 {
		t.Fatal("expected combo to be deleted")
	}
	env.DB.Model(&entity.ComboProductItem{}).Where("combo_product_id = ?", comboID).Count(&count)
	if count != 0 {
		t.Fatal("expected combo items to be deleted")
	}
	env.DB.Model(&entity.ComboInventoryRecord{}).Where("combo_product_id = ?", comboID).Count(&count)
	if count != 0 {
		t.Fatal("expected combo inventory records to be deleted")
	}
}
