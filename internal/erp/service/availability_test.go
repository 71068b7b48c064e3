package service

import (
	"testing"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// mapFetcher builds an inventoryFetcher backed by a static productID → semi_finished map
func mapFetcher(semiFinished map[string]int64) inventoryFetcher {
	return func(productID string) (*entity.InventoryRecord, bool, error) {
		stock, ok := semiFinished[productID]
		if !ok {
			return nil, false, nil
		}
		return &entity.InventoryRecord{ProductID: productID, SemiFinished: stock}, true, nil
	}
}

func TestUnitsSupported(t *testing.T) {
	cases := []struct {
		stock, perUnit, want int64
	}{
		{10, 2, 5},
		{10, 3, 3}, // 向下取整
		{2, 3, 0},
		{0, 2, 0},
		{10, 0, 0}, // 单耗非法时不支撑任何数量
		{10, -1, 0},
	}
	for _, c := range cases {
		if got := unitsSupported(c.stock, c.perUnit); got != c.want {
			t.Errorf("unitsSupported(%d, %d) = %d, want %d", c.stock, c.perUnit, got, c.want)
		}
	}
}

func TestMinAvailability(t *testing.T) {
	if got := minAvailability(nil); got != 0 {
		t.Errorf("minAvailability(nil) = %d, want 0", got)
	}
	if got := minAvailability([]int64{7}); got != 7 {
		t.Errorf("minAvailability([7]) = %d, want 7", got)
	}
	if got := minAvailability([]int64{5, 3, 9}); got != 3 {
		t.Errorf("minAvailability([5 3 9]) = %d, want 3", got)
	}
}

// TestAvailabilityFor covers the base item constraint chain: each base product
// contributes semi_finished / per-combo quantity, and the minimum wins.
func TestAvailabilityFor(t *testing.T) {
	combo := &entity.ComboProduct{
		Items: []entity.ComboProductItem{
			{BaseProductID: "base-a", Quantity: 2},
			{BaseProductID: "base-b", Quantity: 1},
		},
	}
	fetch := mapFetcher(map[string]int64{
		"base-a": 10, // 10/2 = 5
		"base-b": 5,  // 5/1 = 5
	})

	got, err := availabilityFor(combo, fetch)
	if err != nil {
		t.Fatalf("availabilityFor failed: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected availability 5, got %d", got)
	}
}

// TestAvailabilityForPackagingLimit verifies the two-level packaging conversion:
// packaging stock → supported base units → supported combo units.
func TestAvailabilityForPackagingLimit(t *testing.T) {
	combo := &entity.ComboProduct{
		Items: []entity.ComboProductItem{
			{
				BaseProductID: "base-a",
				Quantity:      2,
				PackagingRelations: []entity.ComboItemPackagingRelation{
					{PackagingID: "pkg-box", Quantity: 3}, // 每件基础商品耗 3
				},
			},
		},
		PackagingRelations: []entity.ComboProductPackagingRelation{
			{PackagingID: "pkg-outer", Quantity: 1},
		},
	}
	fetch := mapFetcher(map[string]int64{
		"base-a":    100, // 100/2 = 50
		"pkg-box":   13,  // 13/3 = 4 件基础商品 → 4/2 = 2 件组合
		"pkg-outer": 10,  // 10/1 = 10
	})

	got, err := availabilityFor(combo, fetch)
	if err != nil {
		t.Fatalf("availabilityFor failed: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected packaging-limited availability 2, got %d", got)
	}
}

// TestAvailabilityForMissingRecord verifies that a dependency without an
// inventory record short-circuits the whole combo to 0.
func TestAvailabilityForMissingRecord(t *testing.T) {
	combo := &entity.ComboProduct{
		Items: []entity.ComboProductItem{
			{BaseProductID: "base-a", Quantity: 1},
			{BaseProductID: "base-missing", Quantity: 1},
		},
	}
	fetch := mapFetcher(map[string]int64{"base-a": 100})

	got, err := availabilityFor(combo, fetch)
	if err != nil {
		t.Fatalf("availabilityFor failed: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 when a record is missing, got %d", got)
	}
}

func TestAvailabilityForNoItems(t *testing.T) {
	combo := &entity.ComboProduct{}
	got, err := availabilityFor(combo, mapFetcher(nil))
	if err != nil {
		t.Fatalf("availabilityFor failed: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 for combo without items, got %d", got)
	}
}
