package service

import (
	"strings"
	"testing"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// TestRecomputePOStatus verifies status derivation from line-item received quantities
func TestRecomputePOStatus(t *testing.T) {
	cases := []struct {
		name  string
		items []entity.PurchaseOrderItem
		want  string
	}{
		{
			name:  "no items",
			items: nil,
			want:  entity.POStatusPending,
		},
		{
			name: "nothing received",
			items: []entity.PurchaseOrderItem{
				{Quantity: 10, ReceivedQuantity: 0},
				{Quantity: 5, ReceivedQuantity: 0},
			},
			want: entity.POStatusPending,
		},
		{
			name: "partially received",
			items: []entity.PurchaseOrderItem{
				{Quantity: 10, ReceivedQuantity: 4},
				{Quantity: 5, ReceivedQuantity: 0},
			},
			want: entity.POStatusPartial,
		},
		{
			name: "one line full one line empty",
			items: []entity.PurchaseOrderItem{
				{Quantity: 10, ReceivedQuantity: 10},
				{Quantity: 5, ReceivedQuantity: 0},
			},
			want: entity.POStatusPartial,
		},
		{
			name: "all lines full",
			items: []entity.PurchaseOrderItem{
				{Quantity: 10, ReceivedQuantity: 10},
				{Quantity: 5, ReceivedQuantity: 5},
			},
			want: entity.POStatusCompleted,
		},
	}

	for _, c := range cases {
		if got := recomputePOStatus(c.items); got != c.want {
			t.Errorf("%s: recomputePOStatus = %q, want %q", c.name, got, c.want)
		}
	}
}

// TestGenerateOrderNumber verifies the PO-XXXXXXXX order number shape
func TestGenerateOrderNumber(t *testing.T) {
	num := generateOrderNumber()
	if !strings.HasPrefix(num, "PO-") {
		t.Fatalf("expected PO- prefix, got %q", num)
	}
	suffix := strings.TrimPrefix(num, "PO-")
	if len(suffix) != 8 {
		t.Fatalf("expected 8-char suffix, got %q", suffix)
	}
	if suffix != strings.ToUpper(suffix) {
		t.Fatalf("expected upper-case suffix, got %q", suffix)
	}
	if num == generateOrderNumber() {
		t.Fatal("expected order numbers to be unique")
	}
}
