package entity

import (
	"time"
)

// PurchaseOrderStatus 采购单状态
const (
	POStatusPending   = "pending"   // 待收货
	POStatusPartial   = "partial"   // 部分到货
	POStatusCompleted = "completed" // 已完成
	POStatusCancelled = "cancelled" // 已取消
)

// PurchaseOrder 采购单
type PurchaseOrder struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	OrderNumber string    `json:"order_number" gorm:"size:32;not null;uniqueIndex"`
	SupplierID  string    `json:"supplier_id" gorm:"type:uuid;not null;index"`
	WarehouseID string    `json:"warehouse_id" gorm:"type:uuid;not null;index"`
	Purchaser   string    `json:"purchaser" gorm:"size:64"`
	TotalAmount float64   `json:"total_amount" gorm:"type:decimal(12,2);not null;default:0"`
	Status      string    `json:"status" gorm:"size:16;not null;default:pending;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Supplier  *Supplier           `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Warehouse *Warehouse          `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	Items     []PurchaseOrderItem `json:"items,omitempty" gorm:"foreignKey:PurchaseOrderID"`
}

func (PurchaseOrder) TableName() string {
	return "erp_purchase_orders"
}

// PurchaseOrderItem 采购单明细，received_quantity 累计且永不超过 quantity
type PurchaseOrderItem struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PurchaseOrderID  string    `json:"purchase_order_id" gorm:"type:uuid;not null;index"`
	ProductID        string    `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity         int64     `json:"quantity" gorm:"not null"`
	UnitPrice        float64   `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Subtotal         float64   `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	ReceivedQuantity int64     `json:"received_quantity" gorm:"not null;default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (PurchaseOrderItem) TableName() string {
	return "erp_purchase_order_items"
}
