package entity

import (
	"time"
)

// InventoryStatus 库存状态（四段流转：在途 → 半成品 → 成品 → 出库）
const (
	StatusInTransit    = "in_transit"    // 在途
	StatusSemiFinished = "semi_finished" // 半成品
	StatusFinished     = "finished"      // 成品
	StatusShipped      = "shipped"       // 出库
)

// TransactionType 库存交易类型
const (
	TxTypePurchase             = "purchase"              // 采购下单，计入在途
	TxTypeArrival              = "arrival"               // 到货，在途转半成品
	TxTypePack                 = "pack"                  // 打包，半成品转成品
	TxTypeShip                 = "ship"                  // 出库
	TxTypePackagingConsumption = "packaging_consumption" // 打包消耗包材
	TxTypeCancelPurchase       = "cancel_purchase"       // 取消采购，冲减在途
)

// InventoryRecord 库存记录，按（商品，仓库）唯一，四个状态计数器恒非负
type InventoryRecord struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID    string    `json:"product_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_inventory_product_warehouse"`
	WarehouseID  string    `json:"warehouse_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_inventory_product_warehouse"`
	InTransit    int64     `json:"in_transit" gorm:"not null;default:0"`
	SemiFinished int64     `json:"semi_finished" gorm:"not null;default:0"`
	Finished     int64     `json:"finished" gorm:"not null;default:0"`
	Shipped      int64     `json:"shipped" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Product   *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (InventoryRecord) TableName() string {
	return "erp_inventory_records"
}

// InventoryTransaction 库存交易流水，只追加不修改
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID       string    `json:"product_id" gorm:"type:uuid;not null;index"`
	WarehouseID     string    `json:"warehouse_id" gorm:"type:uuid;not null;index"`
	TransactionType string    `json:"transaction_type" gorm:"size:32;not null;index"`
	FromStatus      *string   `json:"from_status" gorm:"size:16"`
	ToStatus        *string   `json:"to_status" gorm:"size:16"`
	Quantity        int64     `json:"quantity" gorm:"not null"` // 正=转入/增加，负=消耗/冲减
	ReferenceID     *string   `json:"reference_id" gorm:"type:uuid;index"`
	Notes           string    `json:"notes" gorm:"size:512"`
	CreatedAt       time.Time `json:"created_at"`

	Product   *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (InventoryTransaction) TableName() string {
	return "erp_inventory_transactions"
}
