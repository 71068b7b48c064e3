package entity

import (
	"time"
)

// ComboTransactionType 组合商品交易类型
const (
	ComboTxTypeAssemble = "assemble" // 组装入库
	ComboTxTypeShip     = "ship"     // 出库
)

// ComboProduct 组合商品，由基础商品加包材组装而成
type ComboProduct struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	SKU       string    `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items              []ComboProductItem              `json:"items,omitempty" gorm:"foreignKey:ComboProductID"`
	PackagingRelations []ComboProductPackagingRelation `json:"packaging_relations,omitempty" gorm:"foreignKey:ComboProductID"`
}

func (ComboProduct) TableName() string {
	return "erp_combo_products"
}

// ComboProductItem 组合商品的基础商品构成（每 1 件组合消耗的基础商品数量）
type ComboProductItem struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ComboProductID string    `json:"combo_product_id" gorm:"type:uuid;not null;index"`
	BaseProductID  string    `json:"base_product_id" gorm:"type:uuid;not null;index"`
	Quantity       int64     `json:"quantity" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	BaseProduct        *Product                     `json:"base_product,omitempty" gorm:"foreignKey:BaseProductID"`
	PackagingRelations []ComboItemPackagingRelation `json:"packaging_relations,omitempty" gorm:"foreignKey:ComboItemID"`
}

func (ComboProductItem) TableName() string {
	return "erp_combo_product_items"
}

// ComboItemPackagingRelation 组合内基础商品的包材用量（每 1 件基础商品消耗的包材数量），
// 在组合内覆盖该商品的默认包材配置
type ComboItemPackagingRelation struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ComboItemID string    `json:"combo_item_id" gorm:"type:uuid;not null;index"`
	PackagingID string    `json:"packaging_id" gorm:"type:uuid;not null;index"`
	Quantity    int64     `json:"quantity" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	Packaging *Product `json:"packaging,omitempty" gorm:"foreignKey:PackagingID"`
}

func (ComboItemPackagingRelation) TableName() string {
	return "erp_combo_item_packaging_relations"
}

// ComboProductPackagingRelation 组合商品自身的包材用量（每 1 件组合消耗的包材数量）
type ComboProductPackagingRelation struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ComboProductID string    `json:"combo_product_id" gorm:"type:uuid;not null;index"`
	PackagingID    string    `json:"packaging_id" gorm:"type:uuid;not null;index"`
	Quantity       int64     `json:"quantity" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`

	Packaging *Product `json:"packaging,omitempty" gorm:"foreignKey:PackagingID"`
}

func (ComboProductPackagingRelation) TableName() string {
	return "erp_combo_product_packaging_relations"
}

// ComboInventoryRecord 组合商品库存，按（组合商品，仓库）唯一，组装直接产出成品
type ComboInventoryRecord struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ComboProductID string    `json:"combo_product_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_combo_inventory_product_warehouse"`
	WarehouseID    string    `json:"warehouse_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_combo_inventory_product_warehouse"`
	Finished       int64     `json:"finished" gorm:"not null;default:0"`
	Shipped        int64     `json:"shipped" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	ComboProduct *ComboProduct `json:"combo_product,omitempty" gorm:"foreignKey:ComboProductID"`
	Warehouse    *Warehouse    `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (ComboInventoryRecord) TableName() string {
	return "erp_combo_inventory_records"
}

// ComboInventoryTransaction 组合商品库存流水，只追加不修改
type ComboInventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ComboProductID  string    `json:"combo_product_id" gorm:"type:uuid;not null;index"`
	WarehouseID     string    `json:"warehouse_id" gorm:"type:uuid;not null;index"`
	TransactionType string    `json:"transaction_type" gorm:"size:32;not null;index"`
	Quantity        int64     `json:"quantity" gorm:"not null"`
	ReferenceID     *string   `json:"reference_id" gorm:"type:uuid"`
	BatchID         *string   `json:"batch_id" gorm:"size:36"` // 预留给批量操作
	Notes           string    `json:"notes" gorm:"size:512"`
	CreatedAt       time.Time `json:"created_at"`

	ComboProduct *ComboProduct `json:"combo_product,omitempty" gorm:"foreignKey:ComboProductID"`
	Warehouse    *Warehouse    `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (ComboInventoryTransaction) TableName() string {
	return "erp_combo_inventory_transactions"
}
