package entity

import (
	"time"
)

// SaleType 商品销售类型
const (
	SaleTypeProduct   = "product"   // 商品
	SaleTypePackaging = "packaging" // 包材
)

// Product 商品（含包材，按 sale_type 区分）
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	SKU         string    `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	SaleType    string    `json:"sale_type" gorm:"size:16;not null;default:product"`
	ImageURL    string    `json:"image_url" gorm:"size:512"`
	WarehouseID string    `json:"warehouse_id" gorm:"type:uuid;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Warehouse          *Warehouse                 `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	PackagingRelations []ProductPackagingRelation `json:"packaging_relations,omitempty" gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "erp_products"
}

// ProductPackagingRelation 商品-包材用量关系（每 1 件商品消耗的包材数量）
type ProductPackagingRelation struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ProductID   string    `json:"product_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_product_packaging"`
	PackagingID string    `json:"packaging_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_product_packaging"`
	Quantity    int64     `json:"quantity" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	Packaging *Product `json:"packaging,omitempty" gorm:"foreignKey:PackagingID"`
}

func (ProductPackagingRelation) TableName() string {
	return "erp_product_packaging_relations"
}
