package entity

import (
	"time"
)

// 供应商付款方式
const (
	PaymentMethodPrepaid = "款到发货"
	PaymentMethodCOD     = "货到付款"
)

// Supplier 供应商
type Supplier struct {
	ID            string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name          string    `json:"name" gorm:"size:128;not null;uniqueIndex"`
	PaymentMethod string    `json:"payment_method" gorm:"size:32;not null"`
	Notes         string    `json:"notes" gorm:"size:512"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "erp_suppliers"
}

// SupplierProduct 供应商-商品供货关系
type SupplierProduct struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	SupplierID string    `json:"supplier_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_supplier_product"`
	ProductID  string    `json:"product_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_supplier_product"`
	CreatedAt  time.Time `json:"created_at"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (SupplierProduct) TableName() string {
	return "erp_supplier_products"
}
