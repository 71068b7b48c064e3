package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有ERP实体
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础资料
		&User{},
		&Warehouse{},
		&Supplier{},
		&SupplierProduct{},
		&Product{},
		&ProductPackagingRelation{},

		// 采购管理
		&PurchaseOrder{},
		&PurchaseOrderItem{},

		// 库存管理
		&InventoryRecord{},
		&InventoryTransaction{},

		// 组合商品
		&ComboProduct{},
		&ComboProductItem{},
		&ComboItemPackagingRelation{},
		&ComboProductPackagingRelation{},
		&ComboInventoryRecord{},
		&ComboInventoryTransaction{},
	)
}
