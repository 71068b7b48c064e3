package repository

import (
	"gorm.io/gorm"
)

// Repositories 仓储集合
type Repositories struct {
	User      *UserRepository
	Warehouse *WarehouseRepository
	Supplier  *SupplierRepository
	Product   *ProductRepository
	Inventory *InventoryRepository
	Purchase  *PurchaseRepository
	Combo     *ComboRepository
}

// NewRepositories 创建仓储集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:      NewUserRepository(db),
		Warehouse: NewWarehouseRepository(db),
		Supplier:  NewSupplierRepository(db),
		Product:   NewProductRepository(db),
		Inventory: NewInventoryRepository(db),
		Purchase:  NewPurchaseRepository(db),
		Combo:     NewComboRepository(db),
	}
}
