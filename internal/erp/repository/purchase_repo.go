package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// PurchaseRepository 采购单仓储
type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// POListParams 采购单列表查询参数
type POListParams struct {
	SupplierID  string
	WarehouseID string
	Status      string
	Keyword     string // 匹配单号或采购人
	Page        int
	PageSize    int
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Warehouse").
		Preload("Items").
		Preload("Items.Product").
		First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseRepository) List(ctx context.Context, params POListParams) ([]entity.PurchaseOrder, int64, error) {
	var (
		orders []entity.PurchaseOrder
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{})
	if params.SupplierID != "" {
		q = q.Where("supplier_id = ?", params.SupplierID)
	}
	if params.WarehouseID != "" {
		q = q.Where("warehouse_id = ?", params.WarehouseID)
	}
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		q = q.Where("order_number ILIKE ? OR purchaser ILIKE ?", "%"+params.Keyword+"%", "%"+params.Keyword+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("Supplier").Preload("Warehouse").
		Preload("Items").Preload("Items.Product").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *PurchaseRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).
		Where("status = ?", status).Count(&total).Error
	return total, err
}
