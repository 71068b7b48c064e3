package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// InventoryRepository 库存仓储（查询侧；状态变更统一走服务层事务）
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// InventoryListParams 库存列表查询参数
type InventoryListParams struct {
	ProductID   string
	WarehouseID string
	Keyword     string // 匹配商品名称或SKU
	SaleType    string
	Page        int
	PageSize    int
}

// TransactionListParams 库存流水查询参数
type TransactionListParams struct {
	ProductID       string
	WarehouseID     string
	TransactionType string
	Page            int
	PageSize        int
}

// InventorySummary 商品跨仓库存汇总
type InventorySummary struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	SKU          string `json:"sku"`
	SaleType     string `json:"sale_type"`
	InTransit    int64  `json:"in_transit"`
	SemiFinished int64  `json:"semi_finished"`
	Finished     int64  `json:"finished"`
	Shipped      int64  `json:"shipped"`
}

func (r *InventoryRepository) GetByProductAndWarehouse(ctx context.Context, productID, warehouseID string) (*entity.InventoryRecord, error) {
	var record entity.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *InventoryRepository) List(ctx context.Context, params InventoryListParams) ([]entity.InventoryRecord, int64, error) {
	var (
		records []entity.InventoryRecord
		total   int64
	)
	q := r.db.WithContext(ctx).Model(&entity.InventoryRecord{}).
		Joins("JOIN erp_products p ON p.id = erp_inventory_records.product_id")
	if params.ProductID != "" {
		q = q.Where("erp_inventory_records.product_id = ?", params.ProductID)
	}
	if params.WarehouseID != "" {
		q = q.Where("erp_inventory_records.warehouse_id = ?", params.WarehouseID)
	}
	if params.Keyword != "" {
		q = q.Where("p.name ILIKE ? OR p.sku ILIKE ?", "%"+params.Keyword+"%", "%"+params.Keyword+"%")
	}
	if params.SaleType != "" {
		q = q.Where("p.sale_type = ?", params.SaleType)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("Product").Preload("Warehouse").
		Order("erp_inventory_records.updated_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *InventoryRepository) ListByWarehouse(ctx context.Context, warehouseID string) ([]entity.InventoryRecord, error) {
	var records []entity.InventoryRecord
	if err := r.db.WithContext(ctx).
		Preload("Product").Preload("Warehouse").
		Where("warehouse_id = ?", warehouseID).
		Order("updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Summary 按商品聚合全部仓库的库存
func (r *InventoryRepository) Summary(ctx context.Context, keyword string, page, pageSize int) ([]InventorySummary, int64, error) {
	var (
		rows  []InventorySummary
		total int64
	)
	countSQL := `SELECT COUNT(DISTINCT ir.product_id)
		FROM erp_inventory_records ir
		JOIN erp_products p ON p.id = ir.product_id`
	dataSQL := `SELECT ir.product_id, p.name AS product_name, p.sku, p.sale_type,
		COALESCE(SUM(ir.in_transit), 0)    AS in_transit,
		COALESCE(SUM(ir.semi_finished), 0) AS semi_finished,
		COALESCE(SUM(ir.finished), 0)      AS finished,
		COALESCE(SUM(ir.shipped), 0)       AS shipped
		FROM erp_inventory_records ir
		JOIN erp_products p ON p.id = ir.product_id`
	args := []interface{}{}
	if keyword != "" {
		countSQL += ` WHERE p.name ILIKE ? OR p.sku ILIKE ?`
		dataSQL += ` WHERE p.name ILIKE ? OR p.sku ILIKE ?`
		args = append(args, "%"+keyword+"%", "%"+keyword+"%")
	}
	if err := r.db.WithContext(ctx).Raw(countSQL, args...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}
	dataSQL += ` GROUP BY ir.product_id, p.name, p.sku, p.sale_type
		ORDER BY p.name LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	if err := r.db.WithContext(ctx).Raw(dataSQL, args...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *InventoryRepository) ListTransactions(ctx context.Context, params TransactionListParams) ([]entity.InventoryTransaction, int64, error) {
	var (
		txns  []entity.InventoryTransaction
		total int64
	)
	q := r.db.WithContext(ctx).Model(&entity.InventoryTransaction{})
	if params.ProductID != "" {
		q = q.Where("product_id = ?", params.ProductID)
	}
	if params.WarehouseID != "" {
		q = q.Where("warehouse_id = ?", params.WarehouseID)
	}
	if params.TransactionType != "" {
		q = q.Where("transaction_type = ?", params.TransactionType)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("Product").Preload("Warehouse").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
