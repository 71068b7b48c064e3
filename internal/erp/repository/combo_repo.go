package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// ComboRepository 组合商品仓储
type ComboRepository struct {
	db *gorm.DB
}

func NewComboRepository(db *gorm.DB) *ComboRepository {
	return &ComboRepository{db: db}
}

// ComboListParams 组合商品列表查询参数
type ComboListParams struct {
	Keyword  string // 匹配名称或SKU
	Page     int
	PageSize int
}

// ComboRecordListParams 组合商品库存查询参数
type ComboRecordListParams struct {
	ComboProductID string
	WarehouseID    string
	Keyword        string
	Page           int
	PageSize       int
}

// ComboTransactionListParams 组合商品流水查询参数
type ComboTransactionListParams struct {
	ComboProductID  string
	WarehouseID     string
	TransactionType string
	Page            int
	PageSize        int
}

// ComboInventorySummary 组合商品跨仓库存汇总
type ComboInventorySummary struct {
	ComboProductID string `json:"combo_product_id"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	Finished       int64  `json:"finished"`
	Shipped        int64  `json:"shipped"`
}

func (r *ComboRepository) GetByID(ctx context.Context, id string) (*entity.ComboProduct, error) {
	var combo entity.ComboProduct
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.BaseProduct").
		Preload("Items.PackagingRelations").
		Preload("Items.PackagingRelations.Packaging").
		Preload("PackagingRelations").
		Preload("PackagingRelations.Packaging").
		First(&combo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &combo, nil
}

func (r *ComboRepository) GetBySKU(ctx context.Context, sku string) (*entity.ComboProduct, error) {
	var combo entity.ComboProduct
	if err := r.db.WithContext(ctx).First(&combo, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &combo, nil
}

func (r *ComboRepository) List(ctx context.Context, params ComboListParams) ([]entity.ComboProduct, int64, error) {
	var (
		combos []entity.ComboProduct
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&entity.ComboProduct{})
	if params.Keyword != "" {
		q = q.Where("name ILIKE ? OR sku ILIKE ?", "%"+params.Keyword+"%", "%"+params.Keyword+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("Items").
		Preload("Items.BaseProduct").
		Preload("Items.PackagingRelations").
		Preload("Items.PackagingRelations.Packaging").
		Preload("PackagingRelations").
		Preload("PackagingRelations.Packaging").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&combos).Error; err != nil {
		return nil, 0, err
	}
	return combos, total, nil
}

func (r *ComboRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.ComboProduct{}).Count(&total).Error
	return total, err
}

func (r *ComboRepository) GetRecord(ctx context.Context, comboProductID, warehouseID string) (*entity.ComboInventoryRecord, error) {
	var record entity.ComboInventoryRecord
	if err := r.db.WithContext(ctx).
		Where("combo_product_id = ? AND warehouse_id = ?", comboProductID, warehouseID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecordsByCombo 查询组合商品在全部仓库的库存记录
func (r *ComboRepository) ListRecordsByCombo(ctx context.Context, comboProductID string) ([]entity.ComboInventoryRecord, error) {
	var records []entity.ComboInventoryRecord
	if err := r.db.WithContext(ctx).
		Preload("Warehouse").
		Where("combo_product_id = ?", comboProductID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *ComboRepository) ListRecords(ctx context.Context, params ComboRecordListParams) ([]entity.ComboInventoryRecord, int64, error) {
	var (
		records []entity.ComboInventoryRecord
		total   int64
	)
	q := r.db.WithContext(ctx).Model(&entity.ComboInventoryRecord{}).
		Joins("JOIN erp_combo_products cp ON cp.id = erp_combo_inventory_records.combo_product_id")
	if params.ComboProductID != "" {
		q = q.Where("erp_combo_inventory_records.combo_product_id = ?", params.ComboProductID)
	}
	if params.WarehouseID != "" {
		q = q.Where("erp_combo_inventory_records.warehouse_id = ?", params.WarehouseID)
	}
	if params.Keyword != "" {
		q = q.Where("cp.name ILIKE ? OR cp.sku ILIKE ?", "%"+params.Keyword+"%", "%"+params.Keyword+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("ComboProduct").Preload("Warehouse").
		Order("erp_combo_inventory_records.updated_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *ComboRepository) ListRecordsByWarehouse(ctx context.Context, warehouseID string) ([]entity.ComboInventoryRecord, error) {
	var records []entity.ComboInventoryRecord
	if err := r.db.WithContext(ctx).
		Preload("ComboProduct").Preload("Warehouse").
		Where("warehouse_id = ?", warehouseID).
		Order("updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Summary 按组合商品聚合全部仓库的库存
func (r *ComboRepository) Summary(ctx context.Context, keyword string, page, pageSize int) ([]ComboInventorySummary, int64, error) {
	var (
		rows  []ComboInventorySummary
		total int64
	)
	countSQL := `SELECT COUNT(DISTINCT cir.combo_product_id)
		FROM erp_combo_inventory_records cir
		JOIN erp_combo_products cp ON cp.id = cir.combo_product_id`
	dataSQL := `SELECT cir.combo_product_id, cp.name, cp.sku,
		COALESCE(SUM(cir.finished), 0) AS finished,
		COALESCE(SUM(cir.shipped), 0)  AS shipped
		FROM erp_combo_inventory_records cir
		JOIN erp_combo_products cp ON cp.id = cir.combo_product_id`
	args := []interface{}{}
	if keyword != "" {
		countSQL += ` WHERE cp.name ILIKE ? OR cp.sku ILIKE ?`
		dataSQL += ` WHERE cp.name ILIKE ? OR cp.sku ILIKE ?`
		args = append(args, "%"+keyword+"%", "%"+keyword+"%")
	}
	if err := r.db.WithContext(ctx).Raw(countSQL, args...).Scan(&total).Error; err != nil {
		return nil, 0, err
	}
	dataSQL += ` GROUP BY cir.combo_product_id, cp.name, cp.sku
		ORDER BY cp.name LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	if err := r.db.WithContext(ctx).Raw(dataSQL, args...).Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *ComboRepository) ListTransactions(ctx context.Context, params ComboTransactionListParams) ([]entity.ComboInventoryTransaction, int64, error) {
	var (
		txns  []entity.ComboInventoryTransaction
		total int64
	)
	q := r.db.WithContext(ctx).Model(&entity.ComboInventoryTransaction{})
	if params.ComboProductID != "" {
		q = q.Where("combo_product_id = ?", params.ComboProductID)
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
	if err := q.Preload("ComboProduct").Preload("Warehouse").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
