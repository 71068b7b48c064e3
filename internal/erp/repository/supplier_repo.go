package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// SupplierRepository 供应商仓储，含供货关系
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var supplier entity.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) GetByName(ctx context.Context, name string) (*entity.Supplier, error) {
	var supplier entity.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *SupplierRepository) List(ctx context.Context, keyword string, page, pageSize int) ([]entity.Supplier, int64, error) {
	var (
		suppliers []entity.Supplier
		total     int64
	)
	q := r.db.WithContext(ctx).Model(&entity.Supplier{})
	if keyword != "" {
		q = q.Where("name ILIKE ? OR contact_person ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}
	return suppliers, total, nil
}

func (r *SupplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.Supplier{}, "id = ?", id).Error
}

func (r *SupplierRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Supplier{}).Count(&total).Error
	return total, err
}

// SupplierProductListParams 供货关系列表查询参数
type SupplierProductListParams struct {
	SupplierID     string
	ProductID      string
	SupplierName   string // 供应商名称模糊查询
	ProductKeyword string // 商品名称/SKU模糊查询
	Page           int
	PageSize       int
}

func (r *SupplierRepository) CreateSupplierProduct(ctx context.Context, sp *entity.SupplierProduct) error {
	return r.db.WithContext(ctx).Create(sp).Error
}

func (r *SupplierRepository) GetSupplierProductByID(ctx context.Context, id string) (*entity.SupplierProduct, error) {
	var sp entity.SupplierProduct
	if err := r.db.WithContext(ctx).First(&sp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *SupplierRepository) GetSupplierProduct(ctx context.Context, supplierID, productID string) (*entity.SupplierProduct, error) {
	var sp entity.SupplierProduct
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		First(&sp).Error; err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *SupplierRepository) ListSupplierProducts(ctx context.Context, params SupplierProductListParams) ([]entity.SupplierProduct, int64, error) {
	var (
		items []entity.SupplierProduct
		total int64
	)
	q := r.db.WithContext(ctx).Model(&entity.SupplierProduct{})
	if params.SupplierID != "" {
		q = q.Where("erp_supplier_products.supplier_id = ?", params.SupplierID)
	}
	if params.ProductID != "" {
		q = q.Where("erp_supplier_products.product_id = ?", params.ProductID)
	}
	if params.SupplierName != "" {
		q = q.Joins("JOIN erp_suppliers ON erp_suppliers.id = erp_supplier_products.supplier_id").
			Where("erp_suppliers.name ILIKE ?", "%"+params.SupplierName+"%")
	}
	if params.ProductKeyword != "" {
		kw := "%" + params.ProductKeyword + "%"
		q = q.Joins("JOIN erp_products ON erp_products.id = erp_supplier_products.product_id").
			Where("erp_products.name ILIKE ? OR erp_products.sku ILIKE ?", kw, kw)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("Supplier").Preload("Product").
		Order("erp_supplier_products.created_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *SupplierRepository) UpdateSupplierProduct(ctx context.Context, sp *entity.SupplierProduct) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

func (r *SupplierRepository) DeleteSupplierProduct(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.SupplierProduct{}, "id = ?", id).Error
}
