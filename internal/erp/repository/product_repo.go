package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// ProductRepository 商品仓储
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// DB 暴露底层连接，供服务层组装跨表更新
func (r *ProductRepository) DB() *gorm.DB {
	return r.db
}

// ProductListParams 商品列表查询参数
type ProductListParams struct {
	Keyword     string // 匹配名称或SKU
	WarehouseID string
	SaleType    string
	Page        int
	PageSize    int
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.WithContext(ctx).
		Preload("Warehouse").
		Preload("PackagingRelations").
		Preload("PackagingRelations.Packaging").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var product entity.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, params ProductListParams) ([]entity.Product, int64, error) {
	var (
		products []entity.Product
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&entity.Product{})
	if params.Keyword != "" {
		q = q.Where("name ILIKE ? OR sku ILIKE ?", "%"+params.Keyword+"%", "%"+params.Keyword+"%")
	}
	if params.WarehouseID != "" {
		q = q.Where("warehouse_id = ?", params.WarehouseID)
	}
	if params.SaleType != "" {
		q = q.Where("sale_type = ?", params.SaleType)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Preload("Warehouse").
		Preload("PackagingRelations").
		Preload("PackagingRelations.Packaging").
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.ProductPackagingRelation{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Product{}, "id = ?", id).Error
	})
}

// ReplaceRelations 整体替换商品的包材关系
func (r *ProductRepository) ReplaceRelations(ctx context.Context, productID string, relations []entity.ProductPackagingRelation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.ProductPackagingRelation{}, "product_id = ?", productID).Error; err != nil {
			return err
		}
		if len(relations) == 0 {
			return nil
		}
		return tx.Create(&relations).Error
	})
}

// ListPackagingRelations 查询商品的包材关系（含包材信息）
func (r *ProductRepository) ListPackagingRelations(ctx context.Context, productID string) ([]entity.ProductPackagingRelation, error) {
	var relations []entity.ProductPackagingRelation
	if err := r.db.WithContext(ctx).
		Preload("Packaging").
		Where("product_id = ?", productID).
		Find(&relations).Error; err != nil {
		return nil, err
	}
	return relations, nil
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&total).Error
	return total, err
}
