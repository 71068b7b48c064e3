package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

const productCacheTTL = 10 * time.Minute

// ProductService 商品服务，详情读取走 Redis 缓存
type ProductService struct {
	productRepo *repository.ProductRepository
	comboRepo   *repository.ComboRepository
	rdb         *redis.Client
}

func NewProductService(productRepo *repository.ProductRepository, comboRepo *repository.ComboRepository, rdb *redis.Client) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		comboRepo:   comboRepo,
		rdb:         rdb,
	}
}

// PackagingRelationRequest 商品包材用量
type PackagingRelationRequest struct {
	PackagingID string `json:"packaging_id" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name               string                     `json:"name" binding:"required"`
	SKU                string                     `json:"sku" binding:"required"`
	SaleType           string                     `json:"sale_type" binding:"required,oneof=product packaging"`
	ImageURL           string                     `json:"image_url"`
	WarehouseID        string                     `json:"warehouse_id"`
	PackagingRelations []PackagingRelationRequest `json:"packaging_relations" binding:"omitempty,dive"`
}

// UpdateProductRequest 更新商品请求。PackagingRelations 提供时整体替换
type UpdateProductRequest struct {
	Name               string                      `json:"name"`
	SKU                string                      `json:"sku"`
	SaleType           string                      `json:"sale_type" binding:"omitempty,oneof=product packaging"`
	ImageURL           string                      `json:"image_url"`
	WarehouseID        string                      `json:"warehouse_id"`
	PackagingRelations *[]PackagingRelationRequest `json:"packaging_relations"`
}

// skuExists SKU 在商品与组合商品两个档案间全局唯一
func skuExists(ctx context.Context, products *repository.ProductRepository, combos *repository.ComboRepository, sku string) (bool, error) {
	if _, err := products.GetBySKU(ctx, sku); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if _, err := combos.GetBySKU(ctx, sku); err == nil {
		return true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return false, nil
}

func productCacheKey(id string) string {
	return "products:detail:" + id
}

func (s *ProductService) invalidateCache(ctx context.Context, id string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, productCacheKey(id))
	}
}

// checkRelations 校验包材关系引用的都是包材类型商品
func (s *ProductService) checkRelations(ctx context.Context, relations []PackagingRelationRequest) error {
	for _, rel := range relations {
		p, err := s.productRepo.GetByID(ctx, rel.PackagingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("包材 %s 不存在: %w", rel.PackagingID, ErrNotFound)
			}
			return err
		}
		if p.SaleType != entity.SaleTypePackaging {
			return fmt.Errorf("%s 不是包材类型", p.Name)
		}
	}
	return nil
}

// CreateProduct 创建商品，SKU 跨商品与组合唯一
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*entity.Product, error) {
	taken, err := skuExists(ctx, s.productRepo, s.comboRepo, req.SKU)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("商品SKU已存在: %w", ErrDuplicate)
	}
	if err := s.checkRelations(ctx, req.PackagingRelations); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        req.Name,
		SKU:         req.SKU,
		SaleType:    req.SaleType,
		ImageURL:    req.ImageURL,
		WarehouseID: req.WarehouseID,
	}
	for _, rel := range req.PackagingRelations {
		product.PackagingRelations = append(product.PackagingRelations, entity.ProductPackagingRelation{
			PackagingID: rel.PackagingID,
			Quantity:    rel.Quantity,
		})
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, product.ID)
}

// GetProduct 查询商品详情，优先走缓存
func (s *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, productCacheKey(id)).Bytes(); err == nil {
			var product entity.Product
			if json.Unmarshal(data, &product) == nil {
				return &product, nil
			}
		}
	}
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("商品不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	if s.rdb != nil {
		if data, err := json.Marshal(product); err == nil {
			s.rdb.Set(ctx, productCacheKey(id), data, productCacheTTL)
		}
	}
	return product, nil
}

// ListProducts 查询商品列表
func (s *ProductService) ListProducts(ctx context.Context, params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(ctx, params)
}

// UpdateProduct 更新商品。SKU 变化时重查唯一性，包材关系提供时整体替换
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *UpdateProductRequest) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("商品不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	if req.SKU != "" && req.SKU != product.SKU {
		taken, err := skuExists(ctx, s.productRepo, s.comboRepo, req.SKU)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("商品SKU已存在: %w", ErrDuplicate)
		}
		product.SKU = req.SKU
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.SaleType != "" {
		product.SaleType = req.SaleType
	}
	if req.ImageURL != "" {
		product.ImageURL = req.ImageURL
	}
	if req.WarehouseID != "" {
		product.WarehouseID = req.WarehouseID
	}

	if req.PackagingRelations != nil {
		if err := s.checkRelations(ctx, *req.PackagingRelations); err != nil {
			return nil, err
		}
	}

	// Save 会级联写关联，这里只更新商品本身的列
	updates := map[string]interface{}{
		"name": product.Name, "sku": product.SKU, "sale_type": product.SaleType,
		"image_url": product.ImageURL, "warehouse_id": product.WarehouseID,
	}
	if err := s.productRepo.DB().WithContext(ctx).Model(&entity.Product{}).
		Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}

	if req.PackagingRelations != nil {
		relations := make([]entity.ProductPackagingRelation, 0, len(*req.PackagingRelations))
		for _, rel := range *req.PackagingRelations {
			relations = append(relations, entity.ProductPackagingRelation{
				ProductID:   id,
				PackagingID: rel.PackagingID,
				Quantity:    rel.Quantity,
			})
		}
		if err := s.productRepo.ReplaceRelations(ctx, id, relations); err != nil {
			return nil, err
		}
	}

	s.invalidateCache(ctx, id)
	return s.productRepo.GetByID(ctx, id)
}

// DeleteProduct 删除商品及其包材关系
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("商品不存在: %w", ErrNotFound)
		}
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	return nil
}

// ListPackagingRelations 查询商品的包材关系，用于组合商品创建时预填
func (s *ProductService) ListPackagingRelations(ctx context.Context, productID string) ([]entity.ProductPackagingRelation, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("商品不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	return s.productRepo.ListPackagingRelations(ctx, productID)
}
