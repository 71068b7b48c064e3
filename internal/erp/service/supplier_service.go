package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// SupplierService 供应商服务，含供货关系维护与 Excel 批量导入
type SupplierService struct {
	supplierRepo *repository.SupplierRepository
	productRepo  *repository.ProductRepository
}

func NewSupplierService(supplierRepo *repository.SupplierRepository, productRepo *repository.ProductRepository) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
	}
}

// CreateSupplierRequest 创建供应商请求
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=款到发货 货到付款"`
	Notes         string `json:"notes"`
}

// UpdateSupplierRequest 更新供应商请求
type UpdateSupplierRequest struct {
	Name          string  `json:"name"`
	PaymentMethod string  `json:"payment_method" binding:"omitempty,oneof=款到发货 货到付款"`
	Notes         *string `json:"notes"`
}

// CreateSupplierProductRequest 建立供货关系
type CreateSupplierProductRequest struct {
	SupplierID string `json:"supplier_id" binding:"required"`
	ProductID  string `json:"product_id" binding:"required"`
}

// BatchCreateSupplierProductsRequest 批量建立供货关系
type BatchCreateSupplierProductsRequest struct {
	SupplierID string   `json:"supplier_id" binding:"required"`
	ProductIDs []string `json:"product_ids" binding:"required,min=1"`
}

// UpdateSupplierProductRequest 更新供货关系请求
type UpdateSupplierProductRequest struct {
	SupplierID string `json:"supplier_id"`
	ProductID  string `json:"product_id"`
}

// ImportResult Excel 导入结果
type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors"`
	Summary      string   `json:"summary"`
}

func (s *SupplierService) CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*entity.Supplier, error) {
	if _, err := s.supplierRepo.GetByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("供应商名称已存在: %w", ErrDuplicate)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	supplier := &entity.Supplier{
		Name:          req.Name,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *SupplierService) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("供应商不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	return supplier, nil
}

func (s *SupplierService) ListSuppliers(ctx context.Context, keyword string, page, pageSize int) ([]entity.Supplier, int64, error) {
	return s.supplierRepo.List(ctx, keyword, page, pageSize)
}

func (s *SupplierService) UpdateSupplier(ctx context.Context, id string, req *UpdateSupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" && req.Name != supplier.Name {
		if _, err := s.supplierRepo.GetByName(ctx, req.Name); err == nil {
			return nil, fmt.Errorf("供应商名称已存在: %w", ErrDuplicate)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		supplier.Name = req.Name
	}
	if req.PaymentMethod != "" {
		supplier.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *SupplierService) DeleteSupplier(ctx context.Context, id string) error {
	if _, err := s.GetSupplier(ctx, id); err != nil {
		return err
	}
	return s.supplierRepo.Delete(ctx, id)
}

// CreateSupplierProduct 建立供货关系，重复关系拒绝
func (s *SupplierService) CreateSupplierProduct(ctx context.Context, req *CreateSupplierProductRequest) (*entity.SupplierProduct, error) {
	if _, err := s.GetSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("商品不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.supplierRepo.GetSupplierProduct(ctx, req.SupplierID, req.ProductID); err == nil {
		return nil, fmt.Errorf("供货关系已存在: %w", ErrDuplicate)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sp := &entity.SupplierProduct{
		SupplierID: req.SupplierID,
		ProductID:  req.ProductID,
	}
	if err := s.supplierRepo.CreateSupplierProduct(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// BatchCreateSupplierProducts 批量建立供货关系，已存在的跳过
func (s *SupplierService) BatchCreateSupplierProducts(ctx context.Context, req *BatchCreateSupplierProductsRequest) ([]entity.SupplierProduct, error) {
	if _, err := s.GetSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}
	created := make([]entity.SupplierProduct, 0, len(req.ProductIDs))
	for _, productID := range req.ProductIDs {
		if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("商品 %s 不存在: %w", productID, ErrNotFound)
			}
			return nil, err
		}
		if _, err := s.supplierRepo.GetSupplierProduct(ctx, req.SupplierID, productID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		sp := entity.SupplierProduct{SupplierID: req.SupplierID, ProductID: productID}
		if err := s.supplierRepo.CreateSupplierProduct(ctx, &sp); err != nil {
			return nil, err
		}
		created = append(created, sp)
	}
	return created, nil
}

// UpdateSupplierProduct 调整供货关系指向的供应商或商品
func (s *SupplierService) UpdateSupplierProduct(ctx context.Context, id string, req *UpdateSupplierProductRequest) (*entity.SupplierProduct, error) {
	sp, err := s.supplierRepo.GetSupplierProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("供货关系不存在: %w", ErrNotFound)
		}
		return nil, err
	}

	newSupplierID := sp.SupplierID
	newProductID := sp.ProductID
	if req.SupplierID != "" {
		if _, err := s.GetSupplier(ctx, req.SupplierID); err != nil {
			return nil, err
		}
		newSupplierID = req.SupplierID
	}
	if req.ProductID != "" {
		if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("商品不存在: %w", ErrNotFound)
			}
			return nil, err
		}
		newProductID = req.ProductID
	}

	if newSupplierID != sp.SupplierID || newProductID != sp.ProductID {
		if existing, err := s.supplierRepo.GetSupplierProduct(ctx, newSupplierID, newProductID); err == nil && existing.ID != sp.ID {
			return nil, fmt.Errorf("该供货关系已存在: %w", ErrDuplicate)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	sp.SupplierID = newSupplierID
	sp.ProductID = newProductID
	sp.Supplier = nil
	sp.Product = nil
	if err := s.supplierRepo.UpdateSupplierProduct(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *SupplierService) ListSupplierProducts(ctx context.Context, params repository.SupplierProductListParams) ([]entity.SupplierProduct, int64, error) {
	return s.supplierRepo.ListSupplierProducts(ctx, params)
}

func (s *SupplierService) DeleteSupplierProduct(ctx context.Context, id string) error {
	if _, err := s.supplierRepo.GetSupplierProductByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("供货关系不存在: %w", ErrNotFound)
		}
		return err
	}
	return s.supplierRepo.DeleteSupplierProduct(ctx, id)
}

// ImportSupplierProducts 从 Excel 导入供货关系。
// 必须包含 供应商名称 与 商品SKU 两列，按供应商名称与商品SKU匹配，
// 逐行收集错误（含行号），不因个别行失败而中断。
func (s *SupplierService) ImportSupplierProducts(ctx context.Context, f *excelize.File) (*ImportResult, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取Excel失败: %w", err)
	}

	result := &ImportResult{Errors: []string{}}
	if len(rows) < 2 {
		result.Summary = "文件中没有数据"
		return result, nil
	}

	nameCol, skuCol := -1, -1
	for i, h := range rows[0] {
		switch strings.TrimSpace(h) {
		case "供应商名称":
			nameCol = i
		case "商品SKU":
			skuCol = i
		}
	}
	if nameCol < 0 || skuCol < 0 {
		return nil, fmt.Errorf("Excel文件必须包含'供应商名称'和'商品SKU'列")
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		result.TotalRows++

		var name, sku string
		if len(row) > nameCol {
			name = strings.TrimSpace(row[nameCol])
		}
		if len(row) > skuCol {
			sku = strings.TrimSpace(row[skuCol])
		}
		if name == "" || sku == "" {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 数据缺失", rowNum))
			continue
		}

		supplier, err := s.supplierRepo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.ErrorCount++
				result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 供应商 %s 不存在", rowNum, name))
				continue
			}
			return nil, err
		}
		product, err := s.productRepo.GetBySKU(ctx, sku)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.ErrorCount++
				result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 商品SKU %s 不存在", rowNum, sku))
				continue
			}
			return nil, err
		}
		if _, err := s.supplierRepo.GetSupplierProduct(ctx, supplier.ID, product.ID); err == nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 供货关系已存在", rowNum))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		sp := entity.SupplierProduct{SupplierID: supplier.ID, ProductID: product.ID}
		if err := s.supplierRepo.CreateSupplierProduct(ctx, &sp); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, fmt.Sprintf("第%d行: 系统错误 %v", rowNum, err))
			continue
		}
		result.SuccessCount++
	}

	switch {
	case result.SuccessCount > 0 && result.ErrorCount == 0:
		result.Summary = fmt.Sprintf("成功导入 %d 条供货关系", result.SuccessCount)
	case result.SuccessCount > 0:
		result.Summary = fmt.Sprintf("成功导入 %d 条，失败 %d 条", result.SuccessCount, result.ErrorCount)
	default:
		result.Summary = fmt.Sprintf("导入失败，共 %d 条错误", result.ErrorCount)
	}
	return result, nil
}

func (s *SupplierService) CountSuppliers(ctx context.Context) (int64, error) {
	return s.supplierRepo.Count(ctx)
}
