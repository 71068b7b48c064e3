package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// WarehouseService 仓库服务
type WarehouseService struct {
	warehouseRepo *repository.WarehouseRepository
}

func NewWarehouseService(warehouseRepo *repository.WarehouseRepository) *WarehouseService {
	return &WarehouseService{warehouseRepo: warehouseRepo}
}

// CreateWarehouseRequest 创建仓库请求
type CreateWarehouseRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

// UpdateWarehouseRequest 更新仓库请求
type UpdateWarehouseRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (s *WarehouseService) CreateWarehouse(ctx context.Context, req *CreateWarehouseRequest) (*entity.Warehouse, error) {
	warehouse := &entity.Warehouse{
		Name:    req.Name,
		Address: req.Address,
	}
	if err := s.warehouseRepo.Create(ctx, warehouse); err != nil {
		return nil, fmt.Errorf("创建仓库失败: %w", err)
	}
	return warehouse, nil
}

func (s *WarehouseService) GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	warehouse, err := s.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("仓库不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	return warehouse, nil
}

func (s *WarehouseService) ListWarehouses(ctx context.Context, keyword string, page, pageSize int) ([]entity.Warehouse, int64, error) {
	return s.warehouseRepo.List(ctx, keyword, page, pageSize)
}

func (s *WarehouseService) UpdateWarehouse(ctx context.Context, id string, req *UpdateWarehouseRequest) (*entity.Warehouse, error) {
	warehouse, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		warehouse.Name = req.Name
	}
	if req.Address != "" {
		warehouse.Address = req.Address
	}
	if err := s.warehouseRepo.Update(ctx, warehouse); err != nil {
		return nil, fmt.Errorf("更新仓库失败: %w", err)
	}
	return warehouse, nil
}

func (s *WarehouseService) DeleteWarehouse(ctx context.Context, id string) error {
	if _, err := s.GetWarehouse(ctx, id); err != nil {
		return err
	}
	return s.warehouseRepo.Delete(ctx, id)
}

func (s *WarehouseService) CountWarehouses(ctx context.Context) (int64, error) {
	return s.warehouseRepo.Count(ctx)
}
