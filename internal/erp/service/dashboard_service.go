package service

import (
	"context"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// DashboardService 仪表板统计服务
type DashboardService struct {
	productRepo   *repository.ProductRepository
	comboRepo     *repository.ComboRepository
	supplierRepo  *repository.SupplierRepository
	warehouseRepo *repository.WarehouseRepository
	purchaseRepo  *repository.PurchaseRepository
}

func NewDashboardService(
	productRepo *repository.ProductRepository,
	comboRepo *repository.ComboRepository,
	supplierRepo *repository.SupplierRepository,
	warehouseRepo *repository.WarehouseRepository,
	purchaseRepo *repository.PurchaseRepository,
) *DashboardService {
	return &DashboardService{
		productRepo:   productRepo,
		comboRepo:     comboRepo,
		supplierRepo:  supplierRepo,
		warehouseRepo: warehouseRepo,
		purchaseRepo:  purchaseRepo,
	}
}

// DashboardStats 仪表板统计数据
type DashboardStats struct {
	TotalProducts   int64 `json:"total_products"`   // 总商品数（商品+组合商品）
	PendingOrders   int64 `json:"pending_orders"`   // 待收货的采购订单数
	TotalSuppliers  int64 `json:"total_suppliers"`  // 供应商数量
	TotalWarehouses int64 `json:"total_warehouses"` // 仓库数量
}

func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	baseProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	comboProducts, err := s.comboRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	pendingOrders, err := s.purchaseRepo.CountByStatus(ctx, entity.POStatusPending)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.supplierRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	warehouses, err := s.warehouseRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalProducts:   baseProducts + comboProducts,
		PendingOrders:   pendingOrders,
		TotalSuppliers:  suppliers,
		TotalWarehouses: warehouses,
	}, nil
}
