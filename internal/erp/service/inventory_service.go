package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// InventoryService 库存服务：打包、出库与各类查询
type InventoryService struct {
	inventoryRepo *repository.InventoryRepository
	productRepo   *repository.ProductRepository
	db            *gorm.DB
}

func NewInventoryService(
	inventoryRepo *repository.InventoryRepository,
	productRepo *repository.ProductRepository,
	db *gorm.DB,
) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
		db:            db,
	}
}

// PackRequest 打包请求（半成品转成品，按包材关系消耗包材）
type PackRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	WarehouseID string `json:"warehouse_id" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
}

// ShipRequest 出库请求（成品转出库）
type ShipRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	WarehouseID string `json:"warehouse_id" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
	Notes       string `json:"notes"`
}

// PackagingStock 包材库存视图，用于打包前确认包材余量
type PackagingStock struct {
	PackagingID     string `json:"packaging_id"`
	PackagingName   string `json:"packaging_name"`
	PackagingSKU    string `json:"packaging_sku"`
	QuantityPerUnit int64  `json:"quantity_per_unit"`
	SemiFinished    int64  `json:"semi_finished"`
}

func packagingName(rel entity.ProductPackagingRelation) string {
	if rel.Packaging != nil {
		return rel.Packaging.Name
	}
	return rel.PackagingID
}

// Pack 商品打包。商品类型按包材关系逐项校验并消耗包材半成品（记包材消耗流水），
// 包材类型直接转移；随后半成品转成品并记打包流水，整体同一事务。
func (s *InventoryService) Pack(ctx context.Context, req *PackRequest) error {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("商品不存在: %w", ErrNotFound)
		}
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if product.SaleType == entity.SaleTypeProduct {
			for _, rel := range product.PackagingRelations {
				needed := rel.Quantity * req.Quantity
				pkgRecord, err := lockInventory(tx, rel.PackagingID, req.WarehouseID)
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				if pkgRecord == nil || pkgRecord.SemiFinished < needed {
					var available int64
					if pkgRecord != nil {
						available = pkgRecord.SemiFinished
					}
					return fmt.Errorf("包材 %s 半成品库存不足: 需要%d, 可用%d: %w",
						packagingName(rel), needed, available, ErrInsufficientStock)
				}
				pkgRecord.SemiFinished -= needed
				if err := tx.Save(pkgRecord).Error; err != nil {
					return err
				}
				if err := appendTransaction(tx, &entity.InventoryTransaction{
					ProductID:       rel.PackagingID,
					WarehouseID:     req.WarehouseID,
					TransactionType: entity.TxTypePackagingConsumption,
					FromStatus:      statusPtr(entity.StatusSemiFinished),
					Quantity:        -needed,
					Notes:           fmt.Sprintf("用于打包商品 %s，单件需要 %d 个", product.SKU, rel.Quantity),
				}); err != nil {
					return err
				}
			}
		}

		if _, err := transferInventory(tx, req.ProductID, req.WarehouseID,
			entity.StatusSemiFinished, entity.StatusFinished, req.Quantity); err != nil {
			return err
		}
		return appendTransaction(tx, &entity.InventoryTransaction{
			ProductID:       req.ProductID,
			WarehouseID:     req.WarehouseID,
			TransactionType: entity.TxTypePack,
			FromStatus:      statusPtr(entity.StatusSemiFinished),
			ToStatus:        statusPtr(entity.StatusFinished),
			Quantity:        req.Quantity,
			Notes:           "商品打包完成",
		})
	})
}

// Ship 商品出库：成品转出库并记出库流水，同一事务
func (s *InventoryService) Ship(ctx context.Context, req *ShipRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := transferInventory(tx, req.ProductID, req.WarehouseID,
			entity.StatusFinished, entity.StatusShipped, req.Quantity); err != nil {
			return err
		}
		notes := req.Notes
		if notes == "" {
			notes = "商品出库"
		}
		return appendTransaction(tx, &entity.InventoryTransaction{
			ProductID:       req.ProductID,
			WarehouseID:     req.WarehouseID,
			TransactionType: entity.TxTypeShip,
			FromStatus:      statusPtr(entity.StatusFinished),
			ToStatus:        statusPtr(entity.StatusShipped),
			Quantity:        req.Quantity,
			Notes:           notes,
		})
	})
}

// ListRecords 分页查询库存记录
func (s *InventoryService) ListRecords(ctx context.Context, params repository.InventoryListParams) ([]entity.InventoryRecord, int64, error) {
	return s.inventoryRepo.List(ctx, params)
}

// ListRecordsByWarehouse 查询某仓库的全部库存记录
func (s *InventoryService) ListRecordsByWarehouse(ctx context.Context, warehouseID string) ([]entity.InventoryRecord, error) {
	return s.inventoryRepo.ListByWarehouse(ctx, warehouseID)
}

// Summary 按商品聚合全部仓库的库存
func (s *InventoryService) Summary(ctx context.Context, keyword string, page, pageSize int) ([]repository.InventorySummary, int64, error) {
	return s.inventoryRepo.Summary(ctx, keyword, page, pageSize)
}

// ListTransactions 分页查询库存流水
func (s *InventoryService) ListTransactions(ctx context.Context, params repository.TransactionListParams) ([]entity.InventoryTransaction, int64, error) {
	return s.inventoryRepo.ListTransactions(ctx, params)
}

// ProductPackagingStock 查询商品在某仓库的包材余量视图
func (s *InventoryService) ProductPackagingStock(ctx context.Context, productID, warehouseID string) ([]PackagingStock, error) {
	relations, err := s.productRepo.ListPackagingRelations(ctx, productID)
	if err != nil {
		return nil, err
	}
	stocks := make([]PackagingStock, 0, len(relations))
	for _, rel := range relations {
		stock := PackagingStock{
			PackagingID:     rel.PackagingID,
			QuantityPerUnit: rel.Quantity,
		}
		if rel.Packaging != nil {
			stock.PackagingName = rel.Packaging.Name
			stock.PackagingSKU = rel.Packaging.SKU
		}
		record, err := s.inventoryRepo.GetByProductAndWarehouse(ctx, rel.PackagingID, warehouseID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if record != nil {
			stock.SemiFinished = record.SemiFinished
		}
		stocks = append(stocks, stock)
	}
	return stocks, nil
}

func saleTypeLabel(saleType string) string {
	switch saleType {
	case entity.SaleTypeProduct:
		return "商品"
	case entity.SaleTypePackaging:
		return "包材"
	default:
		return saleType
	}
}

var summaryExportHeaders = []string{"商品名称", "SKU", "类型", "在途", "半成品", "成品", "已出库"}

// ExportSummary 导出库存汇总为xlsx
func (s *InventoryService) ExportSummary(ctx context.Context, keyword string) (*excelize.File, string, error) {
	rows, _, err := s.inventoryRepo.Summary(ctx, keyword, 1, 10000)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "库存汇总"
	f.SetSheetName("Sheet1", sheet)

	for i, h := range summaryExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, col+"1", h)
	}
	for i, summary := range rows {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), summary.ProductName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), summary.SKU)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), saleTypeLabel(summary.SaleType))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), summary.InTransit)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), summary.SemiFinished)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), summary.Finished)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), summary.Shipped)
	}

	filename := fmt.Sprintf("库存汇总_%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
