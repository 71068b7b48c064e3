package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// ProcurementService 采购服务，管理采购单全生命周期与在途库存联动
type ProcurementService struct {
	purchaseRepo  *repository.PurchaseRepository
	supplierRepo  *repository.SupplierRepository
	warehouseRepo *repository.WarehouseRepository
	productRepo   *repository.ProductRepository
	db            *gorm.DB
}

func NewProcurementService(
	purchaseRepo *repository.PurchaseRepository,
	supplierRepo *repository.SupplierRepository,
	warehouseRepo *repository.WarehouseRepository,
	productRepo *repository.ProductRepository,
	db *gorm.DB,
) *ProcurementService {
	return &ProcurementService{
		purchaseRepo:  purchaseRepo,
		supplierRepo:  supplierRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		db:            db,
	}
}

// CreatePORequest 创建采购单请求
type CreatePORequest struct {
	SupplierID  string         `json:"supplier_id" binding:"required"`
	WarehouseID string         `json:"warehouse_id" binding:"required"`
	Purchaser   string         `json:"purchaser"`
	Items       []CreatePOItem `json:"items" binding:"required,min=1,dive"`
}

// CreatePOItem 采购明细
type CreatePOItem struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int64   `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

// UpdatePORequest 更新采购单基本信息，仅待收货状态可用
type UpdatePORequest struct {
	SupplierID string `json:"supplier_id"`
	Purchaser  string `json:"purchaser"`
}

// ReceivePORequest 采购到货请求
type ReceivePORequest struct {
	Items []ReceivePOItem `json:"items" binding:"required,min=1,dive"`
}

// ReceivePOItem 到货明细，received_quantity 为本次到货增量
type ReceivePOItem struct {
	ItemID           string `json:"item_id" binding:"required"`
	ReceivedQuantity int64  `json:"received_quantity" binding:"required,gt=0"`
}

// generateOrderNumber 生成采购单号，PO- 加 8 位大写十六进制
func generateOrderNumber() string {
	return "PO-" + strings.ToUpper(uuid.New().String()[:8])
}

// CreatePO 创建采购单：写入订单与明细，逐项增加在途并记录采购流水，整体同一事务
func (s *ProcurementService) CreatePO(ctx context.Context, req *CreatePORequest) (*entity.PurchaseOrder, error) {
	if _, err := s.supplierRepo.GetByID(ctx, req.SupplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("供应商不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.warehouseRepo.GetByID(ctx, req.WarehouseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("仓库不存在: %w", ErrNotFound)
		}
		return nil, err
	}

	po := &entity.PurchaseOrder{
		OrderNumber: generateOrderNumber(),
		SupplierID:  req.SupplierID,
		WarehouseID: req.WarehouseID,
		Purchaser:   req.Purchaser,
		Status:      entity.POStatusPending,
	}
	for _, item := range req.Items {
		if _, err := s.productRepo.GetByID(ctx, item.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("商品 %s 不存在: %w", item.ProductID, ErrNotFound)
			}
			return nil, err
		}
		subtotal := float64(item.Quantity) * item.UnitPrice
		po.TotalAmount += subtotal
		po.Items = append(po.Items, entity.PurchaseOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  subtotal,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(po).Error; err != nil {
			return err
		}
		for _, item := range po.Items {
			if _, err := adjustInTransit(tx, item.ProductID, po.WarehouseID, item.Quantity); err != nil {
				return err
			}
			if err := appendTransaction(tx, &entity.InventoryTransaction{
				ProductID:       item.ProductID,
				WarehouseID:     po.WarehouseID,
				TransactionType: entity.TxTypePurchase,
				ToStatus:        statusPtr(entity.StatusInTransit),
				Quantity:        item.Quantity,
				ReferenceID:     &po.ID,
				Notes:           fmt.Sprintf("采购订单 %s 创建", po.OrderNumber),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.purchaseRepo.GetByID(ctx, po.ID)
}

// UpdatePO 更新采购单基本信息，仅待收货状态允许
func (s *ProcurementService) UpdatePO(ctx context.Context, orderID string, req *UpdatePORequest) (*entity.PurchaseOrder, error) {
	po, err := s.purchaseRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("采购订单不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	if po.Status != entity.POStatusPending {
		return nil, fmt.Errorf("只能修改待收货状态的采购订单: %w", ErrStateConflict)
	}

	updates := map[string]interface{}{}
	if req.SupplierID != "" && req.SupplierID != po.SupplierID {
		if _, err := s.supplierRepo.GetByID(ctx, req.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("供应商不存在: %w", ErrNotFound)
			}
			return nil, err
		}
		updates["supplier_id"] = req.SupplierID
	}
	if req.Purchaser != "" {
		updates["purchaser"] = req.Purchaser
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&entity.PurchaseOrder{}).
			Where("id = ?", orderID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.purchaseRepo.GetByID(ctx, orderID)
}

// ReceivePO 采购到货。每行数量为本次增量，累计不得超过订购数量；
// 在途转半成品并记录到货流水，最后按全部明细重算订单状态，整体同一事务。
func (s *ProcurementService) ReceivePO(ctx context.Context, orderID string, req *ReceivePORequest) (*entity.PurchaseOrder, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.PurchaseOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&po, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("采购订单不存在: %w", ErrNotFound)
			}
			return err
		}
		if po.Status == entity.POStatusCompleted || po.Status == entity.POStatusCancelled {
			return fmt.Errorf("采购订单已完成或已取消，无法继续到货: %w", ErrStateConflict)
		}

		var items []entity.PurchaseOrderItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("purchase_order_id = ?", orderID).
			Find(&items).Error; err != nil {
			return err
		}
		byID := make(map[string]*entity.PurchaseOrderItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		for _, line := range req.Items {
			item, ok := byID[line.ItemID]
			if !ok {
				return fmt.Errorf("采购明细 %s 不存在: %w", line.ItemID, ErrNotFound)
			}
			if line.ReceivedQuantity <= 0 {
				return fmt.Errorf("到货数量必须大于0: %w", ErrInvalidQuantity)
			}
			newReceived := item.ReceivedQuantity + line.ReceivedQuantity
			if newReceived > item.Quantity {
				return fmt.Errorf("累计到货 %d 超过采购数量 %d: %w",
					newReceived, item.Quantity, ErrOverReceipt)
			}
			if _, err := transferInventory(tx, item.ProductID, po.WarehouseID,
				entity.StatusInTransit, entity.StatusSemiFinished, line.ReceivedQuantity); err != nil {
				return err
			}
			if err := appendTransaction(tx, &entity.InventoryTransaction{
				ProductID:       item.ProductID,
				WarehouseID:     po.WarehouseID,
				TransactionType: entity.TxTypeArrival,
				FromStatus:      statusPtr(entity.StatusInTransit),
				ToStatus:        statusPtr(entity.StatusSemiFinished),
				Quantity:        line.ReceivedQuantity,
				ReferenceID:     &po.ID,
				Notes:           fmt.Sprintf("采购订单 %s 到货", po.OrderNumber),
			}); err != nil {
				return err
			}
			item.ReceivedQuantity = newReceived
			if err := tx.Model(&entity.PurchaseOrderItem{}).Where("id = ?", item.ID).
				Update("received_quantity", newReceived).Error; err != nil {
				return err
			}
		}

		return tx.Model(&entity.PurchaseOrder{}).Where("id = ?", po.ID).
			Update("status", recomputePOStatus(items)).Error
	})
	if err != nil {
		return nil, err
	}
	return s.purchaseRepo.GetByID(ctx, orderID)
}

// recomputePOStatus 按全部明细的累计到货推导订单状态
func recomputePOStatus(items []entity.PurchaseOrderItem) string {
	allFull := len(items) > 0
	anyReceived := false
	for _, item := range items {
		if item.ReceivedQuantity < item.Quantity {
			allFull = false
		}
		if item.ReceivedQuantity > 0 {
			anyReceived = true
		}
	}
	if allFull {
		return entity.POStatusCompleted
	}
	if anyReceived {
		return entity.POStatusPartial
	}
	return entity.POStatusPending
}

// DeletePO 删除采购单，仅待收货状态允许。逐项冲减在途（向下夹至0）并记录取消流水，
// 再删除明细与订单，整体同一事务。
func (s *ProcurementService) DeletePO(ctx context.Context, orderID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var po entity.PurchaseOrder
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&po, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("采购订单不存在: %w", ErrNotFound)
			}
			return err
		}
		if po.Status != entity.POStatusPending {
			return fmt.Errorf("只能删除待收货状态的采购订单: %w", ErrStateConflict)
		}

		var items []entity.PurchaseOrderItem
		if err := tx.Where("purchase_order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if _, err := adjustInTransit(tx, item.ProductID, po.WarehouseID, -item.Quantity); err != nil {
				return err
			}
			if err := appendTransaction(tx, &entity.InventoryTransaction{
				ProductID:       item.ProductID,
				WarehouseID:     po.WarehouseID,
				TransactionType: entity.TxTypeCancelPurchase,
				FromStatus:      statusPtr(entity.StatusInTransit),
				Quantity:        -item.Quantity,
				ReferenceID:     &po.ID,
				Notes:           fmt.Sprintf("删除采购订单 %s", po.OrderNumber),
			}); err != nil {
				return err
			}
		}

		if err := tx.Delete(&entity.PurchaseOrderItem{}, "purchase_order_id = ?", po.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.PurchaseOrder{}, "id = ?", po.ID).Error
	})
}

// GetPO 查询采购单详情
func (s *ProcurementService) GetPO(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	po, err := s.purchaseRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("采购订单不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	return po, nil
}

// ListPOs 查询采购单列表
func (s *ProcurementService) ListPOs(ctx context.Context, params repository.POListParams) ([]entity.PurchaseOrder, int64, error) {
	return s.purchaseRepo.List(ctx, params)
}
