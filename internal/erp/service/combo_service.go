package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// ComboService 组合商品服务：档案维护、可组装数量计算、组装与出库
type ComboService struct {
	comboRepo     *repository.ComboRepository
	productRepo   *repository.ProductRepository
	warehouseRepo *repository.WarehouseRepository
	inventoryRepo *repository.InventoryRepository
	db            *gorm.DB
}

func NewComboService(
	comboRepo *repository.ComboRepository,
	productRepo *repository.ProductRepository,
	warehouseRepo *repository.WarehouseRepository,
	inventoryRepo *repository.InventoryRepository,
	db *gorm.DB,
) *ComboService {
	return &ComboService{
		comboRepo:     comboRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		inventoryRepo: inventoryRepo,
		db:            db,
	}
}

// ComboPackagingRelationRequest 包材用量
type ComboPackagingRelationRequest struct {
	PackagingID string `json:"packaging_id" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required,gt=0"`
}

// ComboItemRequest 组合构成项。PackagingRelations 为该基础商品在此组合内的包材配置，
// 留空表示该商品在组合内不消耗包材
type ComboItemRequest struct {
	BaseProductID      string                          `json:"base_product_id" binding:"required"`
	Quantity           int64                           `json:"quantity" binding:"required,gt=0"`
	PackagingRelations []ComboPackagingRelationRequest `json:"packaging_relations" binding:"omitempty,dive"`
}

// CreateComboRequest 创建组合商品请求
type CreateComboRequest struct {
	Name               string                          `json:"name" binding:"required"`
	SKU                string                          `json:"sku" binding:"required"`
	Items              []ComboItemRequest              `json:"items" binding:"required,min=1,dive"`
	PackagingRelations []ComboPackagingRelationRequest `json:"packaging_relations" binding:"required,min=1,dive"`
	WarehouseIDs       []string                        `json:"warehouse_ids" binding:"required,min=1"`
}

// UpdateComboRequest 更新组合商品请求。Items/PackagingRelations/WarehouseIDs
// 提供时整体替换，留空表示不变
type UpdateComboRequest struct {
	Name               string                          `json:"name"`
	SKU                string                          `json:"sku"`
	Items              []ComboItemRequest              `json:"items" binding:"omitempty,min=1,dive"`
	PackagingRelations []ComboPackagingRelationRequest `json:"packaging_relations" binding:"omitempty,min=1,dive"`
	WarehouseIDs       []string                        `json:"warehouse_ids" binding:"omitempty,min=1"`
}

// AssembleRequest 组装请求
type AssembleRequest struct {
	ComboProductID string `json:"combo_product_id" binding:"required"`
	WarehouseID    string `json:"warehouse_id" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	Notes          string `json:"notes"`
}

// ShipComboRequest 组合商品出库请求
type ShipComboRequest struct {
	ComboProductID string `json:"combo_product_id" binding:"required"`
	WarehouseID    string `json:"warehouse_id" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"required,gt=0"`
	Notes          string `json:"notes"`
}

func nameOrID(p *entity.Product, id string) string {
	if p != nil {
		return p.Name
	}
	return id
}

// checkBaseProduct 校验基础商品存在且为商品类型
func (s *ComboService) checkBaseProduct(ctx context.Context, id string) error {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("基础商品 %s 不存在: %w", id, ErrNotFound)
		}
		return err
	}
	if p.SaleType != entity.SaleTypeProduct {
		return fmt.Errorf("基础商品 %s 必须是商品类型", p.Name)
	}
	return nil
}

// checkPackaging 校验包材存在且为包材类型
func (s *ComboService) checkPackaging(ctx context.Context, id string) error {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("包材 %s 不存在: %w", id, ErrNotFound)
		}
		return err
	}
	if p.SaleType != entity.SaleTypePackaging {
		return fmt.Errorf("%s 不是包材类型", p.Name)
	}
	return nil
}

func (s *ComboService) checkItems(ctx context.Context, items []ComboItemRequest) error {
	for _, item := range items {
		if err := s.checkBaseProduct(ctx, item.BaseProductID); err != nil {
			return err
		}
		for _, rel := range item.PackagingRelations {
			if err := s.checkPackaging(ctx, rel.PackagingID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ComboService) checkPackagingRelations(ctx context.Context, relations []ComboPackagingRelationRequest) error {
	for _, rel := range relations {
		if err := s.checkPackaging(ctx, rel.PackagingID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ComboService) checkWarehouses(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.warehouseRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("仓库 %s 不存在: %w", id, ErrNotFound)
			}
			return err
		}
	}
	return nil
}

func buildComboItems(items []ComboItemRequest) []entity.ComboProductItem {
	result := make([]entity.ComboProductItem, 0, len(items))
	for _, item := range items {
		e := entity.ComboProductItem{
			BaseProductID: item.BaseProductID,
			Quantity:      item.Quantity,
		}
		for _, rel := range item.PackagingRelations {
			e.PackagingRelations = append(e.PackagingRelations, entity.ComboItemPackagingRelation{
				PackagingID: rel.PackagingID,
				Quantity:    rel.Quantity,
			})
		}
		result = append(result, e)
	}
	return result
}

func buildComboPackagingRelations(relations []ComboPackagingRelationRequest) []entity.ComboProductPackagingRelation {
	result := make([]entity.ComboProductPackagingRelation, 0, len(relations))
	for _, rel := range relations {
		result = append(result, entity.ComboProductPackagingRelation{
			PackagingID: rel.PackagingID,
			Quantity:    rel.Quantity,
		})
	}
	return result
}

// CreateCombo 创建组合商品：SKU 跨商品与组合唯一，构成与包材引用全部校验后
// 连同各选定仓库的零库存记录在同一事务内写入
func (s *ComboService) CreateCombo(ctx context.Context, req *CreateComboRequest) (*entity.ComboProduct, error) {
	taken, err := skuExists(ctx, s.productRepo, s.comboRepo, req.SKU)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("SKU %s 已存在: %w", req.SKU, ErrDuplicate)
	}
	if err := s.checkItems(ctx, req.Items); err != nil {
		return nil, err
	}
	if err := s.checkPackagingRelations(ctx, req.PackagingRelations); err != nil {
		return nil, err
	}
	if err := s.checkWarehouses(ctx, req.WarehouseIDs); err != nil {
		return nil, err
	}

	combo := &entity.ComboProduct{
		Name:               req.Name,
		SKU:                req.SKU,
		Items:              buildComboItems(req.Items),
		PackagingRelations: buildComboPackagingRelations(req.PackagingRelations),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(combo).Error; err != nil {
			return err
		}
		for _, warehouseID := range req.WarehouseIDs {
			record := &entity.ComboInventoryRecord{
				ComboProductID: combo.ID,
				WarehouseID:    warehouseID,
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCombo(ctx, combo.ID)
}

// UpdateCombo 更新组合商品。构成与包材提供时整体替换；
// 仓库集合变化时，移除仍有成品或已出库数量的仓库会被拒绝
func (s *ComboService) UpdateCombo(ctx context.Context, id string, req *UpdateComboRequest) (*entity.ComboProduct, error) {
	combo, err := s.comboRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("组合商品不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	if req.SKU != "" && req.SKU != combo.SKU {
		taken, err := skuExists(ctx, s.productRepo, s.comboRepo, req.SKU)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("SKU %s 已存在: %w", req.SKU, ErrDuplicate)
		}
	}
	if req.Items != nil {
		if err := s.checkItems(ctx, req.Items); err != nil {
			return nil, err
		}
	}
	if req.PackagingRelations != nil {
		if err := s.checkPackagingRelations(ctx, req.PackagingRelations); err != nil {
			return nil, err
		}
	}

	var toRemove []entity.ComboInventoryRecord
	var toAdd []string
	if req.WarehouseIDs != nil {
		if err := s.checkWarehouses(ctx, req.WarehouseIDs); err != nil {
			return nil, err
		}
		records, err := s.comboRepo.ListRecordsByCombo(ctx, id)
		if err != nil {
			return nil, err
		}
		keep := make(map[string]bool, len(req.WarehouseIDs))
		for _, warehouseID := range req.WarehouseIDs {
			keep[warehouseID] = true
		}
		existing := make(map[string]bool, len(records))
		for _, record := range records {
			existing[record.WarehouseID] = true
			if keep[record.WarehouseID] {
				continue
			}
			if record.Finished > 0 || record.Shipped > 0 {
				return nil, fmt.Errorf("仓库尚有组合商品库存，不能移除: %w", ErrStateConflict)
			}
			toRemove = append(toRemove, record)
		}
		for _, warehouseID := range req.WarehouseIDs {
			if !existing[warehouseID] {
				toAdd = append(toAdd, warehouseID)
			}
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Name != "" {
			updates["name"] = req.Name
		}
		if req.SKU != "" {
			updates["sku"] = req.SKU
		}
		if len(updates) > 0 {
			if err := tx.Model(&entity.ComboProduct{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.Items != nil {
			var itemIDs []string
			if err := tx.Model(&entity.ComboProductItem{}).
				Where("combo_product_id = ?", id).Pluck("id", &itemIDs).Error; err != nil {
				return err
			}
			if len(itemIDs) > 0 {
				if err := tx.Delete(&entity.ComboItemPackagingRelation{}, "combo_item_id IN ?", itemIDs).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&entity.ComboProductItem{}, "combo_product_id = ?", id).Error; err != nil {
				return err
			}
			items := buildComboItems(req.Items)
			for i := range items {
				items[i].ComboProductID = id
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}

		if req.PackagingRelations != nil {
			if err := tx.Delete(&entity.ComboProductPackagingRelation{}, "combo_product_id = ?", id).Error; err != nil {
				return err
			}
			relations := buildComboPackagingRelations(req.PackagingRelations)
			for i := range relations {
				relations[i].ComboProductID = id
			}
			if err := tx.Create(&relations).Error; err != nil {
				return err
			}
		}

		for _, record := range toRemove {
			if err := tx.Delete(&entity.ComboInventoryRecord{}, "id = ?", record.ID).Error; err != nil {
				return err
			}
		}
		for _, warehouseID := range toAdd {
			record := &entity.ComboInventoryRecord{ComboProductID: id, WarehouseID: warehouseID}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCombo(ctx, id)
}

// DeleteCombo 删除组合商品。任一仓库尚有成品库存时拒绝；
// 构成、包材关系、库存记录与流水随组合一并删除
func (s *ComboService) DeleteCombo(ctx context.Context, id string) error {
	if _, err := s.comboRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("组合商品不存在: %w", ErrNotFound)
		}
		return err
	}
	records, err := s.comboRepo.ListRecordsByCombo(ctx, id)
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.Finished > 0 {
			return fmt.Errorf("组合商品尚有成品库存，无法删除: %w", ErrStateConflict)
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var itemIDs []string
		if err := tx.Model(&entity.ComboProductItem{}).
			Where("combo_product_id = ?", id).Pluck("id", &itemIDs).Error; err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			if err := tx.Delete(&entity.ComboItemPackagingRelation{}, "combo_item_id IN ?", itemIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&entity.ComboProductItem{}, "combo_product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.ComboProductPackagingRelation{}, "combo_product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.ComboInventoryRecord{}, "combo_product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entity.ComboInventoryTransaction{}, "combo_product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.ComboProduct{}, "id = ?", id).Error
	})
}

// GetCombo 查询组合商品详情
func (s *ComboService) GetCombo(ctx context.Context, id string) (*entity.ComboProduct, error) {
	combo, err := s.comboRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("组合商品不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	return combo, nil
}

// ListCombos 查询组合商品列表
func (s *ComboService) ListCombos(ctx context.Context, params repository.ComboListParams) ([]entity.ComboProduct, int64, error) {
	return s.comboRepo.List(ctx, params)
}

// AvailableToAssemble 计算组合商品在某仓库当前可组装的数量
func (s *ComboService) AvailableToAssemble(ctx context.Context, comboID, warehouseID string) (int64, error) {
	combo, err := s.comboRepo.GetByID(ctx, comboID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("组合商品不存在: %w", ErrNotFound)
		}
		return 0, err
	}
	fetch := func(productID string) (*entity.InventoryRecord, bool, error) {
		record, err := s.inventoryRepo.GetByProductAndWarehouse(ctx, productID, warehouseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, nil
			}
			return nil, false, err
		}
		return record, true, nil
	}
	return availabilityFor(combo, fetch)
}

// deductSemiFinished 从已锁定的库存记录扣减半成品，扣减前复核余额
func deductSemiFinished(tx *gorm.DB, records map[string]*entity.InventoryRecord, productID string, quantity int64, label string) error {
	record, ok := records[productID]
	if !ok {
		return fmt.Errorf("%s 库存记录不存在: %w", label, ErrNotFound)
	}
	if record.SemiFinished < quantity {
		return fmt.Errorf("%s 半成品库存不足: 需要%d, 可用%d: %w",
			label, quantity, record.SemiFinished, ErrInsufficientStock)
	}
	record.SemiFinished -= quantity
	return tx.Save(record).Error
}

// Assemble 组装组合商品。在行锁下重算可组装数量并拒绝超量；
// 依次扣减基础商品半成品、构成项包材、组合自身包材，组合成品入库（记录懒创建），
// 最后记一条组装流水，整体同一事务。
func (s *ComboService) Assemble(ctx context.Context, req *AssembleRequest) error {
	combo, err := s.comboRepo.GetByID(ctx, req.ComboProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("组合商品不存在: %w", ErrNotFound)
		}
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		records := map[string]*entity.InventoryRecord{}
		fetch := func(productID string) (*entity.InventoryRecord, bool, error) {
			if record, ok := records[productID]; ok {
				return record, true, nil
			}
			record, err := lockInventory(tx, productID, req.WarehouseID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, false, nil
				}
				return nil, false, err
			}
			records[productID] = record
			return record, true, nil
		}

		available, err := availabilityFor(combo, fetch)
		if err != nil {
			return err
		}
		if req.Quantity > available {
			return fmt.Errorf("可组装数量不足: 最多可组装 %d 件: %w", available, ErrInsufficientStock)
		}

		for _, item := range combo.Items {
			needed := item.Quantity * req.Quantity
			label := "基础商品 " + nameOrID(item.BaseProduct, item.BaseProductID)
			if err := deductSemiFinished(tx, records, item.BaseProductID, needed, label); err != nil {
				return err
			}
			for _, rel := range item.PackagingRelations {
				pkgLabel := label + " 的包材 " + nameOrID(rel.Packaging, rel.PackagingID)
				if err := deductSemiFinished(tx, records, rel.PackagingID, rel.Quantity*needed, pkgLabel); err != nil {
					return err
				}
			}
		}
		for _, rel := range combo.PackagingRelations {
			pkgLabel := "组合商品包材 " + nameOrID(rel.Packaging, rel.PackagingID)
			if err := deductSemiFinished(tx, records, rel.PackagingID, rel.Quantity*req.Quantity, pkgLabel); err != nil {
				return err
			}
		}

		comboRecord, err := ensureComboRecord(tx, req.ComboProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		comboRecord.Finished += req.Quantity
		if err := tx.Save(comboRecord).Error; err != nil {
			return err
		}

		return tx.Create(&entity.ComboInventoryTransaction{
			ComboProductID:  req.ComboProductID,
			WarehouseID:     req.WarehouseID,
			TransactionType: entity.ComboTxTypeAssemble,
			Quantity:        req.Quantity,
			Notes:           req.Notes,
		}).Error
	})
}

// ShipCombo 组合商品出库：成品转出库并记出库流水，同一事务
func (s *ComboService) ShipCombo(ctx context.Context, req *ShipComboRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockComboRecord(tx, req.ComboProductID, req.WarehouseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("组合商品库存记录不存在: %w", ErrNotFound)
			}
			return err
		}
		if record.Finished < req.Quantity {
			return fmt.Errorf("成品库存不足: 需要%d, 可用%d: %w",
				req.Quantity, record.Finished, ErrInsufficientStock)
		}
		record.Finished -= req.Quantity
		record.Shipped += req.Quantity
		if err := tx.Save(record).Error; err != nil {
			return err
		}

		notes := req.Notes
		if notes == "" {
			notes = "组合商品出库"
		}
		return tx.Create(&entity.ComboInventoryTransaction{
			ComboProductID:  req.ComboProductID,
			WarehouseID:     req.WarehouseID,
			TransactionType: entity.ComboTxTypeShip,
			Quantity:        req.Quantity,
			Notes:           notes,
		}).Error
	})
}

// ListRecords 分页查询组合商品库存
func (s *ComboService) ListRecords(ctx context.Context, params repository.ComboRecordListParams) ([]entity.ComboInventoryRecord, int64, error) {
	return s.comboRepo.ListRecords(ctx, params)
}

// ListRecordsByWarehouse 查询某仓库的全部组合商品库存
func (s *ComboService) ListRecordsByWarehouse(ctx context.Context, warehouseID string) ([]entity.ComboInventoryRecord, error) {
	return s.comboRepo.ListRecordsByWarehouse(ctx, warehouseID)
}

// Summary 按组合商品聚合全部仓库的库存
func (s *ComboService) Summary(ctx context.Context, keyword string, page, pageSize int) ([]repository.ComboInventorySummary, int64, error) {
	return s.comboRepo.Summary(ctx, keyword, page, pageSize)
}

// ListTransactions 分页查询组合商品库存流水
func (s *ComboService) ListTransactions(ctx context.Context, params repository.ComboTransactionListParams) ([]entity.ComboInventoryTransaction, int64, error) {
	return s.comboRepo.ListTransactions(ctx, params)
}

// ComboPackagingStock 查询组合商品在某仓库的包材余量视图
func (s *ComboService) ComboPackagingStock(ctx context.Context, comboID, warehouseID string) ([]PackagingStock, error) {
	combo, err := s.GetCombo(ctx, comboID)
	if err != nil {
		return nil, err
	}
	stocks := make([]PackagingStock, 0, len(combo.PackagingRelations))
	for _, rel := range combo.PackagingRelations {
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
