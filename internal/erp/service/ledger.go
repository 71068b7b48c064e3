package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// 库存账本工具。所有状态变更都在调用方开启的事务内执行，
// 计数行先以 SELECT ... FOR UPDATE 锁定再修改，流水由调用方在同一事务内补记。

// statusLabel 库存状态中文名，用于错误信息
func statusLabel(status string) string {
	switch status {
	case entity.StatusInTransit:
		return "在途"
	case entity.StatusSemiFinished:
		return "半成品"
	case entity.StatusFinished:
		return "成品"
	case entity.StatusShipped:
		return "出库"
	default:
		return status
	}
}

func statusPtr(status string) *string {
	return &status
}

// lockInventory 在事务内按（商品，仓库）加行锁读取库存记录
func lockInventory(tx *gorm.DB, productID, warehouseID string) (*entity.InventoryRecord, error) {
	var record entity.InventoryRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ensureInventory 懒创建库存记录并加锁返回。并发首次创建靠唯一索引 + DoNothing 收敛
func ensureInventory(tx *gorm.DB, productID, warehouseID string) (*entity.InventoryRecord, error) {
	record := &entity.InventoryRecord{ProductID: productID, WarehouseID: warehouseID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
		DoNothing: true,
	}).Create(record).Error; err != nil {
		return nil, err
	}
	return lockInventory(tx, productID, warehouseID)
}

func counterFor(record *entity.InventoryRecord, status string) (*int64, error) {
	switch status {
	case entity.StatusInTransit:
		return &record.InTransit, nil
	case entity.StatusSemiFinished:
		return &record.SemiFinished, nil
	case entity.StatusFinished:
		return &record.Finished, nil
	case entity.StatusShipped:
		return &record.Shipped, nil
	default:
		return nil, fmt.Errorf("未知库存状态: %s", status)
	}
}

// transferInventory 将数量从一个状态转移到另一个状态。
// 扣减前校验来源余额，校验失败不产生任何变更。
func transferInventory(tx *gorm.DB, productID, warehouseID, fromStatus, toStatus string, quantity int64) (*entity.InventoryRecord, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("转移数量必须大于0: %w", ErrInvalidQuantity)
	}
	record, err := lockInventory(tx, productID, warehouseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("库存记录不存在: %w", ErrNotFound)
		}
		return nil, err
	}
	from, err := counterFor(record, fromStatus)
	if err != nil {
		return nil, err
	}
	to, err := counterFor(record, toStatus)
	if err != nil {
		return nil, err
	}
	if *from < quantity {
		return nil, fmt.Errorf("%s库存不足: 需要%d, 可用%d: %w",
			statusLabel(fromStatus), quantity, *from, ErrInsufficientStock)
	}
	*from -= quantity
	*to += quantity
	if err := tx.Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// adjustInTransit 调整在途数量。记录缺失时懒创建，结果向下夹至 0：
// 部分到货后删单时已到货部分早已离开在途，此处不允许出现负数。
func adjustInTransit(tx *gorm.DB, productID, warehouseID string, delta int64) (*entity.InventoryRecord, error) {
	record, err := ensureInventory(tx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	record.InTransit += delta
	if record.InTransit < 0 {
		record.InTransit = 0
	}
	if err := tx.Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// appendTransaction 追加一条库存流水；流水只增不改
func appendTransaction(tx *gorm.DB, txn *entity.InventoryTransaction) error {
	return tx.Create(txn).Error
}

// lockComboRecord 在事务内按（组合商品，仓库）加行锁读取组合库存记录
func lockComboRecord(tx *gorm.DB, comboProductID, warehouseID string) (*entity.ComboInventoryRecord, error) {
	var record entity.ComboInventoryRecord
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("combo_product_id = ? AND warehouse_id = ?", comboProductID, warehouseID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ensureComboRecord 懒创建组合库存记录并加锁返回
func ensureComboRecord(tx *gorm.DB, comboProductID, warehouseID string) (*entity.ComboInventoryRecord, error) {
	record := &entity.ComboInventoryRecord{ComboProductID: comboProductID, WarehouseID: warehouseID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "combo_product_id"}, {Name: "warehouse_id"}},
		DoNothing: true,
	}).Create(record).Error; err != nil {
		return nil, err
	}
	return lockComboRecord(tx, comboProductID, warehouseID)
}
