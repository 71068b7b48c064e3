package service

import (
	"github.com/Castor6/dsx-erp/internal/erp/entity"
)

// 可组装数量计算。每条约束是纯函数（库存，单耗）→ 可支撑数量，
// 全部约束取最小值；整数向下取整，不做四舍五入。

// unitsSupported 库存按单耗折算可支撑的数量
func unitsSupported(stock, perUnit int64) int64 {
	if perUnit <= 0 {
		return 0
	}
	return stock / perUnit
}

// minAvailability 全部约束的最小值；无约束时为 0
func minAvailability(limits []int64) int64 {
	if len(limits) == 0 {
		return 0
	}
	min := limits[0]
	for _, n := range limits[1:] {
		if n < min {
			min = n
		}
	}
	return min
}

// inventoryFetcher 返回某商品在目标仓库的库存记录；found=false 表示无记录
type inventoryFetcher func(productID string) (record *entity.InventoryRecord, found bool, err error)

// availabilityFor 计算组合商品在某仓库的可组装数量。
// 约束链共三类：基础商品半成品、基础商品包材（两级折算）、组合自身包材。
// 任一依赖缺少库存记录时直接为 0（缺记录视为未配置，而非零库存）。
func availabilityFor(combo *entity.ComboProduct, fetch inventoryFetcher) (int64, error) {
	if len(combo.Items) == 0 {
		return 0, nil
	}
	var limits []int64
	for _, item := range combo.Items {
		baseRecord, found, err := fetch(item.BaseProductID)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, nil
		}
		limits = append(limits, unitsSupported(baseRecord.SemiFinished, item.Quantity))

		for _, rel := range item.PackagingRelations {
			pkgRecord, found, err := fetch(rel.PackagingID)
			if err != nil {
				return 0, err
			}
			if !found {
				return 0, nil
			}
			// 包材先折算可支撑的基础商品数，再折算可支撑的组合数
			baseUnits := unitsSupported(pkgRecord.SemiFinished, rel.Quantity)
			limits = append(limits, unitsSupported(baseUnits, item.Quantity))
		}
	}
	for _, rel := range combo.PackagingRelations {
		pkgRecord, found, err := fetch(rel.PackagingID)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, nil
		}
		limits = append(limits, unitsSupported(pkgRecord.SemiFinished, rel.Quantity))
	}
	return minAvailability(limits), nil
}
