package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// InventoryHandler 库存处理器
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListRecords 库存记录列表
// GET /api/v1/inventory/records?search=xxx&warehouse_id=xxx&sale_type=xxx
func (h *InventoryHandler) ListRecords(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.InventoryListParams{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Keyword:     c.Query("search"),
		SaleType:    c.Query("sale_type"),
		Page:        page,
		PageSize:    pageSize,
	}

	items, total, err := h.svc.ListRecords(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取库存记录失败: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// ListRecordsByWarehouse 某仓库的全部库存记录
// GET /api/v1/inventory/records/:warehouseId
func (h *InventoryHandler) ListRecordsByWarehouse(c *gin.Context) {
	items, err := h.svc.ListRecordsByWarehouse(c.Request.Context(), c.Param("warehouseId"))
	if err != nil {
		InternalError(c, "获取库存记录失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Summary 商品跨仓库存汇总
// GET /api/v1/inventory/summary?search=xxx
func (h *InventoryHandler) Summary(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.Summary(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		InternalError(c, "获取库存汇总失败: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// ExportSummary 导出库存汇总Excel
// GET /api/v1/inventory/summary/export?search=xxx
func (h *InventoryHandler) ExportSummary(c *gin.Context) {
	f, filename, err := h.svc.ExportSummary(c.Request.Context(), c.Query("search"))
	if err != nil {
		InternalError(c, "导出库存汇总失败: "+err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

// Pack 打包（半成品转成品，消耗包材）
// POST /api/v1/inventory/package
func (h *InventoryHandler) Pack(c *gin.Context) {
	var req service.PackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.svc.Pack(c.Request.Context(), &req); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "打包成功"})
}

// Ship 出库（成品转已发货）
// POST /api/v1/inventory/ship
func (h *InventoryHandler) Ship(c *gin.Context) {
	var req service.ShipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.svc.Ship(c.Request.Context(), &req); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "出库成功"})
}

// ListTransactions 库存流水
// GET /api/v1/inventory/transactions?product_id=xxx&warehouse_id=xxx&transaction_type=xxx
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.TransactionListParams{
		ProductID:       c.Query("product_id"),
		WarehouseID:     c.Query("warehouse_id"),
		TransactionType: c.Query("transaction_type"),
		Page:            page,
		PageSize:        pageSize,
	}

	items, total, err := h.svc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取库存流水失败: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// ProductPackagingStock 商品在指定仓库的包材库存
// GET /api/v1/inventory/product/:productId/packaging?warehouse_id=xxx
func (h *InventoryHandler) ProductPackagingStock(c *gin.Context) {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		BadRequest(c, "缺少warehouse_id参数")
		return
	}

	items, err := h.svc.ProductPackagingStock(c.Request.Context(), c.Param("productId"), warehouseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, items)
}
