package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// ComboHandler 组合商品处理器
type ComboHandler struct {
	svc *service.ComboService
}

func NewComboHandler(svc *service.ComboService) *ComboHandler {
	return &ComboHandler{svc: svc}
}

// ListCombos 组合商品列表
// GET /api/v1/combo-products?search=xxx&page=1&page_size=20
func (h *ComboHandler) ListCombos(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ComboListParams{
		Keyword:  c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}

	items, total, err := h.svc.ListCombos(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取组合商品列表失败: "+err.Error())
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

// GetCombo 组合商品详情
// GET /api/v1/combo-products/:id
func (h *ComboHandler) GetCombo(c *gin.Context) {
	combo, err := h.svc.GetCombo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, combo)
}

// CreateCombo 创建组合商品
// POST /api/v1/combo-products
func (h *ComboHandler) CreateCombo(c *gin.Context) {
	var req service.CreateComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	combo, err := h.svc.CreateCombo(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, combo)
}

// UpdateCombo 更新组合商品
// PUT /api/v1/combo-products/:id
func (h *ComboHandler) UpdateCombo(c *gin.Context) {
	var req service.UpdateComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	combo, err := h.svc.UpdateCombo(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, combo)
}

// DeleteCombo 删除组合商品
// DELETE /api/v1/combo-products/:id
func (h *ComboHandler) DeleteCombo(c *gin.Context) {
	if err := h.svc.DeleteCombo(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "组合商品删除成功"})
}

// AvailableToAssemble 可组装数量
// GET /api/v1/combo-products/:id/available?warehouse_id=xxx
func (h *ComboHandler) AvailableToAssemble(c *gin.Context) {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		BadRequest(c, "缺少warehouse_id参数")
		return
	}

	available, err := h.svc.AvailableToAssemble(c.Request.Context(), c.Param("id"), warehouseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"available_quantity": available})
}

// Assemble 组装组合商品
// POST /api/v1/combo-products/assemble
func (h *ComboHandler) Assemble(c *gin.Context) {
	var req service.AssembleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.svc.Assemble(c.Request.Context(), &req); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "组装成功"})
}

// ShipCombo 组合商品出库
// POST /api/v1/combo-products/ship
func (h *ComboHandler) ShipCombo(c *gin.Context) {
	var req service.ShipComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.svc.ShipCombo(c.Request.Context(), &req); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "出库成功"})
}

// ListRecords 组合商品库存记录
// GET /api/v1/inventory/combo/records?combo_product_id=xxx&warehouse_id=xxx&search=xxx
func (h *ComboHandler) ListRecords(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ComboRecordListParams{
		ComboProductID: c.Query("combo_product_id"),
		WarehouseID:    c.Query("warehouse_id"),
		Keyword:        c.Query("search"),
		Page:           page,
		PageSize:       pageSize,
	}

	items, total, err := h.svc.ListRecords(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取组合商品库存失败: "+err.Error())
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

// ListRecordsByWarehouse 某仓库的组合商品库存
// GET /api/v1/inventory/combo/records/:warehouseId
func (h *ComboHandler) ListRecordsByWarehouse(c *gin.Context) {
	items, err := h.svc.ListRecordsByWarehouse(c.Request.Context(), c.Param("warehouseId"))
	if err != nil {
		InternalError(c, "获取组合商品库存失败: "+err.Error())
		return
	}
	Success(c, items)
}

// Summary 组合商品跨仓库存汇总
// GET /api/v1/inventory/combo/summary?search=xxx
func (h *ComboHandler) Summary(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.Summary(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		InternalError(c, "获取组合商品库存汇总失败: "+err.Error())
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

// ListTransactions 组合商品库存流水
// GET /api/v1/inventory/combo/transactions?combo_product_id=xxx&warehouse_id=xxx
func (h *ComboHandler) ListTransactions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ComboTransactionListParams{
		ComboProductID:  c.Query("combo_product_id"),
		WarehouseID:     c.Query("warehouse_id"),
		TransactionType: c.Query("transaction_type"),
		Page:            page,
		PageSize:        pageSize,
	}

	items, total, err := h.svc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取组合商品流水失败: "+err.Error())
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

// PackagingStock 组合商品关联包材的库存
// GET /api/v1/inventory/combo-product/:comboId/packaging?warehouse_id=xxx
func (h *ComboHandler) PackagingStock(c *gin.Context) {
	warehouseID := c.Query("warehouse_id")
	if warehouseID == "" {
		BadRequest(c, "缺少warehouse_id参数")
		return
	}

	items, err := h.svc.ComboPackagingStock(c.Request.Context(), c.Param("comboId"), warehouseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, items)
}
