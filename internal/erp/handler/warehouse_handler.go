package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// WarehouseHandler 仓库处理器
type WarehouseHandler struct {
	svc *service.WarehouseService
}

func NewWarehouseHandler(svc *service.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{svc: svc}
}

// ListWarehouses 仓库列表
// GET /api/v1/warehouses?search=xxx&page=1&page_size=20
func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListWarehouses(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		InternalError(c, "获取仓库列表失败: "+err.Error())
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

// GetWarehouse 仓库详情
// GET /api/v1/warehouses/:id
func (h *WarehouseHandler) GetWarehouse(c *gin.Context) {
	warehouse, err := h.svc.GetWarehouse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, warehouse)
}

// CreateWarehouse 创建仓库
// POST /api/v1/warehouses
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	var req service.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	warehouse, err := h.svc.CreateWarehouse(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, warehouse)
}

// UpdateWarehouse 更新仓库
// PUT /api/v1/warehouses/:id
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	var req service.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	warehouse, err := h.svc.UpdateWarehouse(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, warehouse)
}

// DeleteWarehouse 删除仓库
// DELETE /api/v1/warehouses/:id
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	if err := h.svc.DeleteWarehouse(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "仓库删除成功"})
}
