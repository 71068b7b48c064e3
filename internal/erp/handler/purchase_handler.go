package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// PurchaseHandler 采购订单处理器
type PurchaseHandler struct {
	svc *service.ProcurementService
}

func NewPurchaseHandler(svc *service.ProcurementService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

// ListPOs 采购订单列表
// GET /api/v1/purchase-orders?supplier_id=xxx&warehouse_id=xxx&status=xxx&search=xxx
func (h *PurchaseHandler) ListPOs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.POListParams{
		SupplierID:  c.Query("supplier_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      c.Query("status"),
		Keyword:     c.Query("search"),
		Page:        page,
		PageSize:    pageSize,
	}

	items, total, err := h.svc.ListPOs(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取采购订单列表失败: "+err.Error())
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

// GetPO 采购订单详情
// GET /api/v1/purchase-orders/:id
func (h *PurchaseHandler) GetPO(c *gin.Context) {
	po, err := h.svc.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, po)
}

// CreatePO 创建采购订单
// POST /api/v1/purchase-orders
func (h *PurchaseHandler) CreatePO(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.CreatePO(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, po)
}

// UpdatePO 更新采购订单（仅待收货状态）
// PUT /api/v1/purchase-orders/:id
func (h *PurchaseHandler) UpdatePO(c *gin.Context) {
	var req service.UpdatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.UpdatePO(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, po)
}

// ReceivePO 记录到货
// POST /api/v1/purchase-orders/:id/receive
func (h *PurchaseHandler) ReceivePO(c *gin.Context) {
	var req service.ReceivePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.ReceivePO(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, po)
}

// DeletePO 删除采购订单（仅待收货状态，回冲在途库存）
// DELETE /api/v1/purchase-orders/:id
func (h *PurchaseHandler) DeletePO(c *gin.Context) {
	if err := h.svc.DeletePO(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "采购订单删除成功"})
}
