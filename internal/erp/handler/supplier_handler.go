package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// SupplierHandler 供应商与供货关系处理器
type SupplierHandler struct {
	svc *service.SupplierService
}

func NewSupplierHandler(svc *service.SupplierService) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// ListSuppliers 供应商列表
// GET /api/v1/suppliers?search=xxx&page=1&page_size=20
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListSuppliers(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		InternalError(c, "获取供应商列表失败: "+err.Error())
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

// GetSupplier 供应商详情
// GET /api/v1/suppliers/:id
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.svc.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, supplier)
}

// CreateSupplier 创建供应商
// POST /api/v1/suppliers
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req service.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	supplier, err := h.svc.CreateSupplier(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, supplier)
}

// UpdateSupplier 更新供应商
// PUT /api/v1/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	var req service.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	supplier, err := h.svc.UpdateSupplier(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, supplier)
}

// DeleteSupplier 删除供应商
// DELETE /api/v1/suppliers/:id
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	if err := h.svc.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "供应商删除成功"})
}

// ListSupplierProducts 供货关系列表
// GET /api/v1/supplier-products?supplier_id=xxx&product_id=xxx&supplier_name=xxx&product_search=xxx
func (h *SupplierHandler) ListSupplierProducts(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.SupplierProductListParams{
		SupplierID:     c.Query("supplier_id"),
		ProductID:      c.Query("product_id"),
		SupplierName:   c.Query("supplier_name"),
		ProductKeyword: c.Query("product_search"),
		Page:           page,
		PageSize:       pageSize,
	}

	items, total, err := h.svc.ListSupplierProducts(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取供货关系列表失败: "+err.Error())
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

// CreateSupplierProduct 建立供货关系
// POST /api/v1/supplier-products
func (h *SupplierHandler) CreateSupplierProduct(c *gin.Context) {
	var req service.CreateSupplierProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	sp, err := h.svc.CreateSupplierProduct(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, sp)
}

// BatchCreateSupplierProducts 批量建立供货关系
// POST /api/v1/supplier-products/batch
func (h *SupplierHandler) BatchCreateSupplierProducts(c *gin.Context) {
	var req service.BatchCreateSupplierProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	created, err := h.svc.BatchCreateSupplierProducts(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, created)
}

// UpdateSupplierProduct 更新供货关系
// PUT /api/v1/supplier-products/:id
func (h *SupplierHandler) UpdateSupplierProduct(c *gin.Context) {
	var req service.UpdateSupplierProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	sp, err := h.svc.UpdateSupplierProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, sp)
}

// DeleteSupplierProduct 删除供货关系
// DELETE /api/v1/supplier-products/:id
func (h *SupplierHandler) DeleteSupplierProduct(c *gin.Context) {
	if err := h.svc.DeleteSupplierProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "供货关系删除成功"})
}

// ImportSupplierProducts 从Excel导入供货关系
// POST /api/v1/supplier-products/import/excel
func (h *SupplierHandler) ImportSupplierProducts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传Excel文件")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".xlsx") && !strings.HasSuffix(header.Filename, ".xls") {
		BadRequest(c, "只支持Excel文件格式 (.xlsx, .xls)")
		return
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		BadRequest(c, "无法解析Excel文件: "+err.Error())
		return
	}
	defer f.Close()

	result, err := h.svc.ImportSupplierProducts(c.Request.Context(), f)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, result)
}

// ListProductsBySupplier 某供应商的全部供货商品
// GET /api/v1/supplier-products/suppliers/:supplierId/products
func (h *SupplierHandler) ListProductsBySupplier(c *gin.Context) {
	params := repository.SupplierProductListParams{
		SupplierID: c.Param("supplierId"),
		Page:       1,
		PageSize:   1000,
	}
	items, _, err := h.svc.ListSupplierProducts(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取供货商品失败: "+err.Error())
		return
	}
	Success(c, items)
}

// ListSuppliersByProduct 某商品的全部供应商
// GET /api/v1/supplier-products/products/:productId/suppliers
func (h *SupplierHandler) ListSuppliersByProduct(c *gin.Context) {
	params := repository.SupplierProductListParams{
		ProductID: c.Param("productId"),
		Page:      1,
		PageSize:  1000,
	}
	items, _, err := h.svc.ListSupplierProducts(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取商品供应商失败: "+err.Error())
		return
	}
	Success(c, items)
}
