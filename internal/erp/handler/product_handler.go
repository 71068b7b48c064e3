package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// ProductHandler 商品处理器
type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ListProducts 商品列表
// GET /api/v1/products?search=xxx&warehouse_id=xxx&sale_type=xxx&page=1&page_size=20
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ProductListParams{
		Keyword:     c.Query("search"),
		WarehouseID: c.Query("warehouse_id"),
		SaleType:    c.Query("sale_type"),
		Page:        page,
		PageSize:    pageSize,
	}

	items, total, err := h.svc.ListProducts(c.Request.Context(), params)
	if err != nil {
		InternalError(c, "获取商品列表失败: "+err.Error())
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

// GetProduct 商品详情
// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, product)
}

// CreateProduct 创建商品
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, product)
}

// UpdateProduct 更新商品
// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	product, err := h.svc.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, product)
}

// DeleteProduct 删除商品
// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "商品删除成功"})
}

// ListPackagingRelations 商品的包材关系
// GET /api/v1/products/:id/packaging-relations
func (h *ProductHandler) ListPackagingRelations(c *gin.Context) {
	relations, err := h.svc.ListPackagingRelations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, relations)
}
