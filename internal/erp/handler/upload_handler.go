package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// UploadHandler 商品图片上传处理器
type UploadHandler struct {
	svc *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// UploadImage 上传商品图片
// POST /api/v1/upload/image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传图片文件")
		return
	}
	defer file.Close()

	result, err := h.svc.UploadImage(c.Request.Context(), file, header.Filename, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, result)
}

// GetImage 读取商品图片
// GET /api/v1/upload/image/*path
func (h *UploadHandler) GetImage(c *gin.Context) {
	objectName := strings.TrimPrefix(c.Param("path"), "/")

	object, contentType, err := h.svc.GetImage(c.Request.Context(), objectName)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer object.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, object); err != nil {
		InternalError(c, "读取文件失败: "+err.Error())
	}
}

// DeleteImage 删除商品图片
// DELETE /api/v1/upload/image/*path
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	objectName := strings.TrimPrefix(c.Param("path"), "/")

	if err := h.svc.DeleteImage(c.Request.Context(), objectName); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "文件删除成功"})
}
