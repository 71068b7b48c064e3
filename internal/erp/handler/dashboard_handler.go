package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// DashboardHandler 仪表板处理器
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats 仪表板统计数据
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		InternalError(c, "获取统计数据失败: "+err.Error())
		return
	}
	Success(c, stats)
}
