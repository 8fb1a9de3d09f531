package api

import (
	"time"

	"household/database"
	"household/service"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 首页看板
type DashboardHandler struct {
	dashboard *service.DashboardService
	now       func() time.Time
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, now: time.Now}
}

// Get 看板汇总
// @Summary 获取看板数据
// @Description 需补货商品、预算状态、按币种汇总的钱包余额、本月收支；结果短暂缓存，写操作后失效
// @Tags 看板
// @Produce json
// @Success 200 {object} Response{data=service.Dashboard} "获取成功"
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.dashboard.Get(database.DB, h.now())
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, d)
}
