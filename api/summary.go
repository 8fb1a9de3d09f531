package api

import (
	"time"

	"household/database"
	"household/models"

	"github.com/gin-gonic/gin"
)

// TypeTotal 某一交易类型的金额合计
type TypeTotal struct {
	Type  models.TransactionType `json:"type"`
	Label string                 `json:"label"`
	Color string                 `json:"color"`
	Icon  string                 `json:"icon"`
	Total models.Money           `json:"total"`
	Count int64                  `json:"count"`
}

// TransactionSummaryResponse 交易汇总返回
type TransactionSummaryResponse struct {
	TotalIncome  models.Money `json:"total_income" swaggertype:"number" example:"5000.00"`
	TotalExpense models.Money `json:"total_expense" swaggertype:"number" example:"123.45"`
	ByType       []TypeTotal  `json:"by_type"`
}

// Summary 获取交易汇总
// @Summary 获取收支汇总
// @Description 按日期范围统计各交易类型的合计。不传 start_date/end_date 则统计全部时间；wallet_id 可选
// @Tags 财务-交易
// @Produce json
// @Param start_date query string false "开始日期 (YYYY-MM-DD)"
// @Param end_date query string false "结束日期 (YYYY-MM-DD)"
// @Param wallet_id query int false "钱包ID"
// @Success 200 {object} Response{data=TransactionSummaryResponse} "获取成功"
// @Router /api/v1/transactions/summary [get]
func (h *TransactionHandler) Summary(c *gin.Context) {
	query := database.DB.Model(&models.Transaction{})

	if v := c.Query("start_date"); v != "" {
		if t, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
			query = query.Where("transaction_date >= ?", t)
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
			query = query.Where("transaction_date <= ?", t)
		}
	}
	if v := c.Query("wallet_id"); v != "" {
		query = query.Where("wallet_id = ?", v)
	}

	var rows []struct {
		Type  models.TransactionType
		Total int64
		Count int64
	}
	if err := query.Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	byType := make(map[models.TransactionType]TypeTotal, len(rows))
	for _, r := range rows {
		byType[r.Type] = TypeTotal{Total: models.Money(r.Total), Count: r.Count}
	}

	resp := TransactionSummaryResponse{ByType: make([]TypeTotal, 0, len(models.TransactionTypes()))}
	for _, typ := range models.TransactionTypes() {
		tt := byType[typ]
		tt.Type, tt.Label, tt.Color, tt.Icon = typ, typ.Label(), typ.Color(), typ.Icon()
		resp.ByType = append(resp.ByType, tt)
	}
	resp.TotalIncome = byType[models.TransactionIncome].Total
	resp.TotalExpense = byType[models.TransactionExpense].Total

	Success(c, resp)
}
