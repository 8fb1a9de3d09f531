package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"household/database"
	"household/models"
	"household/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	now func() time.Time
}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{now: time.Now}
}

// ExportTransactionsCSV 导出交易为 CSV
// @Summary 导出交易记录
// @Description 根据日期范围导出交易为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Param start_date query string true "开始日期 (2025-01-01)"
// @Param end_date query string true "结束日期 (2025-12-31)"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/export/transactions.csv [get]
func (h *ExportHandler) ExportTransactionsCSV(c *gin.Context) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr == "" || endStr == "" {
		BadRequest(c, "请提供开始日期和结束日期")
		return
	}
	start, err := time.ParseInLocation(dateLayout, startStr, time.Local)
	if err != nil {
		BadRequest(c, "开始日期格式错误，应为: 2006-01-02")
		return
	}
	end, err := time.ParseInLocation(dateLayout, endStr, time.Local)
	if err != nil {
		BadRequest(c, "结束日期格式错误，应为: 2006-01-02")
		return
	}
	if end.Before(start) {
		BadRequest(c, "结束日期不能早于开始日期")
		return
	}

	var list []models.Transaction
	if err := database.DB.Preload("Wallet").Preload("Budget").Preload("Category").
		Where("transaction_date >= ? AND transaction_date <= ?", start, end).
		Order("transaction_date DESC, id DESC").
		Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")
	writer := csv.NewWriter(buf)

	headers := []string{"ID", "日期", "类型", "金额", "币种", "钱包", "分类", "预算", "描述", "备注"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for _, t := range list {
		var wallet, currency, category, budget string
		if t.Wallet != nil {
			wallet, currency = t.Wallet.Name, t.Wallet.Currency
		}
		if t.Category != nil {
			category = t.Category.Name
		}
		if t.Budget != nil {
			budget = t.Budget.Name
		}
		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.TransactionDate.Format(dateLayout),
			t.Type.Label(),
			t.Amount.String(),
			currency,
			wallet,
			category,
			budget,
			t.Description,
			t.Notes,
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportInventoryExcel 导出库存为 Excel
// @Summary 导出库存
// @Description 导出全部在用商品及派生字段，需要补货的行标红
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Excel 文件"
// @Router /api/v1/export/inventory.xlsx [get]
func (h *ExportHandler) ExportInventoryExcel(c *gin.Context) {
	var products []models.Product
	if err := database.DB.Where("is_active = ?", true).Order("name ASC").Find(&products).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	now := h.now()
	f, err := service.BuildInventoryWorkbook(models.ProductViews(products, now))
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", now.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
