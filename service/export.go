package service

import (
	"fmt"

	"household/models"

	"github.com/xuri/excelize/v2"
)

const InventorySheet = "库存"

var inventoryHeaders = []string{
	"ID", "商品", "品牌", "单位", "购买数量", "当前数量", "阈值",
	"剩余(%)", "需要补货", "日均消耗", "预计到达阈值(天)", "存放位置", "最近购买日期", "最近购买价格",
}

var inventoryColWidths = []float64{8, 24, 16, 12, 12, 12, 10, 10, 10, 12, 18, 18, 16, 14}

// BuildInventoryWorkbook 生成库存 Excel，末尾附汇总行
// 调用方负责 Close
func BuildInventoryWorkbook(products []models.ProductView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", InventorySheet); err != nil {
		f.Close()
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	restockStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FDE2E1"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})

	lastCol, _ := excelize.ColumnNumberToName(len(inventoryHeaders))
	for i, width := range inventoryColWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(InventorySheet, col, col, width)
	}

	if err := f.SetSheetRow(InventorySheet, "A1", &inventoryHeaders); err != nil {
		f.Close()
		return nil, err
	}
	f.SetCellStyle(InventorySheet, "A1", lastCol+"1", headerStyle)

	restockCount := 0
	for i, p := range products {
		row := i + 2
		values := []interface{}{
			p.ID,
			p.Name,
			p.Brand,
			p.Unit.Label(),
			p.PurchasedAmount.InexactFloat64(),
			p.CurrentAmount.InexactFloat64(),
			p.ThresholdAmount.InexactFloat64(),
			p.PercentageRemainingRounded,
			yesNo(p.NeedsRestock),
			optionalFloat(p.ConsumptionRate),
			optionalInt(p.DaysUntilThreshold),
			p.StorageLocation,
			optionalString(p.LastPurchasedDate),
			optionalMoney(p.LastPurchasePrice),
		}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(InventorySheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
		style := dataStyle
		if p.NeedsRestock {
			style = restockStyle
			restockCount++
		}
		f.SetCellStyle(InventorySheet, cell, fmt.Sprintf("%s%d", lastCol, row), style)
	}

	summaryRow := len(products) + 2
	f.SetCellValue(InventorySheet, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(InventorySheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("B%d", summaryRow))
	f.SetCellValue(InventorySheet, fmt.Sprintf("C%d", summaryRow),
		fmt.Sprintf("共 %d 件商品，%d 件需要补货", len(products), restockCount))
	f.MergeCell(InventorySheet, fmt.Sprintf("C%d", summaryRow), fmt.Sprintf("%s%d", lastCol, summaryRow))
	f.SetCellStyle(InventorySheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("%s%d", lastCol, summaryRow), summaryStyle)

	return f, nil
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optionalMoney(v *models.Money) interface{} {
	if v == nil {
		return ""
	}
	return v.Float64()
}
