package service

import (
	"household/models"

	"gorm.io/gorm"
)

// LoadBudgetSpent 汇总每个预算下支出类交易金额，写入 Budget.Spent
func LoadBudgetSpent(db *gorm.DB, budgets []models.Budget) error {
	if len(budgets) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(budgets))
	for _, b := range budgets {
		ids = append(ids, b.ID)
	}

	var rows []struct {
		BudgetID uint
		Spent    int64
	}
	err := db.Model(&models.Transaction{}).
		Select("budget_id, COALESCE(SUM(amount), 0) AS spent").
		Where("budget_id IN ? AND type = ?", ids, models.TransactionExpense).
		Group("budget_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}

	spent := make(map[uint]models.Money, len(rows))
	for _, r := range rows {
		spent[r.BudgetID] = models.Money(r.Spent)
	}
	for i := range budgets {
		budgets[i].Spent = spent[budgets[i].ID]
	}
	return nil
}

// BudgetViews 生成输出结构
func BudgetViews(budgets []models.Budget) []models.BudgetView {
	views := make([]models.BudgetView, 0, len(budgets))
	for i := range budgets {
		views = append(views, budgets[i].View())
	}
	return views
}
