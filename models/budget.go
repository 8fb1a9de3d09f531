package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod 预算周期
type BudgetPeriod string

const (
	BudgetWeekly    BudgetPeriod = "weekly"
	BudgetMonthly   BudgetPeriod = "monthly"
	BudgetQuarterly BudgetPeriod = "quarterly"
	BudgetYearly    BudgetPeriod = "yearly"
)

// BudgetPeriods 全部预算周期
func BudgetPeriods() []BudgetPeriod {
	return []BudgetPeriod{BudgetWeekly, BudgetMonthly, BudgetQuarterly, BudgetYearly}
}

// ParseBudgetPeriod 解析预算周期
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	p := BudgetPeriod(strings.TrimSpace(s))
	for _, known := range BudgetPeriods() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown budget period %q", ErrInvalidValue, s)
}

// BudgetStatus 预算使用状态
type BudgetStatus string

const (
	BudgetStatusGood     BudgetStatus = "good"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusExceeded BudgetStatus = "exceeded"
)

const (
	budgetWarningPercent  = 80
	budgetExceededPercent = 100
)

// Budget 周期内的支出上限
// Spent 不入库，由关联的支出交易实时汇总
type Budget struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"size:255;not null;index"`
	Description string       `json:"description" gorm:"type:text"`
	Amount      Money        `json:"amount" gorm:"not null"`
	Spent       Money        `json:"spent" gorm:"-"`
	Period      BudgetPeriod `json:"period" gorm:"size:20;not null"`
	StartDate   time.Time    `json:"start_date" gorm:"type:date;not null"`
	EndDate     *time.Time   `json:"end_date" gorm:"type:date"`
	IsActive    bool         `json:"is_active" gorm:"not null;index"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Tags        []Tag        `json:"tags,omitempty" gorm:"-"`
}

func (Budget) TableName() string {
	return "budgets"
}

// Remaining 剩余额度，可能为负
func (b *Budget) Remaining() Money {
	return b.Amount.Sub(b.Spent)
}

func (b *Budget) IsExceeded() bool {
	return b.Spent.GreaterThan(b.Amount)
}

// PercentageUsed 已用百分比，四舍五入到整数；额度为 0 时返回 0
func (b *Budget) PercentageUsed() int {
	if b.Amount.IsZero() {
		return 0
	}
	used := decimal.NewFromInt(b.Spent.Cents()).Mul(hundred).Div(decimal.NewFromInt(b.Amount.Cents()))
	return int(used.Round(0).IntPart())
}

// Status >=100% 超支，>=80% 预警，其余正常
func (b *Budget) Status() BudgetStatus {
	used := b.PercentageUsed()
	switch {
	case used >= budgetExceededPercent:
		return BudgetStatusExceeded
	case used >= budgetWarningPercent:
		return BudgetStatusWarning
	}
	return BudgetStatusGood
}

// BudgetView 输出结构
type BudgetView struct {
	*Budget
	Remaining      Money        `json:"remaining"`
	IsExceeded     bool         `json:"is_exceeded"`
	PercentageUsed int          `json:"percentage_used"`
	Status         BudgetStatus `json:"status"`
}

func (b *Budget) View() BudgetView {
	return BudgetView{
		Budget:         b,
		Remaining:      b.Remaining(),
		IsExceeded:     b.IsExceeded(),
		PercentageUsed: b.PercentageUsed(),
		Status:         b.Status(),
	}
}
