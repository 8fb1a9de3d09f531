package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_Analytics(t *testing.T) {
	cases := []struct {
		amount, spent Money
		percent       int
		status        BudgetStatus
		exceeded      bool
		remaining     Money
	}{
		{10000, 8000, 80, BudgetStatusWarning, false, 2000},
		{10000, 10000, 100, BudgetStatusExceeded, false, 0},
		{10000, 5000, 50, BudgetStatusGood, false, 5000},
		{10000, 12000, 120, BudgetStatusExceeded, true, -2000},
		{10000, 7950, 80, BudgetStatusWarning, false, 2050}, // 79.5 四舍五入
		{10000, 7949, 79, BudgetStatusGood, false, 2051},
		{10000, 9999, 100, BudgetStatusExceeded, false, 1},
		{0, 0, 0, BudgetStatusGood, false, 0},
		{0, 1, 0, BudgetStatusGood, true, -1},
	}
	for _, tc := range cases {
		b := &Budget{Amount: tc.amount, Spent: tc.spent}
		assert.Equal(t, tc.percent, b.PercentageUsed(), "%d/%d", tc.spent, tc.amount)
		assert.Equal(t, tc.status, b.Status(), "%d/%d", tc.spent, tc.amount)
		assert.Equal(t, tc.exceeded, b.IsExceeded(), "%d/%d", tc.spent, tc.amount)
		assert.Equal(t, tc.remaining, b.Remaining(), "%d/%d", tc.spent, tc.amount)
	}
}

func TestBudget_View(t *testing.T) {
	b := &Budget{Name: "Groceries", Amount: 10000, Spent: 8000}
	v := b.View()
	assert.Equal(t, Money(2000), v.Remaining)
	assert.Equal(t, 80, v.PercentageUsed)
	assert.Equal(t, BudgetStatusWarning, v.Status)
	assert.Equal(t, "Groceries", v.Name)
}

func TestParseBudgetPeriod(t *testing.T) {
	p, err := ParseBudgetPeriod("quarterly")
	require.NoError(t, err)
	assert.Equal(t, BudgetQuarterly, p)

	_, err = ParseBudgetPeriod("daily")
	assert.ErrorIs(t, err, ErrInvalidValue)
}
