package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(purchased, current, threshold string) *Product {
	return &Product{
		Name:            "Milk",
		PurchasedAmount: decimal.RequireFromString(purchased),
		CurrentAmount:   decimal.RequireFromString(current),
		ThresholdAmount: decimal.RequireFromString(threshold),
		Unit:            UnitGallon,
	}
}

func daysAgo(now time.Time, days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

func TestProduct_PercentageRemaining(t *testing.T) {
	p := newTestProduct("10", "3", "2")
	assert.Equal(t, 30.0, p.PercentageRemaining())
	assert.False(t, p.NeedsRestock())

	// 未记录购买量
	assert.Equal(t, 0.0, newTestProduct("0", "3", "2").PercentageRemaining())

	// 当前量大于购买量时不做限制
	assert.Equal(t, 150.0, newTestProduct("2", "3", "0").PercentageRemaining())

	// 展示值保留一位小数
	third := newTestProduct("3", "1", "0")
	assert.Equal(t, 33.3, third.PercentageRemainingRounded())
	assert.InDelta(t, 33.3333, third.PercentageRemaining(), 0.0001)
}

func TestProduct_NeedsRestock(t *testing.T) {
	assert.True(t, newTestProduct("10", "2", "2").NeedsRestock())
	assert.True(t, newTestProduct("10", "1.5", "2").NeedsRestock())
	assert.False(t, newTestProduct("10", "2.01", "2").NeedsRestock())
}

func TestProduct_ConsumptionRate(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	p := newTestProduct("10", "5", "2")
	_, ok := p.ConsumptionRate(now)
	assert.False(t, ok, "no purchase date")

	p.LastPurchasedAt = daysAgo(now, 10)
	rate, ok := p.ConsumptionRate(now)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.5")), rate.String())

	// 当天购买
	p.LastPurchasedAt = &now
	_, ok = p.ConsumptionRate(now)
	assert.False(t, ok)

	// 不足一整天
	halfDay := now.Add(-12 * time.Hour)
	p.LastPurchasedAt = &halfDay
	_, ok = p.ConsumptionRate(now)
	assert.False(t, ok)

	// 购买日期在未来
	p.LastPurchasedAt = daysAgo(now, -3)
	_, ok = p.ConsumptionRate(now)
	assert.False(t, ok)

	// 当前量被调高后速率为负
	up := newTestProduct("2", "4", "0")
	up.LastPurchasedAt = daysAgo(now, 4)
	rate, ok = up.ConsumptionRate(now)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("-0.5")))
}

func TestProduct_DaysUntilThreshold(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	p := newTestProduct("10", "5", "2")
	p.LastPurchasedAt = daysAgo(now, 10)
	days, ok := p.DaysUntilThreshold(now)
	require.True(t, ok)
	assert.Equal(t, 6, days)

	// 已经低于阈值
	low := newTestProduct("10", "1", "2")
	low.LastPurchasedAt = daysAgo(now, 10)
	days, ok = low.DaysUntilThreshold(now)
	require.True(t, ok)
	assert.Equal(t, 0, days)

	// 无速率
	_, ok = newTestProduct("10", "5", "2").DaysUntilThreshold(now)
	assert.False(t, ok)

	// 没有消耗
	full := newTestProduct("10", "10", "2")
	full.LastPurchasedAt = daysAgo(now, 3)
	_, ok = full.DaysUntilThreshold(now)
	assert.False(t, ok)

	// 速率除不尽时按精确值向上取整：消耗 3 用了 9 天，剩余 1 需要 3 天
	third := newTestProduct("4", "1", "0")
	third.LastPurchasedAt = daysAgo(now, 9)
	days, ok = third.DaysUntilThreshold(now)
	require.True(t, ok)
	assert.Equal(t, 3, days)

	// 1.5 天向上取整为 2
	frac := newTestProduct("10", "4", "1")
	frac.LastPurchasedAt = daysAgo(now, 3)
	days, ok = frac.DaysUntilThreshold(now)
	require.True(t, ok)
	assert.Equal(t, 2, days)
}

func TestProduct_View(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)
	price := Money(399)
	p := newTestProduct("10", "5", "2")
	p.ID = 7
	p.LastPurchasedAt = daysAgo(now, 10)
	p.LastPurchasePrice = &price

	out, err := json.Marshal(p.View(now))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, float64(7), got["id"])
	assert.Equal(t, "Milk", got["name"])
	assert.Equal(t, float64(399), got["last_purchase_price_cents"])
	assert.Equal(t, 3.99, got["last_purchase_price"])
	assert.Equal(t, "2025-08-10", got["last_purchased_date"])
	assert.Equal(t, float64(50), got["percentage_remaining_rounded"])
	assert.Equal(t, false, got["needs_restock"])
	assert.Equal(t, 0.5, got["consumption_rate"])
	assert.Equal(t, float64(6), got["days_until_threshold"])

	bare := newTestProduct("0", "0", "0").View(now)
	assert.Nil(t, bare.LastPurchasePrice)
	assert.Nil(t, bare.LastPurchasedDate)
	assert.Nil(t, bare.ConsumptionRate)
	assert.Nil(t, bare.DaysUntilThreshold)
	assert.True(t, bare.NeedsRestock)

	free := Money(0)
	p.LastPurchasePrice = &free
	zero := p.View(now)
	require.NotNil(t, zero.LastPurchasePriceCents)
	assert.Equal(t, int64(0), *zero.LastPurchasePriceCents)
	assert.Nil(t, zero.LastPurchasePrice)
}

func TestProduct_ConsumptionRate_CalendarDays(t *testing.T) {
	// date 列读回为 UTC 零点，now 在东八区
	shanghai := time.FixedZone("CST", 8*3600)
	now := time.Date(2025, 8, 20, 7, 0, 0, 0, shanghai)
	bought := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)

	p := newTestProduct("10", "5", "2")
	p.LastPurchasedAt = &bought
	rate, ok := p.ConsumptionRate(now)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.5")), rate.String())

	days, ok := p.DaysUntilThreshold(now)
	require.True(t, ok)
	assert.Equal(t, 6, days)

	// 西侧时区同理
	newYork := time.FixedZone("EDT", -4*3600)
	evening := time.Date(2025, 8, 20, 22, 0, 0, 0, newYork)
	rate, ok = p.ConsumptionRate(evening)
	require.True(t, ok)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.5")), rate.String())
}
