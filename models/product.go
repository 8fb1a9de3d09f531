package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product 需要补货提醒的消耗品
// current_amount 允许大于 purchased_amount（不做校验），此时剩余百分比会超过 100
type Product struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"size:255;not null;index"`
	Description       string          `json:"description" gorm:"type:text"`
	PurchasedAmount   decimal.Decimal `json:"purchased_amount" gorm:"type:decimal(10,2);not null"`
	CurrentAmount     decimal.Decimal `json:"current_amount" gorm:"type:decimal(10,2);not null"`
	Unit              Unit            `json:"unit" gorm:"size:50;not null;default:pieces"`
	StorageLocation   string          `json:"storage_location" gorm:"size:255"`
	ThresholdAmount   decimal.Decimal `json:"threshold_amount" gorm:"type:decimal(10,2);not null;default:0"`
	LastPurchasedAt   *time.Time      `json:"last_purchased_at" gorm:"type:date"`
	LastPurchasePrice *Money          `json:"-" gorm:"column:last_purchase_price_cents"`
	Brand             string          `json:"brand" gorm:"size:255"`
	Notes             string          `json:"notes" gorm:"type:text"`
	IsActive          bool            `json:"is_active" gorm:"not null;index"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `json:"-" gorm:"index"`
	Tags              []Tag           `json:"tags,omitempty" gorm:"-"`
}

// TableName 设置表名
func (Product) TableName() string {
	return "products"
}

// NeedsRestock 当前数量不高于阈值即需要补货（含等于）
func (p *Product) NeedsRestock() bool {
	return p.CurrentAmount.LessThanOrEqual(p.ThresholdAmount)
}

// PercentageRemaining 剩余百分比，未记录购买量时为 0
func (p *Product) PercentageRemaining() float64 {
	return p.percentageRemaining().InexactFloat64()
}

// PercentageRemainingRounded 保留一位小数，用于展示
func (p *Product) PercentageRemainingRounded() float64 {
	return p.percentageRemaining().Round(1).InexactFloat64()
}

func (p *Product) percentageRemaining() decimal.Decimal {
	if !p.PurchasedAmount.IsPositive() {
		return decimal.Zero
	}
	return p.CurrentAmount.Mul(hundred).Div(p.PurchasedAmount)
}

// daysSincePurchase 距上次购买的整天数，按日历日期计算；没有购买日期时 ok=false
// 购买日期取其自身的年月日（date 列读回时可能是 UTC 零点），now 取本地年月日
func (p *Product) daysSincePurchase(now time.Time) (int64, bool) {
	if p.LastPurchasedAt == nil {
		return 0, false
	}
	return int64(calendarDate(now).Sub(calendarDate(*p.LastPurchasedAt)) / (24 * time.Hour)), true
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ConsumptionRate 每天消耗量 = (购买量 - 当前量) / 距上次购买天数
// 没有购买日期或天数 <= 0 时 ok=false；当前量被调高时可能为负
func (p *Product) ConsumptionRate(now time.Time) (decimal.Decimal, bool) {
	days, ok := p.daysSincePurchase(now)
	if !ok || days <= 0 {
		return decimal.Zero, false
	}
	return p.PurchasedAmount.Sub(p.CurrentAmount).Div(decimal.NewFromInt(days)), true
}

// DaysUntilThreshold 预计多少天后降到阈值
// 消耗速率不可用或 <= 0 时 ok=false；已经到达阈值返回 0
func (p *Product) DaysUntilThreshold(now time.Time) (int, bool) {
	rate, ok := p.ConsumptionRate(now)
	if !ok || !rate.IsPositive() {
		return 0, false
	}
	above := p.CurrentAmount.Sub(p.ThresholdAmount)
	if !above.IsPositive() {
		return 0, true
	}
	// ceil(above / (consumed / days)) 改写为 ceil(above * days / consumed)，避免速率本身的舍入误差
	days, _ := p.daysSincePurchase(now)
	consumed := p.PurchasedAmount.Sub(p.CurrentAmount)
	return int(above.Mul(decimal.NewFromInt(days)).Div(consumed).Ceil().IntPart()), true
}

// ProductView 详情/列表输出，派生字段每次按当前数据计算
type ProductView struct {
	*Product
	LastPurchasePriceCents     *int64   `json:"last_purchase_price_cents"`
	LastPurchasePrice          *Money   `json:"last_purchase_price"`
	LastPurchasedDate          *string  `json:"last_purchased_date"`
	PercentageRemaining        float64  `json:"percentage_remaining"`
	PercentageRemainingRounded float64  `json:"percentage_remaining_rounded"`
	NeedsRestock               bool     `json:"needs_restock"`
	ConsumptionRate            *float64 `json:"consumption_rate"`
	DaysUntilThreshold         *int     `json:"days_until_threshold"`
}

// View 生成输出结构
func (p *Product) View(now time.Time) ProductView {
	v := ProductView{
		Product:                    p,
		PercentageRemaining:        p.PercentageRemaining(),
		PercentageRemainingRounded: p.PercentageRemainingRounded(),
		NeedsRestock:               p.NeedsRestock(),
	}
	if p.LastPurchasePrice != nil {
		cents := p.LastPurchasePrice.Cents()
		v.LastPurchasePriceCents = &cents
		// 价格为 0 视为未记录
		if !p.LastPurchasePrice.IsZero() {
			price := *p.LastPurchasePrice
			v.LastPurchasePrice = &price
		}
	}
	if p.LastPurchasedAt != nil {
		d := p.LastPurchasedAt.Format("2006-01-02")
		v.LastPurchasedDate = &d
	}
	if rate, ok := p.ConsumptionRate(now); ok {
		f := rate.InexactFloat64()
		v.ConsumptionRate = &f
	}
	if days, ok := p.DaysUntilThreshold(now); ok {
		v.DaysUntilThreshold = &days
	}
	return v
}

// ProductViews 批量生成输出结构
func ProductViews(products []Product, now time.Time) []ProductView {
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, products[i].View(now))
	}
	return views
}
