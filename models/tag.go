package models

import (
	"time"
)

// Taggable 类型，对应 taggables.taggable_type
const (
	TaggableProduct     = "product"
	TaggableStuff       = "stuff"
	TaggableWallet      = "wallet"
	TaggableBudget      = "budget"
	TaggableTransaction = "transaction"
)

// Tag 标签，可挂在商品、物品、钱包、预算、交易上
type Tag struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Color       string    `json:"color" gorm:"size:7"`
	Description string    `json:"description" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Tag) TableName() string {
	return "tags"
}

// Taggable 标签多态关联表
type Taggable struct {
	TagID        uint   `json:"tag_id" gorm:"primaryKey"`
	TaggableID   uint   `json:"taggable_id" gorm:"primaryKey;index:idx_taggables_target,priority:2"`
	TaggableType string `json:"taggable_type" gorm:"primaryKey;size:20;index:idx_taggables_target,priority:1"`
}

func (Taggable) TableName() string {
	return "taggables"
}

// DefaultTags 空表时写入的默认标签
func DefaultTags() []Tag {
	return []Tag{
		{Name: "Groceries", Color: "#22c55e", Description: "Food and beverage items"},
		{Name: "Pantry", Color: "#f59e0b", Description: "Non-perishable food items"},
		{Name: "Frozen", Color: "#3b82f6", Description: "Frozen food items"},
		{Name: "Spices", Color: "#3b82f6", Description: "Herbs and spices for cooking"},
		{Name: "Baking", Color: "#eab308", Description: "Baking ingredients and supplies"},
		{Name: "Dairy", Color: "#fbbf24", Description: "Milk, cheese, yogurt, etc."},
		{Name: "Meat", Color: "#ef4444", Description: "Fresh and processed meats"},
		{Name: "Produce", Color: "#10b981", Description: "Fresh fruits and vegetables"},
		{Name: "Cleaning", Color: "#8b5cf6", Description: "Cleaning supplies and detergents"},
		{Name: "Personal Care", Color: "#f97316", Description: "Toiletries and personal hygiene items"},
		{Name: "Cleaning Supplies", Color: "#ec4899", Description: "Household cleaning products"},
		{Name: "Snacks", Color: "#06b6d4", Description: "Chips, crackers, and other snacks"},
		{Name: "Beverages", Color: "#84cc16", Description: "Drinks and beverages"},
		{Name: "Household", Color: "#64748b", Description: "General household items"},
		{Name: "Low Stock", Color: "#dc2626", Description: "Items running low"},
	}
}
