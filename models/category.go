package models

import (
	"time"
)

// Category 交易分类（后台维护）
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Description string    `json:"description" gorm:"size:255"`
	Color       string    `json:"color" gorm:"size:7"` // 颜色代码，如 #FF5733
	Icon        string    `json:"icon" gorm:"size:100"`
	IsActive    bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// DefaultCategories 空表时写入的默认分类
func DefaultCategories() []Category {
	cats := []Category{
		{Name: "Salary", Description: "Salary and wages"},
		{Name: "Investment Returns", Description: "Returns from investments"},
		{Name: "Other Income", Description: "Miscellaneous income sources"},
		{Name: "Food & Dining", Description: "Groceries, restaurants, and food expenses"},
		{Name: "Transportation", Description: "Car payments, gas, public transport"},
		{Name: "Housing", Description: "Rent, mortgage, utilities, maintenance"},
		{Name: "Healthcare", Description: "Medical bills, insurance, pharmacy"},
		{Name: "Entertainment", Description: "Movies, games, hobbies, subscriptions"},
		{Name: "Shopping", Description: "Clothing, electronics, general shopping"},
		{Name: "Education", Description: "Courses, books, training, school fees"},
		{Name: "Bills & Utilities", Description: "Electricity, water, internet, phone"},
		{Name: "Savings Transfer", Description: "Transfer to savings account"},
		{Name: "Investment Transfer", Description: "Transfer to investment account"},
		{Name: "Wallet Transfer", Description: "Transfer between wallets"},
	}
	for i := range cats {
		cats[i].IsActive = true
	}
	return cats
}
