package models

import (
	"time"
)

// Wallet 钱包/账户
// 余额不会随交易自动变动
type Wallet struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	Balance     Money     `json:"balance" gorm:"not null;default:0"`
	Currency    string    `json:"currency" gorm:"size:3;not null"`
	IsActive    bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []Tag     `json:"tags,omitempty" gorm:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
