package models

import (
	"time"
)

// Transaction 一笔收支记录
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	WalletID        uint            `json:"wallet_id" gorm:"not null;index:idx_transactions_wallet_date,priority:1"`
	BudgetID        *uint           `json:"budget_id" gorm:"index"`
	CategoryID      *uint           `json:"category_id" gorm:"index:idx_transactions_category_date,priority:1"`
	Type            TransactionType `json:"type" gorm:"size:20;not null;index:idx_transactions_type_date,priority:1"`
	Amount          Money           `json:"amount" gorm:"not null"`
	Description     string          `json:"description" gorm:"size:255;not null"`
	Notes           string          `json:"notes" gorm:"type:text"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"type:date;not null;index:idx_transactions_wallet_date,priority:2;index:idx_transactions_category_date,priority:2;index:idx_transactions_type_date,priority:2"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Wallet          *Wallet         `json:"wallet,omitempty" gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	Budget          *Budget         `json:"budget,omitempty" gorm:"foreignKey:BudgetID;constraint:OnDelete:SET NULL"`
	Category        *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Tags            []Tag           `json:"tags,omitempty" gorm:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionIncome
}

func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionExpense
}

func (t *Transaction) IsTransfer() bool {
	return t.Type == TransactionTransfer
}
