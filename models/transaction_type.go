package models

import (
	"fmt"
	"strings"
)

// TransactionType 交易类型，金额恒为非负数，方向由类型决定
type TransactionType string

const (
	TransactionIncome     TransactionType = "income"
	TransactionExpense    TransactionType = "expense"
	TransactionTransfer   TransactionType = "transfer"
	TransactionInvestment TransactionType = "investment"
	TransactionReturn     TransactionType = "return"
)

type transactionTypeMeta struct {
	typ   TransactionType
	label string
	color string
	icon  string
}

var transactionTypeTable = []transactionTypeMeta{
	{TransactionIncome, "Income", "success", "heroicon-m-arrow-trending-up"},
	{TransactionExpense, "Expense", "danger", "heroicon-m-arrow-trending-down"},
	{TransactionTransfer, "Transfer", "info", "heroicon-m-arrow-path"},
	{TransactionInvestment, "Investment", "warning", "heroicon-m-banknotes"},
	{TransactionReturn, "Return", "success", "heroicon-m-currency-dollar"},
}

// EditableTransactionTypes 创建/更新交易时允许提交的类型
// investment 和 return 只存在于枚举中，表单入口不接受
var EditableTransactionTypes = []TransactionType{
	TransactionIncome,
	TransactionExpense,
	TransactionTransfer,
}

var transactionTypeIndex = func() map[TransactionType]transactionTypeMeta {
	idx := make(map[TransactionType]transactionTypeMeta, len(transactionTypeTable))
	for _, m := range transactionTypeTable {
		idx[m.typ] = m
	}
	return idx
}()

// ParseTransactionType 解析交易类型（五种均可）
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalidValue, s)
	}
	return t, nil
}

// TransactionTypes 全部类型
func TransactionTypes() []TransactionType {
	list := make([]TransactionType, 0, len(transactionTypeTable))
	for _, m := range transactionTypeTable {
		list = append(list, m.typ)
	}
	return list
}

func (t TransactionType) Valid() bool {
	_, ok := transactionTypeIndex[t]
	return ok
}

// Editable 是否允许通过表单提交
func (t TransactionType) Editable() bool {
	for _, e := range EditableTransactionTypes {
		if e == t {
			return true
		}
	}
	return false
}

func (t TransactionType) Label() string {
	return transactionTypeIndex[t].label
}

func (t TransactionType) Color() string {
	return transactionTypeIndex[t].color
}

func (t TransactionType) Icon() string {
	return transactionTypeIndex[t].icon
}

// TransactionTypeOption 下拉选项
type TransactionTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TransactionTypeOptions 表单下拉使用，包含全部五种
func TransactionTypeOptions() []TransactionTypeOption {
	list := make([]TransactionTypeOption, 0, len(transactionTypeTable))
	for _, m := range transactionTypeTable {
		list = append(list, TransactionTypeOption{Value: string(m.typ), Label: m.label})
	}
	return list
}
