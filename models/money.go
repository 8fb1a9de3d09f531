package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidValue 非法输入（无法解析的数字、未知的单位/类型、不允许的负数）
var ErrInvalidValue = errors.New("invalid value")

var hundred = decimal.NewFromInt(100)

// Money 金额，以最小货币单位（分）保存的整数
// 内部运算全部是整数运算，换算成元只用于展示
type Money int64

// FromMinorUnits 从分构造金额，负数视为非法
func FromMinorUnits(cents int64) (Money, error) {
	if cents < 0 {
		return 0, fmt.Errorf("%w: negative amount %d", ErrInvalidValue, cents)
	}
	return Money(cents), nil
}

// ParseMoney 解析用户输入的十进制字符串（单位：元），乘以 100 后四舍五入到分
// 例如 "12.5" -> 1250, "0.005" -> 1
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalidValue)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %q", ErrInvalidValue, s)
	}
	cents := d.Mul(hundred).Round(0)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(1<<62)) {
		return 0, fmt.Errorf("%w: amount %q out of range", ErrInvalidValue, s)
	}
	return Money(cents.IntPart()), nil
}

// Cents 返回分
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal 精确换算为元（cents / 100），不经过浮点
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Float64 仅用于展示
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

// String 两位小数的元，如 "12.50"
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) Add(o Money) Money {
	return m + o
}

func (m Money) Sub(o Money) Money {
	return m - o
}

// Cmp 比较：m<o 返回 -1，相等 0，m>o 返回 1
func (m Money) Cmp(o Money) int {
	switch {
	case m < o:
		return -1
	case m > o:
		return 1
	}
	return 0
}

func (m Money) GreaterThan(o Money) bool {
	return m > o
}

func (m Money) IsZero() bool {
	return m == 0
}

func (m Money) IsNegative() bool {
	return m < 0
}

// MarshalJSON 输出为两位小数的 JSON 数字
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON 接受数字或数字字符串（单位：元）
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value 以整数（分）入库
func (m Money) Value() (driver.Value, error) {
	return int64(m), nil
}

// Scan 从整数列读取
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = 0
	case int64:
		*m = Money(v)
	case int32:
		*m = Money(v)
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("scan money: %w", err)
		}
		*m = Money(d.IntPart())
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("scan money: %w", err)
		}
		*m = Money(d.IntPart())
	case float64:
		*m = Money(decimal.NewFromFloat(v).Round(0).IntPart())
	default:
		return fmt.Errorf("scan money: unsupported type %T", value)
	}
	return nil
}
