package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"household/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 15
	maxPageSize     = 100
	dateLayout      = "2006-01-02"
)

func init() {
	// 校验错误使用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// ValidationErrors 字段 -> 错误信息
type ValidationErrors map[string]string

// Add 同一字段只保留第一条错误
func (v ValidationErrors) Add(field, message string) {
	if _, ok := v[field]; !ok {
		v[field] = message
	}
}

func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// NumberInput 金额、数量等数字字段的原始输入，接受数字或数字字符串
// 解码时不做校验，由 parseMoney/parseQuantity 统一转换并给出字段错误
type NumberInput string

func (n *NumberInput) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberInput(strings.TrimSpace(s))
		return nil
	}
	*n = NumberInput(raw)
	return nil
}

// ListQuery 列表通用参数
type ListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
}

func (q *ListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
}

func (q *ListQuery) offset() int {
	return (q.Page - 1) * q.PageSize
}

func (q *ListQuery) like() string {
	return "%" + q.Search + "%"
}

// bindListQuery 解析分页参数，失败时已写入响应
func bindListQuery(c *gin.Context) (ListQuery, bool) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return q, false
	}
	q.normalize()
	return q, true
}

// bindJSON 解析请求体，字段规则不满足时返回 422，格式错误返回 400
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		errs := ValidationErrors{}
		for _, fe := range verrs {
			errs.Add(fe.Field(), validationMessage(fe))
		}
		Unprocessable(c, errs)
		return false
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		Unprocessable(c, ValidationErrors{typeErr.Field: "类型错误"})
		return false
	}
	if errors.Is(err, models.ErrInvalidValue) || errors.Is(err, strconv.ErrSyntax) {
		Unprocessable(c, ValidationErrors{"body": err.Error()})
		return false
	}

	BadRequest(c, SafeErrorMessage(err, "参数错误"))
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "max":
		return fmt.Sprintf("长度不能超过 %s", fe.Param())
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "len":
		return fmt.Sprintf("长度必须为 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("必须是以下之一: %s", fe.Param())
	case "hexcolor":
		return "颜色格式应为 #RRGGBB"
	case "email":
		return "邮箱格式错误"
	}
	return "格式错误"
}

// parseID 解析路径中的 ID，失败时已写入响应
func parseID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id64 == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(id64), true
}

// parseDate 解析 Y-m-d 日期
func parseDate(errs ValidationErrors, field, value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		errs.Add(field, "日期格式错误，应为: 2006-01-02")
		return nil
	}
	return &t
}

// parseMoney 解析金额，空值返回 nil
func parseMoney(errs ValidationErrors, field string, value NumberInput) *models.Money {
	if value == "" {
		return nil
	}
	m, err := models.ParseMoney(string(value))
	if err != nil {
		errs.Add(field, "金额必须是不小于 0 的数字")
		return nil
	}
	return &m
}

// quantityScale 数量列为 decimal(10,2)
const quantityScale = 2

// parseQuantity 解析数量，按列精度四舍五入，不能为负；空值为 0
func parseQuantity(errs ValidationErrors, field string, value NumberInput) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(string(value))
	if err != nil {
		errs.Add(field, "必须是数字")
		return decimal.Zero
	}
	if d.IsNegative() {
		errs.Add(field, "不能小于 0")
		return decimal.Zero
	}
	return d.Round(quantityScale)
}

// exists 校验外键记录是否存在
func exists(db *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// isNotFound 查询结果为空
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
