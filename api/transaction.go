package api

import (
	"strings"
	"time"

	"household/database"
	"household/models"
	"household/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionHandler 交易处理器
type TransactionHandler struct {
	dashboard *service.DashboardService
}

func NewTransactionHandler(dashboard *service.DashboardService) *TransactionHandler {
	return &TransactionHandler{dashboard: dashboard}
}

// TransactionRequest 创建/更新交易请求
// type 只接受 income/expense/transfer
type TransactionRequest struct {
	WalletID        *uint       `json:"wallet_id" binding:"required" example:"1"`
	BudgetID        *uint       `json:"budget_id" example:"2"`
	CategoryID      *uint       `json:"category_id" example:"4"`
	Type            string      `json:"type" binding:"required,oneof=income expense transfer" example:"expense"`
	Amount          NumberInput `json:"amount" binding:"required" swaggertype:"number" example:"35.80"`
	Description     string      `json:"description" binding:"required,max=255" example:"超市采购"`
	Notes           string      `json:"notes"`
	TransactionDate string      `json:"transaction_date" binding:"required" example:"2025-08-20"`
	TagIDs          []uint      `json:"tag_ids"`
}

func (r *TransactionRequest) apply(db *gorm.DB, t *models.Transaction) (ValidationErrors, error) {
	errs := ValidationErrors{}

	typ, err := models.ParseTransactionType(r.Type)
	if err != nil || !typ.Editable() {
		errs.Add("type", "必须是以下之一: income expense transfer")
	}
	amount := parseMoney(errs, "amount", r.Amount)
	description := strings.TrimSpace(r.Description)
	if description == "" {
		errs.Add("description", "不能为空")
	}
	date := parseDate(errs, "transaction_date", r.TransactionDate)

	refs := []struct {
		field string
		id    *uint
		model interface{}
		msg   string
	}{
		{"wallet_id", r.WalletID, &models.Wallet{}, "钱包不存在"},
		{"budget_id", r.BudgetID, &models.Budget{}, "预算不存在"},
		{"category_id", r.CategoryID, &models.Category{}, "分类不存在"},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		found, err := exists(db, ref.model, *ref.id)
		if err != nil {
			return nil, err
		}
		if !found {
			errs.Add(ref.field, ref.msg)
		}
	}
	if !errs.Empty() {
		return errs, nil
	}

	t.WalletID = *r.WalletID
	t.BudgetID = r.BudgetID
	t.CategoryID = r.CategoryID
	t.Type = typ
	t.Amount = *amount
	t.Description = description
	t.Notes = r.Notes
	t.TransactionDate = *date
	t.Wallet, t.Budget, t.Category = nil, nil, nil
	return nil, nil
}

// TransactionOptions 表单选项
type TransactionOptions struct {
	Wallets          []models.Wallet                `json:"wallets"`
	Budgets          []models.Budget                `json:"budgets"`
	Categories       []models.Category              `json:"categories"`
	TransactionTypes []models.TransactionTypeOption `json:"transaction_types"`
	Tags             []models.Tag                   `json:"tags"`
}

// List 交易列表
// @Summary 获取交易列表
// @Description 按交易日期倒序；search 模糊匹配描述、备注、钱包名称和分类名称
// @Tags 财务-交易
// @Produce json
// @Param page query int false "页码" default(1)
// @Param search query string false "搜索关键字"
// @Param type query string false "交易类型"
// @Param start_date query string false "开始日期 (2025-01-01)"
// @Param end_date query string false "结束日期 (2025-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	query := database.DB.Model(&models.Transaction{})
	if q.Search != "" {
		like := q.like()
		query = query.Where(
			"transactions.description LIKE ? OR transactions.notes LIKE ? OR "+
				"EXISTS (SELECT 1 FROM wallets WHERE wallets.id = transactions.wallet_id AND wallets.name LIKE ?) OR "+
				"EXISTS (SELECT 1 FROM categories WHERE categories.id = transactions.category_id AND categories.name LIKE ?)",
			like, like, like, like)
	}
	if typ := c.Query("type"); typ != "" {
		query = query.Where("transactions.type = ?", typ)
	}
	if v := c.Query("start_date"); v != "" {
		if start, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
			query = query.Where("transactions.transaction_date >= ?", start)
		}
	}
	if v := c.Query("end_date"); v != "" {
		if end, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
			query = query.Where("transactions.transaction_date <= ?", end)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	var list []models.Transaction
	if err := query.Preload("Wallet").Preload("Budget").Preload("Category").
		Order("transactions.transaction_date DESC, transactions.id DESC").
		Offset(q.offset()).Limit(q.PageSize).
		Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{Total: total, Page: q.Page, PageSize: q.PageSize, List: list})
}

// Options 表单选项
// @Summary 获取交易表单选项
// @Description 钱包、预算、分类按名称排序，交易类型包含全部五种
// @Tags 财务-交易
// @Produce json
// @Success 200 {object} Response{data=TransactionOptions} "获取成功"
// @Router /api/v1/transactions/options [get]
func (h *TransactionHandler) Options(c *gin.Context) {
	opts := TransactionOptions{TransactionTypes: models.TransactionTypeOptions()}
	db := database.DB
	if err := db.Order("name ASC").Find(&opts.Wallets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := db.Order("name ASC").Find(&opts.Budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := db.Order("name ASC").Find(&opts.Categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := db.Order("name ASC").Find(&opts.Tags).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, opts)
}

// Get 交易详情
// @Summary 获取交易详情
// @Tags 财务-交易
// @Produce json
// @Param id path int true "交易ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var t models.Transaction
	if err := database.DB.Preload("Wallet").Preload("Budget").Preload("Category").First(&t, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "交易不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	tags, err := service.LoadTags(database.DB, models.TaggableTransaction, []uint{t.ID})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}
	t.Tags = tags[t.ID]
	Success(c, t)
}

// Create 创建交易
// @Summary 创建交易
// @Description 不会调整钱包余额
// @Tags 财务-交易
// @Accept json
// @Produce json
// @Param request body TransactionRequest true "交易信息"
// @Success 201 {object} Response{data=models.Transaction} "创建成功"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	var t models.Transaction
	errs, err := req.apply(database.DB, &t)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if errs != nil {
		Unprocessable(c, errs)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableTransaction, t.ID, req.TagIDs)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			Unprocessable(c, ValidationErrors{"tag_ids": "标签不存在"})
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建交易失败"))
		return
	}

	h.dashboard.Invalidate()
	Created(c, "创建成功", t)
}

// Update 更新交易
// @Summary 更新交易
// @Tags 财务-交易
// @Accept json
// @Produce json
// @Param id path int true "交易ID"
// @Param request body TransactionRequest true "交易信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 404 {object} Response "交易不存在"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var t models.Transaction
	if err := database.DB.First(&t, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "交易不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var req TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	errs, err := req.apply(database.DB, &t)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if errs != nil {
		Unprocessable(c, errs)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&t).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableTransaction, t.ID, req.TagIDs)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			Unprocessable(c, ValidationErrors{"tag_ids": "标签不存在"})
			return
		}
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	h.dashboard.Invalidate()
	SuccessWithMessage(c, "更新成功", t)
}

// Delete 删除交易
// @Summary 删除交易
// @Tags 财务-交易
// @Produce json
// @Param id path int true "交易ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "交易不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := service.DeleteTaggables(tx, models.TaggableTransaction, id); err != nil {
			return err
		}
		result := tx.Delete(&models.Transaction{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			NotFound(c, "交易不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	h.dashboard.Invalidate()
	SuccessWithMessage(c, "删除成功", nil)
}

// SyncTags 替换交易标签
// @Summary 设置交易标签
// @Tags 财务-交易
// @Accept json
// @Produce json
// @Param id path int true "交易ID"
// @Param request body TagSyncRequest true "标签ID列表"
// @Success 200 {object} Response{data=[]models.Tag} "设置成功"
// @Router /api/v1/transactions/{id}/tags [put]
func (h *TransactionHandler) SyncTags(c *gin.Context) {
	syncEntityTags(c, &models.Transaction{}, models.TaggableTransaction, "交易不存在")
}
