package api

import (
	"strings"

	"household/database"
	"household/models"
	"household/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	dashboard *service.DashboardService
}

func NewBudgetHandler(dashboard *service.DashboardService) *BudgetHandler {
	return &BudgetHandler{dashboard: dashboard}
}

// BudgetRequest 创建/更新预算请求，金额单位为分
type BudgetRequest struct {
	Name        string `json:"name" binding:"required,max=255" example:"餐饮"`
	Description string `json:"description"`
	AmountCents *int64 `json:"amount" binding:"required,min=0" example:"150000"`
	Period      string `json:"period" binding:"required,oneof=weekly monthly quarterly yearly" example:"monthly"`
	StartDate   string `json:"start_date" binding:"required" example:"2025-08-01"`
	EndDate     string `json:"end_date" example:"2025-08-31"`
	IsActive    *bool  `json:"is_active"`
	TagIDs      []uint `json:"tag_ids"`
}

func (r *BudgetRequest) apply(b *models.Budget) ValidationErrors {
	errs := ValidationErrors{}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs.Add("name", "不能为空")
	}
	amount, err := models.FromMinorUnits(*r.AmountCents)
	if err != nil {
		errs.Add("amount", "不能小于 0")
	}
	period, err := models.ParseBudgetPeriod(r.Period)
	if err != nil {
		errs.Add("period", "无效的预算周期")
	}
	start := parseDate(errs, "start_date", r.StartDate)
	if start == nil {
		errs.Add("start_date", "不能为空")
	}
	end := parseDate(errs, "end_date", r.EndDate)
	if start != nil && end != nil && end.Before(*start) {
		errs.Add("end_date", "结束日期不能早于开始日期")
	}
	if !errs.Empty() {
		return errs
	}

	b.Name = name
	b.Description = r.Description
	b.Amount = amount
	b.Period = period
	b.StartDate = *start
	b.EndDate = end
	b.IsActive = r.IsActive == nil || *r.IsActive
	return nil
}

// List 预算列表
// @Summary 获取预算列表
// @Description 只返回在用预算，按名称排序；search 模糊匹配名称、描述和周期。spent 为关联支出交易的实时汇总
// @Tags 财务-预算
// @Produce json
// @Param page query int false "页码" default(1)
// @Param search query string false "搜索关键字"
// @Success 200 {object} Response{data=PageResponse{list=[]models.BudgetView}} "获取成功"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	query := database.DB.Model(&models.Budget{}).Where("is_active = ?", true)
	if q.Search != "" {
		like := q.like()
		query = query.Where("name LIKE ? OR description LIKE ? OR period LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	var list []models.Budget
	if err := query.Order("name ASC").Offset(q.offset()).Limit(q.PageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := h.decorate(list); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{Total: total, Page: q.Page, PageSize: q.PageSize, List: service.BudgetViews(list)})
}

// Get 预算详情
// @Summary 获取预算详情
// @Tags 财务-预算
// @Produce json
// @Param id path int true "预算ID"
// @Success 200 {object} Response{data=models.BudgetView} "获取成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var budget models.Budget
	if err := database.DB.First(&budget, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "预算不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	list := []models.Budget{budget}
	if err := h.decorate(list); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list[0].View())
}

// Create 创建预算
// @Summary 创建预算
// @Tags 财务-预算
// @Accept json
// @Produce json
// @Param request body BudgetRequest true "预算信息"
// @Success 201 {object} Response{data=models.BudgetView} "创建成功"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var req BudgetRequest
	if !bindJSON(c, &req) {
		return
	}
	var budget models.Budget
	if errs := req.apply(&budget); errs != nil {
		Unprocessable(c, errs)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&budget).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableBudget, budget.ID, req.TagIDs)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			Unprocessable(c, ValidationErrors{"tag_ids": "标签不存在"})
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	h.dashboard.Invalidate()
	Created(c, "创建成功", budget.View())
}

// Update 更新预算
// @Summary 更新预算
// @Tags 财务-预算
// @Accept json
// @Produce json
// @Param id path int true "预算ID"
// @Param request body BudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.BudgetView} "更新成功"
// @Failure 404 {object} Response "预算不存在"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var budget models.Budget
	if err := database.DB.First(&budget, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "预算不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var req BudgetRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.apply(&budget); errs != nil {
		Unprocessable(c, errs)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&budget).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableBudget, budget.ID, req.TagIDs)
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

	list := []models.Budget{budget}
	if err := h.decorate(list); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	h.dashboard.Invalidate()
	SuccessWithMessage(c, "更新成功", list[0].View())
}

// Delete 删除预算
// @Summary 删除预算
// @Description 关联交易保留，budget_id 置空
// @Tags 财务-预算
// @Produce json
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("budget_id = ?", id).
			Update("budget_id", nil).Error; err != nil {
			return err
		}
		if err := service.DeleteTaggables(tx, models.TaggableBudget, id); err != nil {
			return err
		}
		result := tx.Delete(&models.Budget{}, id)
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
			NotFound(c, "预算不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	h.dashboard.Invalidate()
	SuccessWithMessage(c, "删除成功", nil)
}

// SyncTags 替换预算标签
// @Summary 设置预算标签
// @Tags 财务-预算
// @Accept json
// @Produce json
// @Param id path int true "预算ID"
// @Param request body TagSyncRequest true "标签ID列表"
// @Success 200 {object} Response{data=[]models.Tag} "设置成功"
// @Router /api/v1/budgets/{id}/tags [put]
func (h *BudgetHandler) SyncTags(c *gin.Context) {
	syncEntityTags(c, &models.Budget{}, models.TaggableBudget, "预算不存在")
}

// decorate 填充 spent 和标签
func (h *BudgetHandler) decorate(list []models.Budget) error {
	if err := service.LoadBudgetSpent(database.DB, list); err != nil {
		return err
	}
	ids := make([]uint, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.ID)
	}
	tags, err := service.LoadTags(database.DB, models.TaggableBudget, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Tags = tags[list[i].ID]
	}
	return nil
}
