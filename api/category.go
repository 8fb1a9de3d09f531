package api

import (
	"strings"

	"household/database"
	"household/models"
	"household/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler 交易分类管理
type CategoryHandler struct {
	dashboard *service.DashboardService
}

func NewCategoryHandler(dashboard *service.DashboardService) *CategoryHandler {
	return &CategoryHandler{dashboard: dashboard}
}

const defaultColor = "#64748b"

type CategoryCreateRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"max=255"`
	Color       string `json:"color" binding:"omitempty,hexcolor,len=7"` // 颜色代码，如 #ef4444
	Icon        string `json:"icon" binding:"max=100"`
}

type CategoryUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	Color       *string `json:"color" binding:"omitempty,max=7"`
	Icon        *string `json:"icon" binding:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active"`
}

// List 列出所有分类
// @Summary 获取分类列表
// @Description 按名称排序；active=1 时只返回启用的分类
// @Tags 财务-分类
// @Produce json
// @Param active query bool false "只看启用"
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	query := database.DB.Order("name ASC")
	if c.Query("active") == "1" || c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	var list []models.Category
	if err := query.Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// Create 创建分类
// @Summary 创建分类
// @Tags 财务-分类
// @Accept json
// @Produce json
// @Param request body CategoryCreateRequest true "分类信息"
// @Success 201 {object} Response{data=models.Category} "创建成功"
// @Failure 422 {object} Response "参数错误或分类名称已存在"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		Unprocessable(c, ValidationErrors{"name": "不能为空"})
		return
	}

	// 唯一性
	var count int64
	if err := database.DB.Model(&models.Category{}).Where("name = ?", req.Name).Count(&count).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if count > 0 {
		Unprocessable(c, ValidationErrors{"name": "分类名称已存在"})
		return
	}

	color := req.Color
	if color == "" {
		color = defaultColor
	}
	cat := models.Category{
		Name:        req.Name,
		Description: req.Description,
		Color:       color,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if err := database.DB.Create(&cat).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	Created(c, "创建成功", cat)
}

// Update 更新分类
// @Summary 更新分类
// @Description 只更新提交的字段
// @Tags 财务-分类
// @Accept json
// @Produce json
// @Param id path int true "分类ID"
// @Param request body CategoryUpdateRequest true "更新的分类信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 404 {object} Response "分类不存在"
// @Failure 422 {object} Response "参数错误或分类名称已存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var cat models.Category
	if err := database.DB.First(&cat, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "分类不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var req CategoryUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			Unprocessable(c, ValidationErrors{"name": "不能为空"})
			return
		}
		var count int64
		if err := database.DB.Model(&models.Category{}).Where("name = ? AND id <> ?", name, cat.ID).Count(&count).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "查询失败"))
			return
		}
		if count > 0 {
			Unprocessable(c, ValidationErrors{"name": "分类名称已存在"})
			return
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Color != nil {
		color := *req.Color
		if color == "" {
			color = defaultColor
		}
		updates["color"] = color
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", cat)
		return
	}

	if err := database.DB.Model(&cat).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	h.dashboard.Invalidate()
	SuccessWithMessage(c, "更新成功", cat)
}

// Delete 删除分类
// @Summary 删除分类
// @Description 关联交易保留，category_id 置空
// @Tags 财务-分类
// @Produce json
// @Param id path int true "分类ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Category{}, id)
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
			NotFound(c, "分类不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	h.dashboard.Invalidate()
	SuccessWithMessage(c, "删除成功", nil)
}
