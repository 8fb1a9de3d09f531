package api

import (
	"strings"

	"household/database"
	"household/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TagHandler 标签管理
type TagHandler struct{}

func NewTagHandler() *TagHandler {
	return &TagHandler{}
}

type TagRequest struct {
	Name        string `json:"name" binding:"required,max=255" example:"冷冻"`
	Color       string `json:"color" binding:"omitempty,hexcolor,len=7" example:"#3b82f6"`
	Description string `json:"description" binding:"max=255"`
}

// List 标签列表
// @Summary 获取标签列表
// @Tags 标签
// @Produce json
// @Success 200 {object} Response{data=[]models.Tag} "获取成功"
// @Router /api/v1/tags [get]
func (h *TagHandler) List(c *gin.Context) {
	var list []models.Tag
	if err := database.DB.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// Create 创建标签
// @Summary 创建标签
// @Tags 标签
// @Accept json
// @Produce json
// @Param request body TagRequest true "标签信息"
// @Success 201 {object} Response{data=models.Tag} "创建成功"
// @Failure 422 {object} Response "参数错误或标签已存在"
// @Router /api/v1/tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}
	tag := models.Tag{}
	if errs := req.apply(&tag, 0); errs != nil {
		Unprocessable(c, errs)
		return
	}
	if err := database.DB.Create(&tag).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建失败"))
		return
	}
	Created(c, "创建成功", tag)
}

// Update 更新标签
// @Summary 更新标签
// @Tags 标签
// @Accept json
// @Produce json
// @Param id path int true "标签ID"
// @Param request body TagRequest true "标签信息"
// @Success 200 {object} Response{data=models.Tag} "更新成功"
// @Failure 404 {object} Response "标签不存在"
// @Router /api/v1/tags/{id} [put]
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var tag models.Tag
	if err := database.DB.First(&tag, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "标签不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.apply(&tag, tag.ID); errs != nil {
		Unprocessable(c, errs)
		return
	}
	if err := database.DB.Save(&tag).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", tag)
}

// Delete 删除标签及其关联
// @Summary 删除标签
// @Tags 标签
// @Produce json
// @Param id path int true "标签ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "标签不存在"
// @Router /api/v1/tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.Taggable{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Tag{}, id)
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
			NotFound(c, "标签不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// apply 校验名称唯一并写入实体，selfID 为更新时排除的自身 ID
func (r *TagRequest) apply(tag *models.Tag, selfID uint) ValidationErrors {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return ValidationErrors{"name": "不能为空"}
	}
	var count int64
	database.DB.Model(&models.Tag{}).Where("name = ? AND id <> ?", name, selfID).Count(&count)
	if count > 0 {
		return ValidationErrors{"name": "标签名称已存在"}
	}
	tag.Name = name
	tag.Color = r.Color
	if tag.Color == "" {
		tag.Color = defaultColor
	}
	tag.Description = r.Description
	return nil
}
