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

// StuffHandler 物品处理器
type StuffHandler struct {
	dashboard *service.DashboardService
}

func NewStuffHandler(dashboard *service.DashboardService) *StuffHandler {
	return &StuffHandler{dashboard: dashboard}
}

// StuffRequest 创建/更新物品请求
type StuffRequest struct {
	Name      string `json:"name" binding:"required,max=255" example:"冬季被子"`
	StorageID *uint  `json:"storage_id" example:"1"`
	TagIDs    []uint `json:"tag_ids"`
}

func (r *StuffRequest) apply(db *gorm.DB, s *models.Stuff) (ValidationErrors, error) {
	errs := ValidationErrors{}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs.Add("name", "不能为空")
	}
	if r.StorageID != nil {
		found, err := exists(db, &models.Storage{}, *r.StorageID)
		if err != nil {
			return nil, err
		}
		if !found {
			errs.Add("storage_id", "存放位置不存在")
		}
	}
	if !errs.Empty() {
		return errs, nil
	}
	s.Name = name
	s.StorageID = r.StorageID
	s.Storage = nil
	return nil, nil
}

// List 物品列表
// @Summary 获取物品列表
// @Description 按名称排序，包含存放位置
// @Tags 库存-物品
// @Produce json
// @Param page query int false "页码" default(1)
// @Param search query string false "名称关键字"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Stuff}} "获取成功"
// @Router /api/v1/stuff [get]
func (h *StuffHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	query := database.DB.Model(&models.Stuff{})
	if q.Search != "" {
		query = query.Where("name LIKE ?", q.like())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var list []models.Stuff
	if err := query.Preload("Storage").Order("name ASC").Offset(q.offset()).Limit(q.PageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := attachStuffTags(list); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}

	Success(c, PageResponse{Total: total, Page: q.Page, PageSize: q.PageSize, List: list})
}

// Get 物品详情
// @Summary 获取物品详情
// @Tags 库存-物品
// @Produce json
// @Param id path int true "物品ID"
// @Success 200 {object} Response{data=models.Stuff} "获取成功"
// @Failure 404 {object} Response "物品不存在"
// @Router /api/v1/stuff/{id} [get]
func (h *StuffHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var stuff models.Stuff
	if err := database.DB.Preload("Storage").First(&stuff, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "物品不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	list := []models.Stuff{stuff}
	if err := attachStuffTags(list); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}
	Success(c, list[0])
}

// Create 创建物品
// @Summary 创建物品
// @Tags 库存-物品
// @Accept json
// @Produce json
// @Param request body StuffRequest true "物品信息"
// @Success 201 {object} Response{data=models.Stuff} "创建成功"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/stuff [post]
func (h *StuffHandler) Create(c *gin.Context) {
	var req StuffRequest
	if !bindJSON(c, &req) {
		return
	}
	var stuff models.Stuff
	errs, err := req.apply(database.DB, &stuff)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if errs != nil {
		Unprocessable(c, errs)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&stuff).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableStuff, stuff.ID, req.TagIDs)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			Unprocessable(c, ValidationErrors{"tag_ids": "标签不存在"})
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建物品失败"))
		return
	}
	h.dashboard.Invalidate()
	Created(c, "创建成功", stuff)
}

// Update 更新物品
// @Summary 更新物品
// @Tags 库存-物品
// @Accept json
// @Produce json
// @Param id path int true "物品ID"
// @Param request body StuffRequest true "物品信息"
// @Success 200 {object} Response{data=models.Stuff} "更新成功"
// @Failure 404 {object} Response "物品不存在"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/stuff/{id} [put]
func (h *StuffHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var stuff models.Stuff
	if err := database.DB.First(&stuff, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "物品不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var req StuffRequest
	if !bindJSON(c, &req) {
		return
	}
	errs, err := req.apply(database.DB, &stuff)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if errs != nil {
		Unprocessable(c, errs)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&stuff).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableStuff, stuff.ID, req.TagIDs)
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
	SuccessWithMessage(c, "更新成功", stuff)
}

// Delete 删除物品（软删除）
// @Summary 删除物品
// @Tags 库存-物品
// @Produce json
// @Param id path int true "物品ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "物品不存在"
// @Router /api/v1/stuff/{id} [delete]
func (h *StuffHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result := database.DB.Delete(&models.Stuff{}, id)
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "删除失败"))
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "物品不存在")
		return
	}
	h.dashboard.Invalidate()
	SuccessWithMessage(c, "删除成功", nil)
}

// SyncTags 替换物品标签
// @Summary 设置物品标签
// @Tags 库存-物品
// @Accept json
// @Produce json
// @Param id path int true "物品ID"
// @Param request body TagSyncRequest true "标签ID列表"
// @Success 200 {object} Response{data=[]models.Tag} "设置成功"
// @Router /api/v1/stuff/{id}/tags [put]
func (h *StuffHandler) SyncTags(c *gin.Context) {
	syncEntityTags(c, &models.Stuff{}, models.TaggableStuff, "物品不存在")
}

func attachStuffTags(list []models.Stuff) error {
	ids := make([]uint, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	tags, err := service.LoadTags(database.DB, models.TaggableStuff, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Tags = tags[list[i].ID]
	}
	return nil
}
