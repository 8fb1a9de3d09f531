package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"household/database"
	"household/models"
	"household/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductHandler 消耗品库存处理器
type ProductHandler struct {
	dashboard *service.DashboardService
	mail      *service.EmailService
	now       func() time.Time
}

// NewProductHandler 创建商品处理器
func NewProductHandler(dashboard *service.DashboardService, mail *service.EmailService) *ProductHandler {
	return &ProductHandler{dashboard: dashboard, mail: mail, now: time.Now}
}

// ProductRequest 创建/更新商品请求，更新为整体替换
type ProductRequest struct {
	Name                   string      `json:"name" binding:"required,max=255" example:"牛奶"`
	Description            string      `json:"description"`
	PurchasedAmount        NumberInput `json:"purchased_amount" binding:"required" swaggertype:"number" example:"2"`
	CurrentAmount          NumberInput `json:"current_amount" binding:"required" swaggertype:"number" example:"1.5"`
	Unit                   string      `json:"unit" binding:"required,max=50" example:"l"`
	StorageLocation        string      `json:"storage_location" binding:"max=255" example:"冰箱"`
	ThresholdAmount        NumberInput `json:"threshold_amount" binding:"required" swaggertype:"number" example:"0.5"`
	LastPurchasedAt        string      `json:"last_purchased_at" example:"2025-08-01"`
	LastPurchasePriceCents *int64      `json:"last_purchase_price_cents" binding:"omitempty,min=0" example:"399"`
	Brand                  string      `json:"brand" binding:"max=255"`
	Notes                  string      `json:"notes"`
	IsActive               *bool       `json:"is_active"`
	TagIDs                 []uint      `json:"tag_ids"`
}

// apply 校验并写入实体，返回字段错误
func (r *ProductRequest) apply(p *models.Product) ValidationErrors {
	errs := ValidationErrors{}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs.Add("name", "不能为空")
	}
	unit, err := models.ParseUnit(r.Unit)
	if err != nil {
		errs.Add("unit", "无效的单位")
	}
	purchased := parseQuantity(errs, "purchased_amount", r.PurchasedAmount)
	current := parseQuantity(errs, "current_amount", r.CurrentAmount)
	threshold := parseQuantity(errs, "threshold_amount", r.ThresholdAmount)
	lastPurchased := parseDate(errs, "last_purchased_at", r.LastPurchasedAt)

	var price *models.Money
	if r.LastPurchasePriceCents != nil {
		m, err := models.FromMinorUnits(*r.LastPurchasePriceCents)
		if err != nil {
			errs.Add("last_purchase_price_cents", "不能小于 0")
		}
		price = &m
	}
	if !errs.Empty() {
		return errs
	}

	p.Name = name
	p.Description = r.Description
	p.PurchasedAmount = purchased
	p.CurrentAmount = current
	p.Unit = unit
	p.StorageLocation = strings.TrimSpace(r.StorageLocation)
	p.ThresholdAmount = threshold
	p.LastPurchasedAt = lastPurchased
	p.LastPurchasePrice = price
	p.Brand = strings.TrimSpace(r.Brand)
	p.Notes = r.Notes
	p.IsActive = r.IsActive == nil || *r.IsActive
	return nil
}

// RestockNotifyRequest 补货提醒请求
type RestockNotifyRequest struct {
	To string `json:"to" binding:"omitempty,email" example:"home@example.com"`
}

// TagSyncRequest 替换标签请求
type TagSyncRequest struct {
	TagIDs []uint `json:"tag_ids"`
}

// List 商品列表
// @Summary 获取商品列表
// @Description 只返回在用商品，按名称排序，每页 15 条；search 模糊匹配名称、描述和品牌
// @Tags 库存-商品
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(15)
// @Param search query string false "搜索关键字"
// @Success 200 {object} Response{data=PageResponse{list=[]models.ProductView}} "获取成功"
// @Router /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	query := database.DB.Model(&models.Product{}).Where("is_active = ?", true)
	if q.Search != "" {
		like := q.like()
		query = query.Where("name LIKE ? OR description LIKE ? OR brand LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var products []models.Product
	if err := query.Order("name ASC").Offset(q.offset()).Limit(q.PageSize).Find(&products).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := attachProductTags(products); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		List:     models.ProductViews(products, h.now()),
	})
}

// Options 表单选项
// @Summary 获取商品表单选项
// @Description 分组单位选项、平铺单位选项和全部标签
// @Tags 库存-商品
// @Produce json
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/products/options [get]
func (h *ProductHandler) Options(c *gin.Context) {
	var tags []models.Tag
	if err := database.DB.Order("name ASC").Find(&tags).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, gin.H{
		"unit_groups":  models.GroupedUnitOptions(),
		"unit_options": models.UnitOptions(),
		"tags":         tags,
	})
}

// Restock 需要补货的商品
// @Summary 获取需要补货的商品
// @Description 在用且当前数量不高于阈值的商品
// @Tags 库存-商品
// @Produce json
// @Success 200 {object} Response{data=[]models.ProductView} "获取成功"
// @Router /api/v1/products/restock [get]
func (h *ProductHandler) Restock(c *gin.Context) {
	products, err := service.RestockProducts(database.DB)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, models.ProductViews(products, h.now()))
}

// RestockNotify 发送补货提醒邮件
// @Summary 发送补货提醒
// @Description 把需要补货的商品清单发送到指定邮箱，未指定时使用配置的收件人
// @Tags 库存-商品
// @Accept json
// @Produce json
// @Param request body RestockNotifyRequest false "收件人"
// @Success 200 {object} Response "发送成功"
// @Failure 503 {object} Response "邮件服务未启用"
// @Router /api/v1/products/restock/notify [post]
func (h *ProductHandler) RestockNotify(c *gin.Context) {
	var req RestockNotifyRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if !h.mail.Enabled() {
		Error(c, http.StatusServiceUnavailable, service.ErrEmailDisabled.Error())
		return
	}

	products, err := service.RestockProducts(database.DB)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if len(products) == 0 {
		SuccessWithMessage(c, "没有需要补货的商品", gin.H{"count": 0})
		return
	}

	now := h.now()
	if err := h.mail.SendRestockReminder(req.To, models.ProductViews(products, now), now); err != nil {
		InternalError(c, SafeErrorMessage(err, "发送失败"))
		return
	}
	SuccessWithMessage(c, "发送成功", gin.H{"count": len(products)})
}

// Get 商品详情
// @Summary 获取商品详情
// @Description 返回商品及剩余百分比、日均消耗、预计到达阈值天数等派生字段
// @Tags 库存-商品
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} Response{data=models.ProductView} "获取成功"
// @Failure 404 {object} Response "商品不存在"
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "商品不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	products := []models.Product{product}
	if err := attachProductTags(products); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}

	Success(c, products[0].View(h.now()))
}

// Create 创建商品
// @Summary 创建商品
// @Tags 库存-商品
// @Accept json
// @Produce json
// @Param request body ProductRequest true "商品信息"
// @Success 201 {object} Response{data=models.ProductView} "创建成功"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	var product models.Product
	if errs := req.apply(&product); errs != nil {
		Unprocessable(c, errs)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableProduct, product.ID, req.TagIDs)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			Unprocessable(c, ValidationErrors{"tag_ids": "标签不存在"})
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建商品失败"))
		return
	}

	h.dashboard.Invalidate()
	Created(c, "创建成功", product.View(h.now()))
}

// Update 更新商品（整体替换）
// @Summary 更新商品
// @Tags 库存-商品
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param request body ProductRequest true "商品信息"
// @Success 200 {object} Response{data=models.ProductView} "更新成功"
// @Failure 404 {object} Response "商品不存在"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "商品不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.apply(&product); errs != nil {
		Unprocessable(c, errs)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&product).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableProduct, product.ID, req.TagIDs)
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
	SuccessWithMessage(c, "更新成功", product.View(h.now()))
}

// Delete 删除商品（软删除）
// @Summary 删除商品
// @Tags 库存-商品
// @Produce json
// @Param id path int true "商品ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "商品不存在"
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := database.DB.Delete(&models.Product{}, id)
	if result.Error != nil {
		InternalError(c, SafeErrorMessage(result.Error, "删除失败"))
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "商品不存在")
		return
	}

	h.dashboard.Invalidate()
	SuccessWithMessage(c, "删除成功", nil)
}

// SyncTags 替换商品标签
// @Summary 设置商品标签
// @Tags 库存-商品
// @Accept json
// @Produce json
// @Param id path int true "商品ID"
// @Param request body TagSyncRequest true "标签ID列表"
// @Success 200 {object} Response{data=[]models.Tag} "设置成功"
// @Router /api/v1/products/{id}/tags [put]
func (h *ProductHandler) SyncTags(c *gin.Context) {
	syncEntityTags(c, &models.Product{}, models.TaggableProduct, "商品不存在")
}

func attachProductTags(products []models.Product) error {
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	tags, err := service.LoadTags(database.DB, models.TaggableProduct, ids)
	if err != nil {
		return err
	}
	for i := range products {
		products[i].Tags = tags[products[i].ID]
	}
	return nil
}

// syncEntityTags 各实体共用的标签替换逻辑
func syncEntityTags(c *gin.Context, model interface{}, taggableType, notFoundMsg string) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req TagSyncRequest
	if !bindJSON(c, &req) {
		return
	}

	found, err := exists(database.DB, model, id)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if !found {
		NotFound(c, notFoundMsg)
		return
	}

	if err := service.SyncTags(database.DB, taggableType, id, req.TagIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			Unprocessable(c, ValidationErrors{"tag_ids": "标签不存在"})
			return
		}
		InternalError(c, SafeErrorMessage(err, "设置标签失败"))
		return
	}

	tags, err := service.LoadTags(database.DB, taggableType, []uint{id})
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}
	list := tags[id]
	if list == nil {
		list = []models.Tag{}
	}
	SuccessWithMessage(c, "设置成功", list)
}
