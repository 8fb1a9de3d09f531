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

// WalletHandler 钱包处理器
type WalletHandler struct {
	dashboard *service.DashboardService
}

func NewWalletHandler(dashboard *service.DashboardService) *WalletHandler {
	return &WalletHandler{dashboard: dashboard}
}

// WalletRequest 创建/更新钱包请求，余额为元，最多两位小数
type WalletRequest struct {
	Name        string      `json:"name" binding:"required,max=255" example:"现金"`
	Description string      `json:"description"`
	Balance     NumberInput `json:"balance" binding:"required" swaggertype:"number" example:"1200.50"`
	Currency    string      `json:"currency" binding:"required,max=3" example:"CNY"`
	IsActive    *bool       `json:"is_active"`
	TagIDs      []uint      `json:"tag_ids"`
}

func (r *WalletRequest) apply(w *models.Wallet) ValidationErrors {
	errs := ValidationErrors{}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		errs.Add("name", "不能为空")
	}
	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		errs.Add("currency", "不能为空")
	}
	balance := parseMoney(errs, "balance", r.Balance)
	if !errs.Empty() {
		return errs
	}

	w.Name = name
	w.Description = r.Description
	w.Balance = *balance
	w.Currency = currency
	w.IsActive = r.IsActive == nil || *r.IsActive
	return nil
}

// List 钱包列表
// @Summary 获取钱包列表
// @Description 只返回在用钱包，按名称排序；search 模糊匹配名称和描述
// @Tags 财务-钱包
// @Produce json
// @Param page query int false "页码" default(1)
// @Param search query string false "搜索关键字"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Wallet}} "获取成功"
// @Router /api/v1/wallets [get]
func (h *WalletHandler) List(c *gin.Context) {
	q, ok := bindListQuery(c)
	if !ok {
		return
	}

	query := database.DB.Model(&models.Wallet{}).Where("is_active = ?", true)
	if q.Search != "" {
		like := q.like()
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	var list []models.Wallet
	if err := query.Order("name ASC").Offset(q.offset()).Limit(q.PageSize).Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if err := attachWalletTags(list); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}

	Success(c, PageResponse{Total: total, Page: q.Page, PageSize: q.PageSize, List: list})
}

// Get 钱包详情
// @Summary 获取钱包详情
// @Tags 财务-钱包
// @Produce json
// @Param id path int true "钱包ID"
// @Success 200 {object} Response{data=models.Wallet} "获取成功"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [get]
func (h *WalletHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var wallet models.Wallet
	if err := database.DB.First(&wallet, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "钱包不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	list := []models.Wallet{wallet}
	if err := attachWalletTags(list); err != nil {
		InternalError(c, SafeErrorMessage(err, "查询标签失败"))
		return
	}
	Success(c, list[0])
}

// Create 创建钱包
// @Summary 创建钱包
// @Tags 财务-钱包
// @Accept json
// @Produce json
// @Param request body WalletRequest true "钱包信息"
// @Success 201 {object} Response{data=models.Wallet} "创建成功"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/wallets [post]
func (h *WalletHandler) Create(c *gin.Context) {
	var req WalletRequest
	if !bindJSON(c, &req) {
		return
	}
	var wallet models.Wallet
	if errs := req.apply(&wallet); errs != nil {
		Unprocessable(c, errs)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&wallet).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableWallet, wallet.ID, req.TagIDs)
		}
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			Unprocessable(c, ValidationErrors{"tag_ids": "标签不存在"})
			return
		}
		InternalError(c, SafeErrorMessage(err, "创建钱包失败"))
		return
	}

	h.dashboard.Invalidate()
	Created(c, "创建成功", wallet)
}

// Update 更新钱包
// @Summary 更新钱包
// @Description 余额按提交值整体覆盖，不会根据交易自动调整
// @Tags 财务-钱包
// @Accept json
// @Produce json
// @Param id path int true "钱包ID"
// @Param request body WalletRequest true "钱包信息"
// @Success 200 {object} Response{data=models.Wallet} "更新成功"
// @Failure 404 {object} Response "钱包不存在"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/wallets/{id} [put]
func (h *WalletHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var wallet models.Wallet
	if err := database.DB.First(&wallet, id).Error; err != nil {
		if isNotFound(err) {
			NotFound(c, "钱包不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var req WalletRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := req.apply(&wallet); errs != nil {
		Unprocessable(c, errs)
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&wallet).Error; err != nil {
			return err
		}
		if req.TagIDs != nil {
			return service.SyncTags(tx, models.TaggableWallet, wallet.ID, req.TagIDs)
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
	SuccessWithMessage(c, "更新成功", wallet)
}

// Delete 删除钱包及其交易
// @Summary 删除钱包
// @Description 同一事务内删除该钱包下的全部交易
// @Tags 财务-钱包
// @Produce json
// @Param id path int true "钱包ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "钱包不存在"
// @Router /api/v1/wallets/{id} [delete]
func (h *WalletHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var removed int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var txIDs []uint
		if err := tx.Model(&models.Transaction{}).Where("wallet_id = ?", id).Pluck("id", &txIDs).Error; err != nil {
			return err
		}
		if len(txIDs) > 0 {
			if err := service.DeleteTaggables(tx, models.TaggableTransaction, txIDs...); err != nil {
				return err
			}
			if err := tx.Where("wallet_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
		}
		if err := service.DeleteTaggables(tx, models.TaggableWallet, id); err != nil {
			return err
		}
		result := tx.Delete(&models.Wallet{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		removed = int64(len(txIDs))
		return nil
	})
	if err != nil {
		if isNotFound(err) {
			NotFound(c, "钱包不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	h.dashboard.Invalidate()
	SuccessWithMessage(c, "删除成功", gin.H{"deleted_transactions": removed})
}

// SyncTags 替换钱包标签
// @Summary 设置钱包标签
// @Tags 财务-钱包
// @Accept json
// @Produce json
// @Param id path int true "钱包ID"
// @Param request body TagSyncRequest true "标签ID列表"
// @Success 200 {object} Response{data=[]models.Tag} "设置成功"
// @Router /api/v1/wallets/{id}/tags [put]
func (h *WalletHandler) SyncTags(c *gin.Context) {
	syncEntityTags(c, &models.Wallet{}, models.TaggableWallet, "钱包不存在")
}

func attachWalletTags(list []models.Wallet) error {
	ids := make([]uint, 0, len(list))
	for _, w := range list {
		ids = append(ids, w.ID)
	}
	tags, err := service.LoadTags(database.DB, models.TaggableWallet, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].Tags = tags[list[i].ID]
	}
	return nil
}
