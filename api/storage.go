package api

import (
	"net/http"
	"strings"

	"household/database"
	"household/models"

	"github.com/gin-gonic/gin"
)

// StorageHandler 存放位置
type StorageHandler struct{}

func NewStorageHandler() *StorageHandler {
	return &StorageHandler{}
}

type StorageRequest struct {
	Name        string `json:"name" binding:"required,max=255" example:"储物间"`
	Location    string `json:"location" binding:"max=255" example:"一楼"`
	Description string `json:"description"`
}

// List 存放位置列表
// @Summary 获取存放位置列表
// @Description 按名称排序，供物品表单选择
// @Tags 库存-存放位置
// @Produce json
// @Success 200 {object} Response{data=[]models.Storage} "获取成功"
// @Router /api/v1/storages [get]
func (h *StorageHandler) List(c *gin.Context) {
	var list []models.Storage
	if err := database.DB.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// Create 快速创建存放位置
// @Summary 创建存放位置
// @Description 物品表单内快速创建，返回 {success, storage, message}
// @Tags 库存-存放位置
// @Accept json
// @Produce json
// @Param request body StorageRequest true "存放位置"
// @Success 200 {object} map[string]interface{} "创建成功"
// @Failure 422 {object} Response "数据校验失败"
// @Router /api/v1/storages [post]
func (h *StorageHandler) Create(c *gin.Context) {
	var req StorageRequest
	if !bindJSON(c, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		Unprocessable(c, ValidationErrors{"name": "不能为空"})
		return
	}

	storage := models.Storage{
		Name:        name,
		Location:    strings.TrimSpace(req.Location),
		Description: req.Description,
	}
	if err := database.DB.Create(&storage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": SafeErrorMessage(err, "创建失败")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "storage": storage, "message": "存放位置创建成功"})
}
