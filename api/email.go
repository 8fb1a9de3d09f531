package api

import (
	"errors"
	"net/http"

	"household/config"
	"household/service"

	"github.com/gin-gonic/gin"
)

// EmailHandler 邮件配置
type EmailHandler struct {
	mail *service.EmailService
	cfg  *config.EmailConfig
}

func NewEmailHandler(cfg *config.EmailConfig, mail *service.EmailService) *EmailHandler {
	return &EmailHandler{mail: mail, cfg: cfg}
}

type TestEmailRequest struct {
	To string `json:"to" binding:"required,email" example:"home@example.com"`
}

// GetConfig 邮件配置（不含密码）
// @Summary 获取邮件配置
// @Tags 邮件
// @Produce json
// @Success 200 {object} Response "获取成功"
// @Router /api/v1/email/config [get]
func (h *EmailHandler) GetConfig(c *gin.Context) {
	Success(c, gin.H{
		"enabled":           h.cfg.Enabled,
		"host":              h.cfg.Host,
		"port":              h.cfg.Port,
		"from":              h.cfg.From,
		"restock_recipient": h.cfg.RestockRecipient,
	})
}

// SendTest 发送测试邮件
// @Summary 发送测试邮件
// @Tags 邮件
// @Accept json
// @Produce json
// @Param request body TestEmailRequest true "收件人"
// @Success 200 {object} Response "发送成功"
// @Failure 503 {object} Response "邮件服务未启用"
// @Router /api/v1/email/test [post]
func (h *EmailHandler) SendTest(c *gin.Context) {
	var req TestEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.mail.SendTestEmail(req.To); err != nil {
		if errors.Is(err, service.ErrEmailDisabled) {
			Error(c, http.StatusServiceUnavailable, err.Error())
			return
		}
		InternalError(c, SafeErrorMessage(err, "发送失败"))
		return
	}
	SuccessWithMessage(c, "发送成功", nil)
}
