package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"household/config"
	"household/models"

	"gopkg.in/gomail.v2"
)

var ErrEmailDisabled = errors.New("邮件服务未启用，请配置 HOUSEHOLD_EMAIL_ENABLED=true")

// Mailer 邮件发送接口，*gomail.Dialer 即为实现
type Mailer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService 邮件服务
type EmailService struct {
	cfg    *config.EmailConfig
	mailer Mailer
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{
		cfg:    cfg,
		mailer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewEmailServiceWithMailer 使用自定义发送器
func NewEmailServiceWithMailer(cfg *config.EmailConfig, mailer Mailer) *EmailService {
	return &EmailService{cfg: cfg, mailer: mailer}
}

// Enabled 邮件服务是否可用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// SendRestockReminder 发送补货提醒
// to 为空时使用配置中的 restock_recipient
func (s *EmailService) SendRestockReminder(to string, products []models.ProductView, now time.Time) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}
	if to == "" {
		to = s.cfg.RestockRecipient
	}
	if to == "" {
		return fmt.Errorf("未配置补货提醒收件人")
	}

	subject := fmt.Sprintf("【家庭库存】%d 件商品需要补货", len(products))
	body := s.generateRestockEmailBody(products, now)

	return s.sendEmail(to, subject, body)
}

// generateRestockEmailBody 生成补货提醒邮件内容
func (s *EmailService) generateRestockEmailBody(products []models.ProductView, now time.Time) string {
	var rows strings.Builder
	for _, p := range products {
		eta := "-"
		if p.DaysUntilThreshold != nil {
			eta = fmt.Sprintf("%d 天", *p.DaysUntilThreshold)
		}
		location := p.StorageLocation
		if location == "" {
			location = "-"
		}
		fmt.Fprintf(&rows, `
                <tr>
                    <td>%s</td>
                    <td>%s %s</td>
                    <td>%s %s</td>
                    <td>%.1f%%</td>
                    <td>%s</td>
                    <td>%s</td>
                </tr>`,
			html.EscapeString(p.Name),
			p.CurrentAmount.String(), html.EscapeString(p.Unit.Label()),
			p.ThresholdAmount.String(), html.EscapeString(p.Unit.Label()),
			p.PercentageRemainingRounded,
			html.EscapeString(location),
			eta,
		)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Microsoft YaHei', Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 720px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0,0,0,0.1); }
        .header { background: linear-gradient(135deg, #f59e0b, #d97706); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { padding: 30px; }
        .content p { color: #333; line-height: 1.8; margin: 0 0 20px; }
        table { width: 100%%; border-collapse: collapse; font-size: 14px; }
        th, td { border-bottom: 1px solid #eee; padding: 10px 8px; text-align: left; }
        th { background: #fef3c7; color: #92400e; }
        .footer { background: #f8f9fa; padding: 20px 30px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🛒 补货提醒</h1>
        </div>
        <div class="content">
            <p>截至 <strong>%s</strong>，以下 <strong>%d</strong> 件商品的库存已不高于提醒阈值：</p>
            <table>
                <tr>
                    <th>商品</th>
                    <th>当前数量</th>
                    <th>阈值</th>
                    <th>剩余</th>
                    <th>存放位置</th>
                    <th>预计到达阈值</th>
                </tr>%s
            </table>
        </div>
        <div class="footer">
            <p>此邮件由系统自动发送，请勿回复</p>
        </div>
    </div>
</body>
</html>
`, now.Format("2006-01-02"), len(products), rows.String())
}

// sendEmail 发送邮件
func (s *EmailService) sendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	return nil
}

// SendTestEmail 发送测试邮件
func (s *EmailService) SendTestEmail(toEmail string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	subject := "【家庭库存】邮件配置测试"
	body := `
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>✅ 邮件配置成功</h2>
    <p>如果您收到这封邮件，说明补货提醒可以正常发送。</p>
</body>
</html>
`
	return s.sendEmail(toEmail, subject, body)
}
