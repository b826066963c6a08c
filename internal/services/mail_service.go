package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
)

//go:embed templates/*.html
var mailTemplates embed.FS

var ErrMailDisabled = errors.New("mail service disabled: missing SMTP configuration")

// Mailer 发送一次性验证码
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

type MailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type MailService struct {
	cfg       MailConfig
	enabled   bool
	templates *template.Template
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(cfg MailConfig) *MailService {
	return &MailService{
		cfg:       cfg,
		enabled:   cfg.Host != "" && cfg.Port != "" && cfg.Username != "" && cfg.Password != "" && cfg.From != "",
		templates: template.Must(template.ParseFS(mailTemplates, "templates/*.html")),
		send:      smtp.SendMail,
	}
}

func (s *MailService) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// sendMail 同步发送，调用方需要知道是否成功
func (s *MailService) sendMail(to []string, subject, body string) error {
	if !s.enabled {
		return ErrMailDisabled
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)

	mime := "MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n"
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: Opinions <%s>\r\n"+
		"Subject: %s\r\n"+
		"%s\r\n%s", strings.Join(to, ","), s.cfg.From, subject, mime, body))

	if err := s.send(addr, auth, s.cfg.From, to, msg); err != nil {
		slog.Error("failed to send email", "to", to, "error", err)
		return err
	}
	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}

func (s *MailService) SendOTP(ctx context.Context, email, code string) error {
	body, err := s.render("otp.html", map[string]any{
		"Code":    code,
		"Minutes": int(OTPTTL.Minutes()),
	})
	if err != nil {
		return err
	}
	return s.sendMail([]string{email}, "Your Opinions sign-in code", body)
}
