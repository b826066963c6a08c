package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 开发环境默认密钥，production 下禁止使用
const devSecret = "dev_secret_change_me"

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DBDriver    string // postgres | sqlite
	DatabaseURL string

	JWTSecret     string
	TokenTTL      time.Duration
	AnonSecret    string
	SessionSecret string

	SiteURL   string // public base URL of this API, used for OAuth callback and RSS links
	ClientURL string // frontend that receives the token after Google redirect login

	GoogleClientID     string
	GoogleClientSecret string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	OTPRatePerMinute       int
	OTPBurst               int
	OTPVerifyRatePerMinute int
	OTPVerifyBurst         int
	CORSOrigins            []string
	// TrustedProxies 可信反向代理 (IP 或 CIDR)，为空时忽略 X-Forwarded-For / X-Real-IP
	TrustedProxies []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=opinions port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", devSecret)
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("ANON_SECRET", devSecret)
	v.SetDefault("SESSION_SECRET", devSecret)
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("OTP_RATE_PER_MINUTE", 5)
	v.SetDefault("OTP_BURST", 5)
	v.SetDefault("OTP_VERIFY_RATE_PER_MINUTE", 10)
	v.SetDefault("OTP_VERIFY_BURST", 10)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("TRUSTED_PROXIES", "")
}

// Load 读取 .env (可选) 和环境变量
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		Env:                v.GetString("APP_ENV"),
		LogLevel:           strings.ToLower(v.GetString("LOG_LEVEL")),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		AnonSecret:         v.GetString("ANON_SECRET"),
		SessionSecret:      v.GetString("SESSION_SECRET"),
		SiteURL:            strings.TrimRight(v.GetString("SITE_URL"), "/"),
		ClientURL:          strings.TrimRight(v.GetString("CLIENT_URL"), "/"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetString("SMTP_PORT"),
		SMTPUser:           v.GetString("SMTP_USER"),
		SMTPPass:           v.GetString("SMTP_PASS"),
		SMTPFrom:           v.GetString("SMTP_FROM"),
		OTPRatePerMinute:   v.GetInt("OTP_RATE_PER_MINUTE"),
		OTPBurst:           v.GetInt("OTP_BURST"),

		OTPVerifyRatePerMinute: v.GetInt("OTP_VERIFY_RATE_PER_MINUTE"),
		OTPVerifyBurst:         v.GetInt("OTP_VERIFY_BURST"),
		CORSOrigins:            splitList(v.GetString("CORS_ORIGINS")),
		TrustedProxies:         splitList(v.GetString("TRUSTED_PROXIES")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList 逗号分隔，去掉空项
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.OTPRatePerMinute <= 0 || c.OTPBurst <= 0 {
		return errors.New("OTP_RATE_PER_MINUTE and OTP_BURST must be positive")
	}
	if c.OTPVerifyRatePerMinute <= 0 || c.OTPVerifyBurst <= 0 {
		return errors.New("OTP_VERIFY_RATE_PER_MINUTE and OTP_VERIFY_BURST must be positive")
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
			}
		}
	}
	if c.IsProduction() {
		for name, val := range map[string]string{
			"JWT_SECRET":     c.JWTSecret,
			"ANON_SECRET":    c.AnonSecret,
			"SESSION_SECRET": c.SessionSecret,
		} {
			if val == "" || val == devSecret {
				return errors.New(name + " must be set in production")
			}
		}
	}
	return nil
}

// MailEnabled 所有 SMTP 变量齐全时才启用邮件
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.SMTPFrom != ""
}
