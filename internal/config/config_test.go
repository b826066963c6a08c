package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("expected 1h token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.DBDriver)
	}
	if cfg.MailEnabled() {
		t.Error("expected mail disabled without SMTP settings")
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Errorf("expected no CORS origins, got %v", cfg.CORSOrigins)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Errorf("expected no trusted proxies by default, got %v", cfg.TrustedProxies)
	}
	if cfg.OTPVerifyRatePerMinute != 10 || cfg.OTPVerifyBurst != 10 {
		t.Errorf("unexpected verify limits %d/%d", cfg.OTPVerifyRatePerMinute, cfg.OTPVerifyBurst)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("SITE_URL", "https://api.test/")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := FromViper(newViper())
	if err != nil {
		t.Fatalf("FromViper failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.DBDriver)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("expected 30m, got %s", cfg.TokenTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.SiteURL != "https://api.test" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.SiteURL)
	}
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[0] != "10.0.0.0/8" {
		t.Errorf("unexpected trusted proxies %v", cfg.TrustedProxies)
	}
}

func TestValidation(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		if _, err := FromViper(newViper()); err == nil {
			t.Error("expected error for unknown driver")
		}
	})

	t.Run("bad trusted proxy", func(t *testing.T) {
		t.Setenv("TRUSTED_PROXIES", "not-an-ip")
		if _, err := FromViper(newViper()); err == nil {
			t.Error("expected error for invalid trusted proxy")
		}
	})

	t.Run("production requires secrets", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		if _, err := FromViper(newViper()); err == nil {
			t.Error("expected error for default secrets in production")
		}

		t.Setenv("JWT_SECRET", "jwt")
		t.Setenv("ANON_SECRET", "anon")
		t.Setenv("SESSION_SECRET", "session")
		if _, err := FromViper(newViper()); err != nil {
			t.Errorf("expected production config to load, got %v", err)
		}
	})
}
