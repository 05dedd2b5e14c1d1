package config

import (
	"os"
	"strings"
	"testing"
)

// clearCardEnv unsets every variable Load reads so tests start from a
// known environment.
func clearCardEnv(t *testing.T) {
	t.Helper()

	vars := []string{
		"SECRET_KEY", "OPENAI_API_KEY", "FREE_DAILY",
		"STRIPE_SECRET_KEY", "STRIPE_PRICE_ID", "STRIPE_WEBHOOK_SECRET", "STRIPE_LINK",
		"ADMIN_PRO_CODE", "BASE_URL", "PORT",
		"TNT_LOG_LEVEL", "TNT_DB_HOST", "TNT_DB_PORT", "TNT_DB_NAME",
		"TNT_DB_USER", "TNT_DB_PASS", "TNT_DB_SSL_MODE",
		"SENDGRID_API_KEY", "EMAIL_FROM", "EMAIL_NAME",
	}
	for _, v := range vars {
		// Set through t.Setenv first so the original value is restored
		// after the test, then unset for the test body.
		t.Setenv(v, "")
		os.Unsetenv(v)
	}
}

func TestLoad(t *testing.T) {
	clearCardEnv(t)

	t.Setenv("SECRET_KEY", "change-this")
	t.Setenv("OPENAI_API_KEY", "sk-...")
	t.Setenv("FREE_DAILY", "5")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_...")
	t.Setenv("STRIPE_PRICE_ID", "price_123...")
	t.Setenv("BASE_URL", "http://localhost:10000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SecretKey != "change-this" {
		t.Errorf("expected SecretKey %q, got: %q", "change-this", cfg.SecretKey)
	}
	if cfg.SecretKeyGenerated {
		t.Error("SecretKeyGenerated should be false when SECRET_KEY is set")
	}
	if cfg.OpenAIAPIKey != "sk-..." {
		t.Errorf("expected OpenAIAPIKey %q, got: %q", "sk-...", cfg.OpenAIAPIKey)
	}
	if cfg.FreeDaily != 5 {
		t.Errorf("expected FreeDaily 5, got: %d", cfg.FreeDaily)
	}
	if cfg.StripeSecretKey != "sk_test_..." {
		t.Errorf("expected StripeSecretKey %q, got: %q", "sk_test_...", cfg.StripeSecretKey)
	}
	if cfg.StripePriceID != "price_123..." {
		t.Errorf("expected StripePriceID %q, got: %q", "price_123...", cfg.StripePriceID)
	}
	if cfg.BaseURL != "http://localhost:10000" {
		t.Errorf("expected BaseURL %q, got: %q", "http://localhost:10000", cfg.BaseURL)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("expected default port %d, got: %d", DefaultPort, cfg.Port)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearCardEnv(t)

	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FreeDaily != DefaultFreeDaily {
		t.Errorf("expected FreeDaily default %d, got: %d", DefaultFreeDaily, cfg.FreeDaily)
	}
	if cfg.BaseURL != "http://localhost:10000" {
		t.Errorf("expected BaseURL default %q, got: %q", "http://localhost:10000", cfg.BaseURL)
	}
	if cfg.DBName != "tnt" {
		t.Errorf("expected DBName default %q, got: %q", "tnt", cfg.DBName)
	}
	if cfg.EmailName != "Triggers & Triumphs" {
		t.Errorf("expected EmailName default %q, got: %q", "Triggers & Triumphs", cfg.EmailName)
	}
	if cfg.HasDatabase() {
		t.Error("HasDatabase should be false without TNT_DB_PASS")
	}

	if !cfg.SecretKeyGenerated {
		t.Error("SecretKeyGenerated should be true when SECRET_KEY is unset")
	}
	if len(cfg.SecretKey) != 64 {
		t.Errorf("expected 64 hex chars of generated secret, got %d", len(cfg.SecretKey))
	}
}

func TestLoadMissingOpenAIKey(t *testing.T) {
	clearCardEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is unset")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestLoadBadFreeDaily(t *testing.T) {
	clearCardEnv(t)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FREE_DAILY", "five")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when FREE_DAILY is not an integer")
	}
}

func TestHasDatabase(t *testing.T) {
	clearCardEnv(t)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TNT_DB_PASS", "hunter2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.HasDatabase() {
		t.Error("HasDatabase should be true when TNT_DB_PASS is set")
	}
}
