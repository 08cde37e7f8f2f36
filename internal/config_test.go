package internal

import (
	"strings"
	"testing"
)

func validStore() StoreConfig {
	return StoreConfig{URL: "https://example.supabase.co", APIKey: "anon", TimeoutSec: 30}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestStoreConfig_RequiredFields(t *testing.T) {
	cfg := validStore()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid store config should pass: %v", err)
	}

	cfg = validStore()
	cfg.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing url should fail")
	}

	cfg = validStore()
	cfg.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("missing api key should fail")
	}
}

func TestStoreConfig_EffectiveKey(t *testing.T) {
	cfg := validStore()
	if got := cfg.EffectiveKey(); got != "anon" {
		t.Errorf("EffectiveKey() = %q, want anon key", got)
	}
	cfg.ServiceRoleKey = "service"
	if got := cfg.EffectiveKey(); got != "service" {
		t.Errorf("EffectiveKey() = %q, want service role key", got)
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
	cfg := HTTPConfig{Port: 8080}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("port 8080 should pass: %v", err)
	}
	if cfg.Address() != ":8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestFullConfig_SectionValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store = validStore()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with store should pass: %v", err)
	}

	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.App.HTTP.Port != 8080 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.Store.TimeoutSec != 30 {
		t.Errorf("timeout = %d", cfg.Store.TimeoutSec)
	}
	if cfg.Embedding.Model == "" {
		t.Error("embedding model default missing")
	}
	if cfg.Auth.Mode != AuthModeDisabled {
		t.Errorf("auth mode = %q", cfg.Auth.Mode)
	}
}
