package internal

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

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
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDataConfig_BackendValidation(t *testing.T) {
	cfg := DataConfig{Backend: "csv", Path: "./data.csv"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("csv backend should pass: %v", err)
	}
	cfg.Backend = "sqlite"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sqlite backend should pass: %v", err)
	}
	cfg.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown backend should fail validation")
	}
	cfg = DataConfig{Backend: "csv"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty path should fail validation")
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var cfg AutosaveConfig
	if err := yaml.Unmarshal([]byte("debounce: 500ms"), &cfg); err != nil {
		t.Fatal(err)
	}
	if time.Duration(cfg.Debounce) != 500*time.Millisecond {
		t.Errorf("debounce = %v", time.Duration(cfg.Debounce))
	}

	if err := yaml.Unmarshal([]byte("debounce: soon"), &cfg); err == nil {
		t.Fatal("invalid duration should fail to unmarshal")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestNewDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Data.Backend != BackendCSV {
		t.Errorf("default backend = %q", cfg.Data.Backend)
	}
	if time.Duration(cfg.Autosave.Debounce) != 2*time.Second {
		t.Errorf("default debounce = %v", time.Duration(cfg.Autosave.Debounce))
	}
}
