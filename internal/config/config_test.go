package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Referral.BaseURL = "https://referral.example.com"
	cfg.Referral.CreatePath = "/api/questionnaires/create"
	cfg.Referral.SendPath = "/api/questionnaires/send"
	cfg.Referral.APIKey = "secret"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Job.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d, want 10", cfg.Job.MaxIterations)
	}
	if cfg.Referral.APIKeyHeader != "X-Api-Key" {
		t.Errorf("APIKeyHeader = %q, want X-Api-Key", cfg.Referral.APIKeyHeader)
	}
	if cfg.Server.Port != 8083 {
		t.Errorf("Port = %d, want 8083", cfg.Server.Port)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dispatch.toml")

	content := `
[referral]
base_url = "https://referral.example.com"
create_path = "/create"
send_path = "/send"
api_key = "k"

[job]
cron = "0 * * * *"
max_iterations = 4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Job.MaxIterations != 4 {
		t.Errorf("MaxIterations = %d, want 4", cfg.Job.MaxIterations)
	}
	if cfg.Job.Cron != "0 * * * *" {
		t.Errorf("Cron = %q", cfg.Job.Cron)
	}
	if cfg.Job.Name != "questionnaire-dispatch" {
		t.Errorf("Name should keep default, got %q", cfg.Job.Name)
	}

	rc := cfg.RunConfiguration()
	if rc.CreatePath != "/create" || rc.SendPath != "/send" || rc.MaximumIterations != 4 || rc.APIKey != "k" {
		t.Errorf("unexpected run configuration: %+v", rc)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISPATCH_BASE_URL", "https://env.example.com")
	t.Setenv("DISPATCH_CREATE_PATH", "/c")
	t.Setenv("DISPATCH_SEND_PATH", "/s")
	t.Setenv("DISPATCH_API_KEY", "env-key")
	t.Setenv("DISPATCH_MAX_ITERATIONS", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Referral.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q", cfg.Referral.BaseURL)
	}
	if cfg.Job.MaxIterations != 7 {
		t.Errorf("MaxIterations = %d, want 7", cfg.Job.MaxIterations)
	}
}

func TestApplyEnv_InvalidInt(t *testing.T) {
	cfg := validConfig()
	lookup := func(key string) (string, bool) {
		if key == "DISPATCH_MAX_ITERATIONS" {
			return "many", true
		}
		return "", false
	}

	err := cfg.applyEnv(lookup)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing base url", func(c *Config) { c.Referral.BaseURL = "" }, "base_url is required"},
		{"relative base url", func(c *Config) { c.Referral.BaseURL = "referral" }, "not an absolute URL"},
		{"missing create path", func(c *Config) { c.Referral.CreatePath = "" }, "create_path"},
		{"missing send path", func(c *Config) { c.Referral.SendPath = "" }, "send_path"},
		{"missing api key", func(c *Config) { c.Referral.APIKey = "" }, "api_key"},
		{"zero iterations", func(c *Config) { c.Job.MaxIterations = 0 }, "max_iterations"},
		{"bad cron", func(c *Config) { c.Job.Cron = "every minute" }, "job.cron"},
		{"bad timezone", func(c *Config) { c.Job.Timezone = "Mars/Olympus" }, "job.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRead_SkipsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.toml")
	if err := os.WriteFile(path, []byte("[job]\ncron = \"@hourly\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read should not validate, got %v", err)
	}
	if cfg.Job.Cron != "@hourly" {
		t.Errorf("Cron = %q", cfg.Job.Cron)
	}

	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load should reject config without referral settings, got %v", err)
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	if cfg.Location() != time.UTC {
		t.Errorf("default location = %v, want UTC", cfg.Location())
	}

	cfg.Job.Timezone = "Not/AZone"
	if cfg.Location() != time.UTC {
		t.Errorf("invalid timezone should fall back to UTC")
	}
}
