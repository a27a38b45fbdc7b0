package internal

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.App.HTTP.Address() != ":7341" {
		t.Fatalf("address = %q", cfg.App.HTTP.Address())
	}
	if cfg.Auth.AuthEnabled() {
		t.Fatal("auth enabled by default")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid token auth", func(c *Config) { c.Auth = AuthConfig{Mode: AuthModeToken, Token: "x"} }, false},
		{"token mode without token", func(c *Config) { c.Auth = AuthConfig{Mode: AuthModeToken} }, true},
		{"unknown auth mode", func(c *Config) { c.Auth = AuthConfig{Mode: "basic"} }, true},
		{"port zero", func(c *Config) { c.App.HTTP.Port = 0 }, true},
		{"port out of range", func(c *Config) { c.App.HTTP.Port = 70000 }, true},
		{"empty project root", func(c *Config) { c.Project.Root = "" }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEmptyAuthModeNormalized(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should normalize: %v", err)
	}
	if cfg.Auth.Mode != AuthModeDisabled {
		t.Fatalf("mode = %q after validate", cfg.Auth.Mode)
	}
}
