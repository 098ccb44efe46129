package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:        8080,
		HTTPTimeout:     15 * time.Second,
		DownloadDir:     "./downloads",
		ResolveTimeout:  30 * time.Second,
		DownloadTimeout: 30 * time.Minute,
		CopyBufferSize:  1 << 20,
		EventBufferSize: 128,
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfig_Validate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.HTTPPort = 0 }},
		{"port out of range", func(c *Config) { c.HTTPPort = 70000 }},
		{"empty download dir", func(c *Config) { c.DownloadDir = "" }},
		{"zero resolve timeout", func(c *Config) { c.ResolveTimeout = 0 }},
		{"zero download timeout", func(c *Config) { c.DownloadTimeout = 0 }},
		{"zero copy buffer", func(c *Config) { c.CopyBufferSize = 0 }},
		{"zero event buffer", func(c *Config) { c.EventBufferSize = 0 }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", test.name)
			}
		})
	}
}
