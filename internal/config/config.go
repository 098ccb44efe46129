package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"TG_ENV" default:"development"`

	HTTPPort    int           `envconfig:"TG_HTTP_PORT" default:"8080"`
	HTTPTimeout time.Duration `envconfig:"TG_HTTP_TIMEOUT" default:"15s"`

	DownloadDir     string        `envconfig:"TG_DOWNLOAD_DIR" default:"./downloads"`
	ResolveTimeout  time.Duration `envconfig:"TG_RESOLVE_TIMEOUT" default:"30s"`
	DownloadTimeout time.Duration `envconfig:"TG_DOWNLOAD_TIMEOUT" default:"30m"`

	// CopyBufferSize is the transfer chunk size; progress is reported once
	// per chunk, so larger buffers mean less chatty updates.
	CopyBufferSize  int `envconfig:"TG_COPY_BUFFER_SIZE" default:"1048576"`
	EventBufferSize int `envconfig:"TG_EVENT_BUFFER_SIZE" default:"128"`

	ShutdownTimeout time.Duration `envconfig:"TG_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"TG_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"TG_LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	if c.DownloadDir == "" {
		return fmt.Errorf("download directory cannot be empty")
	}

	if c.ResolveTimeout <= 0 {
		return fmt.Errorf("resolve timeout must be positive: %s", c.ResolveTimeout)
	}
	if c.DownloadTimeout <= 0 {
		return fmt.Errorf("download timeout must be positive: %s", c.DownloadTimeout)
	}

	if c.CopyBufferSize <= 0 {
		return fmt.Errorf("copy buffer size must be positive: %d", c.CopyBufferSize)
	}
	if c.EventBufferSize <= 0 {
		return fmt.Errorf("event buffer size must be positive: %d", c.EventBufferSize)
	}

	return nil
}
