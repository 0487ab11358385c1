package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the render worker
type Config struct {
	// Worker configuration
	WorkerID string `env:"WORKER_ID" envDefault:"render-1"`

	// Redis configuration
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASS" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Stream configuration
	StreamKey     string        `env:"STREAM_KEY" envDefault:"render.work"`
	ConsumerGroup string        `env:"CONSUMER_GROUP" envDefault:"render-workers"`
	ResultStream  string        `env:"RESULT_STREAM" envDefault:"render.done"`
	BlockTime     time.Duration `env:"BLOCK_TIME" envDefault:"1s"`
	MaxRetries    int           `env:"MAX_RETRIES" envDefault:"3"`

	// State configuration
	StatePrefix string        `env:"STATE_PREFIX" envDefault:"graph:state:"`
	StateTTL    time.Duration `env:"STATE_TTL" envDefault:"0s"`

	// Template configuration
	TemplateCacheSize int `env:"TEMPLATE_CACHE_SIZE" envDefault:"256"`

	// Health check configuration
	HealthPort int `env:"HEALTH_PORT" envDefault:"8083"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.WorkerID == "" {
		return fmt.Errorf("WORKER_ID is required")
	}

	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	if c.StreamKey == "" {
		return fmt.Errorf("STREAM_KEY is required")
	}

	if c.ConsumerGroup == "" {
		return fmt.Errorf("CONSUMER_GROUP is required")
	}

	if c.ResultStream == "" {
		return fmt.Errorf("RESULT_STREAM is required")
	}

	if c.StreamKey == c.ResultStream {
		return fmt.Errorf("STREAM_KEY and RESULT_STREAM must differ")
	}

	if c.StatePrefix == "" {
		return fmt.Errorf("STATE_PREFIX is required")
	}

	if c.StateTTL < 0 {
		return fmt.Errorf("STATE_TTL must be non-negative")
	}

	if c.BlockTime <= 0 {
		return fmt.Errorf("BLOCK_TIME must be positive")
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be non-negative")
	}

	if c.TemplateCacheSize < 0 {
		return fmt.Errorf("TEMPLATE_CACHE_SIZE must be non-negative")
	}

	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 1 and 65535")
	}

	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	return nil
}

// isValidLogLevel checks if the log level is valid
func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}

// ErrorStream returns the stream failed render jobs are reported to
func (c *Config) ErrorStream() string {
	return c.ResultStream + ".errors"
}

// String returns a string representation of the config (without sensitive data)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{WorkerID=%s, RedisAddr=%s, RedisDB=%d, StreamKey=%s, ConsumerGroup=%s, "+
			"ResultStream=%s, StatePrefix=%s, TemplateCacheSize=%d, HealthPort=%d, LogLevel=%s}",
		c.WorkerID,
		c.RedisAddr,
		c.RedisDB,
		c.StreamKey,
		c.ConsumerGroup,
		c.ResultStream,
		c.StatePrefix,
		c.TemplateCacheSize,
		c.HealthPort,
		c.LogLevel,
	)
}
