package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Copy enrichment. Enrichment is off unless an API key or endpoint is set.
	TextgenProvider    string
	TextgenEndpoint    string
	TextgenAPIKey      string
	TextgenModel       string
	TextgenTimeout     time.Duration
	TextgenConcurrency int

	// Heuristic thresholds; HeuristicsFile overrides the defaults.
	HeuristicsFile string
	Heuristics     Heuristics
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		TextgenProvider:    envOr("TEXTGEN_PROVIDER", "anthropic"),
		TextgenEndpoint:    os.Getenv("TEXTGEN_ENDPOINT"),
		TextgenAPIKey:      os.Getenv("TEXTGEN_API_KEY"),
		TextgenModel:       envOr("TEXTGEN_MODEL", "claude-sonnet-4-5-20250929"),
		TextgenTimeout:     envDuration("TEXTGEN_TIMEOUT", 20*time.Second),
		TextgenConcurrency: envInt("TEXTGEN_CONCURRENCY", 4),

		HeuristicsFile: os.Getenv("HEURISTICS_FILE"),
		Heuristics:     DefaultHeuristics(),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.TextgenTimeout <= 0 {
		cfg.TextgenTimeout = 20 * time.Second
	}
	if cfg.TextgenConcurrency <= 0 {
		cfg.TextgenConcurrency = 4
	}

	return cfg
}

// EnrichEnabled reports whether a text-completion collaborator is configured.
func (c Config) EnrichEnabled() bool {
	return c.TextgenAPIKey != "" || c.TextgenEndpoint != ""
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.TextgenProvider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("TEXTGEN_PROVIDER must be anthropic or openai, got %q", c.TextgenProvider)
	}
	if c.EnrichEnabled() && c.TextgenModel == "" {
		return fmt.Errorf("TEXTGEN_MODEL is required when enrichment is configured")
	}
	if err := c.Heuristics.Validate(); err != nil {
		return fmt.Errorf("heuristics: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
