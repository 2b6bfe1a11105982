package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// APIClient is a caller allowed to request tokens.
type APIClient struct {
	ID         string `yaml:"id"`
	Role       string `yaml:"role"`
	SecretHash string `yaml:"secret_hash"`
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	Port            string
	RunnerBaseURL   string
	RateLimitSubmit RateLimitConfig
	TokenTTL        time.Duration
	UploadMaxBytes  int64
	LogLevel        string
	LogFormat       string
	JobRetention    time.Duration
	StalePending    time.Duration
	JanitorInterval time.Duration
	Clients         []APIClient
}

// fileConfig mirrors the optional YAML file named by CONFIG_FILE. Environment
// variables take precedence over anything set here.
type fileConfig struct {
	DatabaseURL     string      `yaml:"database_url"`
	JWTSecret       string      `yaml:"jwt_secret"`
	JWTTTL          string      `yaml:"jwt_ttl"`
	Port            string      `yaml:"port"`
	RunnerBaseURL   string      `yaml:"runner_base_url"`
	RateLimitSubmit string      `yaml:"rate_limit_submit"`
	UploadMaxBytes  string      `yaml:"upload_max_bytes"`
	LogLevel        string      `yaml:"log_level"`
	LogFormat       string      `yaml:"log_format"`
	JobRetention    string      `yaml:"job_retention"`
	StalePending    string      `yaml:"stale_pending_after"`
	JanitorInterval string      `yaml:"janitor_interval"`
	Clients         []APIClient `yaml:"clients"`
}

// Load reads the optional YAML file, then environment variables, and applies sane defaults.
func Load() (*Config, error) {
	file, err := readFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", file.DatabaseURL),
		JWTSecret:     getEnv("JWT_SECRET", or(file.JWTSecret, "dev-secret")),
		Port:          getEnv("PORT", or(file.Port, "8080")),
		RunnerBaseURL: getEnv("RUNNER_BASE_URL", file.RunnerBaseURL),
		TokenTTL:      parseDuration(getEnv("JWT_TTL", or(file.JWTTTL, "24h"))),
		LogLevel:      getEnv("LOG_LEVEL", or(file.LogLevel, "info")),
		LogFormat:     getEnv("LOG_FORMAT", or(file.LogFormat, "text")),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SUBMIT", or(file.RateLimitSubmit, "10/min")))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SUBMIT value: %w", err)
	}
	cfg.RateLimitSubmit = rl

	maxBytes, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", or(file.UploadMaxBytes, "10485760")), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, fmt.Errorf("invalid UPLOAD_MAX_BYTES value")
	}
	cfg.UploadMaxBytes = maxBytes

	durations := []struct {
		key      string
		value    string
		fallback string
		target   *time.Duration
	}{
		{"JOB_RETENTION", file.JobRetention, "168h", &cfg.JobRetention},
		{"STALE_PENDING_AFTER", file.StalePending, "0", &cfg.StalePending},
		{"JANITOR_INTERVAL", file.JanitorInterval, "1h", &cfg.JanitorInterval},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(getEnv(d.key, or(d.value, d.fallback)))
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("invalid %s value", d.key)
		}
		*d.target = parsed
	}

	cfg.Clients = file.Clients
	if raw, ok := os.LookupEnv("API_CLIENTS"); ok && raw != "" {
		clients, err := parseClients(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid API_CLIENTS value: %w", err)
		}
		cfg.Clients = clients
	}

	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var file fileConfig
	if path == "" {
		return file, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return file, fmt.Errorf("parse config file: %w", err)
	}
	return file, nil
}

// parseClients reads "id:role:bcrypt-hash" entries separated by commas.
// bcrypt hashes contain '$' but never ':' or ','.
func parseClients(value string) ([]APIClient, error) {
	var clients []APIClient
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("expected <id>:<role>:<hash>, got %q", entry)
		}
		clients = append(clients, APIClient{
			ID:         strings.TrimSpace(parts[0]),
			Role:       strings.TrimSpace(parts[1]),
			SecretHash: strings.TrimSpace(parts[2]),
		})
	}
	return clients, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func parseDuration(input string) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}
