// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLMConfig holds language-model connection parameters.
type LLMConfig struct {
	BaseURL string        // OpenAI-compatible API base URL (e.g., https://api.openai.com/v1)
	APIKey  string        // bearer token
	Model   string        // model identifier (default "gpt-4o-mini")
	Timeout time.Duration // per-call timeout (default 30s)
}

// Validate checks that the LLM configuration is usable.
func (l *LLMConfig) Validate() error {
	if l.BaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL must be set")
	}
	if l.Model == "" {
		return fmt.Errorf("LLM_MODEL must be set")
	}
	return nil
}

// Config holds the configuration for the query pipeline and its HTTP boundary.
type Config struct {
	LabDBDriver string // "duckdb" or "sqlite3" (default "duckdb")
	LabDBDSN    string // driver DSN; empty means in-memory with demo seed
	AskLogPath  string // path to the SQLite ask-log file
	HintsPath   string // path to the YAML hint table (optional)

	MaxRepairAttempts int           // translation repair budget (default 2)
	MaxRows           int           // executor row cap (default 1000)
	QueryTimeout      time.Duration // executor deadline (default 30s)

	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 20)
	RateLimitBurst int     // burst capacity (default 40)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// LLM holds language-model connection configuration.
	LLM LLMConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SeedDemo reports whether the server should create the demo lab schema.
// An empty DSN means an in-memory database, which is only useful seeded.
func (c *Config) SeedDemo() bool {
	return c.LabDBDSN == "" || strings.EqualFold(os.Getenv("LAB_DB_SEED_DEMO"), "true")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LabDBDriver: os.Getenv("LAB_DB_DRIVER"),
		LabDBDSN:    os.Getenv("LAB_DB_DSN"),
		AskLogPath:  os.Getenv("ASKLOG_DB_PATH"),
		HintsPath:   os.Getenv("HINTS_PATH"),
		ListenAddr:  os.Getenv("LISTEN_ADDR"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		Env:         os.Getenv("ENV"),
	}

	if v := os.Getenv("MAX_REPAIR_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid MAX_REPAIR_ATTEMPTS %q", v)
		}
		cfg.MaxRepairAttempts = n
	} else {
		cfg.MaxRepairAttempts = 2
	}
	if v := os.Getenv("MAX_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_ROWS %q", v)
		}
		cfg.MaxRows = n
	} else {
		cfg.MaxRows = 1000
	}
	if v := os.Getenv("QUERY_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid QUERY_TIMEOUT_SECONDS %q", v)
		}
		cfg.QueryTimeout = time.Duration(n) * time.Second
	} else {
		cfg.QueryTimeout = 30 * time.Second
	}

	// Rate limiting
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}

	// LLM config
	cfg.LLM = LLMConfig{
		BaseURL: os.Getenv("LLM_BASE_URL"),
		APIKey:  os.Getenv("LLM_API_KEY"),
		Model:   os.Getenv("LLM_MODEL"),
	}
	if v := os.Getenv("LLM_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLM.Timeout = time.Duration(n) * time.Second
		}
	}

	// Defaults
	if cfg.LabDBDriver == "" {
		cfg.LabDBDriver = "duckdb"
	}
	if cfg.LabDBDriver != "duckdb" && cfg.LabDBDriver != "sqlite3" {
		return nil, fmt.Errorf("unsupported LAB_DB_DRIVER %q: must be duckdb or sqlite3", cfg.LabDBDriver)
	}
	if cfg.AskLogPath == "" {
		cfg.AskLogPath = "labintel_asklog.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 20
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 40
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.LLM.APIKey == "" {
		cfg.Warnings = append(cfg.Warnings, "LLM_API_KEY not set; model calls will be rejected by the provider")
	}
	if cfg.LabDBDSN == "" {
		cfg.Warnings = append(cfg.Warnings, "LAB_DB_DSN not set; using an in-memory database with demo data")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("LLM_API_KEY must be set in production (ENV=production)")
		}
		if cfg.LabDBDSN == "" {
			return nil, fmt.Errorf("LAB_DB_DSN must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
