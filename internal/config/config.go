// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir           string // Base directory for all databases (always absolute)
	LogLevel          string
	Port              int
	DevMode           bool
	PortfolioCurrency string // Currency portfolio values are expressed in (e.g. "KRW")

	EODHDAPIKey          string // End-of-day price history API
	GoogleSearchAPIKey   string // Programmable Search (report discovery)
	GoogleSearchEngineID string
	GeminiAPIKey         string // Report summarization
	GeminiModel          string

	Mail       MailConfig
	Simulation SimulationConfig
	Schedules  ScheduleConfig
	Reports    ReportConfig
}

// MailConfig holds SMTP settings for the subscriber digest.
// Mail is disabled when Host is empty; the report pipeline then
// archives without sending.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Enabled reports whether outgoing mail is configured
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// SimulationConfig holds the dashboard bounds and defaults for the
// Monte Carlo lab. The engine itself only enforces the >=1 bounds;
// these limits are the API surface the sliders expose.
type SimulationConfig struct {
	MinHorizonDays     int
	MaxHorizonDays     int
	DefaultHorizonDays int
	MinPaths           int
	MaxPaths           int
	DefaultPaths       int
}

// ScheduleConfig holds cron expressions (with seconds field) for background jobs
type ScheduleConfig struct {
	PriceSync     string
	DailyReport   string
	CacheCleanup  string
	WALCheckpoint string
}

// ReportConfig holds the report pipeline settings
type ReportConfig struct {
	Queries         []string // Search queries for daily report discovery
	MaxResults      int      // Results to fetch per query
	MaxPDFBytes     int64    // Download size cap per report
	PromptCharLimit int      // Extracted text budget handed to the summarizer
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory:
	// 1. COMPASS_DATA_DIR environment variable
	// 2. Default to ./data
	// 3. Always resolve to absolute path and ensure it exists
	dataDir := getEnv("COMPASS_DATA_DIR", "data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:           absDataDir,
		Port:              getEnvAsInt("COMPASS_PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		PortfolioCurrency: strings.ToUpper(getEnv("PORTFOLIO_CURRENCY", "KRW")),

		EODHDAPIKey:          getEnv("EODHD_API_KEY", ""),
		GoogleSearchAPIKey:   getEnv("GOOGLE_SEARCH_API_KEY", ""),
		GoogleSearchEngineID: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
			FromName: getEnv("SMTP_FROM_NAME", "Compass"),
			UseTLS:   getEnvAsBool("SMTP_USE_TLS", false),
		},

		Simulation: SimulationConfig{
			MinHorizonDays:     10,
			MaxHorizonDays:     60,
			DefaultHorizonDays: getEnvAsInt("SIMULATION_DEFAULT_HORIZON", 20),
			MinPaths:           1000,
			MaxPaths:           50000,
			DefaultPaths:       getEnvAsInt("SIMULATION_DEFAULT_PATHS", 2000),
		},

		Schedules: ScheduleConfig{
			PriceSync:     getEnv("SCHEDULE_PRICE_SYNC", "0 30 6 * * MON-FRI"),
			DailyReport:   getEnv("SCHEDULE_DAILY_REPORT", "0 0 7 * * MON-FRI"),
			CacheCleanup:  getEnv("SCHEDULE_CACHE_CLEANUP", "0 15 * * * *"),
			WALCheckpoint: getEnv("SCHEDULE_WAL_CHECKPOINT", "0 0 3 * * *"),
		},

		Reports: ReportConfig{
			Queries:         getEnvAsList("REPORT_QUERIES", []string{"증권사 데일리 시황 리포트"}),
			MaxResults:      getEnvAsInt("REPORT_MAX_RESULTS", 3),
			MaxPDFBytes:     int64(getEnvAsInt("REPORT_MAX_PDF_MB", 10)) * 1024 * 1024,
			PromptCharLimit: getEnvAsInt("REPORT_PROMPT_CHAR_LIMIT", 20000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and consistent
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if len(c.PortfolioCurrency) != 3 {
		return fmt.Errorf("invalid portfolio currency %q: expected a 3-letter code", c.PortfolioCurrency)
	}

	s := c.Simulation
	if s.MinHorizonDays < 1 || s.MaxHorizonDays < s.MinHorizonDays {
		return fmt.Errorf("invalid simulation horizon bounds: min=%d max=%d", s.MinHorizonDays, s.MaxHorizonDays)
	}
	if s.DefaultHorizonDays < s.MinHorizonDays || s.DefaultHorizonDays > s.MaxHorizonDays {
		return fmt.Errorf("default horizon %d outside bounds [%d, %d]", s.DefaultHorizonDays, s.MinHorizonDays, s.MaxHorizonDays)
	}
	if s.MinPaths < 1 || s.MaxPaths < s.MinPaths {
		return fmt.Errorf("invalid simulation path bounds: min=%d max=%d", s.MinPaths, s.MaxPaths)
	}
	if s.DefaultPaths < s.MinPaths || s.DefaultPaths > s.MaxPaths {
		return fmt.Errorf("default path count %d outside bounds [%d, %d]", s.DefaultPaths, s.MinPaths, s.MaxPaths)
	}

	// Mail is optional, but a partial SMTP config is a misconfiguration
	if c.Mail.Enabled() {
		if c.Mail.From == "" {
			return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
		}
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.Mail.Port)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, v := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
