package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"escape-planner/internal/shared/telemetry"
)

const (
	defaultGenerationEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	defaultGenerationModel    = "mixtral-8x7b-32768"
	defaultMailingListBaseURL = "https://api.mailerlite.com"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string
	LogFormat       string

	GenerationAPIKey       string
	GenerationEndpoint     string
	GenerationModel        string
	GenerationSystemPrompt string
	GenerationTemperature  *float64
	GenerationTimeout      time.Duration
	GenerationMaxRetries   int

	MailingListAPIKey  string
	MailingListGroupID string
	MailingListBaseURL string

	SpreadsheetWebhookURL string
	SheetsSpreadsheetID   string
	SheetsRange           string
	SheetsCredentialsFile string

	SESRegion string
	SESSender string

	NotifyTimeout time.Duration

	SessionStore  string
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseURL string
	DBPool      DBPool

	ExportStrictEncoding bool

	UpgradeURL    string
	NewsletterURL string
}

// DBPool sizes the attempt-log connection pool. Zero values leave the choice to the process.
type DBPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// Features reports which optional integrations are configured.
type Features struct {
	Generation  bool
	MailingList bool
	Spreadsheet bool
	SheetsAPI   bool
	PlanEmail   bool
	Redis       bool
	Postgres    bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),

		GenerationAPIKey:       firstEnv("GENERATION_API_KEY", "GROQ_API_KEY"),
		GenerationEndpoint:     getEnv("GENERATION_ENDPOINT", defaultGenerationEndpoint),
		GenerationModel:        getEnv("GENERATION_MODEL", defaultGenerationModel),
		GenerationSystemPrompt: getEnv("GENERATION_SYSTEM_PROMPT", ""),
		GenerationTemperature:  getEnvFloatPtr("GENERATION_TEMPERATURE"),
		GenerationTimeout:      getEnvSeconds("GENERATION_TIMEOUT_SECONDS", 120*time.Second),
		GenerationMaxRetries:   getEnvInt("GENERATION_MAX_RETRIES", 1),

		MailingListAPIKey:  firstEnv("MAILING_LIST_API_KEY", "MAILERLITE_API_KEY"),
		MailingListGroupID: firstEnv("MAILING_LIST_GROUP_ID", "MAILERLITE_GROUP_ID"),
		MailingListBaseURL: getEnv("MAILING_LIST_BASE_URL", defaultMailingListBaseURL),

		SpreadsheetWebhookURL: firstEnv("SPREADSHEET_WEBHOOK_URL", "GOOGLE_SHEETS_WEBHOOK_URL"),
		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:           getEnv("SHEETS_RANGE", "Leads!A:F"),
		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", ""),

		SESRegion: getEnv("SES_REGION", getEnv("AWS_REGION", "us-east-1")),
		SESSender: getEnv("SES_SENDER", ""),

		NotifyTimeout: getEnvSeconds("NOTIFY_TIMEOUT_SECONDS", 10*time.Second),

		SessionStore:  normalizeSessionStore(getEnv("SESSION_STORE", "memory")),
		SessionTTL:    getEnvDuration("SESSION_TTL", 2*time.Hour),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPool: DBPool{
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 0),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 0),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 0),
			PingTimeout:     getEnvDuration("DB_PING_TIMEOUT", 0),
		},

		ExportStrictEncoding: getEnvBool("EXPORT_STRICT_ENCODING", false),

		UpgradeURL:    getEnv("UPGRADE_URL", "https://gumroad.com/l/quitkit"),
		NewsletterURL: getEnv("NEWSLETTER_URL", "https://subscribepage.io/escape-plan"),
	}

	if cfg.GenerationAPIKey == "" {
		telemetry.Warn("config.generation_disabled", map[string]any{"reason": "GENERATION_API_KEY is empty"})
	}
	return cfg
}

// Features derives the enabled optional integrations from the configuration.
func (c Config) Features() Features {
	return Features{
		Generation:  strings.TrimSpace(c.GenerationAPIKey) != "",
		MailingList: strings.TrimSpace(c.MailingListAPIKey) != "",
		Spreadsheet: strings.TrimSpace(c.SpreadsheetWebhookURL) != "" || c.sheetsAPIConfigured(),
		SheetsAPI:   c.sheetsAPIConfigured(),
		PlanEmail:   strings.TrimSpace(c.SESSender) != "",
		Redis:       c.SessionStore == "redis",
		Postgres:    strings.TrimSpace(c.DatabaseURL) != "",
	}
}

// IsDevLike reports whether the environment tolerates missing infrastructure.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func (c Config) sheetsAPIConfigured() bool {
	return strings.TrimSpace(c.SheetsSpreadsheetID) != "" && strings.TrimSpace(c.SheetsCredentialsFile) != ""
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			return val
		}
	}
	return ""
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		telemetry.Warn("config.invalid_bool", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		telemetry.Warn("config.invalid_seconds", map[string]any{"key": key, "value": raw})
		return def
	}
	return time.Duration(parsed) * time.Second
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw})
		return def
	}
	return val
}

func getEnvFloatPtr(key string) *float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "value": raw})
		return nil
	}
	return &val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeSessionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "redis":
		return "redis"
	default:
		return "memory"
	}
}
