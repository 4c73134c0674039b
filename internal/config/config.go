package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingStoreURL is returned by Load when no document store endpoint is configured.
var ErrMissingStoreURL = errors.New("RECEIPTLY_DB_URL is required")

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	Storage  StorageConfig
	S3       S3Config
	GCS      GCSConfig
	Log      LogConfig
	CORS     CORSConfig
	Scanner  ScannerConfig
	Agent    AgentConfig
	Workflow WorkflowConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds the document store (PostgreSQL) connection settings.
type DBConfig struct {
	URL            string        `mapstructure:"url"`
	MaxOpen        int           `mapstructure:"max_open"`
	MaxIdle        int           `mapstructure:"max_idle"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return d.URL
}

// JWTConfig holds settings for validating identity provider tokens.
type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// StorageConfig holds provider-independent blob storage settings.
type StorageConfig struct {
	Provider      string `mapstructure:"provider"`
	Bucket        string `mapstructure:"bucket"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// GCSConfig holds Google Cloud Storage settings.
type GCSConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScannerProviderConfig holds settings for a single document scanning provider.
type ScannerProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxTokens    int    `mapstructure:"max_tokens"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	ProjectID    string `mapstructure:"project_id"`
	Region       string `mapstructure:"region"`
}

// ScannerConfig holds the ordered scanner provider chain.
type ScannerConfig struct {
	Primary   ScannerProviderConfig `mapstructure:"primary"`
	Secondary ScannerProviderConfig `mapstructure:"secondary"`
	Tertiary  ScannerProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order.
func (s *ScannerConfig) Providers() []ScannerProviderConfig {
	var out []ScannerProviderConfig
	for _, p := range []ScannerProviderConfig{s.Primary, s.Secondary, s.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	return out
}

// AgentConfig holds settings for the chat model driving the persistence agent.
type AgentConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Endpoint    string `mapstructure:"endpoint"`
	MaxTokens   int    `mapstructure:"max_tokens"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// WorkflowConfig holds settings for the event-driven extraction host.
type WorkflowConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	Source      string        `mapstructure:"source"`
	SigningKey  string        `mapstructure:"signing_key"`
	Concurrency int           `mapstructure:"concurrency"`
	MaxSteps    int           `mapstructure:"max_steps"`
	RunTimeout  time.Duration `mapstructure:"run_timeout"`
	HistorySize int           `mapstructure:"history_size"`
}

// ClientConfig holds settings for the receiptctl upload client.
type ClientConfig struct {
	APIURL     string
	Token      string
	ClearAfter time.Duration
}

// Load reads configuration from environment variables with the RECEIPTLY_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RECEIPTLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults (url has none on purpose)
	v.SetDefault("db.url", "")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.connect_timeout", "30s")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")

	// Storage defaults
	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.bucket", "receiptly-uploads")
	v.SetDefault("storage.max_file_size_mb", 20)
	v.SetDefault("storage.presign_expiry", 3600)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("gcs.project_id", "")
	v.SetDefault("gcs.credentials_file", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Scanner defaults
	v.SetDefault("scanner.primary.provider", "claude")
	v.SetDefault("scanner.primary.default_model", "claude-3-5-sonnet-20240620")
	v.SetDefault("scanner.primary.max_tokens", 3094)
	v.SetDefault("scanner.primary.timeout_secs", 120)
	v.SetDefault("scanner.secondary.provider", "")
	v.SetDefault("scanner.secondary.max_tokens", 3094)
	v.SetDefault("scanner.secondary.timeout_secs", 120)
	v.SetDefault("scanner.tertiary.provider", "")
	v.SetDefault("scanner.tertiary.max_tokens", 3094)
	v.SetDefault("scanner.tertiary.timeout_secs", 120)

	// Agent defaults
	v.SetDefault("agent.model", "gpt-4o-mini")
	v.SetDefault("agent.endpoint", "")
	v.SetDefault("agent.max_tokens", 1000)
	v.SetDefault("agent.timeout_secs", 60)

	// Workflow defaults
	v.SetDefault("workflow.endpoint", "http://localhost:8080/api/workflow")
	v.SetDefault("workflow.source", "receiptly/api")
	v.SetDefault("workflow.signing_key", "")
	v.SetDefault("workflow.concurrency", 5)
	v.SetDefault("workflow.max_steps", 12)
	v.SetDefault("workflow.run_timeout", "5m")
	v.SetDefault("workflow.history_size", 200)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "RECEIPTLY_SERVER_PORT",
		"server.read_timeout":             "RECEIPTLY_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "RECEIPTLY_SERVER_WRITE_TIMEOUT",
		"server.environment":              "RECEIPTLY_SERVER_ENVIRONMENT",
		"db.url":                          "RECEIPTLY_DB_URL",
		"db.max_open":                     "RECEIPTLY_DB_MAX_OPEN",
		"db.max_idle":                     "RECEIPTLY_DB_MAX_IDLE",
		"db.connect_timeout":              "RECEIPTLY_DB_CONNECT_TIMEOUT",
		"jwt.secret":                      "RECEIPTLY_JWT_SECRET",
		"jwt.issuer":                      "RECEIPTLY_JWT_ISSUER",
		"jwt.audience":                    "RECEIPTLY_JWT_AUDIENCE",
		"storage.provider":                "RECEIPTLY_STORAGE_PROVIDER",
		"storage.bucket":                  "RECEIPTLY_STORAGE_BUCKET",
		"storage.max_file_size_mb":        "RECEIPTLY_STORAGE_MAX_FILE_SIZE_MB",
		"storage.presign_expiry":          "RECEIPTLY_STORAGE_PRESIGN_EXPIRY",
		"s3.region":                       "RECEIPTLY_S3_REGION",
		"s3.endpoint":                     "RECEIPTLY_S3_ENDPOINT",
		"s3.access_key":                   "RECEIPTLY_S3_ACCESS_KEY",
		"s3.secret_key":                   "RECEIPTLY_S3_SECRET_KEY",
		"gcs.project_id":                  "RECEIPTLY_GCS_PROJECT_ID",
		"gcs.credentials_file":            "RECEIPTLY_GCS_CREDENTIALS_FILE",
		"log.level":                       "RECEIPTLY_LOG_LEVEL",
		"log.format":                      "RECEIPTLY_LOG_FORMAT",
		"cors.allowed_origins":            "RECEIPTLY_CORS_ALLOWED_ORIGINS",
		"scanner.primary.provider":        "RECEIPTLY_SCANNER_PRIMARY_PROVIDER",
		"scanner.primary.api_key":         "RECEIPTLY_SCANNER_PRIMARY_API_KEY",
		"scanner.primary.default_model":   "RECEIPTLY_SCANNER_PRIMARY_DEFAULT_MODEL",
		"scanner.primary.max_tokens":      "RECEIPTLY_SCANNER_PRIMARY_MAX_TOKENS",
		"scanner.primary.timeout_secs":    "RECEIPTLY_SCANNER_PRIMARY_TIMEOUT_SECS",
		"scanner.primary.project_id":      "RECEIPTLY_SCANNER_PRIMARY_PROJECT_ID",
		"scanner.primary.region":          "RECEIPTLY_SCANNER_PRIMARY_REGION",
		"scanner.secondary.provider":      "RECEIPTLY_SCANNER_SECONDARY_PROVIDER",
		"scanner.secondary.api_key":       "RECEIPTLY_SCANNER_SECONDARY_API_KEY",
		"scanner.secondary.default_model": "RECEIPTLY_SCANNER_SECONDARY_DEFAULT_MODEL",
		"scanner.secondary.max_tokens":    "RECEIPTLY_SCANNER_SECONDARY_MAX_TOKENS",
		"scanner.secondary.timeout_secs":  "RECEIPTLY_SCANNER_SECONDARY_TIMEOUT_SECS",
		"scanner.secondary.project_id":    "RECEIPTLY_SCANNER_SECONDARY_PROJECT_ID",
		"scanner.secondary.region":        "RECEIPTLY_SCANNER_SECONDARY_REGION",
		"scanner.tertiary.provider":       "RECEIPTLY_SCANNER_TERTIARY_PROVIDER",
		"scanner.tertiary.api_key":        "RECEIPTLY_SCANNER_TERTIARY_API_KEY",
		"scanner.tertiary.default_model":  "RECEIPTLY_SCANNER_TERTIARY_DEFAULT_MODEL",
		"scanner.tertiary.max_tokens":     "RECEIPTLY_SCANNER_TERTIARY_MAX_TOKENS",
		"scanner.tertiary.timeout_secs":   "RECEIPTLY_SCANNER_TERTIARY_TIMEOUT_SECS",
		"scanner.tertiary.project_id":     "RECEIPTLY_SCANNER_TERTIARY_PROJECT_ID",
		"scanner.tertiary.region":         "RECEIPTLY_SCANNER_TERTIARY_REGION",
		"agent.api_key":                   "RECEIPTLY_AGENT_API_KEY",
		"agent.model":                     "RECEIPTLY_AGENT_MODEL",
		"agent.endpoint":                  "RECEIPTLY_AGENT_ENDPOINT",
		"agent.max_tokens":                "RECEIPTLY_AGENT_MAX_TOKENS",
		"agent.timeout_secs":              "RECEIPTLY_AGENT_TIMEOUT_SECS",
		"workflow.endpoint":               "RECEIPTLY_WORKFLOW_ENDPOINT",
		"workflow.source":                 "RECEIPTLY_WORKFLOW_SOURCE",
		"workflow.signing_key":            "RECEIPTLY_WORKFLOW_SIGNING_KEY",
		"workflow.concurrency":            "RECEIPTLY_WORKFLOW_CONCURRENCY",
		"workflow.max_steps":              "RECEIPTLY_WORKFLOW_MAX_STEPS",
		"workflow.run_timeout":            "RECEIPTLY_WORKFLOW_RUN_TIMEOUT",
		"workflow.history_size":           "RECEIPTLY_WORKFLOW_HISTORY_SIZE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	if strings.TrimSpace(v.GetString("db.url")) == "" {
		return nil, ErrMissingStoreURL
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if RECEIPTLY_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("RECEIPTLY_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		URL:            strings.TrimSpace(v.GetString("db.url")),
		MaxOpen:        v.GetInt("db.max_open"),
		MaxIdle:        v.GetInt("db.max_idle"),
		ConnectTimeout: v.GetDuration("db.connect_timeout"),
	}
	cfg.JWT = JWTConfig{
		Secret:   v.GetString("jwt.secret"),
		Issuer:   v.GetString("jwt.issuer"),
		Audience: v.GetString("jwt.audience"),
	}
	cfg.Storage = StorageConfig{
		Provider:      strings.ToLower(v.GetString("storage.provider")),
		Bucket:        v.GetString("storage.bucket"),
		MaxFileSizeMB: v.GetInt64("storage.max_file_size_mb"),
		PresignExpiry: v.GetInt64("storage.presign_expiry"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.GCS = GCSConfig{
		ProjectID:       v.GetString("gcs.project_id"),
		CredentialsFile: v.GetString("gcs.credentials_file"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Scanner = ScannerConfig{
		Primary:   scannerProvider(v, "primary"),
		Secondary: scannerProvider(v, "secondary"),
		Tertiary:  scannerProvider(v, "tertiary"),
	}
	cfg.Agent = AgentConfig{
		APIKey:      v.GetString("agent.api_key"),
		Model:       v.GetString("agent.model"),
		Endpoint:    v.GetString("agent.endpoint"),
		MaxTokens:   v.GetInt("agent.max_tokens"),
		TimeoutSecs: v.GetInt("agent.timeout_secs"),
	}
	cfg.Workflow = WorkflowConfig{
		Endpoint:    v.GetString("workflow.endpoint"),
		Source:      v.GetString("workflow.source"),
		SigningKey:  v.GetString("workflow.signing_key"),
		Concurrency: v.GetInt("workflow.concurrency"),
		MaxSteps:    v.GetInt("workflow.max_steps"),
		RunTimeout:  v.GetDuration("workflow.run_timeout"),
		HistorySize: v.GetInt("workflow.history_size"),
	}

	return cfg, nil
}

// LoadClient reads receiptctl settings from RECEIPTLY_API_URL and RECEIPTLY_TOKEN.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RECEIPTLY")
	v.AutomaticEnv()
	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("clear_after", "5s")

	return &ClientConfig{
		APIURL:     strings.TrimRight(v.GetString("api_url"), "/"),
		Token:      v.GetString("token"),
		ClearAfter: v.GetDuration("clear_after"),
	}
}

func scannerProvider(v *viper.Viper, slot string) ScannerProviderConfig {
	prefix := "scanner." + slot + "."
	return ScannerProviderConfig{
		Provider:     strings.ToLower(v.GetString(prefix + "provider")),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxTokens:    v.GetInt(prefix + "max_tokens"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
		ProjectID:    v.GetString(prefix + "project_id"),
		Region:       v.GetString(prefix + "region"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
