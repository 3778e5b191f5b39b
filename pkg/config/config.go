package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret = "dev_secret"
)

type Config struct {
	Env  string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Analyzer AnalyzerConfig
	Uploads  UploadConfig
	Reports  ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalyzerConfig points at an OpenAI-compatible chat completion endpoint.
type AnalyzerConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float64
	Timeout       time.Duration
	MaxInputChars int
}

// UploadConfig bounds multipart uploads on the analysis endpoint.
type UploadConfig struct {
	MaxFileSizeBytes    int64
	MaxRequestSizeBytes int64
}

// ReportsConfig controls report caching and cache warm-up.
type ReportsConfig struct {
	CacheEnabled  bool
	CacheTTL      time.Duration
	WarmupWorkers int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	apiKey := v.GetString("ANALYZER_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("GEMINI_API_KEY")
	}
	cfg.Analyzer = AnalyzerConfig{
		APIKey:        apiKey,
		BaseURL:       v.GetString("ANALYZER_BASE_URL"),
		Model:         v.GetString("ANALYZER_MODEL"),
		Temperature:   v.GetFloat64("ANALYZER_TEMPERATURE"),
		Timeout:       parseDuration(v.GetString("ANALYZER_TIMEOUT"), 90*time.Second),
		MaxInputChars: v.GetInt("ANALYZER_MAX_INPUT_CHARS"),
	}

	maxFileSize := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	maxRequestSize := v.GetInt64("UPLOAD_MAX_REQUEST_SIZE")
	if maxRequestSize <= 0 {
		maxRequestSize = 3*maxFileSize + 1024*1024
	}
	cfg.Uploads = UploadConfig{
		MaxFileSizeBytes:    maxFileSize,
		MaxRequestSizeBytes: maxRequestSize,
	}

	cfg.Reports = ReportsConfig{
		CacheEnabled:  v.GetBool("ENABLE_REPORT_CACHE"),
		CacheTTL:      parseDuration(v.GetString("REPORT_CACHE_TTL"), 10*time.Minute),
		WarmupWorkers: v.GetInt("WARMUP_WORKERS"),
	}

	return cfg, nil
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Analyzer.APIKey) == "" {
		problems = append(problems, "ANALYZER_API_KEY (or GEMINI_API_KEY) is required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if c.Env == EnvProduction && c.JWT.Secret == defaultJWTSecret {
		problems = append(problems, "JWT_SECRET must be overridden in production")
	}
	if c.Port <= 0 {
		problems = append(problems, "PORT must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5001)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "equivalence")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "equivalence-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ANALYZER_API_KEY", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("ANALYZER_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("ANALYZER_MODEL", "gemini-2.0-flash")
	v.SetDefault("ANALYZER_TEMPERATURE", 0.2)
	v.SetDefault("ANALYZER_TIMEOUT", "90s")
	v.SetDefault("ANALYZER_MAX_INPUT_CHARS", 200000)

	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOAD_MAX_REQUEST_SIZE", 0)

	v.SetDefault("ENABLE_REPORT_CACHE", false)
	v.SetDefault("REPORT_CACHE_TTL", "10m")
	v.SetDefault("WARMUP_WORKERS", 1)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
