package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Odoo    OdooConfig
	Session SessionConfig
	Cache   CacheConfig
	Redis   RedisConfig
	Sync    SyncConfig
	CORS    CORSConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// OdooConfig points the JSON-RPC client at an Odoo instance.
type OdooConfig struct {
	Host           string
	Database       string
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
}

// SessionConfig bounds the lifetime of a stored login.
type SessionConfig struct {
	MaxAge     time.Duration
	NearExpiry time.Duration
}

// CacheConfig selects and tunes the response cache.
type CacheConfig struct {
	Driver          string
	DefaultTTL      time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SyncConfig tunes the list stores.
type SyncConfig struct {
	Debounce           time.Duration
	MinQueryLength     int
	StudentPageSize    int
	YearPageSize       int
	AttendancePageSize int
	GlobalSearchLimit  int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
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
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Odoo = OdooConfig{
		Host:           strings.TrimRight(v.GetString("ODOO_HOST"), "/"),
		Database:       v.GetString("ODOO_DATABASE"),
		RequestTimeout: parseDuration(v.GetString("ODOO_REQUEST_TIMEOUT"), 30*time.Second),
		HealthTimeout:  parseDuration(v.GetString("ODOO_HEALTH_TIMEOUT"), 5*time.Second),
	}

	cfg.Session = SessionConfig{
		MaxAge:     parseDuration(v.GetString("SESSION_MAX_AGE"), 4*time.Hour),
		NearExpiry: parseDuration(v.GetString("SESSION_NEAR_EXPIRY"), 30*time.Minute),
	}

	cfg.Cache = CacheConfig{
		Driver:          strings.ToLower(v.GetString("CACHE_DRIVER")),
		DefaultTTL:      parseDuration(v.GetString("CACHE_DEFAULT_TTL"), 5*time.Minute),
		MaxEntries:      v.GetInt("CACHE_MAX_ENTRIES"),
		CleanupInterval: parseDuration(v.GetString("CACHE_CLEANUP_INTERVAL"), 10*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Sync = SyncConfig{
		Debounce:           parseDuration(v.GetString("SYNC_DEBOUNCE"), 300*time.Millisecond),
		MinQueryLength:     positive(v.GetInt("SYNC_MIN_QUERY_LENGTH"), 3),
		StudentPageSize:    positive(v.GetInt("SYNC_STUDENT_PAGE_SIZE"), 5),
		YearPageSize:       positive(v.GetInt("SYNC_YEAR_PAGE_SIZE"), 8),
		AttendancePageSize: positive(v.GetInt("SYNC_ATTENDANCE_PAGE_SIZE"), 20),
		GlobalSearchLimit:  positive(v.GetInt("SYNC_GLOBAL_SEARCH_LIMIT"), 50),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ODOO_HOST", "http://localhost:8069")
	v.SetDefault("ODOO_DATABASE", "odoo")
	v.SetDefault("ODOO_REQUEST_TIMEOUT", "30s")
	v.SetDefault("ODOO_HEALTH_TIMEOUT", "5s")

	v.SetDefault("SESSION_MAX_AGE", "4h")
	v.SetDefault("SESSION_NEAR_EXPIRY", "30m")

	v.SetDefault("CACHE_DRIVER", CacheDriverMemory)
	v.SetDefault("CACHE_DEFAULT_TTL", "5m")
	v.SetDefault("CACHE_MAX_ENTRIES", 100)
	v.SetDefault("CACHE_CLEANUP_INTERVAL", "10m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SYNC_DEBOUNCE", "300ms")
	v.SetDefault("SYNC_MIN_QUERY_LENGTH", 3)
	v.SetDefault("SYNC_STUDENT_PAGE_SIZE", 5)
	v.SetDefault("SYNC_YEAR_PAGE_SIZE", 8)
	v.SetDefault("SYNC_ATTENDANCE_PAGE_SIZE", 20)
	v.SetDefault("SYNC_GLOBAL_SEARCH_LIMIT", 50)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ENABLE_METRICS", true)
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

func positive(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
