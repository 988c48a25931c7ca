package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Cache backends selectable via CACHE_BACKEND.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	SMTP          SMTPConfig
	Push          PushConfig
	Cache         CacheConfig
	Invitations   InvitationConfig
	Notifications NotificationConfig
	Migrations    MigrationConfig
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
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	CustomTokenExpiry time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SMTPConfig configures the transactional mail sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Enabled  bool
}

// PushConfig configures the FCM push sender.
type PushConfig struct {
	Enabled   bool
	Endpoint  string
	ServerKey string
	Timeout   time.Duration
}

// CacheConfig tunes the read-side cache.
type CacheConfig struct {
	Backend   string
	CourseTTL time.Duration
	BlogTTL   time.Duration
}

// InvitationConfig governs invitation tokens and onboarding links.
type InvitationConfig struct {
	TTL        time.Duration
	Secret     string
	AppBaseURL string
}

// NotificationConfig tunes the async notification queue.
type NotificationConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// MigrationConfig controls startup schema migrations.
type MigrationConfig struct {
	Enabled bool
	Dir     string
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		CustomTokenExpiry: parseDuration(v.GetString("JWT_CUSTOM_TOKEN_EXPIRATION"), 5*time.Minute),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
		Enabled:  v.GetBool("SMTP_ENABLED"),
	}

	cfg.Push = PushConfig{
		Enabled:   v.GetBool("PUSH_ENABLED"),
		Endpoint:  v.GetString("PUSH_ENDPOINT"),
		ServerKey: v.GetString("PUSH_SERVER_KEY"),
		Timeout:   parseDuration(v.GetString("PUSH_TIMEOUT"), 10*time.Second),
	}

	cfg.Cache = CacheConfig{
		Backend:   v.GetString("CACHE_BACKEND"),
		CourseTTL: parseDuration(v.GetString("CACHE_COURSE_TTL"), 5*time.Minute),
		BlogTTL:   parseDuration(v.GetString("CACHE_BLOG_TTL"), 3*time.Minute),
	}

	cfg.Invitations = InvitationConfig{
		TTL:        parseDuration(v.GetString("INVITATION_TTL"), 7*24*time.Hour),
		Secret:     v.GetString("INVITATION_SECRET"),
		AppBaseURL: strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
	}

	cfg.Notifications = NotificationConfig{
		Enabled:    v.GetBool("NOTIFICATIONS_ENABLED"),
		Workers:    v.GetInt("NOTIFICATION_WORKERS"),
		BufferSize: v.GetInt("NOTIFICATION_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFICATION_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICATION_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Migrations = MigrationConfig{
		Enabled: v.GetBool("MIGRATIONS_ENABLED"),
		Dir:     v.GetString("MIGRATIONS_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cursova")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_CUSTOM_TOKEN_EXPIRATION", "5m")
	v.SetDefault("JWT_ISSUER", "cursova-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@cursova.dev")
	v.SetDefault("SMTP_ENABLED", false)

	v.SetDefault("PUSH_ENABLED", false)
	v.SetDefault("PUSH_ENDPOINT", "https://fcm.googleapis.com/fcm/send")
	v.SetDefault("PUSH_SERVER_KEY", "")
	v.SetDefault("PUSH_TIMEOUT", "10s")

	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE_COURSE_TTL", "5m")
	v.SetDefault("CACHE_BLOG_TTL", "3m")

	v.SetDefault("INVITATION_TTL", "168h")
	v.SetDefault("INVITATION_SECRET", "dev_invitation_secret")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")

	v.SetDefault("NOTIFICATIONS_ENABLED", true)
	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_BUFFER_SIZE", 64)
	v.SetDefault("NOTIFICATION_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATION_RETRY_DELAY", "5s")

	v.SetDefault("MIGRATIONS_ENABLED", false)
	v.SetDefault("MIGRATIONS_DIR", "migrations")
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
