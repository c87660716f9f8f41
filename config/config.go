package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Supported store backends
const (
	StoreBackendMemory   = "memory"
	StoreBackendFile     = "file"
	StoreBackendRedis    = "redis"
	StoreBackendPostgres = "postgres"
	StoreBackendS3       = "s3"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	YandexStorage YandexStorageConfig
	Profile       ProfileConfig
	Events        EventsConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type StoreConfig struct {
	Backend  string
	Key      string
	FilePath string
}

type DatabaseConfig struct {
	URL           string
	MaxConns      int32
	MinConns      int32
	CACertPath    string
	TLSServerName string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type YandexStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

// ProfileConfig controls form behaviour
type ProfileConfig struct {
	RequireBio     bool  // Enforce non-empty bio on submit (off by default)
	ResumeMaxBytes int64 // HTTP body limit for resume uploads
}

type EventsConfig struct {
	ProfileSavedTriggerURL string
	AMQPURL                string
	AMQPQueue              string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("STORE_BACKEND", StoreBackendFile)
	v.SetDefault("STORE_KEY", "profile")
	v.SetDefault("STORE_FILE_PATH", "./data/profile.json")
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("DATABASE_CA_CERT", "certs/ca.crt")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PROFILE_REQUIRE_BIO", false)
	v.SetDefault("RESUME_MAX_BYTES", 10*1024*1024)
	v.SetDefault("AMQP_QUEUE", "profile.saved")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // OTLP over HTTP, tracing disabled when empty
	v.SetDefault("O11Y_BE_SERVICE_NAME", "profile-editor")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "profile-editor")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "profile-editor")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND"))),
			Key:      v.GetString("STORE_KEY"),
			FilePath: v.GetString("STORE_FILE_PATH"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
			MinConns: v.GetInt32("DB_MIN_CONNS"),

			CACertPath:    v.GetString("DATABASE_CA_CERT"),
			TLSServerName: v.GetString("DATABASE_TLS_SERVER_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		YandexStorage: YandexStorageConfig{
			AccessKeyID:     v.GetString("YANDEX_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("YANDEX_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("YANDEX_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("YANDEX_STORAGE_ENDPOINT"),
			Region:          v.GetString("YANDEX_STORAGE_REGION"),
		},
		Profile: ProfileConfig{
			RequireBio:     v.GetBool("PROFILE_REQUIRE_BIO"),
			ResumeMaxBytes: v.GetInt64("RESUME_MAX_BYTES"),
		},
		Events: EventsConfig{
			ProfileSavedTriggerURL: v.GetString("PROFILE_SAVED_TRIGGER_URL"),
			AMQPURL:                v.GetString("AMQP_URL"),
			AMQPQueue:              v.GetString("AMQP_QUEUE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks
func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Store.Key == "" {
		return fmt.Errorf("STORE_KEY is required")
	}

	// Backend specific settings
	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendFile:
		if c.Store.FilePath == "" {
			return fmt.Errorf("STORE_FILE_PATH is required for the file backend")
		}
	case StoreBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case StoreBackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case StoreBackendS3:
		if c.YandexStorage.BucketName == "" {
			return fmt.Errorf("YANDEX_STORAGE_BUCKET_NAME is required for the s3 backend")
		}
		if c.YandexStorage.AccessKeyID == "" || c.YandexStorage.SecretAccessKey == "" {
			return fmt.Errorf("YANDEX_STORAGE_ACCESS_KEY_ID and YANDEX_STORAGE_SECRET_ACCESS_KEY are required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Profile.ResumeMaxBytes <= 0 {
		return fmt.Errorf("RESUME_MAX_BYTES must be positive")
	}

	if c.Events.AMQPURL != "" && c.Events.AMQPQueue == "" {
		return fmt.Errorf("AMQP_QUEUE is required when AMQP_URL is set")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
