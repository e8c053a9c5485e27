// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends selectable through STORE_BACKEND.
const (
	StoreBackendAuto   = "auto"
	StoreBackendRemote = "remote"
	StoreBackendLocal  = "local"
)

// Image stores selectable through IMAGE_STORE.
const (
	ImageStoreDisk  = "disk"
	ImageStoreMinio = "minio"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	StoreBackend   string `mapstructure:"STORE_BACKEND"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	PopularRanking string `mapstructure:"POPULAR_RANKING"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	ImageStore           string `mapstructure:"IMAGE_STORE"`
	ImageUploadDir       string `mapstructure:"IMAGE_UPLOAD_DIR"`
	ImagePublicBaseURL   string `mapstructure:"IMAGE_PUBLIC_BASE_URL"`
	ImageMaxUploadSizeMB int    `mapstructure:"IMAGE_MAX_UPLOAD_SIZE_MB"`
	MinioEndpoint        string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey       string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey       string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket          string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL          bool   `mapstructure:"MINIO_USE_SSL"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A local .env, when present, seeds the process environment.
	_ = godotenv.Load()

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("STORE_BACKEND", StoreBackendAuto)
	// An empty DB_HOST means the local store is used under "auto".
	viper.SetDefault("DB_HOST", "")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "rumor_plaza")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("POPULAR_RANKING", "likes")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("IMAGE_STORE", ImageStoreDisk)
	viper.SetDefault("IMAGE_UPLOAD_DIR", "./uploads")
	viper.SetDefault("IMAGE_PUBLIC_BASE_URL", "http://localhost:8375/media")
	viper.SetDefault("IMAGE_MAX_UPLOAD_SIZE_MB", 5)
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "")
	viper.SetDefault("MINIO_SECRET_KEY", "")
	viper.SetDefault("MINIO_BUCKET", "post-images")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.PopularRanking = strings.ToLower(strings.TrimSpace(c.PopularRanking))
	c.ImageStore = strings.ToLower(strings.TrimSpace(c.ImageStore))
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
}

// IsProduction reports whether the configuration targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// ResolvedStoreBackend resolves "auto" to a concrete backend: remote when a
// database host is configured, local otherwise.
func (c *Config) ResolvedStoreBackend() string {
	switch c.StoreBackend {
	case StoreBackendRemote, StoreBackendLocal:
		return c.StoreBackend
	}
	if strings.TrimSpace(c.DBHost) != "" {
		return StoreBackendRemote
	}
	return StoreBackendLocal
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.StoreBackend {
	case StoreBackendAuto, StoreBackendRemote, StoreBackendLocal:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of auto, remote, local (got %q)", c.StoreBackend)
	}
	if c.StoreBackend == StoreBackendRemote && c.DBHost == "" {
		return errors.New("DB_HOST is required when STORE_BACKEND is remote")
	}

	switch c.PopularRanking {
	case "likes", "likes_views":
	default:
		return fmt.Errorf("POPULAR_RANKING must be likes or likes_views (got %q)", c.PopularRanking)
	}

	switch c.ImageStore {
	case ImageStoreDisk:
		if c.ImageUploadDir == "" {
			return errors.New("IMAGE_UPLOAD_DIR is required when IMAGE_STORE is disk")
		}
	case ImageStoreMinio:
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			return errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required when IMAGE_STORE is minio")
		}
	default:
		return fmt.Errorf("IMAGE_STORE must be disk or minio (got %q)", c.ImageStore)
	}
	if c.ImageMaxUploadSizeMB <= 0 {
		return errors.New("IMAGE_MAX_UPLOAD_SIZE_MB must be positive")
	}

	if c.TracingEnabled && c.TracingExporter != "stdout" && c.TracingExporter != "otlp" {
		return fmt.Errorf("TRACING_EXPORTER must be stdout or otlp (got %q)", c.TracingExporter)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.ResolvedStoreBackend() == StoreBackendRemote {
			if c.DBPassword == "password" || c.DBPassword == "" {
				return errors.New("a strong DB_PASSWORD is required in production")
			}
			if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
				return errors.New("DB_SSLMODE must not be 'disable' in production")
			}
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
		if c.ImageStore == ImageStoreMinio && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
			return errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required in production")
		}
	}

	return nil
}
