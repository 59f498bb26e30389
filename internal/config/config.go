package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DB       DBConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	Identity IdentityConfig
	Server   ServerConfig
	Cache    CacheConfig
	Redis    RedisConfig
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type StorageConfig struct {
	Backend      string
	FilePrefix   string
	ListPageSize int
	MaxListPages int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// IdentityConfig points at the external identity provider that issues the
// one-time session tokens exchanged on /api/v1/auth.
type IdentityConfig struct {
	BaseURL     string
	AppID       string
	AppToken    string
	Timeout     time.Duration
	CallbackURL string
}

type ServerConfig struct {
	Port        string
	BodyLimitMB int
	CORSOrigins string
	LogLevel    string
}

type CacheConfig struct {
	Kind string
	Size int
	TTL  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() *Config {
	return &Config{
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "photos"),
			Password:   getEnv("DB_PASSWORD", "photos_secret"),
			Name:       getEnv("DB_NAME", "photos"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "photos.db"),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(getEnv("STORAGE_BACKEND", "minio")),
			FilePrefix:   getEnv("FILE_PREFIX", "photos/"),
			ListPageSize: getEnvAsInt("STORAGE_LIST_PAGE_SIZE", 1000),
			MaxListPages: getEnvAsInt("STORAGE_MAX_LIST_PAGES", 10000),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "photos"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "photos_secret"),
			Bucket:    getEnv("MINIO_BUCKET", "photos"),
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Identity: IdentityConfig{
			BaseURL:     strings.TrimRight(getEnv("IDENTITY_BASE_URL", "https://id.phazed.xyz"), "/"),
			AppID:       getEnv("APP_ID", ""),
			AppToken:    getEnv("APP_TOKEN", ""),
			Timeout:     getEnvAsDuration("IDENTITY_TIMEOUT", 0),
			CallbackURL: getEnv("AUTH_CALLBACK_URL", "http://127.0.0.1:53413/api/v1/auth/callback"),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			BodyLimitMB: getEnvAsInt("SERVER_BODY_LIMIT_MB", 64),
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Cache: CacheConfig{
			Kind: strings.ToLower(getEnv("TOKEN_CACHE", "lru")),
			Size: getEnvAsInt("TOKEN_CACHE_SIZE", 4096),
			TTL:  getEnvAsDuration("TOKEN_CACHE_TTL", 10*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
