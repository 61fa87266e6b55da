// Package config reads the service settings from the environment once at
// startup. The returned values are not modified afterwards.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers for prediction records
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
	StoreNone   = "none"
)

type Config struct {
	HTTPPort       string
	RefOptionsPath string
	PredictTimeout time.Duration
	Model          *ModelConfig

	RedisURI   string
	SessionTTL time.Duration
	JWTSecret  string

	StoreDriver string
	MongoURI    string
	MongoDB     string
	SQLitePath  string

	LogLevel string
	CORS     CORSConfig
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

func Load() *Config {
	return &Config{
		HTTPPort:       getEnv("PORT", "8080"),
		RefOptionsPath: getEnv("REF_OPTIONS_PATH", "data/ref_options.json"),
		PredictTimeout: getDuration("PREDICT_TIMEOUT", 10*time.Second),
		Model:          DefaultModelConfig(),

		RedisURI:   getEnv("REDIS_URI", "localhost:6379"),
		SessionTTL: getDuration("SESSION_TTL", 2*time.Hour),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "accidentsev"),
		SQLitePath:  getEnv("SQLITE_PATH", "predictions.db"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type, Authorization"),
		},
	}
}

// RedisAddr strips the redis:// scheme if present
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURI, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultVal
}

// getDuration accepts Go durations ("10s") or plain seconds ("10")
func getDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if n, err := strconv.Atoi(val); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
