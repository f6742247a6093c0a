// Package config loads process configuration from the environment and the
// optional model bundle manifest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	InferenceOnDevice = "ON_DEVICE"
	InferenceServer   = "SERVER"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL    string
	RedisURL       string
	MongoDBURL     string
	MongoDBName    string
	MigrationsPath string

	JWTSecret      string
	AllowedOrigins []string

	// Classify endpoint throttling per client IP; 0 disables.
	ClassifyRateLimit int
	ClassifyRateBurst int

	// Inference
	InferenceMode      string
	ServerAPIBaseURL   string
	RemoteTimeout      time.Duration
	ModelDir           string
	ModelConfigPath    string
	VocabularyPath     string
	OnnxRuntimeLib     string
	BatchSize          int
	PredictionCacheTTL time.Duration

	// Consumer
	WorkerID                string
	ConsumerGroup           string
	ConsumerMaxRetries      int
	ConsumerPendingCheckSec int
}

func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

func Load() (*Config, error) {
	modelDir := getEnv("MODEL_DIR", "models")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", ""),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		MongoDBURL:     getEnv("MONGODB_URL", ""),
		MongoDBName:    getEnv("MONGODB_NAME", "sms_classifier"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", nil),

		ClassifyRateLimit: getEnvInt("CLASSIFY_RATE_LIMIT", 20),
		ClassifyRateBurst: getEnvInt("CLASSIFY_RATE_BURST", 20),

		InferenceMode:      strings.ToUpper(getEnv("INFERENCE_MODE", InferenceOnDevice)),
		ServerAPIBaseURL:   strings.TrimSuffix(getEnv("SERVER_API_BASE_URL", ""), "/"),
		RemoteTimeout:      time.Duration(getEnvInt("REMOTE_TIMEOUT_SEC", 10)) * time.Second,
		ModelDir:           modelDir,
		ModelConfigPath:    getEnv("MODEL_CONFIG", ""),
		VocabularyPath:     getEnv("VOCABULARY_PATH", filepath.Join(modelDir, "feature_map.json")),
		OnnxRuntimeLib:     getEnv("ONNXRUNTIME_SHARED_LIBRARY_PATH", ""),
		BatchSize:          getEnvInt("BATCH_SIZE", 10),
		PredictionCacheTTL: time.Duration(getEnvInt("PREDICTION_CACHE_TTL_SEC", 600)) * time.Second,

		WorkerID:                getEnv("WORKER_ID", generateWorkerID()),
		ConsumerGroup:           getEnv("CONSUMER_GROUP", "sms-classifier"),
		ConsumerMaxRetries:      getEnvInt("CONSUMER_MAX_RETRIES", 3),
		ConsumerPendingCheckSec: getEnvInt("CONSUMER_PENDING_CHECK_SEC", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.InferenceMode {
	case InferenceOnDevice:
	case InferenceServer:
		if c.ServerAPIBaseURL == "" {
			return fmt.Errorf("SERVER_API_BASE_URL is required when INFERENCE_MODE=%s", InferenceServer)
		}
	default:
		return fmt.Errorf("invalid INFERENCE_MODE %q", c.InferenceMode)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT_SEC must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
