package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort   string
	LogLevel  string
	SentryDSN string

	DBDriver string
	DBDSN    string

	StorageBackend string
	StoragePath    string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3Endpoint     string

	NATSURL     string
	NATSSubject string

	OllamaURL         string
	OllamaVisionModel string

	ClassificationThreshold float64
	RecommendLimit          int
	CategoryLabels          []string
	StyleLabels             []string
	TaxonomyFile            string

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int

	ResilienceRetryMaxAttempts    int
	ResilienceRetryInitialBackoff time.Duration
	ResilienceRetryMaxBackoff     time.Duration
	ResilienceRetryMultiplier     float64
	ResilienceBreakerEnabled      bool
	ResilienceBreakerMinRequests  int
	ResilienceBreakerFailureRatio float64
	ResilienceBreakerOpenTimeout  time.Duration

	WorkerMetricsPort string
}

// Load reads the environment, seeding it from a .env file in the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIPort:   mustEnv("API_PORT", "8080"),
		LogLevel:  mustEnv("LOG_LEVEL", "info"),
		SentryDSN: mustEnv("SENTRY_DSN", ""),

		DBDriver: mustEnv("DB_DRIVER", "sqlite"),
		DBDSN:    mustEnv("DB_DSN", "./data/wardrobe.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"),

		StorageBackend: mustEnv("STORAGE_BACKEND", "localfs"),
		StoragePath:    mustEnv("STORAGE_PATH", "./data/images"),
		S3Region:       mustEnv("S3_REGION", "us-east-1"),
		S3Bucket:       mustEnv("S3_BUCKET", "wardrobe"),
		S3AccessKey:    mustEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    mustEnv("S3_SECRET_KEY", ""),
		S3Endpoint:     mustEnv("S3_ENDPOINT", ""),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "wardrobe.uploads"),

		OllamaURL:         mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaVisionModel: mustEnv("OLLAMA_VISION_MODEL", "llava:7b"),

		ClassificationThreshold: mustEnvFloat("CLASSIFICATION_THRESHOLD", 0.6),
		RecommendLimit:          mustEnvInt("RECOMMEND_LIMIT", 3),
		CategoryLabels:          mustEnvList("CATEGORY_LABELS", []string{"t-shirt", "pants", "skirt", "shoes", "jacket"}),
		StyleLabels:             mustEnvList("STYLE_LABELS", []string{"sports wear", "formal business", "casual daily", "party dress"}),
		TaxonomyFile:            mustEnv("TAXONOMY_FILE", ""),

		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 20),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 40),
		APIMaxInFlight:        mustEnvInt("API_MAX_IN_FLIGHT", 16),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),

		ResilienceRetryMaxAttempts:    mustEnvInt("RESILIENCE_RETRY_MAX_ATTEMPTS", 3),
		ResilienceRetryInitialBackoff: mustEnvDuration("RESILIENCE_RETRY_INITIAL_BACKOFF", 100*time.Millisecond),
		ResilienceRetryMaxBackoff:     mustEnvDuration("RESILIENCE_RETRY_MAX_BACKOFF", 400*time.Millisecond),
		ResilienceRetryMultiplier:     mustEnvFloat("RESILIENCE_RETRY_MULTIPLIER", 2),
		ResilienceBreakerEnabled:      mustEnvBool("RESILIENCE_BREAKER_ENABLED", true),
		ResilienceBreakerMinRequests:  mustEnvInt("RESILIENCE_BREAKER_MIN_REQUESTS", 10),
		ResilienceBreakerFailureRatio: mustEnvFloat("RESILIENCE_BREAKER_FAILURE_RATIO", 0.5),
		ResilienceBreakerOpenTimeout:  mustEnvDuration("RESILIENCE_BREAKER_OPEN_TIMEOUT", 30*time.Second),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// mustEnvList splits a comma separated value, dropping blanks.
func mustEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	out := splitList(v)
	if len(out) == 0 {
		return fallback
	}
	return out
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
