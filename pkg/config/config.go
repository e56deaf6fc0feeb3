package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	FaceAPI   FaceAPIConfig
	Stream    StreamConfig
	Google    GoogleOAuthConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type FaceAPIConfig struct {
	BaseURL string // Base URL of the Python face embedding service
	Enabled bool   // Enable/disable the recognition pipeline entirely
}

// StreamConfig holds pipeline tuning knobs. The camera URL itself lives in the
// database so it survives restarts and can be changed at runtime.
type StreamConfig struct {
	SampleInterval  time.Duration // Process at most one frame per interval
	MaxRetries      int           // Dial attempts before the session is marked failed
	RetryBaseDelay  time.Duration // Base delay for exponential backoff between dials
	RetryMaxDelay   time.Duration // Backoff cap
	MaxReadFailures int           // Consecutive frame read errors before reconnecting
	Timezone        string        // Calendar day is computed in this zone
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type RateLimitConfig struct {
	Enabled           bool
	MaxRequests       int
	WindowSeconds     int
	AuthMaxRequests   int
	AuthWindowSeconds int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists (optional for production)
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	config := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "ClassTrack"),
			Port: getEnv("APP_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "classtrack"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		FaceAPI: FaceAPIConfig{
			BaseURL: getEnv("FACE_API_URL", "http://localhost:5000"),
			Enabled: getEnv("FACE_API_ENABLED", "true") == "true",
		},
		Stream: StreamConfig{
			SampleInterval:  getEnvDuration("STREAM_SAMPLE_INTERVAL", time.Second),
			MaxRetries:      getEnvInt("STREAM_MAX_RETRIES", 5),
			RetryBaseDelay:  getEnvDuration("STREAM_RETRY_BASE_DELAY", 500*time.Millisecond),
			RetryMaxDelay:   getEnvDuration("STREAM_RETRY_MAX_DELAY", 10*time.Second),
			MaxReadFailures: getEnvInt("STREAM_MAX_READ_FAILURES", 3),
			Timezone:        getEnv("STREAM_TIMEZONE", "UTC"),
		},
		Google: GoogleOAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			MaxRequests:       getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
			WindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			AuthMaxRequests:   getEnvInt("RATE_LIMIT_AUTH_MAX_REQUESTS", 10),
			AuthWindowSeconds: getEnvInt("RATE_LIMIT_AUTH_WINDOW_SECONDS", 60),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
