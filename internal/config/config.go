package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port                 string
	Environment          string
	LogFilePath          string
	CorsAllowedOrigins   string
	NatsURL              string
	RedisURL             string
	SearchTelemetryTopic string
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Backing string // "memory" or "redis"
	TTL     time.Duration
}

type AIConfig struct {
	LLMProvider     string // "ollama" or "gemini"
	LLMModel        string // e.g. "llama3", "gemini-2.0-flash"
	OllamaBaseURL     string
	GeminiAPIKey      string
	HuggingFaceAPIKey string
	GenerateTimeout   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                 getEnv("APP_PORT", "3000"),
			Environment:          getEnv("GO_ENV", "development"),
			LogFilePath:          getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:              getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379"),
			SearchTelemetryTopic: getEnv("SEARCH_TELEMETRY_TOPIC_NAME", "SEARCH_TELEMETRY"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Backing: getEnv("SESSION_BACKING", "memory"),
			TTL:     getEnvAsDuration("SESSION_TTL", 1*time.Hour),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:        getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
			GenerateTimeout:   getEnvAsDuration("GENERATE_TIMEOUT", 30*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
