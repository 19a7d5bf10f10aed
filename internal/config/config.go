package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Planner  PlannerConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	PlannerLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama"
	OllamaBaseURL     string
	OllamaModel       string
}

type PlannerConfig struct {
	SimpleMaxLength      int
	ModerateMaxLength    int
	LiteContextMaxTokens int
	EnableFastPath       bool
	MinLongContextTokens int
	TopKChunks           int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			PlannerLogFilePath: getEnv("PLANNER_LOG_FILE_PATH", "logs/planner.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Planner: PlannerConfig{
			SimpleMaxLength:      getEnvAsInt("PLANNER_SIMPLE_MAX_LENGTH", 20),
			ModerateMaxLength:    getEnvAsInt("PLANNER_MODERATE_MAX_LENGTH", 100),
			LiteContextMaxTokens: getEnvAsInt("PLANNER_LITE_CONTEXT_MAX_TOKENS", 30000),
			EnableFastPath:       getEnvAsBool("PLANNER_ENABLE_FAST_PATH", true),
			MinLongContextTokens: getEnvAsInt("PLANNER_MIN_LONG_CONTEXT_TOKENS", 1000),
			TopKChunks:           getEnvAsInt("PLANNER_TOP_K_CHUNKS", 5),
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
