package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Upload   UploadConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider    string // "ollama", "gemini" or "none"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "ollama" or "gemini"
	LLMModel             string
	GeminiAPIKey         string
}

type RagConfig struct {
	ChunkSize      int
	ChunkOverlap   int
	TopK           int
	QueryTimeoutMs int
	EmbedTopic     string
}

type UploadConfig struct {
	MaxFileSize  int
	AllowedTypes []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:             getEnv("LLM_MODEL", "gemini-2.0-flash-exp"),
			GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		},
		Rag: RagConfig{
			ChunkSize:      getEnvAsInt("RAG_CHUNK_SIZE", 800),
			ChunkOverlap:   getEnvAsInt("RAG_CHUNK_OVERLAP", 100),
			TopK:           getEnvAsInt("RAG_TOP_K", 5),
			QueryTimeoutMs: getEnvAsInt("RAG_QUERY_TIMEOUT_MS", 10000),
			EmbedTopic:     getEnv("EMBED_PATIENT_RECORD_TOPIC_NAME", "EMBED_PATIENT_RECORD"),
		},
		Upload: UploadConfig{
			MaxFileSize:  getEnvAsInt("MAX_FILE_SIZE", 10485760),
			AllowedTypes: strings.Split(getEnv("ALLOWED_FILE_TYPES", "image/jpeg,image/png,image/jpg,text/plain,application/pdf"), ","),
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
