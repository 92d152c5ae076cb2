package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Data   DataConfig
	Ai     AIConfig
	Memory MemoryConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	TracingEnabled     bool
	OTLPEndpoint       string
}

type DataConfig struct {
	SalesFilePath string
	ReloadTopic   string
}

type AIConfig struct {
	LLMProvider         string // "openai" or "ollama"
	LLMModel            string // e.g. "gpt-3.5-turbo", "llama3"
	OpenAIAPIKey        string
	OllamaBaseURL       string
	EmbeddingProvider   string // "openai" or "ollama"
	EmbeddingModel      string
	EmbeddingDimension  int
	SearchTopK          int
	SearchThreshold     float64
	SearchCacheSize     int
	RetrievalMaxChunks  int
	RetrievalMaxChars   int
	RetrievalTruncateTo int
}

type MemoryConfig struct {
	MaxExchanges   int
	SessionTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			TracingEnabled:     getEnvAsBool("TRACING_ENABLED", false),
			OTLPEndpoint:       getEnv("OTLP_ENDPOINT", "localhost:4318"),
		},
		Data: DataConfig{
			SalesFilePath: getEnv("SALES_DATA_PATH", "data/salesData.json"),
			ReloadTopic:   getEnv("CORPUS_RELOAD_TOPIC_NAME", "CORPUS_RELOADED"),
		},
		Ai: AIConfig{
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension:  getEnvAsInt("EMBEDDING_DIMENSION", 384),
			SearchTopK:          getEnvAsInt("SEARCH_TOP_K", 6),
			SearchThreshold:     getEnvAsFloat("SEARCH_THRESHOLD", 0.25),
			SearchCacheSize:     getEnvAsInt("SEARCH_CACHE_SIZE", 100),
			RetrievalMaxChunks:  getEnvAsInt("RETRIEVAL_MAX_CHUNKS", 6),
			RetrievalMaxChars:   getEnvAsInt("RETRIEVAL_MAX_CHARS", 3000),
			RetrievalTruncateTo: getEnvAsInt("RETRIEVAL_TRUNCATE_TO", 2500),
		},
		Memory: MemoryConfig{
			MaxExchanges:   getEnvAsInt("MEMORY_MAX_EXCHANGES", 5),
			SessionTimeout: time.Duration(getEnvAsInt("MEMORY_SESSION_TIMEOUT_MINUTES", 30)) * time.Minute,
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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
