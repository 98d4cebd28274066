package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Assistant AssistantConfig
	Schedule  ScheduleConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string // empty disables the durable chunk/booking store
}

type AIConfig struct {
	EmbeddingProvider string // "tfidf" or "gemini"
	GeminiAPIKey      string
	ChunkTopic        string // in-process topic for async chunk persistence
}

// AssistantConfig holds the retrieval and conversation tuning knobs.
type AssistantConfig struct {
	TopK                  int
	RefusalThreshold      float64
	IntentConfidenceFloor float64
	ChunkSize             int
	ChunkOverlap          int
	SessionTTL            time.Duration
}

// ScheduleConfig holds the interview-slot search knobs.
type ScheduleConfig struct {
	SlotGranularity  time.Duration
	MaxSlotResults   int
	SearchBudget     int    // max candidate starts examined per request
	PreferredStart   int    // hour of day, local to the availability data
	PreferredEnd     int
	AvailabilityFile string // optional JSON seed for the participant directory
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "tfidf"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			ChunkTopic:        getEnv("PERSIST_CHUNK_TOPIC_NAME", "PERSIST_CORPUS_CHUNKS"),
		},
		Assistant: AssistantConfig{
			TopK:                  getEnvAsInt("TOP_K", 3),
			RefusalThreshold:      getEnvAsFloat("REFUSAL_THRESHOLD", 0.25),
			IntentConfidenceFloor: getEnvAsFloat("INTENT_CONFIDENCE_FLOOR", 0.35),
			ChunkSize:             getEnvAsInt("CHUNK_SIZE", 1200),
			ChunkOverlap:          getEnvAsInt("CHUNK_OVERLAP", 200),
			SessionTTL:            getEnvAsDuration("SESSION_TTL", 1*time.Hour),
		},
		Schedule: ScheduleConfig{
			SlotGranularity: getEnvAsDuration("SLOT_GRANULARITY", 15*time.Minute),
			MaxSlotResults:  getEnvAsInt("MAX_SLOT_RESULTS", 5),
			SearchBudget:    getEnvAsInt("SLOT_SEARCH_BUDGET", 50000),
			PreferredStart:  getEnvAsInt("PREFERRED_HOURS_START", 9),
			PreferredEnd:    getEnvAsInt("PREFERRED_HOURS_END", 17),

			AvailabilityFile: getEnv("AVAILABILITY_FILE_PATH", ""),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
