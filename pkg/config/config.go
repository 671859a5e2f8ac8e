package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gemini   GeminiConfig
	LawAPI   LawAPIConfig
	RAG      RAGConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

type GeminiConfig struct {
	APIKey      string
	ChatModel   string
	ReportModel string
	VisionModel string
	EmbedModel  string
}

type LawAPIConfig struct {
	BaseURL string
	OCID    string
	Timeout time.Duration
}

type RAGConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	InsertBatchSize  int
	MatchThreshold   float64
	MatchCount       int
	ContextLimit     int
	MetadataScanSize int
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// Missing .env is fine, environment variables take over (Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	lawTimeout, _ := strconv.Atoi(getEnv("LAW_API_TIMEOUT", "30"))
	chunkSize, _ := strconv.Atoi(getEnv("RAG_CHUNK_SIZE", "1000"))
	chunkOverlap, _ := strconv.Atoi(getEnv("RAG_CHUNK_OVERLAP", "100"))
	batchSize, _ := strconv.Atoi(getEnv("RAG_INSERT_BATCH_SIZE", "50"))
	matchCount, _ := strconv.Atoi(getEnv("RAG_MATCH_COUNT", "25"))
	contextLimit, _ := strconv.Atoi(getEnv("RAG_CONTEXT_LIMIT", "10"))
	scanSize, _ := strconv.Atoi(getEnv("RAG_METADATA_SCAN_SIZE", "1000"))
	matchThreshold, _ := strconv.ParseFloat(getEnv("RAG_MATCH_THRESHOLD", "0.3"), 64)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "jonglaw"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Gemini: GeminiConfig{
			APIKey:      getEnv("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY")),
			ChatModel:   getEnv("GEMINI_CHAT_MODEL", "gemini-2.0-flash-lite"),
			ReportModel: getEnv("GEMINI_REPORT_MODEL", "gemini-3-pro-preview"),
			VisionModel: getEnv("GEMINI_VISION_MODEL", "gemini-2.0-flash-lite"),
			EmbedModel:  getEnv("GEMINI_EMBED_MODEL", "gemini-embedding-001"),
		},
		LawAPI: LawAPIConfig{
			BaseURL: getEnv("LAW_API_BASE_URL", "http://www.law.go.kr/DRF"),
			OCID:    getEnv("LAW_OC_ID", "test"),
			Timeout: time.Duration(lawTimeout) * time.Second,
		},
		RAG: RAGConfig{
			ChunkSize:        chunkSize,
			ChunkOverlap:     chunkOverlap,
			InsertBatchSize:  batchSize,
			MatchThreshold:   matchThreshold,
			MatchCount:       matchCount,
			ContextLimit:     contextLimit,
			MetadataScanSize: scanSize,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
