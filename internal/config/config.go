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
	Keys     APIKeys
	Ai       AIConfig
	Agent    AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	AgentLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	Tavily string
	Jina   string
	LLM    string // shared key for openai/deepseek style providers
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "jina"
	OllamaBaseURL     string
	OllamaEmbedModel  string

	// Deduce: low-temperature reasoning model for routing/grading/planning.
	DeduceProvider string
	DeduceModel    string
	DeduceBaseURL  string

	// Writing: generation model for summaries and answers (streaming).
	WritingProvider string
	WritingModel    string
	WritingBaseURL  string
}

// AgentConfig carries the agent graph tuning knobs. All of these are
// operational parameters, not behavior switches.
type AgentConfig struct {
	RetainWindow    int // verbatim messages kept by the compactor
	QuestionTopK    int // chunks fetched for the question itself
	ExcerptTopK     int // chunks fetched per user excerpt
	RewriteTopK     int // opening chunks fetched for rewrite grounding
	MaxExcerptSeeds int // excerpts used as retrieval seeds (cost control)
	ExternalLimit   int // results requested per external search tool
	SearchTimeout   time.Duration
	JudgeTimeout    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			AgentLogFilePath:   getEnv("AGENT_LOG_FILE_PATH", "logs/agent.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			Tavily: getEnv("TAVILY_API_KEY", ""),
			Jina:   getEnv("JINA_API_KEY", ""),
			LLM:    getEnv("LLM_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),

			DeduceProvider: getEnv("DEDUCE_PROVIDER", "deepseek"),
			DeduceModel:    getEnv("DEDUCE_MODEL", "deepseek-chat"),
			DeduceBaseURL:  getEnv("DEDUCE_BASE_URL", ""),

			WritingProvider: getEnv("WRITING_PROVIDER", "deepseek"),
			WritingModel:    getEnv("WRITING_MODEL", "deepseek-chat"),
			WritingBaseURL:  getEnv("WRITING_BASE_URL", ""),
		},
		Agent: AgentConfig{
			RetainWindow:    getEnvAsInt("AGENT_RETAIN_WINDOW", 6),
			QuestionTopK:    getEnvAsInt("AGENT_QUESTION_TOP_K", 3),
			ExcerptTopK:     getEnvAsInt("AGENT_EXCERPT_TOP_K", 2),
			RewriteTopK:     getEnvAsInt("AGENT_REWRITE_TOP_K", 2),
			MaxExcerptSeeds: getEnvAsInt("AGENT_MAX_EXCERPT_SEEDS", 3),
			ExternalLimit:   getEnvAsInt("AGENT_EXTERNAL_LIMIT", 3),
			SearchTimeout:   getEnvAsDuration("AGENT_SEARCH_TIMEOUT", 15*time.Second),
			JudgeTimeout:    getEnvAsDuration("AGENT_JUDGE_TIMEOUT", 30*time.Second),
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
