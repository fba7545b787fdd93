package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by YUHUN_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("YUHUN_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the environment may already be set.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func ServerPort() int {
	return getInt("SERVER_PORT", 8080)
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// LogLevel returns the log level (debug, info, warn, error).
func LogLevel() string {
	return getString("LOG_LEVEL", "info")
}

// APIToken is the bearer token required on /v1. Empty disables auth.
func APIToken() string {
	return os.Getenv("API_TOKEN")
}

func RateLimitRPS() float64 {
	rps := getFloat("RATE_LIMIT_RPS", 10)
	if rps == 0 {
		return 10
	}
	return rps
}

func RateLimitBurst() int {
	return getInt("RATE_LIMIT_BURST", 5)
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// GeminiAPIKey falls back to API_KEY, the name the browser build used.
func GeminiAPIKey() string {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		return k
	}
	return os.Getenv("API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured model provider.
// Valid values: gemini, openai, anthropic, cerebras, mock
func LLMProvider() string {
	return getString("LLM_PROVIDER", "gemini")
}

// LLMAPIKey returns the API key for the configured model provider.
func LLMAPIKey() string {
	return providerKey(LLMProvider())
}

func providerKey(provider string) string {
	switch provider {
	case "openai":
		return OpenAIAPIKey()
	case "anthropic":
		return AnthropicAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock":
		return ""
	default:
		return GeminiAPIKey()
	}
}

// Model overrides. Empty means the provider default.
func RoleModel() string      { return os.Getenv("LLM_MODEL_ROLE") }
func SynthesisModel() string { return os.Getenv("LLM_MODEL_SYNTHESIS") }
func InsightModel() string   { return os.Getenv("LLM_MODEL_INSIGHT") }

func RoleTemperature() float32 {
	return float32(getFloat("ROLE_TEMPERATURE", 0.9))
}

func SynthesisTemperature() float32 {
	return float32(getFloat("SYNTHESIS_TEMPERATURE", 0.7))
}

func SynthesisThinkingBudget() int32 {
	return int32(getInt("SYNTHESIS_THINKING_BUDGET", 2048))
}

func InsightTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("INSIGHT_TIMEOUT"))
	if err != nil || d <= 0 {
		return 45 * time.Second
	}
	return d
}

func MemoryWindow() int {
	return getInt("MEMORY_WINDOW", 5)
}

// Bilingual enables the Traditional Chinese / English answer mandate.
func Bilingual() bool {
	return getBool("BILINGUAL", true)
}

// HistoryBackend selects the history store.
// Valid values: memory, sqlite, postgres, redis, mongo
func HistoryBackend() string {
	return getString("HISTORY_BACKEND", "sqlite")
}

func HistoryKey() string {
	return getString("HISTORY_KEY", "yuhun_history_v3")
}

// HistoryCacheSize caps how many sessions are kept in memory at once.
func HistoryCacheSize() int {
	return getInt("HISTORY_CACHE_SIZE", 1024)
}

func SQLitePath() string {
	return getString("SQLITE_PATH", "data/yuhun.db")
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func RedisURL() string {
	return os.Getenv("REDIS_URL")
}

func MongoURI() string {
	return os.Getenv("MONGO_URI")
}

func MongoDatabase() string {
	return getString("MONGO_DATABASE", "yuhun")
}

func AvatarsEnabled() bool {
	return getBool("AVATARS_ENABLED", false)
}

// ImageProvider returns the avatar image provider.
// Valid values: gemini, openai, mock
func ImageProvider() string {
	return getString("IMAGE_PROVIDER", "gemini")
}

func ImageAPIKey() string {
	return providerKey(ImageProvider())
}

func AvatarWorkers() int {
	return getInt("AVATAR_WORKERS", 2)
}
