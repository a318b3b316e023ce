package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	FormatObject = "object"
	FormatText   = "text"

	// CORSDisabled turns the CORS middleware into a no-op.
	CORSDisabled = "none"
)

type Config struct {
	// Server
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Completion provider
	Provider string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIStore   bool

	// Gemini
	GeminiAPIKey string
	GeminiModel  string

	// Chat behaviour
	Persona        string
	SystemPrompt   string
	ResponseFormat string

	// CORS
	CORSAllowedOrigin string
}

// Load reads the process environment, after merging in a .env file when one
// is present. Extra env files can be named explicitly.
func Load(envFiles ...string) *Config {
	// Load .env file if it exists
	godotenv.Load(envFiles...)

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "5000"),
		Env:               getEnvOrDefault("ENV", "development"),
		ReadTimeout:       time.Duration(getEnvAsIntOrDefault("SERVER_READ_TIMEOUT", 15)) * time.Second,
		WriteTimeout:      time.Duration(getEnvAsIntOrDefault("SERVER_WRITE_TIMEOUT", 120)) * time.Second,
		IdleTimeout:       time.Duration(getEnvAsIntOrDefault("SERVER_IDLE_TIMEOUT", 60)) * time.Second,
		Provider:          strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI)),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
		OpenAIStore:       getEnvAsBoolOrDefault("OPENAI_STORE", true),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		Persona:           strings.ToLower(getEnvOrDefault("CHAT_PERSONA", "none")),
		SystemPrompt:      os.Getenv("SYSTEM_PROMPT"),
		ResponseFormat:    strings.ToLower(getEnvOrDefault("RESPONSE_FORMAT", FormatObject)),
		CORSAllowedOrigin: getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*"),
	}

	return cfg
}

// Validate reports the first setting that would keep the server from
// answering chat requests.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("required environment variable OPENAI_API_KEY is not set")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("required environment variable GEMINI_API_KEY is not set")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want %q or %q)", c.Provider, ProviderOpenAI, ProviderGemini)
	}

	switch c.ResponseFormat {
	case FormatObject, FormatText:
	default:
		return fmt.Errorf("unknown RESPONSE_FORMAT %q (want %q or %q)", c.ResponseFormat, FormatObject, FormatText)
	}

	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
