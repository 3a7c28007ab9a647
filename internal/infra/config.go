package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProfileFull = "full"
	ProfileDemo = "demo"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Profile          string
	Port             string
	OutputDir        string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string

	FreePikAPIKey  string
	FreePikBaseURL string
	FreePikTimeout time.Duration

	KieAPIKey     string
	KieBaseURL    string
	KieTimeout    time.Duration
	EnableVeo3    bool
	Veo3Quality   bool
	MinoAPIKey    string
	MinoBaseURL   string
	AgentQLAPIKey string
	AgentQLURL    string

	LLMAPIKey     string
	LLMBaseURL    string
	LLMModel      string
	AgentMaxTurns int
	VideoMode     string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Profile:          strings.ToLower(getEnv("APP_PROFILE", ProfileFull)),
		Port:             getEnv("PORT", "8000"),
		OutputDir:        getEnv("OUTPUT_DIR", "./output"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		FreePikAPIKey:  strings.TrimSpace(os.Getenv("FREEPIK_API_KEY")),
		FreePikBaseURL: getEnv("FREEPIK_BASE_URL", "https://api.freepik.com"),
		FreePikTimeout: time.Second * time.Duration(getEnvInt("FREEPIK_TIMEOUT_SECONDS", 300)),

		KieAPIKey:     strings.TrimSpace(os.Getenv("KIE_API_KEY")),
		KieBaseURL:    getEnv("KIE_BASE_URL", "https://api.kie.ai"),
		KieTimeout:    time.Second * time.Duration(getEnvInt("KIE_TIMEOUT_SECONDS", 600)),
		EnableVeo3:    getEnvBool("ENABLE_VEO3", false),
		Veo3Quality:   getEnvBool("VEO3_QUALITY", false),
		MinoAPIKey:    strings.TrimSpace(os.Getenv("MINO_API_KEY")),
		MinoBaseURL:   getEnv("MINO_BASE_URL", "https://mino.ai"),
		AgentQLAPIKey: strings.TrimSpace(os.Getenv("AGENTQL_API_KEY")),
		AgentQLURL:    getEnv("AGENTQL_URL", "https://api.agentql.com/v1/query-data"),

		LLMAPIKey:     strings.TrimSpace(os.Getenv("LLM_API_KEY")),
		LLMBaseURL:    getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		AgentMaxTurns: getEnvInt("AGENT_MAX_TURNS", 10),
		VideoMode:     strings.ToLower(getEnv("VIDEO_MODE", "standard")),
	}

	switch cfg.Profile {
	case ProfileFull, ProfileDemo:
	default:
		return nil, fmt.Errorf("APP_PROFILE must be %q or %q, got %q", ProfileFull, ProfileDemo, cfg.Profile)
	}

	if cfg.Profile == ProfileFull {
		if cfg.FreePikAPIKey == "" && !cfg.EnableVeo3 {
			return nil, fmt.Errorf("FREEPIK_API_KEY is required unless ENABLE_VEO3 is set")
		}
		if cfg.EnableVeo3 && cfg.KieAPIKey == "" {
			return nil, fmt.Errorf("KIE_API_KEY is required when ENABLE_VEO3 is set")
		}
	}

	if cfg.AgentMaxTurns <= 0 {
		cfg.AgentMaxTurns = 10
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}
