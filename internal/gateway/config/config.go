package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"codeassist/internal/llm"
)

const (
	defaultPort          = ":5000"
	defaultClientURL     = "http://localhost:5173"
	defaultFreeTierLimit = 50
)

type Config struct {
	Port          string
	Env           string
	DatabaseURL   string
	ClientURL     string
	FreeTierLimit int
	LLM           llm.Config
	Docs          DocsConfig
}

type DocsConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env, the -port flag and the environment, in that order of
// precedence from lowest to highest.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", defaultPort, "server port")
	flag.Parse()

	return fromEnv(*port), nil
}

func fromEnv(port string) *Config {
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		port = envPort
	}
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		port = ":" + port
	}

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")

	cfg := &Config{
		Port:          port,
		Env:           env,
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ClientURL:     firstNonEmpty(strings.TrimSpace(os.Getenv("CLIENT_URL")), defaultClientURL),
		FreeTierLimit: envInt("FREE_TIER_LIMIT", defaultFreeTierLimit),
		LLM: llm.Config{
			Provider:     strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))),
			GroqAPIKey:   strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
			GroqModel:    strings.TrimSpace(os.Getenv("GROQ_MODEL")),
			GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			GeminiModel:  strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
			Timeout:      envDuration("PROVIDER_TIMEOUT", llm.DefaultTimeout),
		},
		Docs: loadDocsConfig(env),
	}
	return cfg
}

func loadDocsConfig(env string) DocsConfig {
	cfg := DocsConfig{
		Endpoint:  strings.TrimSpace(os.Getenv("DOCS_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("DOCS_S3_BUCKET")), "codeassist-docs"),
		UseSSL:    envBool("DOCS_S3_USE_SSL", true),
	}
	// A local minio never speaks TLS.
	if strings.EqualFold(env, "local") {
		cfg.UseSSL = false
	}
	return cfg
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
