package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	// DBMaxConns bounds the pool; every open contract stream holds one connection
	DBMaxConns int32
	// Signer links
	SigningTokenSecret string
	SignerLinkTTL      time.Duration
	PublicAppURL       string // Base URL signer links point at
	// Device-local signature cache (sqlite file); empty keeps it in memory
	SignatureCachePath string
	// Clients
	StaleClientThreshold time.Duration
	// AI suggestions
	AnthropicAPIKey string
	AIModel         string // provider inferred from the name; "off" disables suggestions
	AITimeout       time.Duration
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Environment:          env,
		SupabaseURL:          supabaseURL,
		SupabaseDBURL:        getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL:      jwksURL,
		CORSOrigins:          getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:          tablePrefix,
		DBMaxConns:           int32(getInt("DB_MAX_CONNS", 25)),
		SigningTokenSecret:   getEnv("SIGNING_TOKEN_SECRET", ""),
		SignerLinkTTL:        getDuration("SIGNER_LINK_TTL", DefaultSignerLinkTTL),
		PublicAppURL:         getEnv("PUBLIC_APP_URL", "http://localhost:3000"),
		SignatureCachePath:   getEnv("SIGNATURE_CACHE_PATH", ""),
		StaleClientThreshold: getDuration("STALE_CLIENT_THRESHOLD", DefaultStaleClientThreshold),
		AnthropicAPIKey:      getEnv("ANTHROPIC_API_KEY", ""),
		AIModel:              getEnv("AI_MODEL", defaultAIModel(env)),
		AITimeout:            getDuration("AI_TIMEOUT", 20*time.Second),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// defaultAIModel uses the offline lorem provider outside production
func defaultAIModel(env string) string {
	if env == "prod" {
		return "claude-haiku-4-5"
	}
	return "lorem-fast"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// getDuration parses a Go duration string, falling back on parse errors
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
