package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// MinTokenSecretLength is the minimum required length for the token signing secret in production
	MinTokenSecretLength = 32
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	// Hosted datastore (Turso / libsql). When the URL is empty the local sqlite file is used.
	TursoDatabaseURL string
	TursoAuthToken   string
	// Admin bearer tokens
	AuthTokenSecret string
	AuthTokenIssuer string
	AuthTokenTTL    time.Duration
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	NotifyEmail   string
	// Google Calendar mirror
	GoogleServiceAccountKey string
	GoogleCalendarID        string
	CalendarTimezone        string
	CalendarResyncInterval  time.Duration // Periodic reconciliation of the current and next month
	// Other
	BusinessName      string
	SideEffectTimeout time.Duration
	AllowedOrigins    []string
	AppURL            string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	tokenSecret := os.Getenv("AUTH_TOKEN_SECRET")

	ValidateTokenSecret(tokenSecret, environment)

	if tokenSecret == "" && environment != "production" {
		tokenSecret = GenerateSecureSecret()
		log.Println("[INFO] Generated temporary token secret for development. Set AUTH_TOKEN_SECRET so admin tokens survive restarts.")
	}

	return &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		DBPath:                  getEnv("DB_PATH", "db/app.db"),
		Environment:             environment,
		TursoDatabaseURL:        getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:          os.Getenv("TURSO_AUTH_TOKEN"),
		AuthTokenSecret:         tokenSecret,
		AuthTokenIssuer:         getEnv("AUTH_TOKEN_ISSUER", "studio-site"),
		AuthTokenTTL:            getEnvDuration("AUTH_TOKEN_TTL", 12*time.Hour),
		ResendAPIKey:            os.Getenv("RESEND_API_KEY"),
		EmailFrom:               getEnv("EMAIL_FROM", "noreply@resend.dev"),
		EmailFromName:           getEnv("EMAIL_FROM_NAME", "Nuro Photographer"),
		EmailTestMode:           getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		NotifyEmail:             getEnv("NOTIFY_EMAIL", "owner@example.com"),
		GoogleServiceAccountKey: os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"),
		GoogleCalendarID:        getEnv("GOOGLE_CALENDAR_ID", "primary"),
		CalendarTimezone:        getEnv("CALENDAR_TIMEZONE", "Africa/Maputo"),
		CalendarResyncInterval:  getEnvDuration("CALENDAR_RESYNC_INTERVAL", 24*time.Hour),
		BusinessName:            getEnv("BUSINESS_NAME", "Nuro Photographer"),
		SideEffectTimeout:       getEnvDuration("SIDE_EFFECT_TIMEOUT", 8*time.Second),
		AllowedOrigins:          getEnvList("ALLOWED_ORIGINS", "*"),
		AppURL:                  getEnv("APP_URL", "http://localhost:8080"),
	}
}

// CalendarConfigured reports whether the Google Calendar mirror has credentials
func (c *Config) CalendarConfigured() bool {
	return strings.TrimSpace(c.GoogleServiceAccountKey) != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvList splits a comma separated value, dropping blanks
func getEnvList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("[WARNING] Invalid duration for %s (%q), using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// ValidateTokenSecret validates the token signing secret meets security requirements
// In production, it must be at least 32 bytes and not a known insecure default
func ValidateTokenSecret(secret string, environment string) error {
	insecureDefaults := []string{
		"dev-secret-change-in-production",
		"change-me",
		"secret",
		"development",
		"test",
		"",
	}

	for _, insecure := range insecureDefaults {
		if strings.EqualFold(secret, insecure) {
			if environment == "production" {
				log.Fatal("[CRITICAL] AUTH_TOKEN_SECRET is set to an insecure default value. Generate a secure random secret with: openssl rand -base64 32")
			}
			log.Printf("[WARNING] AUTH_TOKEN_SECRET is set to an insecure default value. This is acceptable only in development.")
			return nil
		}
	}

	if environment == "production" {
		if len(secret) < MinTokenSecretLength {
			log.Fatalf("[CRITICAL] AUTH_TOKEN_SECRET must be at least %d characters in production (current: %d). Generate with: openssl rand -base64 32", MinTokenSecretLength, len(secret))
		}
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret
// This is used only for development when no secret is provided
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("[WARNING] Failed to generate secure secret: %v", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
