package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	// PayFast gateway
	PayFastMerchantID  string
	PayFastMerchantKey string
	PayFastBaseURL     string
	PayFastReturnURL   string
	PayFastCancelURL   string
	PayFastNotifyURL   string

	// WhatsApp Cloud API
	WhatsAppToken       string
	WhatsAppPhoneID     string
	WhatsAppVerifyToken string

	// Gemini tone polish (optional)
	GeminiAPIKey   string
	GeminiModelID  string
	PolishTimeout  time.Duration
	PolishDisabled bool

	// SendGrid email confirmations (optional)
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	AdminJWTSecret string

	CatalogListLimit     int
	FallbackAnyStatus    bool
	DefaultUnitPriceRand string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 30*time.Minute),

		PayFastMerchantID:  getEnv("PAYFAST_MERCHANT_ID", "10000100"),
		PayFastMerchantKey: getEnv("PAYFAST_MERCHANT_KEY", "46f0cd694581a"),
		PayFastBaseURL:     getEnv("PAYFAST_BASE_URL", "https://sandbox.payfast.co.za"),
		PayFastReturnURL:   getEnv("PAYFAST_RETURN_URL", "https://sayhi.africa/pay/success"),
		PayFastCancelURL:   getEnv("PAYFAST_CANCEL_URL", "https://sayhi.africa/pay/cancel"),
		PayFastNotifyURL:   getEnv("PAYFAST_NOTIFY_URL", ""),

		WhatsAppToken:       getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneID:     getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", ""),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.0-flash"),
		PolishTimeout:  getEnvAsDuration("POLISH_TIMEOUT", 4*time.Second),
		PolishDisabled: getEnvAsBool("POLISH_DISABLED", false),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Say HI Africa"),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		CatalogListLimit:     getEnvAsInt("CATALOG_LIST_LIMIT", 5),
		FallbackAnyStatus:    getEnvAsBool("CATALOG_FALLBACK_ANY_STATUS", true),
		DefaultUnitPriceRand: strings.TrimSpace(getEnv("DEFAULT_UNIT_PRICE", "100")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
