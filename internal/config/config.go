package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (OTP store)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Optional infrastructure
	MongoURI      string
	MongoDatabase string
	RabbitMQURL   string
	SentryDSN     string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// OTP
	OTPTTL           time.Duration
	OTPMasterEnabled bool
	OTPMasterCode    string
	OTPMaxAttempts   int

	// Bootstrap admin, created at startup when both are set
	AdminEmail    string
	AdminPassword string

	// Marketplace rules
	VendorApprovalRequiresVerifiedDocs bool
	BookingPaymentWindow               time.Duration
	Currency                           string

	// Provider credential fallbacks; the settings table takes precedence.
	SMTPHost              string
	SMTPPort              int
	SMTPUser              string
	SMTPPassword          string
	SMTPFrom              string
	SendGridAPIKey        string
	SMSAuthKey            string
	SMSSenderID           string
	SMSTemplateID         string
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string
	GoogleClientIDs       string
	FacebookAppID         string
	FacebookAppSecret     string
	AppleClientIDs        string

	ExternalTimeout time.Duration

	// Files
	UploadDir     string
	PublicBaseURL string
	VoucherSecret string

	// Server
	Port             string
	CORSOrigins      string
	BodyLimitMB      int
	LogRetentionDays int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "pahadigo"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "pahadigo"),
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		SentryDSN:     getEnv("SENTRY_DSN", ""),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		OTPTTL:           parseDuration(getEnv("OTP_TTL", "5m"), 5*time.Minute),
		OTPMasterEnabled: getEnvBool("OTP_MASTER_ENABLED", false),
		OTPMasterCode:    getEnv("OTP_MASTER_CODE", ""),
		OTPMaxAttempts:   getEnvInt("OTP_MAX_ATTEMPTS", 5),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		VendorApprovalRequiresVerifiedDocs: getEnvBool("VENDOR_APPROVAL_REQUIRES_VERIFIED_DOCS", false),
		BookingPaymentWindow:               parseDuration(getEnv("BOOKING_PAYMENT_WINDOW", "24h"), 24*time.Hour),
		Currency:                           getEnv("CURRENCY", "INR"),

		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              getEnvInt("SMTP_PORT", 587),
		SMTPUser:              getEnv("SMTP_USER", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:              getEnv("SMTP_FROM", ""),
		SendGridAPIKey:        getEnv("SENDGRID_API_KEY", ""),
		SMSAuthKey:            getEnv("SMS_AUTH_KEY", ""),
		SMSSenderID:           getEnv("SMS_SENDER_ID", ""),
		SMSTemplateID:         getEnv("SMS_TEMPLATE_ID", ""),
		RazorpayKeyID:         getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret:     getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayWebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		GoogleClientIDs:       getEnv("GOOGLE_CLIENT_IDS", ""),
		FacebookAppID:         getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:     getEnv("FACEBOOK_APP_SECRET", ""),
		AppleClientIDs:        getEnv("APPLE_CLIENT_IDS", ""),

		ExternalTimeout: parseDuration(getEnv("EXTERNAL_TIMEOUT", "10s"), 10*time.Second),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		VoucherSecret: getEnv("VOUCHER_SECRET", ""),

		Port:             getEnv("PORT", "8080"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "*"),
		BodyLimitMB:      getEnvInt("BODY_LIMIT_MB", 20),
		LogRetentionDays: getEnvInt("LOG_RETENTION_DAYS", 30),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// MasterOTPAllowed reports whether the master OTP code may be accepted.
// It never is in production.
func (c *Config) MasterOTPAllowed() bool {
	return c.OTPMasterEnabled && c.OTPMasterCode != "" && !c.IsProduction()
}

// SplitCSV splits a comma separated list, dropping blanks.
func SplitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
