package config

import (
	"os"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	Firebase   FirebaseConfig
	Matching   MatchingConfig
	Payment    PaymentConfig
	Telephony  TelephonyConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

type MatchingConfig struct {
	MinAge       int
	SearchLimit  int // default page size for /search
	MatchesLimit int // default page size for /me/matches
	MaxLimit     int
}

type PaymentConfig struct {
	RazorpayKeyID     string
	RazorpayKeySecret string
	WebhookSecret     string
	PaymentExpiry     time.Duration
}

// TelephonyConfig for the masked-calling provider (number masking + status callbacks).
type TelephonyConfig struct {
	BaseURL            string
	AccountSID         string
	APIKey             string
	APIToken           string
	CallerMaskNumber   string // exophone both parties dial through
	CostPerMinute      int64  // credits charged per started minute
	TimeLimitSeconds   int    // hard cap per call
	RingTimeoutSeconds int
	WebhookBaseURL     string // callback will be WebhookBaseURL + /api/v1/webhooks/call
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8088"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "rishta:rishta@tcp(localhost:3306)/rishta?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  envOr("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: envOr("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "rishta",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     envOr("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: envOr("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  envOr("GOOGLE_REDIRECT_URL", "https://rishta.example.com/api/v1/auth/google/callback"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: envOr("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    envOr("CLOUDINARY_API_KEY", ""),
			APISecret: envOr("CLOUDINARY_API_SECRET", ""),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: envOr("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Matching: MatchingConfig{
			MinAge:       18,
			SearchLimit:  20,
			MatchesLimit: 50,
			MaxLimit:     50,
		},
		Payment: PaymentConfig{
			RazorpayKeyID:     envOr("RAZORPAY_KEY_ID", ""),
			RazorpayKeySecret: envOr("RAZORPAY_KEY_SECRET", ""),
			WebhookSecret:     envOr("PAYMENT_WEBHOOK_SECRET", ""),
			PaymentExpiry:     30 * time.Minute,
		},
		Telephony: TelephonyConfig{
			BaseURL:            envOr("TELEPHONY_BASE_URL", "https://api.exotel.com"),
			AccountSID:         envOr("TELEPHONY_ACCOUNT_SID", ""),
			APIKey:             envOr("TELEPHONY_API_KEY", ""),
			APIToken:           envOr("TELEPHONY_API_TOKEN", ""),
			CallerMaskNumber:   envOr("TELEPHONY_MASK_NUMBER", "08047101234"),
			CostPerMinute:      1,
			TimeLimitSeconds:   3600,
			RingTimeoutSeconds: 30,
			WebhookBaseURL:     envOr("TELEPHONY_WEBHOOK_BASE_URL", "https://rishta.example.com"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
