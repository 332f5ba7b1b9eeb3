package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	PORT        string
	DB_URL      string
	REDIS_URL   string
	JWT_SECRET  string
	CORS_ORIGIN string
	APP_VERSION string
	LOG_LEVEL   string

	STAFF_API_KEY string

	SESSION_TTL time.Duration
	REFRESH_TTL time.Duration

	OTP_MAX_SENDS int
	OTP_WINDOW    time.Duration
	OTP_BLOCK     time.Duration
	OTP_TTL       time.Duration

	TWILIO_ACCOUNT_SID        string
	TWILIO_AUTH_TOKEN         string
	TWILIO_VERIFY_SERVICE_SID string

	PAYMENTS_ENABLED      bool
	PAYMENT_GATEWAY       string
	RAZORPAY_KEY_ID       string
	RAZORPAY_KEY_SECRET   string
	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	viper.AutomaticEnv()
	setDefaults()

	PORT = viper.GetString("PORT")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	REDIS_URL = viper.GetString("REDIS_URL")
	CORS_ORIGIN = viper.GetString("CORS_ORIGIN")
	APP_VERSION = viper.GetString("APP_VERSION")
	LOG_LEVEL = viper.GetString("LOG_LEVEL")

	STAFF_API_KEY = viper.GetString("STAFF_API_KEY")

	SESSION_TTL = viper.GetDuration("SESSION_TTL")
	REFRESH_TTL = viper.GetDuration("REFRESH_TTL")

	OTP_MAX_SENDS = viper.GetInt("OTP_MAX_SENDS")
	OTP_WINDOW = viper.GetDuration("OTP_WINDOW")
	OTP_BLOCK = viper.GetDuration("OTP_BLOCK")
	OTP_TTL = viper.GetDuration("OTP_TTL")

	TWILIO_ACCOUNT_SID = viper.GetString("TWILIO_ACCOUNT_SID")
	TWILIO_AUTH_TOKEN = viper.GetString("TWILIO_AUTH_TOKEN")
	TWILIO_VERIFY_SERVICE_SID = viper.GetString("TWILIO_VERIFY_SERVICE_SID")

	PAYMENTS_ENABLED = viper.GetBool("PAYMENTS_ENABLED")
	PAYMENT_GATEWAY = viper.GetString("PAYMENT_GATEWAY")
	RAZORPAY_KEY_ID = viper.GetString("RAZORPAY_KEY_ID")
	RAZORPAY_KEY_SECRET = viper.GetString("RAZORPAY_KEY_SECRET")
	STRIPE_SECRET_KEY = viper.GetString("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = viper.GetString("STRIPE_WEBHOOK_SECRET")

	// Google sign-in is optional; the routes answer 503 when unset.
	GOOGLE_CLIENT_ID = viper.GetString("GOOGLE_CLIENT_ID")
	GOOGLE_CLIENT_SECRET = viper.GetString("GOOGLE_CLIENT_SECRET")
	GOOGLE_REDIRECT_URL = viper.GetString("GOOGLE_REDIRECT_URL")
	GOOGLE_FRONTEND_REDIRECT = viper.GetString("GOOGLE_FRONTEND_REDIRECT")
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ORIGIN", "http://localhost:3000")
	viper.SetDefault("APP_VERSION", "1.0.0")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("SESSION_TTL", 8*time.Hour)
	viper.SetDefault("REFRESH_TTL", 30*24*time.Hour)

	viper.SetDefault("OTP_MAX_SENDS", 5)
	viper.SetDefault("OTP_WINDOW", time.Hour)
	viper.SetDefault("OTP_BLOCK", time.Hour)
	viper.SetDefault("OTP_TTL", 5*time.Minute)

	viper.SetDefault("PAYMENTS_ENABLED", true)
	viper.SetDefault("PAYMENT_GATEWAY", "razorpay")
}

func mustEnv(key string) string {
	v := viper.GetString(key)
	if v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}
