package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration from environment variables.
type Config struct {
	// Application
	Port        string
	FrontendURL string
	CORSOrigin  string

	// Database
	MongoURI string
	MongoDB  string

	// Auth
	JWTSecret string

	// Payment
	StripeSecretKey string

	// Image storage
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Email
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	DefaultCoverImageURL string
}

// Load reads .env (if present) and environment variables with defaults.
func Load() *Config {
	loadDotenv()

	return &Config{
		Port:        getEnv("PORT", "8000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "rebooks"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		SMTPHost: getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort: getEnvInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "Shop Re:Books <noreply@rebooks.example>"),

		DefaultCoverImageURL: getEnv("DEFAULT_COVER_IMAGE_URL", "https://res.cloudinary.com/demo/image/upload/book-cover-placeholder.jpg"),
	}
}

func loadDotenv() {
	if err := godotenv.Load(); err != nil {
		// .env is optional; only complain about real read errors
		if _, ok := err.(*os.PathError); !ok {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
