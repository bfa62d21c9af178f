package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Document storage and statutory retention.
	UploadDir      string
	RetentionYears int

	// Recognition.
	OpenAIAPIKey string
	OpenAIModel  string

	// Qualified-invoice registry.
	NTAAPIBaseURL string

	// Accounting connector OAuth.
	FreeeClientID     string
	FreeeClientSecret string
	FreeeRedirectURL  string

	// Mailbox ingestion OAuth.
	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURL  string
	GmailRefreshToken string

	// Rate limiting, e.g. "100-M" for 100 requests per minute per IP.
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("UPLOAD_DIR", "uploads")
	viper.SetDefault("RETENTION_YEARS", 7)
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_MODEL", "")
	viper.SetDefault("NTA_API_BASE_URL", "https://web-api.invoice-kohyo.nta.go.jp/1")
	viper.SetDefault("FREEE_CLIENT_ID", "")
	viper.SetDefault("FREEE_CLIENT_SECRET", "")
	viper.SetDefault("FREEE_REDIRECT_URL", "http://localhost:8080/api/v1/transfers/callback")
	viper.SetDefault("GMAIL_CLIENT_ID", "")
	viper.SetDefault("GMAIL_CLIENT_SECRET", "")
	viper.SetDefault("GMAIL_REDIRECT_URL", "")
	viper.SetDefault("GMAIL_REFRESH_TOKEN", "")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.UploadDir = viper.GetString("UPLOAD_DIR")
	cfg.RetentionYears = viper.GetInt("RETENTION_YEARS")
	if cfg.RetentionYears <= 0 {
		cfg.RetentionYears = 7
		log.Println("Warning: RETENTION_YEARS must be positive. Defaulting to 7.")
	}

	cfg.OpenAIAPIKey = viper.GetString("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set. Document recognition will fail.")
	}
	cfg.OpenAIModel = viper.GetString("OPENAI_MODEL")

	cfg.NTAAPIBaseURL = viper.GetString("NTA_API_BASE_URL")

	cfg.FreeeClientID = viper.GetString("FREEE_CLIENT_ID")
	cfg.FreeeClientSecret = viper.GetString("FREEE_CLIENT_SECRET")
	cfg.FreeeRedirectURL = viper.GetString("FREEE_REDIRECT_URL")

	cfg.GmailClientID = viper.GetString("GMAIL_CLIENT_ID")
	cfg.GmailClientSecret = viper.GetString("GMAIL_CLIENT_SECRET")
	cfg.GmailRedirectURL = viper.GetString("GMAIL_REDIRECT_URL")
	cfg.GmailRefreshToken = viper.GetString("GMAIL_REFRESH_TOKEN")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
