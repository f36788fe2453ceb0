package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string
	CORSOrigins string
	LogFormat   string

	DBDriver   string // postgres, sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret string
	JWTTTL    time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	PaymentCurrency   string

	FrontendURL    string
	SendgridAPIKey string
	EmailFrom      string
	EmailFromName  string

	RedisAddr       string
	CatalogCacheTTL time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		ServerPort:  v.GetString("SERVER_PORT"),
		CORSOrigins: v.GetString("CORS_ORIGINS"),
		LogFormat:   v.GetString("LOG_FORMAT"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		RazorpayKeyID:     v.GetString("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
		PaymentCurrency:   v.GetString("PAYMENT_CURRENCY"),

		FrontendURL:    strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		EmailFrom:      v.GetString("EMAIL_FROM"),
		EmailFromName:  v.GetString("EMAIL_FROM_NAME"),

		RedisAddr:       v.GetString("REDIS_ADDR"),
		CatalogCacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.JWTTTL <= 0 {
		return nil, fmt.Errorf("JWT_TTL must be positive, got %s", cfg.JWTTTL)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "coursehub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "coursehub.db")
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("JWT_TTL", 72*time.Hour)
	v.SetDefault("RAZORPAY_KEY_ID", "")
	v.SetDefault("RAZORPAY_KEY_SECRET", "")
	v.SetDefault("PAYMENT_CURRENCY", "INR")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("EMAIL_FROM", "noreply@localhost")
	v.SetDefault("EMAIL_FROM_NAME", "Online Learning")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CATALOG_CACHE_TTL", time.Minute)
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}
