package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Idempotency IdempotencyConfig
	Log         LogConfig
	Billing     BillingConfig
	Invoice     InvoiceConfig
}

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Debug   bool
	BaseURL string
}

type DatabaseConfig struct {
	Driver   string // postgres or memory
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type IdempotencyConfig struct {
	TTLHours        int
	CleanupInterval int // minutes
}

type LogConfig struct {
	Level       string
	Development bool
}

// BillingConfig tunes bill creation
type BillingConfig struct {
	NumberPrefix   string
	NumberWidth    int
	MaxCustomers   int
	CreateAttempts int
}

// InvoiceConfig carries the branding printed on invoices
type InvoiceConfig struct {
	CompanyName string
	Tagline     string
	Contact     string
	TaxID       string
	Currency    string
	Disposition string
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	return LoadFrom(viper.GetViper())
}

// LoadFrom builds a Config from v after applying defaults
func LoadFrom(v *viper.Viper) *Config {
	setDefaults(v)

	return &Config{
		App: AppConfig{
			Name:    v.GetString("APP_NAME"),
			Env:     v.GetString("APP_ENV"),
			Port:    v.GetString("APP_PORT"),
			Debug:   v.GetBool("APP_DEBUG"),
			BaseURL: strings.TrimRight(v.GetString("BASE_URL"), "/"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: v.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Idempotency: IdempotencyConfig{
			TTLHours:        v.GetInt("IDEMPOTENCY_TTL_HOURS"),
			CleanupInterval: v.GetInt("IDEMPOTENCY_CLEANUP_MINUTES"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			Development: v.GetBool("LOG_DEVELOPMENT"),
		},
		Billing: BillingConfig{
			NumberPrefix:   v.GetString("BILL_NUMBER_PREFIX"),
			NumberWidth:    v.GetInt("BILL_NUMBER_WIDTH"),
			MaxCustomers:   v.GetInt("BILL_MAX_CUSTOMERS"),
			CreateAttempts: v.GetInt("BILL_CREATE_ATTEMPTS"),
		},
		Invoice: InvoiceConfig{
			CompanyName: v.GetString("INVOICE_COMPANY_NAME"),
			Tagline:     v.GetString("INVOICE_TAGLINE"),
			Contact:     v.GetString("INVOICE_CONTACT"),
			TaxID:       v.GetString("INVOICE_TAX_ID"),
			Currency:    v.GetString("INVOICE_CURRENCY"),
			Disposition: v.GetString("INVOICE_DISPOSITION"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "agrishop-billing")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("BASE_URL", "") // derived from the request when empty
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "agrishop")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", []string{})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	v.SetDefault("IDEMPOTENCY_CLEANUP_MINUTES", 60)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("BILL_NUMBER_PREFIX", "AGR")
	v.SetDefault("BILL_NUMBER_WIDTH", 6)
	v.SetDefault("BILL_MAX_CUSTOMERS", 10)
	v.SetDefault("BILL_CREATE_ATTEMPTS", 3)
	v.SetDefault("INVOICE_COMPANY_NAME", "AgriShop")
	v.SetDefault("INVOICE_TAGLINE", "Fertilizers & Agricultural Products")
	v.SetDefault("INVOICE_CONTACT", "Contact: +91 XXXXX XXXXX | Email: info@agrishop.com")
	v.SetDefault("INVOICE_TAX_ID", "GSTIN: 07AABCU9603R1ZM")
	v.SetDefault("INVOICE_CURRENCY", "₹")
	v.SetDefault("INVOICE_DISPOSITION", "inline")
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
