package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
// It is built once at startup and passed down by injection; nothing on a
// request path reads the environment directly.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Valkey   ValkeyConfig
	Scraper  ScraperConfig
	CacheTTL CacheTTLConfig
	Quota    QuotaConfig
	Sync     SyncConfig
}

type AppConfig struct {
	Port      string
	Debug     bool
	APISecret string
	BasePath  string
}

type DatabaseConfig struct {
	Driver   string // "sqlite" (default) or "postgres"
	Host     string
	Port     int
	User     string
	Password string
	Name     string // file path for SQLite, database name for Postgres
}

type ValkeyConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type ScraperConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	Domain     string // amazon domain to scrape, e.g. "amazon.sa"
}

// CacheTTLConfig carries the per-category cache lifetimes in seconds.
type CacheTTLConfig struct {
	Product      int
	Search       int
	Category     int
	Deals        int
	Reviews      int
	PriceHistory int
}

type QuotaConfig struct {
	MonthlyLimit   int
	AlertThreshold int
	WebhookURL     string
}

type SyncConfig struct {
	Interval time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("APP_DEBUG", false)
	v.SetDefault("APP_BASE_PATH", "")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "souqtrack")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "storages/souqtrack.db")

	v.SetDefault("VALKEY_ADDRESS", "localhost:6379")
	v.SetDefault("VALKEY_PASSWORD", "")
	v.SetDefault("VALKEY_DB", 0)
	v.SetDefault("VALKEY_KEY_PREFIX", "")

	v.SetDefault("SCRAPER_BASE_URL", "https://api.asindataapi.com/request")
	v.SetDefault("SCRAPER_API_KEY", "")
	v.SetDefault("SCRAPER_TIMEOUT_SEC", 30)
	v.SetDefault("SCRAPER_RETRY_COUNT", 2)
	v.SetDefault("SCRAPER_DOMAIN", "amazon.sa")

	v.SetDefault("CACHE_TTL_PRODUCT", 86400)
	v.SetDefault("CACHE_TTL_SEARCH", 21600)
	v.SetDefault("CACHE_TTL_CATEGORY", 21600)
	v.SetDefault("CACHE_TTL_DEALS", 3600)
	v.SetDefault("CACHE_TTL_REVIEWS", 86400)
	v.SetDefault("CACHE_TTL_PRICE_HISTORY", 43200)

	v.SetDefault("QUOTA_MONTHLY_LIMIT", 10000)
	v.SetDefault("QUOTA_ALERT_THRESHOLD", 9000)
	v.SetDefault("QUOTA_WEBHOOK_URL", "")

	v.SetDefault("SYNC_INTERVAL_HOURS", 24)

	cfg := &Config{
		App: AppConfig{
			Port:      v.GetString("APP_PORT"),
			Debug:     v.GetBool("APP_DEBUG"),
			APISecret: v.GetString("APP_API_SECRET"),
			BasePath:  v.GetString("APP_BASE_PATH"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Valkey: ValkeyConfig{
			Address:   v.GetString("VALKEY_ADDRESS"),
			Password:  v.GetString("VALKEY_PASSWORD"),
			DB:        v.GetInt("VALKEY_DB"),
			KeyPrefix: v.GetString("VALKEY_KEY_PREFIX"),
		},
		Scraper: ScraperConfig{
			BaseURL:    v.GetString("SCRAPER_BASE_URL"),
			APIKey:     v.GetString("SCRAPER_API_KEY"),
			Timeout:    time.Duration(v.GetInt("SCRAPER_TIMEOUT_SEC")) * time.Second,
			RetryCount: v.GetInt("SCRAPER_RETRY_COUNT"),
			Domain:     v.GetString("SCRAPER_DOMAIN"),
		},
		CacheTTL: CacheTTLConfig{
			Product:      v.GetInt("CACHE_TTL_PRODUCT"),
			Search:       v.GetInt("CACHE_TTL_SEARCH"),
			Category:     v.GetInt("CACHE_TTL_CATEGORY"),
			Deals:        v.GetInt("CACHE_TTL_DEALS"),
			Reviews:      v.GetInt("CACHE_TTL_REVIEWS"),
			PriceHistory: v.GetInt("CACHE_TTL_PRICE_HISTORY"),
		},
		Quota: QuotaConfig{
			MonthlyLimit:   v.GetInt("QUOTA_MONTHLY_LIMIT"),
			AlertThreshold: v.GetInt("QUOTA_ALERT_THRESHOLD"),
			WebhookURL:     v.GetString("QUOTA_WEBHOOK_URL"),
		},
		Sync: SyncConfig{
			Interval: time.Duration(v.GetInt("SYNC_INTERVAL_HOURS")) * time.Hour,
		},
	}

	return cfg, nil
}
