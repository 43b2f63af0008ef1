package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// StoreBackend selects how the pipeline reaches storage: "postgres"
	// talks to the database directly, "api" goes through the REST API.
	StoreBackend string
	APIBaseURL   string
	APIAddr      string

	SiteBaseURL  string
	LayoutSchema string
	RateLimitMs  int
	MaxRetries   int
	UserAgent    string

	// Region settings for the normalizer.
	Timezone       string
	ExchangeRate   float64
	ReferenceHour  int
	NewYearMin     int
	NewYearMax     int
	MinPriceSource int64
	MaxPriceSource int64

	CohortsPath string

	UsePhoneReveal     bool
	PhoneRevealTimeout time.Duration
	ChromeBin          string

	ExportPath    string
	ExportBrand   string
	ExportModel   string
	ExportColor   string
	TestMode      bool
	TestOutputDir string

	PredictURL   string
	PredictToken string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "marketplace_user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "marketplace_user"),
		PostgresDB:       getEnv("POSTGRES_DB", "postgres"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "postgres")),
		APIBaseURL:   strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		APIAddr:      getEnv("API_ADDR", ":8000"),

		SiteBaseURL:  strings.TrimRight(getEnv("SITE_BASE_URL", "https://www.olx.uz"), "/"),
		LayoutSchema: getEnv("LAYOUT_SCHEMA", "current"),
		RateLimitMs:  getEnvInt("RATE_LIMIT_MS", 1500),
		MaxRetries:   getEnvInt("MAX_RETRIES", 10),
		UserAgent: getEnv("USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),

		Timezone:       getEnv("SOURCE_TIMEZONE", "Asia/Tashkent"),
		ExchangeRate:   getEnvFloat("UZS_PER_USD", 12500),
		ReferenceHour:  getEnvInt("TODAY_REFERENCE_HOUR", 0),
		NewYearMin:     getEnvInt("NEW_VEHICLE_YEAR_MIN", 2022),
		NewYearMax:     getEnvInt("NEW_VEHICLE_YEAR_MAX", 2025),
		MinPriceSource: getEnvInt64("MIN_PRICE_UZS", 20_000_000),
		MaxPriceSource: getEnvInt64("MAX_PRICE_UZS", 2_000_000_000),

		CohortsPath: getEnv("COHORTS_PATH", "./config/brands_models.yaml"),

		UsePhoneReveal:     getEnvBool("USE_PHONE_REVEAL", false),
		PhoneRevealTimeout: time.Duration(getEnvInt("PHONE_REVEAL_TIMEOUT_S", 30)) * time.Second,
		ChromeBin:          getEnv("CHROME_BIN", ""),

		ExportPath:    getEnv("EXPORT_PATH", "./databricks/data/cars_latest.csv"),
		ExportBrand:   getEnv("EXPORT_BRAND", "Chevrolet"),
		ExportModel:   getEnv("EXPORT_MODEL", "Lacetti"),
		ExportColor:   getEnv("EXPORT_COLOR", "white"),
		TestMode:      getEnvBool("TEST_MODE", false),
		TestOutputDir: getEnv("TEST_OUTPUT_DIR", "./output"),

		PredictURL:   getEnv("PREDICT_URL", "http://localhost:8080/predict"),
		PredictToken: getEnv("PREDICT_TOKEN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Location resolves the configured source timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
