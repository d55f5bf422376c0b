package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	PaymentProviderQueue  = "queue"
	PaymentProviderStripe = "stripe"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Pricing  PricingConfig
	Screen   ScreenConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port     string
	LogLevel string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// PricingConfig 票價設定檔路徑，空字串時使用預設票價
type PricingConfig struct {
	File string
}

type ScreenConfig struct {
	ID       int
	Capacity int
}

type PaymentConfig struct {
	Provider        string // queue | stripe
	StripeSecretKey string
	Currency        string
	UseRedisStream  bool
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env 不存在時直接使用環境變數
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Pricing:  PricingConfig{File: getEnv("PRICING_FILE", "")},
		Screen:   GetScreenConfig(),
		Payment:  GetPaymentConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server:   ServerConfig{Port: "8080", LogLevel: "debug"},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Screen:   ScreenConfig{ID: 1, Capacity: 100},
		Payment:  PaymentConfig{Provider: PaymentProviderQueue, Currency: "gbp"},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func GetScreenConfig() ScreenConfig {
	return ScreenConfig{
		ID:       getEnvInt("SCREEN_ID", 1),
		Capacity: getEnvInt("SCREEN_CAPACITY", 200),
	}
}

func GetPaymentConfig() PaymentConfig {
	useStream, err := strconv.ParseBool(getEnv("PAYMENT_REDIS_STREAM", "true"))
	if err != nil {
		panic(err)
	}

	return PaymentConfig{
		Provider:        getEnv("PAYMENT_PROVIDER", PaymentProviderQueue),
		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		Currency:        getEnv("PAYMENT_CURRENCY", "gbp"),
		UseRedisStream:  useStream,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		panic(err)
	}
	return n
}
