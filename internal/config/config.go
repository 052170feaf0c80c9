package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppPort string
	AppURL  string

	// Database
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUsername        string
	DBPassword        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret        string
	JWTAccessExpire  time.Duration
	JWTRefreshExpire time.Duration

	// Service credentials for the API login endpoint.
	// APIPasswordHash (bcrypt) wins over APIPassword when both are set.
	APIUsername     string
	APIPassword     string
	APIPasswordHash string

	// ERP connection
	ERPBaseURL  string
	ERPAuthPath string
	ERPRestPath string
	ERPUsername string
	ERPPassword string
	ERPAPIKey   string
	ERPTimeout  time.Duration

	// Default customer used when domain resolution fails
	ERPAdministration string
	ERPDebtorNumber   string
	ERPRelationNumber string
	ERPCustomerName   string

	CustomerCacheTTL time.Duration

	// Export
	ExportPath string

	// Processing
	WorkerConcurrency int

	// Asynq
	AsynqRedisAddr     string
	AsynqRedisPassword string
	AsynqRedisDB       int
}

func Load() (*Config, error) {
	// Load .env file if exists
	// Try to load from current dir first, then parent dirs
	_ = godotenv.Load()
	_ = godotenv.Load("../../.env") // For when running from cmd/web or cmd/worker

	cfg := &Config{
		AppName: getEnv("APP_NAME", "ERP Injector"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),
		AppURL:  getEnv("APP_URL", "http://localhost:8080"),

		DBHost:            getEnv("DB_HOST", "127.0.0.1"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", "erp_injector"),
		DBUsername:        getEnv("DB_USERNAME", "root"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JWTSecret:        getEnv("JWT_SECRET", "change-this-secret-key"),
		JWTAccessExpire:  getEnvAsDuration("JWT_ACCESS_EXPIRE", 24*time.Hour),
		JWTRefreshExpire: getEnvAsDuration("JWT_REFRESH_EXPIRE", 168*time.Hour),

		APIUsername:     getEnv("API_USERNAME", "admin"),
		APIPassword:     getEnv("API_PASSWORD", ""),
		APIPasswordHash: getEnv("API_PASSWORD_HASH", ""),

		ERPBaseURL:  getEnv("ERP_BASE_URL", "http://localhost:8081"),
		ERPAuthPath: getEnv("ERP_AUTH_PATH", "j_security_check"),
		ERPRestPath: getEnv("ERP_REST_PATH", "api/rest/v1"),
		ERPUsername: getEnv("ERP_USERNAME", ""),
		ERPPassword: getEnv("ERP_PASSWORD", ""),
		ERPAPIKey:   getEnv("ERP_API_KEY", ""),
		ERPTimeout:  getEnvAsDuration("ERP_TIMEOUT", 60*time.Second),

		ERPAdministration: getEnv("ERP_ADMINISTRATION", "1"),
		ERPDebtorNumber:   getEnv("ERP_DEBTOR_NUMBER", ""),
		ERPRelationNumber: getEnv("ERP_RELATION_NUMBER", ""),
		ERPCustomerName:   getEnv("ERP_CUSTOMER_NAME", "Unknown customer"),

		CustomerCacheTTL: getEnvAsDuration("CUSTOMER_CACHE_TTL", 24*time.Hour),

		ExportPath: getEnv("EXPORT_PATH", "./storage/exports"),

		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),

		AsynqRedisAddr:     getEnv("ASYNQ_REDIS_ADDR", "127.0.0.1:6379"),
		AsynqRedisPassword: getEnv("ASYNQ_REDIS_PASSWORD", ""),
		AsynqRedisDB:       getEnvAsInt("ASYNQ_REDIS_DB", 0),
	}

	return cfg, nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBDatabase,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
