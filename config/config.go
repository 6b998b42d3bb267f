package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

type Config struct {
	Port     string
	NodeEnv  string
	LogLevel string
	SSLDir   string

	InfoLogEnabled       bool
	S3LogEnabled         bool
	CloudWatchLogEnabled bool
	LogDir               string
	ProjectLabel         string

	AWSRegion     string
	AWSAccessKey  string
	AWSSecretKey  string
	AWSBucketName string
	LogGroup      string

	DatabaseHost     string
	DatabasePort     int
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	AccessSecretKey  string
	RefreshSecretKey string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
}

func NewConfig() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "3000"),
		NodeEnv:  getEnv("NODE_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		SSLDir:   getEnv("SSL_DIR", "./ssl"),

		InfoLogEnabled:       getEnvBool("INFO_LOG", false),
		S3LogEnabled:         getEnvBool("S3_LOG", false),
		CloudWatchLogEnabled: getEnvBool("CLOUDWATCH_LOG", false),
		LogDir:               getEnv("LOG_DIR", "logs"),
		ProjectLabel:         getEnv("PROJECT_LABEL", "tests"),

		AWSRegion:     getEnv("AWS_BUCKET_REGION", "ap-northeast-2"),
		AWSAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AWSSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AWSBucketName: getEnv("AWS_BUCKET_NAME", ""),
		LogGroup:      getEnv("LOG_GROUP", ""),

		DatabaseHost:     getEnv("DATABASE_HOST", "127.0.0.1"),
		DatabasePort:     getEnvInt("DATABASE_PORT", 3306),
		DatabaseUser:     getEnv("DATABASE_USER", "root"),
		DatabasePassword: getEnv("DATABASE_PASSWORD", ""),
		DatabaseName:     getEnv("DATABASE_NAME", ""),

		AccessSecretKey:  getEnv("ACCESS_SECRET_KEY", ""),
		RefreshSecretKey: getEnv("REFRESH_SECRET_KEY", ""),
		AccessTokenTTL:   getEnvDuration("ACCESS_TOKEN_TTL", 20*time.Minute),
		RefreshTokenTTL:  getEnvDuration("REFRESH_TOKEN_TTL", time.Hour),
	}
}

func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// DatabaseDSN is the go-sql-driver/mysql connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DatabaseUser, c.DatabasePassword, c.DatabaseHost, c.DatabasePort, c.DatabaseName)
}

// DefaultLogContext is the context label stamped on file log records that
// do not carry their own.
func (c *Config) DefaultLogContext() string {
	if c.IsProduction() {
		return "HTTPS"
	}
	return "HTTP"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool treats a set variable as enabled only when it is exactly "true".
func getEnvBool(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value == "true"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

var Module = fx.Options(
	fx.Provide(NewConfig),
)
