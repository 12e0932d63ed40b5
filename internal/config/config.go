package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the application settings. Values come from an optional YAML
// file (CONFIG_FILE) and are overridden by environment variables.
type Config struct {
	Env               string        `yaml:"env"`
	Port              string        `yaml:"port"`
	MongoURI          string        `yaml:"mongoURI"`
	DBName            string        `yaml:"dbName"`
	JWTSecret         string        `yaml:"jwtSecret"`
	TokenExpiry       time.Duration `yaml:"tokenExpiry"`
	AllowedOrigins    []string      `yaml:"allowedOrigins"`
	LogLevel          string        `yaml:"logLevel"`
	LogFile           string        `yaml:"logFile"`
	RedisAddr         string        `yaml:"redisAddr"`
	RedisPassword     string        `yaml:"redisPassword"`
	RedisDB           int           `yaml:"redisDB"`
	CountCacheTTL     time.Duration `yaml:"countCacheTTL"`
	CountPollInterval time.Duration `yaml:"countPollInterval"`
	KeepAliveURL      string        `yaml:"keepAliveURL"`
	KeepAliveSchedule string        `yaml:"keepAliveSchedule"`
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadConfig loads configuration from .env, the optional YAML file and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment")
	}

	cfg := defaultConfig()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			logrus.WithError(err).Warnf("Failed to load config file %s, using defaults", path)
		}
	}
	overrideWithEnv(cfg)

	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Env:               "development",
		Port:              "5001",
		MongoURI:          "mongodb://localhost:27017",
		DBName:            "lingo_connect",
		JWTSecret:         "change-me",
		TokenExpiry:       7 * 24 * time.Hour,
		AllowedOrigins:    []string{"http://localhost:5173"},
		LogLevel:          "info",
		CountCacheTTL:     30 * time.Second,
		CountPollInterval: 2 * time.Second,
		KeepAliveSchedule: "*/14 * * * *",
	}
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func overrideWithEnv(cfg *Config) {
	cfg.Env = getEnv("APP_ENV", cfg.Env)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenExpiry = getEnvDuration("TOKEN_EXPIRY", cfg.TokenExpiry)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.CountCacheTTL = getEnvDuration("COUNT_CACHE_TTL", cfg.CountCacheTTL)
	cfg.CountPollInterval = getEnvDuration("COUNT_POLL_INTERVAL", cfg.CountPollInterval)
	cfg.KeepAliveURL = getEnv("KEEPALIVE_URL", cfg.KeepAliveURL)
	cfg.KeepAliveSchedule = getEnv("KEEPALIVE_SCHEDULE", cfg.KeepAliveSchedule)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
