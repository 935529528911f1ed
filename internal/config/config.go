package config

import (
	"os"
	"strconv"
	"strings"

	"choresbot/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	BotToken    string

	// Telegram ids that receive confirmation requests and may upload rosters.
	AdminTelegramIDs []int64

	LogLevel string
	LogJSON  bool

	// Optional redis-backed command rate limiting. Disabled when RedisAddr
	// is empty; the in-memory limiter is used instead.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CommandRateLimit  int
	CommandRateWindow int // seconds
}

// Load reads configuration from the environment (a local .env is honored).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("BOT_TOKEN is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// Comma-separated admin telegram ids.
	var adminIDs []int64
	if s := os.Getenv("ADMIN_TELEGRAM_IDS"); s != "" {
		for _, idStr := range strings.Split(s, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				adminIDs = append(adminIDs, id)
			}
		}
	}
	if len(adminIDs) == 0 {
		logger.Warn("ADMIN_TELEGRAM_IDS is empty, roster uploads and confirmations are unavailable")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	rateLimit := 20
	if v := os.Getenv("COMMAND_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateLimit = n
		}
	}

	rateWindow := 60
	if v := os.Getenv("COMMAND_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateWindow = n
		}
	}

	return &Config{
		AppPort:           port,
		DatabaseURL:       dbURL,
		BotToken:          botToken,
		AdminTelegramIDs:  adminIDs,
		LogLevel:          logLevel,
		LogJSON:           os.Getenv("LOG_JSON") == "true",
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		CommandRateLimit:  rateLimit,
		CommandRateWindow: rateWindow,
	}
}

// IsAdmin reports whether the given telegram id is in the configured admin list.
func (c *Config) IsAdmin(id int64) bool {
	for _, adminID := range c.AdminTelegramIDs {
		if adminID == id {
			return true
		}
	}
	return false
}
