package config

import (
	"os"
	"strconv"
	"time"

	"dramabox_webapp/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	BotToken    string
	BotUsername string
	BotEnabled  bool

	// Единственный админ (tg id), имеет полный доступ к эпизодам
	AdminTelegramID int64

	WebAppURL        string
	SaweriaSecret    string
	CatalogAPIBase   string
	KeepAliveEnabled bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Business thresholds. Hard-coded in early revisions, kept overridable here
	// because the revisions never agreed on a single source of truth.
	FreeEpisodes    int   // первые N эпизодов бесплатны
	ReferralStep    int   // каждые N рефералов - суточный доступ
	ReferralBig     int   // с этого числа - двухнедельный доступ
	MinPlanAmount   int64 // минимальная сумма самого дешёвого плана
	ReferralStepDur time.Duration
	ReferralBigDur  time.Duration
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}

	botUsername := os.Getenv("BOT_USERNAME")
	if botUsername == "" {
		botUsername = "DramaBoxBot"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	var adminID int64
	if v := os.Getenv("TELEGRAM_ADMIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			adminID = id
		} else {
			logger.Warn("TELEGRAM_ADMIN_ID is not a number, admin disabled", "value", v)
		}
	}

	catalogBase := os.Getenv("CATALOG_API_BASE")
	if catalogBase == "" {
		catalogBase = "https://api.sansekai.my.id/api/dramabox"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		BotToken:    botToken,
		BotUsername: botUsername,
		BotEnabled:  os.Getenv("BOT_ENABLED") != "false",

		AdminTelegramID: adminID,

		WebAppURL:        os.Getenv("WEBAPP_URL"),
		SaweriaSecret:    os.Getenv("SAWERIA_SECRET"),
		CatalogAPIBase:   catalogBase,
		KeepAliveEnabled: os.Getenv("KEEP_ALIVE_ENABLED") == "true",

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		FreeEpisodes:    envInt("FREE_EPISODES", 10),
		ReferralStep:    envInt("REFERRAL_STEP", 3),
		ReferralBig:     envInt("REFERRAL_BIG_THRESHOLD", 10),
		MinPlanAmount:   envInt64("MIN_PLAN_AMOUNT", 5000),
		ReferralStepDur: 24 * time.Hour,
		ReferralBigDur:  14 * 24 * time.Hour,
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}
