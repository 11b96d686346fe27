package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type StoreDriver string

const (
	DriverPostgres StoreDriver = "postgres"
	DriverSQLite   StoreDriver = "sqlite"
	DriverMemory   StoreDriver = "memory"
	DriverRemote   StoreDriver = "remote"
)

// How Telegram updates reach the service
const (
	TelegramWebhook = "webhook"
	TelegramPolling = "polling"
)

type Config struct {
	HTTPAddr         string
	JWTSecret        string
	Store            StoreConfig
	Telegram         TelegramConfig
	WhatsAppDeviceDB string
	Admin            AdminConfig
	Log              LogConfig
	Limits           LimitConfig
}

type StoreConfig struct {
	Driver         StoreDriver
	DatabaseURL    string
	SQLitePath     string
	RemoteAPIURL   string
	RemoteAPIToken string
}

type TelegramConfig struct {
	BotToken string
	Mode     string
	// PromptInterval throttles repeated "share your phone" prompts per chat
	PromptInterval time.Duration
}

type AdminConfig struct {
	Email    string
	Password string
}

type LogConfig struct {
	Level  string
	Format string
}

type LimitConfig struct {
	// MessageRate is chatbot messages per second allowed per sender
	MessageRate  float64
	MessageBurst int
	MaxBodyBytes int64
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:  getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		Store: StoreConfig{
			Driver:         StoreDriver(getEnv("STORE_DRIVER", string(DriverSQLite))),
			DatabaseURL:    getEnv("DATABASE_URL", ""),
			SQLitePath:     getEnv("SQLITE_PATH", "easy_admin.db"),
			RemoteAPIURL:   getEnv("REMOTE_API_URL", ""),
			RemoteAPIToken: getEnv("REMOTE_API_TOKEN", ""),
		},
		Telegram: TelegramConfig{
			BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
			Mode:           getEnv("TELEGRAM_MODE", TelegramWebhook),
			PromptInterval: getEnvDuration("TELEGRAM_PROMPT_INTERVAL", time.Minute),
		},
		WhatsAppDeviceDB: getEnv("WHATSAPP_DEVICE_DB", ""),
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@easyadmin.local"),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Limits: LimitConfig{
			MessageRate:  getEnvFloat("MESSAGE_RATE", 1),
			MessageBurst: getEnvInt("MESSAGE_BURST", 5),
			MaxBodyBytes: int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case DriverRemote:
		if c.Store.RemoteAPIURL == "" {
			errs = append(errs, errors.New("REMOTE_API_URL is required for the remote store"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.Telegram.Mode {
	case TelegramWebhook, TelegramPolling:
	default:
		errs = append(errs, fmt.Errorf("unknown TELEGRAM_MODE %q", c.Telegram.Mode))
	}

	if c.Limits.MessageBurst < 1 {
		errs = append(errs, errors.New("MESSAGE_BURST must be at least 1"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
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
