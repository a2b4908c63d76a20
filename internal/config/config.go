package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the application configuration. Every field has a safe
// fallback so the server boots with nothing but a local Mongo instance:
// notification channels become no-ops and the attachment store falls back to
// its demo credentials.
type Config struct {
	Server        ServerConfig
	Mongo         MongoConfig
	Admin         AdminConfig
	Attachments   AttachmentsConfig
	Notifications NotificationsConfig
}

type ServerConfig struct {
	Port          int
	PublicBaseURL string
}

type MongoConfig struct {
	URI      string
	Database string
}

type AdminConfig struct {
	APIKey   string
	Enforced bool
}

type AttachmentsConfig struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type NotificationsConfig struct {
	EmailFrom   string
	SMSSenderID string
}

// Load reads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:          8000,
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8000"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "abisdb"),
		},
		Admin: AdminConfig{
			APIKey:   os.Getenv("ADMIN_API_KEY"),
			Enforced: getBool("ADMIN_KEY_ENFORCED", false),
		},
		Attachments: AttachmentsConfig{
			Region:    os.Getenv("AWS_REGION"),
			Bucket:    os.Getenv("ATTACHMENT_BUCKET"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		Notifications: NotificationsConfig{
			EmailFrom:   os.Getenv("NOTIFY_EMAIL_FROM"),
			SMSSenderID: os.Getenv("SMS_SENDER_ID"),
		},
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	return cfg
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
