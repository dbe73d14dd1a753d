package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Env string

const (
	Dev        Env = "development"
	Test       Env = "test"
	Production Env = "production"
)

type Config struct {
	AppName string
	AppEnv  Env
	AppPort int

	LogLevel string

	// Local SQLite store (default). Always available.
	SQLitePath string

	// Postgres (optional; enabled only when DBHost + DBName are set).
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     int
	DBName     string

	// Redis (optional; enabled only when RedisHost is set).
	RedisUser     string
	RedisPassword string
	RedisHost     string
	RedisPort     int
	RedisScheme   string

	RabbitMQ RabbitMQConfig
	SMTP     SMTPConfig
	Crawl    CrawlConfig
}

type RabbitMQConfig struct {
	URL             string
	Exchange        string
	Queue           string
	RoutingKey      string
	Prefetch        int
	DeclareTopology bool
}

type SMTPConfig struct {
	Host    string
	Port    int
	User    string
	Pass    string
	From    string
	To      string
	Enabled bool
}

type CrawlConfig struct {
	// PortalsFile points at the YAML portal definitions (see config/portals.go).
	PortalsFile string
	// DelaySeconds is the minimum spacing between requests to the same host.
	DelaySeconds int
	// Workers bounds how many portals crawl concurrently.
	Workers int
	// Schedule is a cron expression for periodic cycles; empty disables the scheduler.
	Schedule string
	// UserAgent sent on every portal request.
	UserAgent string
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "tender-scout")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SQLITE_PATH", "tenders.db")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_SCHEME", "redis")

	v.SetDefault("RABBITMQ_EXCHANGE", "events")
	v.SetDefault("RABBITMQ_QUEUE", "tender.cycle.requested.v1")
	v.SetDefault("RABBITMQ_ROUTING_KEY", "tender.cycle.requested.v1")
	v.SetDefault("RABBITMQ_PREFETCH", 1)
	v.SetDefault("RABBITMQ_DECLARE_TOPOLOGY", true)

	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("CRAWL_PORTALS_FILE", "config/portals.yaml")
	v.SetDefault("CRAWL_DELAY_SECONDS", 2)
	v.SetDefault("CRAWL_WORKERS", 1)
	v.SetDefault("CRAWL_SCHEDULE", "")
	v.SetDefault("CRAWL_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	return v
}

func NewConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName: v.GetString("APP_NAME"),
		AppEnv:  Env(v.GetString("APP_ENV")),
		AppPort: v.GetInt("APP_PORT"),

		LogLevel: v.GetString("LOG_LEVEL"),

		SQLitePath: v.GetString("SQLITE_PATH"),

		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetInt("DB_PORT"),
		DBName:     v.GetString("DB_NAME"),

		RedisUser:     v.GetString("REDIS_USER"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetInt("REDIS_PORT"),
		RedisScheme:   v.GetString("REDIS_SCHEME"),

		RabbitMQ: RabbitMQConfig{
			URL:             v.GetString("RABBITMQ_URL"),
			Exchange:        v.GetString("RABBITMQ_EXCHANGE"),
			Queue:           v.GetString("RABBITMQ_QUEUE"),
			RoutingKey:      v.GetString("RABBITMQ_ROUTING_KEY"),
			Prefetch:        v.GetInt("RABBITMQ_PREFETCH"),
			DeclareTopology: v.GetBool("RABBITMQ_DECLARE_TOPOLOGY"),
		},
		SMTP: SMTPConfig{
			Host:    v.GetString("SMTP_HOST"),
			Port:    v.GetInt("SMTP_PORT"),
			User:    v.GetString("SMTP_USER"),
			Pass:    v.GetString("SMTP_PASS"),
			From:    v.GetString("SMTP_FROM"),
			To:      v.GetString("SMTP_TO"),
			Enabled: v.GetBool("SMTP_ENABLED"),
		},
		Crawl: CrawlConfig{
			PortalsFile:  v.GetString("CRAWL_PORTALS_FILE"),
			DelaySeconds: v.GetInt("CRAWL_DELAY_SECONDS"),
			Workers:      v.GetInt("CRAWL_WORKERS"),
			Schedule:     v.GetString("CRAWL_SCHEDULE"),
			UserAgent:    v.GetString("CRAWL_USER_AGENT"),
		},
	}

	if cfg.AppPort <= 0 || cfg.AppPort > 65535 {
		return nil, fmt.Errorf("invalid APP_PORT %d", cfg.AppPort)
	}
	if cfg.DBPort <= 0 || cfg.DBPort > 65535 {
		return nil, fmt.Errorf("invalid DB_PORT %d", cfg.DBPort)
	}
	if cfg.RedisPort <= 0 || cfg.RedisPort > 65535 {
		return nil, fmt.Errorf("invalid REDIS_PORT %d", cfg.RedisPort)
	}
	if cfg.Crawl.DelaySeconds < 0 {
		return nil, fmt.Errorf("invalid CRAWL_DELAY_SECONDS %d", cfg.Crawl.DelaySeconds)
	}
	if cfg.Crawl.Workers <= 0 {
		cfg.Crawl.Workers = 1
	}

	return cfg, nil
}
