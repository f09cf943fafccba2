package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env         string
	Port        string
	LogLevel    string
	DatabaseURL string
	// AutoMigrate runs gorm AutoMigrate at startup; SQLite URLs always do.
	AutoMigrate bool

	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	SchedulerTimezone   string
	ReminderDueAt       string
	ReminderOverdueAt   string
	DispatchConcurrency int

	// ParitySettledPolicy is "amend" or "block".
	ParitySettledPolicy string
}

// Load reads .env files (if present) into the process environment and then
// resolves every key through viper.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local", ".env")

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AMQP_EXCHANGE", "foundersbook")
	v.SetDefault("AMQP_QUEUE", "notifications")
	v.SetDefault("SCHEDULER_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("REMINDER_DUE_AT", "09:00")
	v.SetDefault("REMINDER_OVERDUE_AT", "18:00")
	v.SetDefault("DISPATCH_CONCURRENCY", 4)
	v.SetDefault("PARITY_SETTLED_POLICY", "amend")

	env := v.GetString("APP_ENV")
	if env == "" {
		env = v.GetString("NODE_ENV")
	}
	if env == "" {
		env = "development"
	}

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		switch env {
		case "production":
			dbURL = v.GetString("DATABASE_URL_PROD")
		case "test":
			dbURL = v.GetString("DATABASE_URL_TEST")
		default:
			dbURL = v.GetString("DATABASE_URL_DEV")
		}
	}

	return &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		DatabaseURL:         dbURL,
		AutoMigrate:         v.GetBool("AUTO_MIGRATE"),
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   v.GetBool("ALLOW_CROSS_SITE_DEV"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		AMQPURL:             v.GetString("AMQP_URL"),
		AMQPExchange:        v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:           v.GetString("AMQP_QUEUE"),
		SchedulerTimezone:   v.GetString("SCHEDULER_TIMEZONE"),
		ReminderDueAt:       v.GetString("REMINDER_DUE_AT"),
		ReminderOverdueAt:   v.GetString("REMINDER_OVERDUE_AT"),
		DispatchConcurrency: v.GetInt("DISPATCH_CONCURRENCY"),
		ParitySettledPolicy: strings.ToLower(v.GetString("PARITY_SETTLED_POLICY")),
	}, nil
}

// Validate checks the settings every process needs.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.ParitySettledPolicy {
	case "", "amend", "block":
	default:
		return fmt.Errorf("PARITY_SETTLED_POLICY must be amend or block, got %q", c.ParitySettledPolicy)
	}
	if c.DispatchConcurrency < 1 {
		return fmt.Errorf("DISPATCH_CONCURRENCY must be at least 1")
	}
	return nil
}

// IsSQLite reports whether DatabaseURL points at a SQLite file.
func (c *Config) IsSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite://")
}
