package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// WorkerConfig configures the background worker binary. The worker
// ships as a sidecar with no config file, so everything comes from the
// environment under the BSM_ prefix.
type WorkerConfig struct {
	Database DatabaseConfig `ignored:"true"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	DispatchInterval  time.Duration `envconfig:"DISPATCH_INTERVAL" default:"15s"`
	DispatchBatchSize int           `envconfig:"DISPATCH_BATCH_SIZE" default:"20"`
	CleanupInterval   time.Duration `envconfig:"CLEANUP_INTERVAL" default:"1h"`
	ActivityRetention time.Duration `envconfig:"ACTIVITY_RETENTION" default:"2160h"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadWorkerConfig reads the worker environment.
func LoadWorkerConfig() (*WorkerConfig, error) {
	_ = godotenv.Load()

	var cfg WorkerConfig
	if err := envconfig.Process("bsm", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process worker environment: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:                   cfg.DBHost,
		Port:                   cfg.DBPort,
		User:                   cfg.DBUser,
		Password:               cfg.DBPassword,
		Name:                   cfg.DBName,
		SSLMode:                cfg.DBSSLMode,
		MaxOpenConns:           5,
		MaxIdleConns:           2,
		ConnMaxLifetimeMinutes: 30,
	}

	return &cfg, nil
}
