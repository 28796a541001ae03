package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	CORS     CORSConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Port           int     `mapstructure:"port"`
	Mode           string  `mapstructure:"mode"`
	TimeoutSeconds int     `mapstructure:"timeoutSeconds"`
	MaxBodyBytes   int64   `mapstructure:"maxBodyBytes"`
	PublicRPS      float64 `mapstructure:"publicRps"`
	PublicBurst    int     `mapstructure:"publicBurst"`
}

type DatabaseConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	Name                   string `mapstructure:"name"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"maxOpenConns"`
	MaxIdleConns           int    `mapstructure:"maxIdleConns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"connMaxLifetimeMinutes"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	Issuer           string `mapstructure:"issuer"`
	AccessTTLMinutes int    `mapstructure:"accessTtlMinutes"`
	RefreshTTLDays   int    `mapstructure:"refreshTtlDays"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// URL renders the address in the redis:// form the cache client parses.
func (c RedisConfig) URL() string {
	if c.Password != "" {
		return fmt.Sprintf("redis://:%s@%s/%d", c.Password, c.Addr, c.DB)
	}
	return fmt.Sprintf("redis://%s/%d", c.Addr, c.DB)
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine; containers inject real environment.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("server.maxBodyBytes", 1<<20)
	viper.SetDefault("server.publicRps", 1.0)
	viper.SetDefault("server.publicBurst", 5)

	// Keys without a config entry still need a default registered,
	// otherwise AutomaticEnv cannot surface them through Unmarshal.
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "bsm")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxOpenConns", 25)
	viper.SetDefault("database.maxIdleConns", 5)
	viper.SetDefault("database.connMaxLifetimeMinutes", 30)

	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("jwt.issuer", "bsm-api")
	viper.SetDefault("jwt.accessTtlMinutes", 15)
	viper.SetDefault("jwt.refreshTtlDays", 30)

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.username", "")
	viper.SetDefault("smtp.password", "")
	viper.SetDefault("smtp.from", "")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.pretty", false)
}
