package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL    string        `env:"DATABASE_URL,required,notEmpty"`
	AdminJWTSecret string        `env:"ADMIN_JWT_SECRET,required,notEmpty"`
	AdminJWTExpiry time.Duration `env:"ADMIN_JWT_EXPIRY" envDefault:"24h"`
	Port           int           `env:"PORT" envDefault:"5000"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv         string        `env:"APP_ENV" envDefault:"production"`
	CORSOrigin     string        `env:"CORS_ORIGIN" envDefault:"*"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	StoreTimeout      time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	LedgerMaxRetries  int           `env:"LEDGER_MAX_RETRIES" envDefault:"3"`
	MinOpeningBalance int64         `env:"MIN_OPENING_BALANCE" envDefault:"200000"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"Bank Management <no-reply@bank.local>"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
	DBConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"30"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.LedgerMaxRetries < 1 {
		return nil, fmt.Errorf("config.Load: LEDGER_MAX_RETRIES must be at least 1")
	}
	return &cfg, nil
}

// SMTPEnabled reports whether OTP mail should go through SMTP rather than the log.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
