package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL   string `env:"TELEGRAM_API_URL"   envDefault:"https://api.telegram.org"`
	AdminJWTSecret   string `env:"ADMIN_JWT_SECRET"`
	LoyaltyConfig    string `env:"LOYALTY_CONFIG"`
	JaegerEndpoint   string `env:"JAEGER_ENDPOINT"`

	JobPollInterval      time.Duration `env:"JOB_POLL_INTERVAL"      envDefault:"30s"`
	JobBatchSize         uint          `env:"JOB_BATCH_SIZE"         envDefault:"100"`
	JobWorkers           uint          `env:"JOB_WORKERS"            envDefault:"10"`
	JobMaxAttempts       int           `env:"JOB_MAX_ATTEMPTS"       envDefault:"5"`
	JobBackoff           time.Duration `env:"JOB_BACKOFF"            envDefault:"1m"`
	JobClaimLease        time.Duration `env:"JOB_CLAIM_LEASE"        envDefault:"10m"`
	PaymentReminderDelay time.Duration `env:"PAYMENT_REMINDER_DELAY" envDefault:"30m"`
	ChatCacheTTL         time.Duration `env:"CHAT_CACHE_TTL"         envDefault:"5m"`
}

func LoadConfig() (*Config, error) {
	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	loadFlags(&flagsConfig)

	conf := mergeConfig(&envConfig, &flagsConfig)
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadEnvConfig читает конфигурацию только из окружения, без разбора флагов и проверки обязательных полей.
// Используется утилитами, у которых свой набор флагов.
func LoadEnvConfig() (*Config, error) {
	var conf Config
	if err := env.Parse(&conf); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	conf.MigrationsDir = defaultIfBlank(conf.MigrationsDir, defaultMigrationsDir)
	return &conf, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func (c *Config) validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is not set"))
	}
	if c.AdminJWTSecret == "" {
		errs = append(errs, errors.New("admin JWT secret is not set"))
	}
	if c.JobMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("job max attempts must be positive, got %d", c.JobMaxAttempts))
	}
	return errors.Join(errs...)
}

const defaultMigrationsDir = "internal/db/migrations"

func loadFlags(flagConfig *Config) {
	flag.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	flag.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	flag.StringVar(&flagConfig.MigrationsDir, "m", defaultMigrationsDir, "Database migrations directory")
	flag.StringVar(&flagConfig.LoyaltyConfig, "l", "", "Loyalty program YAML file")

	flag.Parse()
}

// mergeConfig значения из окружения имеют приоритет над флагами.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig
	conf.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	conf.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	conf.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	conf.LoyaltyConfig = defaultIfBlank(envConfig.LoyaltyConfig, flagsConfig.LoyaltyConfig)
	return &conf
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
