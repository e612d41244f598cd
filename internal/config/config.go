package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/pocketledger/internal/ledger"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	URL  string `mapstructure:"url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type LockConfig struct {
	Backend string        `mapstructure:"backend"`
	Expiry  time.Duration `mapstructure:"expiry"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type BudgetConfig struct {
	WarningMode  string `mapstructure:"warning_mode"`
	WarningRatio string `mapstructure:"warning_ratio"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Lock     LockConfig     `mapstructure:"lock"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Budget   BudgetConfig   `mapstructure:"budget"`
	// User is the CLI's acting user id, sent as X-User-ID.
	User string `mapstructure:"user"`
}

const envPrefix = "POCKETLEDGER"

// SetDefaults registers every key so environment overrides apply even when
// no config file exists.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8888")
	v.SetDefault("server.url", "http://localhost:8888")
	v.SetDefault("database.path", "pocketledger.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("lock.backend", "local")
	v.SetDefault("lock.expiry", 10*time.Second)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("budget.warning_mode", ledger.WarningModeLegacy)
	v.SetDefault("budget.warning_ratio", "0.8")
	v.SetDefault("user", "")
}

// Load reads configuration into v from path, or from pocketledger.yaml in
// the working directory when path is empty. A missing default file is not
// an error; env vars such as POCKETLEDGER_DATABASE_PATH override the file.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path == "" {
		v.SetConfigName("pocketledger")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Lock.Backend {
	case "local", "redis":
	default:
		return fmt.Errorf("lock.backend must be local or redis, got %q", c.Lock.Backend)
	}
	if _, err := c.Budget.Thresholds(); err != nil {
		return err
	}
	return nil
}

// Thresholds builds the budget threshold policy from config.
func (b BudgetConfig) Thresholds() (ledger.Thresholds, error) {
	ratio := decimal.Zero
	if b.WarningRatio != "" {
		r, err := decimal.NewFromString(b.WarningRatio)
		if err != nil {
			return ledger.Thresholds{}, fmt.Errorf("budget.warning_ratio: %w", err)
		}
		ratio = r
	}
	return ledger.ThresholdsFor(b.WarningMode, ratio)
}
