package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

// Storage selects the contract state backend: memory, leveldb or postgres.
type Storage struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
}

type Runtime struct {
	HistorySize int64 `mapstructure:"history_size"`
}

// Contracts names the accounts the service deploys on startup and the
// signers it acts as.
type Contracts struct {
	Owner            string `mapstructure:"owner"`
	Keeper           string `mapstructure:"keeper"`
	RefAccount       string `mapstructure:"ref_account"`
	ProxyAccount     string `mapstructure:"proxy_account"`
	CacheAccount     string `mapstructure:"cache_account"`
	OwnerGatedOracle bool   `mapstructure:"owner_gated_oracle"`
}

type Feeder struct {
	Enabled     bool     `mapstructure:"enabled"`
	IntervalSec int      `mapstructure:"interval_sec"`
	Symbols     []string `mapstructure:"symbols"`
}

type Keeper struct {
	Enabled     bool     `mapstructure:"enabled"`
	IntervalSec int      `mapstructure:"interval_sec"`
	Pairs       []string `mapstructure:"pairs"`
}

type ExchangeRateAPI struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer      HTTPServer      `mapstructure:"http_server"`
	DbServer        DbServer        `mapstructure:"db_server"`
	Storage         Storage         `mapstructure:"storage"`
	Runtime         Runtime         `mapstructure:"runtime"`
	Contracts       Contracts       `mapstructure:"contracts"`
	Feeder          Feeder          `mapstructure:"feeder"`
	Keeper          Keeper          `mapstructure:"keeper"`
	ExchangeRateAPI ExchangeRateAPI `mapstructure:"exchange_rate_api"`
	HTTPClient      HTTPClient      `mapstructure:"http_client"`
	Logging         Logging         `mapstructure:"logging"`
}

// Init reads the yaml file at path, applies defaults and env overrides.
// A missing .env file is not an error.
func Init(path string) (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("http_server.port", "8080")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.path", "data/state")
	v.SetDefault("runtime.history_size", 10000)
	v.SetDefault("contracts.owner", "owner.pricerelay")
	v.SetDefault("contracts.keeper", "keeper.pricerelay")
	v.SetDefault("contracts.ref_account", "ref.pricerelay")
	v.SetDefault("contracts.proxy_account", "proxy.pricerelay")
	v.SetDefault("contracts.cache_account", "cache.pricerelay")
	v.SetDefault("feeder.interval_sec", 60)
	v.SetDefault("keeper.interval_sec", 30)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("logging.level", "info")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.path", "STORAGE_PATH")
	_ = v.BindEnv("exchange_rate_api.api_key", "EXCHANGE_RATE_API_KEY")
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *AppConfig) validate() error {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "memory", "leveldb", "postgres":
	default:
		return fmt.Errorf("unknown storage driver '%s'", cfg.Storage.Driver)
	}
	if cfg.Runtime.HistorySize <= 0 {
		return fmt.Errorf("runtime.history_size must be positive, got %d", cfg.Runtime.HistorySize)
	}
	if cfg.Feeder.Enabled && cfg.ExchangeRateAPI.APIKey == "" {
		return errors.New("exchange rate api key is required when the feeder is enabled")
	}
	return nil
}
