package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvSandbox    = "sandbox"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`
	SMEPay struct {
		ClientID       string `yaml:"client_id"`
		ClientSecret   string `yaml:"client_secret"`
		Environment    string `yaml:"environment"`
		CallbackURL    string `yaml:"callback_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"smepay"`
	Correlation struct {
		Backend              string `yaml:"backend"`
		TTLMinutes           int    `yaml:"ttl_minutes"`
		SweepIntervalMinutes int    `yaml:"sweep_interval_minutes"`
	} `yaml:"correlation"`
	Invoicing struct {
		SystemURL string `yaml:"system_url"`
	} `yaml:"invoicing"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.DB.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	if cfg.SMEPay.ClientID == "" || cfg.SMEPay.ClientSecret == "" {
		return nil, errors.New("smepay credentials are required")
	}
	if cfg.SMEPay.Environment != EnvProduction && cfg.SMEPay.Environment != EnvSandbox {
		return nil, fmt.Errorf("unknown smepay environment %q", cfg.SMEPay.Environment)
	}
	if cfg.SMEPay.CallbackURL == "" {
		return nil, errors.New("smepay.callback_url is required")
	}
	if cfg.Invoicing.SystemURL == "" {
		return nil, errors.New("invoicing.system_url is required")
	}
	switch cfg.Correlation.Backend {
	case "memory", "redis", "postgres":
	default:
		return nil, fmt.Errorf("unknown correlation backend %q", cfg.Correlation.Backend)
	}
	if cfg.Correlation.Backend == "redis" && cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required for the redis correlation backend")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.SMEPay.Environment == "" {
		cfg.SMEPay.Environment = EnvSandbox
	}
	if cfg.SMEPay.TimeoutSeconds <= 0 {
		cfg.SMEPay.TimeoutSeconds = 30
	}
	if cfg.Correlation.Backend == "" {
		cfg.Correlation.Backend = "postgres"
	}
	if cfg.Correlation.TTLMinutes <= 0 {
		cfg.Correlation.TTLMinutes = 24 * 60
	}
	if cfg.Correlation.SweepIntervalMinutes <= 0 {
		cfg.Correlation.SweepIntervalMinutes = 10
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		cfg.Redis.DB = atoiOr(cfg.Redis.DB, v)
	}
	if v := os.Getenv("SMEPAY_CLIENT_ID"); v != "" {
		cfg.SMEPay.ClientID = v
	}
	if v := os.Getenv("SMEPAY_CLIENT_SECRET"); v != "" {
		cfg.SMEPay.ClientSecret = v
	}
	if v := os.Getenv("SMEPAY_ENVIRONMENT"); v != "" {
		cfg.SMEPay.Environment = v
	}
	if v := os.Getenv("SMEPAY_CALLBACK_URL"); v != "" {
		cfg.SMEPay.CallbackURL = v
	}
	if v := os.Getenv("SMEPAY_TIMEOUT_SECONDS"); v != "" {
		cfg.SMEPay.TimeoutSeconds = atoiOr(cfg.SMEPay.TimeoutSeconds, v)
	}
	if v := os.Getenv("CORRELATION_BACKEND"); v != "" {
		cfg.Correlation.Backend = v
	}
	if v := os.Getenv("CORRELATION_TTL_MINUTES"); v != "" {
		cfg.Correlation.TTLMinutes = atoiOr(cfg.Correlation.TTLMinutes, v)
	}
	if v := os.Getenv("CORRELATION_SWEEP_INTERVAL_MINUTES"); v != "" {
		cfg.Correlation.SweepIntervalMinutes = atoiOr(cfg.Correlation.SweepIntervalMinutes, v)
	}
	if v := os.Getenv("SYSTEM_URL"); v != "" {
		cfg.Invoicing.SystemURL = v
	}
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
