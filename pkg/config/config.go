package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	domrepo "SentimentOracle/internal/domain/repository"
	applogger "SentimentOracle/pkg/logger"
	xutil "SentimentOracle/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"1s"`
		CORS            bool          `yaml:"cors" default:"true"`
		RefreshRate     float64       `yaml:"refresh_rate" default:"0.2" validate:"gt=0"`
		RefreshBurst    int           `yaml:"refresh_burst" default:"2" validate:"gte=1"`
	} `yaml:"server"`
	Logger  applogger.Config `yaml:"logger"`
	Metrics struct {
		Disabled bool `yaml:"disabled"`
	} `yaml:"metrics"`
	Binance struct {
		BaseURL   string        `yaml:"base_url" default:"https://api.binance.com" validate:"required,url"`
		Symbol    string        `yaml:"symbol" default:"SOLUSDT" validate:"required,alphanum,uppercase"`
		Timeout   time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
		RateLimit float64       `yaml:"rate_limit" default:"5" validate:"gte=0"`
		Burst     int           `yaml:"burst" default:"5" validate:"gte=1"`
		Breaker   struct {
			MaxRequests         uint32        `yaml:"max_requests" default:"1"`
			Interval            time.Duration `yaml:"interval" default:"60s"`
			Timeout             time.Duration `yaml:"timeout" default:"60s"`
			ConsecutiveFailures uint32        `yaml:"consecutive_failures" default:"3" validate:"gte=1"`
		} `yaml:"breaker"`
	} `yaml:"binance"`
	Sentiment struct {
		Source        string             `yaml:"source" default:"fixed" validate:"oneof=fixed random"`
		BuyThreshold  float64            `yaml:"buy_threshold" default:"0.33" validate:"gte=0,lte=1"`
		SellThreshold float64            `yaml:"sell_threshold" default:"-0.33" validate:"gte=-1,lte=0"`
		Seed          int64              `yaml:"seed"`
		FixedScores   map[string]float64 `yaml:"fixed_scores" validate:"dive,gte=-1,lte=1"`
	} `yaml:"sentiment"`
	Dashboard struct {
		DefaultRange    string `yaml:"default_range" default:"24h"`
		MarkerPolicy    string `yaml:"marker_policy" default:"every_tick" validate:"oneof=every_tick on_change"`
		HistoryCapacity int    `yaml:"history_capacity" validate:"gte=0"`
		Timezone        string `yaml:"timezone" default:"Local"`
	} `yaml:"dashboard"`
	Refresh struct {
		Cron           string        `yaml:"cron" default:"0 */5 * * * *" validate:"required"`
		SkipInitialRun bool          `yaml:"skip_initial_run"`
		CycleTimeout   time.Duration `yaml:"cycle_timeout" default:"30s" validate:"gt=0"`
	} `yaml:"refresh"`
	Cache struct {
		Disabled bool          `yaml:"disabled"`
		TTL      time.Duration `yaml:"ttl" default:"30s" validate:"gte=0"`
		Redis    struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"sentiment:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"sentiment.signals"`
		RequiredAcks int      `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchSize    int           `yaml:"batch_size" default:"1"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file. Struct tag defaults are
// applied first, so keys absent from the file keep their default. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies
// environment overrides and validates again.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("SERVER_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("BINANCE_SYMBOL"); v != "" {
		c.Binance.Symbol = strings.ToUpper(v)
	}
	if v := getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := getenv("SENTIMENT_SOURCE"); v != "" {
		c.Sentiment.Source = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = xutil.SplitCSV(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := getenv("REFRESH_CRON"); v != "" {
		c.Refresh.Cron = v
	}
	return nil
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if !domrepo.IsValidTimeframe(c.Dashboard.DefaultRange) {
		return fmt.Errorf("dashboard.default_range %q is not a supported timeframe", c.Dashboard.DefaultRange)
	}
	if c.Sentiment.SellThreshold >= c.Sentiment.BuyThreshold {
		return fmt.Errorf("sentiment.sell_threshold must be below sentiment.buy_threshold")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Cache.Redis.Enabled && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	return nil
}
