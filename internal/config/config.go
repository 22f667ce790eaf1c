// Package config loads farescout settings from config.yaml and FARESCOUT_*
// environment variables, and sets up the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Dispatch   DispatchConfig   `yaml:"dispatch" mapstructure:"dispatch"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit" mapstructure:"ratelimit"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Redis      RedisConfig      `yaml:"redis" mapstructure:"redis"`
	Usage      UsageConfig      `yaml:"usage" mapstructure:"usage"`
	HiddenCity HiddenCityConfig `yaml:"hiddencity" mapstructure:"hiddencity"`
	Awards     AwardsConfig     `yaml:"awards" mapstructure:"awards"`
	AltAirport AltAirportConfig `yaml:"altairports" mapstructure:"altairports"`
	SerpAPI    SerpAPIConfig    `yaml:"serpapi" mapstructure:"serpapi"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// DispatchConfig bounds each strategy invocation.
type DispatchConfig struct {
	Timeout     time.Duration   `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries  int             `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelays []time.Duration `yaml:"retry_delays" mapstructure:"retry_delays"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	// Strategies overrides the defaults per strategy name.
	Strategies map[string]StrategyLimit `yaml:"strategies" mapstructure:"strategies"`
}

type StrategyLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Driver is "redis" or "memory".
	Driver string        `yaml:"driver" mapstructure:"driver"`
	TTL    time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
}

// UsageConfig configures the metered external-call budget.
type UsageConfig struct {
	Driver       string `yaml:"driver" mapstructure:"driver"`
	SQLitePath   string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MonthlyLimit int    `yaml:"monthly_limit" mapstructure:"monthly_limit"`
}

type HiddenCityConfig struct {
	MaxBeyond  int     `yaml:"max_beyond" mapstructure:"max_beyond"`
	MinSavings float64 `yaml:"min_savings" mapstructure:"min_savings"`
	HubsFile   string  `yaml:"hubs_file" mapstructure:"hubs_file"`
}

type AwardsConfig struct {
	SweetSpotsFile string `yaml:"sweet_spots_file" mapstructure:"sweet_spots_file"`
}

type AltAirportConfig struct {
	AlternatesFile string `yaml:"alternates_file" mapstructure:"alternates_file"`
}

type SerpAPIConfig struct {
	Key     string        `yaml:"key" mapstructure:"key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Live reports whether a SerpAPI key is configured.
func (c SerpAPIConfig) Live() bool {
	return c.Key != ""
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FARESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("dispatch.timeout", "30s")
	v.SetDefault("dispatch.max_retries", 1)
	v.SetDefault("dispatch.retry_delays", []string{"200ms", "400ms"})
	v.SetDefault("ratelimit.requests_per_second", 10)
	v.SetDefault("ratelimit.burst", 20)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("usage.driver", "sqlite")
	v.SetDefault("usage.sqlite_path", "farescout.db")
	v.SetDefault("usage.monthly_limit", 250)
	v.SetDefault("hiddencity.max_beyond", 6)
	v.SetDefault("hiddencity.min_savings", 30)
	v.SetDefault("hiddencity.hubs_file", "")
	v.SetDefault("awards.sweet_spots_file", "")
	v.SetDefault("altairports.alternates_file", "")
	v.SetDefault("serpapi.key", "")
	v.SetDefault("serpapi.base_url", "https://serpapi.com/search.json")
	v.SetDefault("serpapi.timeout", "20s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Usage.Driver {
	case "memory", "sqlite", "redis":
	default:
		return eris.Errorf("config: usage.driver %q must be memory, sqlite or redis", c.Usage.Driver)
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return eris.Errorf("config: cache.driver %q must be memory or redis", c.Cache.Driver)
	}
	if c.Dispatch.Timeout <= 0 {
		return eris.New("config: dispatch.timeout must be positive")
	}
	if c.HiddenCity.MinSavings < 0 {
		return eris.New("config: hiddencity.min_savings must not be negative")
	}
	return nil
}

// InitLogger initializes the global zap logger. Logs go to stderr so that
// command output on stdout stays machine-readable.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
