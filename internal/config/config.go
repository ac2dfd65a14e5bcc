package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Cron      CronConfig      `mapstructure:"cron"`
	FX        FXConfig        `mapstructure:"fx"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	// Requests without X-User-ID fall back to this user when > 0 (dev only).
	DefaultUserID uint64 `mapstructure:"default_user_id"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CacheConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"`
}

type CronConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	PerformanceSnapshot string `mapstructure:"performance_snapshot"`
	FXWarmup            string `mapstructure:"fx_warmup"`
}

type FXConfig struct {
	BaseCurrency     string        `mapstructure:"base_currency"`
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxLookbackDays  int           `mapstructure:"max_lookback_days"`
	WarmupCurrencies []string      `mapstructure:"warmup_currencies"`
}

type AnalyticsConfig struct {
	Timezone       string `mapstructure:"timezone"`
	HistogramBins  int    `mapstructure:"histogram_bins"`
	UnclassifiedAs string `mapstructure:"unclassified_as"`
}

// Location resolves the analytics time zone, falling back to UTC.
func (c AnalyticsConfig) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.default_user_id", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "finboard:")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.performance_snapshot", "0 30 0 * * *")
	v.SetDefault("cron.fx_warmup", "0 0 9 * * *")
	v.SetDefault("fx.base_currency", "BRL")
	v.SetDefault("fx.base_url", "https://olinda.bcb.gov.br/olinda/servico/PTAX/versao/v1/odata")
	v.SetDefault("fx.timeout", "10s")
	v.SetDefault("fx.max_lookback_days", 10)
	v.SetDefault("fx.warmup_currencies", []string{"USD"})
	v.SetDefault("analytics.timezone", "America/Sao_Paulo")
	v.SetDefault("analytics.histogram_bins", 20)
	v.SetDefault("analytics.unclassified_as", "Unclassified")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.FX.BaseCurrency = strings.ToUpper(strings.TrimSpace(cfg.FX.BaseCurrency))

	return cfg, nil
}
