// README: Config loader: defaults, optional YAML file, then CABBOOK_* env overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type DBConfig struct {
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type ReportConfig struct {
	Dir      string `yaml:"dir"`
	TimeZone string `yaml:"time_zone"`
}

type Config struct {
	HTTP   HTTPConfig  `yaml:"http"`
	DB     DBConfig    `yaml:"db"`
	Redis  RedisConfig `yaml:"redis"`
	Kafka  KafkaConfig `yaml:"kafka"`
	Auth   struct {
		Secret string `yaml:"secret"`
	} `yaml:"auth"`
	Report ReportConfig `yaml:"report"`
	Log    struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.CORSOrigins = []string{"*"}
	cfg.DB.Driver = DriverSQLite
	cfg.DB.DSN = "cabbook.db"
	cfg.DB.Migrate = true
	cfg.Redis.CacheTTL = 5 * time.Minute
	cfg.Kafka.Topic = "bookings"
	cfg.Report.Dir = "bookings"
	cfg.Report.TimeZone = "UTC"
	cfg.Log.Level = "info"
	return cfg
}

// Load builds the configuration. path may be empty, in which case CABBOOK_CONFIG is consulted.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CABBOOK_CONFIG")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.HTTP.Addr = envOrDefault("CABBOOK_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.CORSOrigins = envOrDefaultList("CABBOOK_CORS_ORIGINS", cfg.HTTP.CORSOrigins)
	cfg.DB.Driver = envOrDefault("CABBOOK_DB_DRIVER", cfg.DB.Driver)
	cfg.DB.DSN = envOrDefault("CABBOOK_DB_DSN", cfg.DB.DSN)
	cfg.DB.Migrate = envOrDefaultBool("CABBOOK_DB_MIGRATE", cfg.DB.Migrate)
	cfg.Redis.Addr = envOrDefault("CABBOOK_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.CacheTTL = envOrDefaultDuration("CABBOOK_REDIS_CACHE_TTL", cfg.Redis.CacheTTL)
	cfg.Kafka.Brokers = envOrDefaultList("CABBOOK_KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = envOrDefault("CABBOOK_KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Auth.Secret = envOrDefault("CABBOOK_AUTH_SECRET", cfg.Auth.Secret)
	cfg.Report.Dir = envOrDefault("CABBOOK_REPORT_DIR", cfg.Report.Dir)
	cfg.Report.TimeZone = envOrDefault("CABBOOK_REPORT_TZ", cfg.Report.TimeZone)
	cfg.Log.Level = envOrDefault("CABBOOK_LOG_LEVEL", cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("auth secret is required (CABBOOK_AUTH_SECRET)"))
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown db driver %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db dsn is required"))
	}
	if _, err := time.LoadLocation(c.Report.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("report time zone: %w", err))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if c.Redis.CacheTTL < 0 {
		errs = append(errs, errors.New("redis cache ttl must not be negative"))
	}
	return errors.Join(errs...)
}

// Location returns the report time zone. Validate guarantees it loads.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Report.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
