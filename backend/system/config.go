package system

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process settings. Values come from defaults, then an optional
// YAML file (FACTBOOK_CONFIG), then environment variables.
type Config struct {
	Listen          string        `yaml:"listen"`
	DataDir         string        `yaml:"data_dir"`
	DefaultYear     int           `yaml:"default_year"`
	LogDir          string        `yaml:"log_dir"`
	LogLevel        string        `yaml:"log_level"`
	DBDriver        string        `yaml:"db_driver"`
	DBDSN           string        `yaml:"db_dsn"`
	JWTSecret       string        `yaml:"jwt_secret"`
	Watch           bool          `yaml:"watch"`
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	GeoIPDB         string        `yaml:"geoip_db"`
	KafkaBrokers    []string      `yaml:"kafka_brokers"`
	KafkaTopic      string        `yaml:"kafka_topic"`
	FrontendDir     string        `yaml:"frontend_dir"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Listen:          ":8080",
		DataDir:         "./data",
		DefaultYear:     2010,
		LogDir:          "./logs",
		LogLevel:        "info",
		DBDriver:        "sqlite",
		DBDSN:           "factbook.db",
		Watch:           true,
		MonitorInterval: 10 * time.Minute,
		KafkaTopic:      "factbook.anomalies",
		FrontendDir:     "./frontend/dist",
	}
}

// LoadConfig loads .env (if present), the YAML file named by FACTBOOK_CONFIG
// (if set) and then applies environment overrides.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path := os.Getenv("FACTBOOK_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("FACTBOOK_LISTEN", &c.Listen)
	str("FACTBOOK_DATA_DIR", &c.DataDir)
	str("FACTBOOK_LOG_DIR", &c.LogDir)
	str("FACTBOOK_LOG_LEVEL", &c.LogLevel)
	str("FACTBOOK_DB_DRIVER", &c.DBDriver)
	str("FACTBOOK_DB_DSN", &c.DBDSN)
	str("FACTBOOK_JWT_SECRET", &c.JWTSecret)
	str("FACTBOOK_GEOIP_DB", &c.GeoIPDB)
	str("FACTBOOK_KAFKA_TOPIC", &c.KafkaTopic)
	str("FACTBOOK_FRONTEND", &c.FrontendDir)

	if v, ok := lookup("FACTBOOK_YEAR"); ok && v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FACTBOOK_YEAR %q: %w", v, err)
		}
		c.DefaultYear = year
	}
	if v, ok := lookup("FACTBOOK_WATCH"); ok && v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FACTBOOK_WATCH %q: %w", v, err)
		}
		c.Watch = watch
	}
	if v, ok := lookup("FACTBOOK_MONITOR_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FACTBOOK_MONITOR_INTERVAL %q: %w", v, err)
		}
		c.MonitorInterval = d
	}
	if v, ok := lookup("FACTBOOK_KAFKA_BROKERS"); ok {
		c.KafkaBrokers = splitList(v)
	}
	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if c.DefaultYear < 1900 || c.DefaultYear > 9999 {
		return fmt.Errorf("default year %d out of range", c.DefaultYear)
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
