package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config location relative to the working directory.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                 string   `yaml:"port"`
	LogLevel             string   `yaml:"logLevel"`
	DatabaseURL          string   `yaml:"databaseURL"`
	RedisAddr            string   `yaml:"redisAddr"`
	RedisPassword        string   `yaml:"redisPassword"`
	QueueStream          string   `yaml:"queueStream"`
	QueueGroup           string   `yaml:"queueGroup"`
	QueueConcurrency     int      `yaml:"queueConcurrency"`
	QueueMaxRetries      int      `yaml:"queueMaxRetries"`
	ImportRatePerMinute  int      `yaml:"importRatePerMinute"`
	MetadataSources      []string `yaml:"metadataSources"`
	LookupTimeoutSeconds int      `yaml:"lookupTimeoutSeconds"`
	DueSoonDays          int      `yaml:"dueSoonDays"`
	MinioEndpoint        string   `yaml:"minioEndpoint"`
	MinioAccessKey       string   `yaml:"minioAccessKey"`
	MinioSecretKey       string   `yaml:"minioSecretKey"`
	MinioBucket          string   `yaml:"minioBucket"`
	MinioUseSSL          bool     `yaml:"minioUseSSL"`
	OrdersDir            string   `yaml:"ordersDir"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("IMPORT_QUEUE_STREAM"); v != "" {
		cfg.QueueStream = v
	}
	if v := os.Getenv("IMPORT_QUEUE_GROUP"); v != "" {
		cfg.QueueGroup = v
	}
	if v := os.Getenv("IMPORT_QUEUE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueConcurrency = n
		}
	}
	if v := os.Getenv("IMPORT_QUEUE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueMaxRetries = n
		}
	}
	if v := os.Getenv("IMPORT_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ImportRatePerMinute = n
		}
	}
	if v := os.Getenv("METADATA_SOURCES"); v != "" {
		cfg.MetadataSources = splitList(v)
	}
	if v := os.Getenv("METADATA_LOOKUP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LookupTimeoutSeconds = n
		}
	}
	if v := os.Getenv("RETURNS_DUE_SOON_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DueSoonDays = n
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if useSSL, err := strconv.ParseBool(v); err == nil {
			cfg.MinioUseSSL = useSSL
		}
	}
	if v := os.Getenv("ORDERS_DIR"); v != "" {
		cfg.OrdersDir = v
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.QueueStream == "" {
		cfg.QueueStream = "imports"
	}
	if cfg.QueueGroup == "" {
		cfg.QueueGroup = "import-workers"
	}
	if cfg.QueueConcurrency <= 0 {
		cfg.QueueConcurrency = 2
	}
	if len(cfg.MetadataSources) == 0 {
		cfg.MetadataSources = []string{"googlebooks", "openlibrary"}
	}
	if cfg.LookupTimeoutSeconds <= 0 {
		cfg.LookupTimeoutSeconds = 5
	}
	if cfg.DueSoonDays <= 0 {
		cfg.DueSoonDays = 30
	}
	if cfg.OrdersDir == "" {
		cfg.OrdersDir = "data/orders"
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	for _, source := range cfg.MetadataSources {
		switch source {
		case "googlebooks", "openlibrary":
		default:
			return fmt.Errorf("config: unknown metadata source %q", source)
		}
	}
	if cfg.QueueMaxRetries < 0 {
		return errors.New("config: queueMaxRetries must be >= 0")
	}
	if cfg.ImportRatePerMinute < 0 {
		return errors.New("config: importRatePerMinute must be >= 0")
	}
	if cfg.ImportRatePerMinute > 0 && cfg.RedisAddr == "" {
		return errors.New("config: importRatePerMinute requires redisAddr")
	}
	if hasMinio := cfg.MinioEndpoint != ""; hasMinio {
		if strings.TrimSpace(cfg.MinioAccessKey) == "" || strings.TrimSpace(cfg.MinioSecretKey) == "" {
			return errors.New("config: minio credentials required when minioEndpoint is set")
		}
		if cfg.MinioBucket == "" {
			return errors.New("config: minioBucket is required when minioEndpoint is set")
		}
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
