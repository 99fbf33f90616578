package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR, default=:3000"`
	Env        string `env:"ENV,         default=development"`
	LogLevel   string `env:"LOG_LEVEL,   default=info"`
	LogPretty  bool   `env:"LOG_PRETTY,  default=false"`

	Backend BackendConfig
	Session SessionConfig
	Storage StorageConfig
	Upload  UploadConfig
}

type BackendConfig struct {
	BaseURL       string        `env:"BACKEND_BASE_URL,       default=http://localhost:8081/api"`
	Timeout       time.Duration `env:"BACKEND_TIMEOUT,        default=10s"`
	RetryAttempts int           `env:"BACKEND_RETRY_ATTEMPTS, default=3"`
	RetryDelay    time.Duration `env:"BACKEND_RETRY_DELAY,    default=1s"`
}

type SessionConfig struct {
	// RedirectDelay lets in-flight feedback render before a forced logout navigates away.
	RedirectDelay time.Duration `env:"SESSION_REDIRECT_DELAY, default=1s"`
	LoginPath     string        `env:"SESSION_LOGIN_PATH,     default=/login"`
}

type StorageConfig struct {
	// Driver is one of: file, memory, redis, mongo, sqlite.
	Driver string `env:"STORAGE_DRIVER, default=file"`

	FilePath string `env:"STORAGE_FILE_PATH, default=.storefront/session.json"`
	// Secret seals the file backend with NaCl secretbox when non-empty.
	Secret string `env:"STORAGE_SECRET"`

	Redis  RedisConfig
	Mongo  MongoConfig
	SQLite SQLiteConfig
}

type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB,         default=0"`
	Namespace string        `env:"REDIS_NAMESPACE,  default=storefront"`
	TTL       time.Duration `env:"REDIS_SESSION_TTL, default=0s"`
}

type MongoConfig struct {
	URI       string `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database  string `env:"MONGO_DB,        default=storefront"`
	Namespace string `env:"MONGO_NAMESPACE, default=default"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=.storefront/storage.db"`
}

type UploadConfig struct {
	MaxBytes int64 `env:"UPLOAD_MAX_BYTES, default=5242880"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom resolves configuration against an arbitrary lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "file", "memory", "redis", "mongo", "sqlite":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Backend.RetryAttempts < 1 {
		return fmt.Errorf("BACKEND_RETRY_ATTEMPTS must be at least 1, got %d", c.Backend.RetryAttempts)
	}
	return nil
}
