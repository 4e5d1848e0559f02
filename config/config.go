package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Auth     AuthConfig     `yaml:"auth"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Log      LogConfig      `yaml:"log"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address     string   `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	CORSOrigins []string `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-default:"*"`
}

type GRPCConfig struct {
	Address string `yaml:"address" env:"GRPC_ADDRESS" env-default:":9090"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"goaero"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	Name     string `yaml:"name" env:"POSTGRES_DB" env-default:"goaero"`
	SSLMode  string `yaml:"ssl_mode" env:"POSTGRES_SSLMODE" env-default:"disable"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver  string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	Migrate bool   `yaml:"migrate" env:"STORAGE_MIGRATE"`

	// SeedFile preloads airports and accounts into the memory driver.
	SeedFile string `yaml:"seed_file" env:"STORAGE_SEED_FILE"`
}

// RedisConfig configures the flights cache and the distributed flight lock.
// An empty Addr disables both.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	BookingTopic       string   `yaml:"booking_topic" env:"KAFKA_BOOKING_TOPIC" env-default:"bookings"`
	NotificationsTopic string   `yaml:"notifications_topic" env:"KAFKA_NOTIFICATIONS_TOPIC" env-default:"booking-notifications"`
	GroupID            string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"goaero-notifier"`
}

type BookingConfig struct {
	PNRMaxAttempts  int           `yaml:"pnr_max_attempts" env:"BOOKING_PNR_MAX_ATTEMPTS" env-default:"16"`
	FlightsCacheTTL time.Duration `yaml:"flights_cache_ttl" env:"BOOKING_FLIGHTS_CACHE_TTL" env-default:"30s"`
	LockTTL         time.Duration `yaml:"lock_ttl" env:"BOOKING_LOCK_TTL" env-default:"10s"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"24h"`
	Issuer    string        `yaml:"issuer" env:"AUTH_ISSUER" env-default:"goaero"`
}

// SMTPConfig configures booking notification mail. An empty Host logs
// notifications instead of sending them.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"no-reply@goaero.local"`
	FromName string `yaml:"from_name" env:"SMTP_FROM_NAME" env-default:"GoAero"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

type WorkerConfig struct {
	PaymentSweepInterval time.Duration `yaml:"payment_sweep_interval" env:"WORKER_PAYMENT_SWEEP_INTERVAL" env-default:"5m"`
	CacheWarmupInterval  time.Duration `yaml:"cache_warmup_interval" env:"WORKER_CACHE_WARMUP_INTERVAL" env-default:"1m"`
}

// LoadConfig reads the YAML file at path, then applies environment
// overrides and defaults for every field left empty.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Booking.PNRMaxAttempts <= 0 {
		return fmt.Errorf("booking.pnr_max_attempts must be positive")
	}
	return nil
}
