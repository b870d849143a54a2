package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Worker    WorkerConfig    `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"ssl_mode"`
	MaxConns       int32  `yaml:"max_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// SeedFile is read by the memory driver to fill rooms, equipment and users.
	SeedFile string `yaml:"seed_file"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	InvoiceGraceDays   int    `yaml:"invoice_grace_days"`
	BillingUnitMinutes int    `yaml:"billing_unit_minutes"`
	Timezone           string `yaml:"timezone"`
	RoomsCacheTTL      int    `yaml:"rooms_cache_ttl_seconds"`
	DefaultPageSize    int    `yaml:"default_page_size"`
	MaxPageSize        int    `yaml:"max_page_size"`
}

func (b BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(b.Timezone)
}

func (b BookingConfig) InvoiceGrace() time.Duration {
	return time.Duration(b.InvoiceGraceDays) * 24 * time.Hour
}

func (b BookingConfig) BillingUnit() time.Duration {
	return time.Duration(b.BillingUnitMinutes) * time.Minute
}

func (b BookingConfig) RoomsCacheDuration() time.Duration {
	return time.Duration(b.RoomsCacheTTL) * time.Second
}

type AnalyticsConfig struct {
	WorkdayStart        string `yaml:"workday_start"`
	WorkdayEnd          string `yaml:"workday_end"`
	MovingAverageWindow int    `yaml:"moving_average_window"`
	MaxDaysAhead        int    `yaml:"max_days_ahead"`
}

// Workday returns the working window as offsets from midnight.
func (a AnalyticsConfig) Workday() (time.Duration, time.Duration, error) {
	start, err := parseClock(a.WorkdayStart)
	if err != nil {
		return 0, 0, fmt.Errorf("workday_start: %w", err)
	}
	end, err := parseClock(a.WorkdayEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("workday_end: %w", err)
	}
	if end <= start {
		return 0, 0, errors.New("workday_end must be after workday_start")
	}
	return start, end, nil
}

func parseClock(v string) (time.Duration, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

type RetryConfig struct {
	MaxAttempts    int     `yaml:"max_attempts"`
	InitialDelayMS int     `yaml:"initial_delay_ms"`
	MaxDelayMS     int     `yaml:"max_delay_ms"`
	BackoffFactor  float64 `yaml:"backoff_factor"`
}

func (r RetryConfig) InitialDelay() time.Duration {
	return time.Duration(r.InitialDelayMS) * time.Millisecond
}

func (r RetryConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayMS) * time.Millisecond
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type WorkerConfig struct {
	OverdueSweepMinutes int `yaml:"overdue_sweep_minutes"`
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "dev"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverPostgres
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "room-notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "room-notifications-worker"
	}
	if c.Booking.InvoiceGraceDays == 0 {
		c.Booking.InvoiceGraceDays = 7
	}
	if c.Booking.BillingUnitMinutes == 0 {
		c.Booking.BillingUnitMinutes = 60
	}
	if c.Booking.Timezone == "" {
		c.Booking.Timezone = "UTC"
	}
	if c.Booking.RoomsCacheTTL == 0 {
		c.Booking.RoomsCacheTTL = 60
	}
	if c.Booking.DefaultPageSize == 0 {
		c.Booking.DefaultPageSize = 20
	}
	if c.Booking.MaxPageSize == 0 {
		c.Booking.MaxPageSize = 100
	}
	if c.Analytics.WorkdayStart == "" {
		c.Analytics.WorkdayStart = "08:00"
	}
	if c.Analytics.WorkdayEnd == "" {
		c.Analytics.WorkdayEnd = "20:00"
	}
	if c.Analytics.MovingAverageWindow == 0 {
		c.Analytics.MovingAverageWindow = 7
	}
	if c.Analytics.MaxDaysAhead == 0 {
		c.Analytics.MaxDaysAhead = 366
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialDelayMS == 0 {
		c.Retry.InitialDelayMS = 50
	}
	if c.Retry.MaxDelayMS == 0 {
		c.Retry.MaxDelayMS = 1000
	}
	if c.Retry.BackoffFactor == 0 {
		c.Retry.BackoffFactor = 2
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 40
	}
	if c.Worker.OverdueSweepMinutes == 0 {
		c.Worker.OverdueSweepMinutes = 60
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("booking.timezone: %w", err)
	}
	if c.Booking.InvoiceGraceDays < 0 {
		return errors.New("booking.invoice_grace_days must not be negative")
	}
	if c.Booking.BillingUnitMinutes < 0 {
		return errors.New("booking.billing_unit_minutes must be positive")
	}
	if c.Booking.DefaultPageSize > c.Booking.MaxPageSize {
		return errors.New("booking.default_page_size exceeds max_page_size")
	}
	if _, _, err := c.Analytics.Workday(); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	if c.Analytics.MovingAverageWindow < 1 {
		return errors.New("analytics.moving_average_window must be positive")
	}
	return nil
}

// LoadConfig reads the YAML file at path. ${VAR} references are expanded from the
// environment, which is first populated from a .env file next to the process if present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
