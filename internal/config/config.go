package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Name       string `envconfig:"APP_NAME" default:"Settler"`
		HTTPAddr   string `envconfig:"HTTP_ADDR" default:":8080"`
		LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
		ConfigFile string `envconfig:"SETTLER_CONFIG"`
		TUILogFile string `envconfig:"TUI_LOG_FILE" default:"settler-tui.log"`
	}

	DB struct {
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Port         int    `envconfig:"DB_PORT" default:"5432"`
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:""`
		Name         string `envconfig:"DB_NAME" default:"settler"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
		AutoMigrate  bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS"`
		JobTriggerRate  float64       `envconfig:"JOB_TRIGGER_RATE" default:"0.2"`
		JobTriggerBurst int           `envconfig:"JOB_TRIGGER_BURST" default:"2"`
		ReportCacheTTL  time.Duration `envconfig:"REPORT_CACHE_TTL" default:"15m"`
	}

	Settlement  Settlement
	Reservation Reservation
}

// Settlement configures the settlement batch job.
type Settlement struct {
	Interval         time.Duration `envconfig:"SETTLE_INTERVAL" default:"1m" yaml:"interval"`
	PageSize         int           `envconfig:"SETTLE_PAGE_SIZE" default:"500" yaml:"page_size"`
	ChunkSize        int           `envconfig:"SETTLE_CHUNK_SIZE" default:"500" yaml:"chunk_size"`
	RunTimeout       time.Duration `envconfig:"SETTLE_RUN_TIMEOUT" default:"10m" yaml:"run_timeout"`
	BusinessTimezone string        `envconfig:"BUSINESS_TIMEZONE" default:"Asia/Karachi" yaml:"business_timezone"`
}

// Reservation configures the reservation expiry sweeper.
type Reservation struct {
	SweepInterval time.Duration `envconfig:"RESERVATION_SWEEP_INTERVAL" default:"1m" yaml:"sweep_interval"`
	TTL           time.Duration `envconfig:"RESERVATION_TTL" default:"30m" yaml:"ttl"`
	BatchLimit    int           `envconfig:"RESERVATION_BATCH_LIMIT" default:"5000" yaml:"batch_limit"`
	ChunkSize     int           `envconfig:"RESERVATION_CHUNK_SIZE" default:"500" yaml:"chunk_size"`
}

// jobsFile is the optional YAML overlay for job tuning.
type jobsFile struct {
	Settlement  *Settlement  `yaml:"settlement"`
	Reservation *Reservation `yaml:"reservation"`
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves the business timezone used to compute settlement days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Settlement.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("loading business timezone %q: %w", c.Settlement.BusinessTimezone, err)
	}

	return loc, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.App.ConfigFile != "" {
		if err := cfg.overlay(cfg.App.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// overlay applies job settings from a YAML file on top of the environment.
// Keys missing from the file keep their environment or default value.
func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	file := jobsFile{
		Settlement:  &c.Settlement,
		Reservation: &c.Reservation,
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

func (c *Config) validate() error {
	if c.Settlement.PageSize <= 0 || c.Settlement.ChunkSize <= 0 {
		return fmt.Errorf("settlement page and chunk sizes must be positive")
	}

	if c.Settlement.Interval <= 0 || c.Reservation.SweepInterval <= 0 {
		return fmt.Errorf("job intervals must be positive")
	}

	if c.Reservation.TTL <= 0 {
		return fmt.Errorf("reservation ttl must be positive")
	}

	if c.Reservation.BatchLimit <= 0 || c.Reservation.ChunkSize <= 0 {
		return fmt.Errorf("reservation batch limit and chunk size must be positive")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}
