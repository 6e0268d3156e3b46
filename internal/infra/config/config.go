package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DatabaseConfig holds the connection settings. Missing values are not a
// load error; they are reported when the connection is first requested.
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"mysql" validate:"oneof=mysql postgres sqlite"`
	Host     string `envconfig:"MYSQL_HOST" validate:"required_unless=Driver sqlite"`
	User     string `envconfig:"MYSQL_USER" validate:"required_unless=Driver sqlite"`
	Password string `envconfig:"MYSQL_PASSWORD"`
	Name     string `envconfig:"MYSQL_DATABASE" validate:"required"`
	Port     string `envconfig:"MYSQL_PORT" validate:"required_unless=Driver sqlite"`
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	Database DatabaseConfig `ignored:"true"`

	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8501"`
	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	CachePurgeSpec string        `envconfig:"CACHE_PURGE_SPEC" default:"*/10 * * * *"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	Environment    string        `envconfig:"ENVIRONMENT" default:"development"`

	TelegramToken         string `envconfig:"TELEGRAM_TOKEN"`
	AdminTelegramID       int64  `envconfig:"ADMIN_TELEGRAM_ID"`
	CronSpecMonthlyReport string `envconfig:"CRON_SPEC_MONTHLY_REPORT" default:"0 8 1 * *"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to load database settings from env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)

	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %s", cfg.CacheTTL)
	}
	if cfg.TelegramToken != "" && cfg.AdminTelegramID == 0 {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}

	return cfg, nil
}

// TelegramEnabled reports whether the bot should be started.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report env variable names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("envconfig"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks that every setting the selected driver needs is present.
func (c DatabaseConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "oneof":
				msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
			default:
				msgs = append(msgs, fmt.Sprintf("%s is not set", fe.Field()))
			}
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	if c.Port != "" {
		if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
			return fmt.Errorf("MYSQL_PORT %q is not a valid port", c.Port)
		}
	}
	return nil
}
