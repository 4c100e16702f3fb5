package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Development fallbacks; Load warns when they are still in effect.
const (
	devJWTSecret     = "etalase-dev-secret"
	devAdminPassword = "admin123"
)

// Config is the typed application configuration.
type Config struct {
	AppPort string `mapstructure:"APP_PORT" validate:"required"`

	DBDriver    string `mapstructure:"DB_DRIVER" validate:"oneof=sqlite postgres memory"`
	DatabaseDSN string `mapstructure:"DATABASE_DSN" validate:"required_unless=DBDriver memory"`

	JWTSecret     string        `mapstructure:"JWT_SECRET" validate:"required,min=8"`
	TokenTTL      time.Duration `mapstructure:"TOKEN_TTL" validate:"gt=0"`
	AdminUsername string        `mapstructure:"ADMIN_USERNAME" validate:"required,min=3,max=100"`
	AdminPassword string        `mapstructure:"ADMIN_PASSWORD" validate:"required,min=6"`

	AssetBackend    string `mapstructure:"ASSET_BACKEND" validate:"oneof=local gcs"`
	UploadDir       string `mapstructure:"UPLOAD_DIR" validate:"required_if=AssetBackend local"`
	UploadURLPrefix string `mapstructure:"UPLOAD_URL_PREFIX" validate:"required_if=AssetBackend local"`
	GCSBucket       string `mapstructure:"GCS_BUCKET" validate:"required_if=AssetBackend gcs"`
	GCSPrefix       string `mapstructure:"GCS_PREFIX"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"` // empty disables events

	SearchThreshold float64       `mapstructure:"SEARCH_THRESHOLD" validate:"gte=0,lte=1"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT" validate:"gt=0"`
	SeedDemo        bool          `mapstructure:"SEED_DEMO"`
}

// Load reads defaults, then CONFIG_FILE (if set), then the environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == devJWTSecret {
		log.Println("Warning: JWT_SECRET is not set, using the development secret")
	}
	if cfg.AdminPassword == devAdminPassword {
		log.Println("Warning: ADMIN_PASSWORD is not set, using the development password")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("CONFIG_FILE", "")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "etalase.db")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", devAdminPassword)
	v.SetDefault("ASSET_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("GCS_BUCKET", "")
	v.SetDefault("GCS_PREFIX", "items/")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SEARCH_THRESHOLD", 0.34)
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("SEED_DEMO", false)
}

// Validate checks the struct tags and reports every bad key at once.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]error, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Errorf("%s failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
}
