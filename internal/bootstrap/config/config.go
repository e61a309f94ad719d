package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"issuetracker/internal/bootstrap/logging"
	"issuetracker/internal/errs"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	Events   EventsConfig   `mapstructure:"events"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// EventsConfig enables audit fan-out when NATSURL is set.
type EventsConfig struct {
	NATSURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("IT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Debug(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Debug(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("events_enabled", cfg.Events.NATSURL != ""),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return errors.New("log.format must be text or json")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "issuetracker")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/issues.sqlite")
	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("events.subject", "issues.audit")
}
